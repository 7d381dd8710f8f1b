package catalog

import (
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	EventTypeMasterProductSubmitted     = "MasterProductSubmitted"
	EventTypeMasterProductStatusChanged = "MasterProductStatusChanged"

	aggregateTypeMasterProduct = "MasterProduct"
)

// MasterProductSubmittedEvent is raised when an organization proposes a catalog entry
type MasterProductSubmittedEvent struct {
	shared.BaseDomainEvent
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	SubmittedBy uuid.UUID `json:"submitted_by"`
}

// NewMasterProductSubmittedEvent creates the event for a new submission
func NewMasterProductSubmittedEvent(p *MasterProduct) *MasterProductSubmittedEvent {
	var by uuid.UUID
	if p.SubmittedBy != nil {
		by = *p.SubmittedBy
	}
	return &MasterProductSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMasterProductSubmitted, aggregateTypeMasterProduct, p.ID, p.SubmittingOrg()),
		Name:            p.Name,
		SKU:             p.SKU,
		SubmittedBy:     by,
	}
}

// MasterProductStatusChangedEvent is raised on every governance transition
type MasterProductStatusChangedEvent struct {
	shared.BaseDomainEvent
	From    ApprovalStatus `json:"from"`
	To      ApprovalStatus `json:"to"`
	Action  ReviewAction   `json:"action"`
	ActorID uuid.UUID      `json:"actor_id"`
}

// NewMasterProductStatusChangedEvent creates the event for a transition
func NewMasterProductStatusChangedEvent(p *MasterProduct, t Transition, actor uuid.UUID) *MasterProductStatusChangedEvent {
	return &MasterProductStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMasterProductStatusChanged, aggregateTypeMasterProduct, p.ID, p.SubmittingOrg()),
		From:            t.From,
		To:              t.To,
		Action:          t.Action,
		ActorID:         actor,
	}
}
