package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ReviewAuditRecord is one governance transition. Rows are only ever inserted.
type ReviewAuditRecord struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	MasterProductID uuid.UUID      `gorm:"type:uuid;not null;index"`
	ActorID         uuid.UUID      `gorm:"type:uuid;not null"`
	ActorOrgID      *uuid.UUID     `gorm:"type:uuid"`
	Action          ReviewAction   `gorm:"type:varchar(20);not null"`
	FromStatus      ApprovalStatus `gorm:"type:varchar(20);not null"`
	ToStatus        ApprovalStatus `gorm:"type:varchar(20);not null"`
	Note            string         `gorm:"type:text"`
	CreatedAt       time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ReviewAuditRecord) TableName() string {
	return "review_audit_records"
}

// NewReviewAuditRecord records a transition performed by actor
func NewReviewAuditRecord(productID, actorID uuid.UUID, actorOrg *uuid.UUID, t Transition, note string, at time.Time) *ReviewAuditRecord {
	return &ReviewAuditRecord{
		ID:              uuid.New(),
		MasterProductID: productID,
		ActorID:         actorID,
		ActorOrgID:      actorOrg,
		Action:          t.Action,
		FromStatus:      t.From,
		ToStatus:        t.To,
		Note:            note,
		CreatedAt:       at,
	}
}
