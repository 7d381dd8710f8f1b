package partner

import (
	"strings"
	"time"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerLink is an organization's handle on a master customer. At most one link
// exists per (organization, master customer).
type CustomerLink struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_customer_link_tenant_master,priority:1"`
	MasterCustomerID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_customer_link_tenant_master,priority:2"`
	Alias            string     `gorm:"type:varchar(200)"`
	CreatedBy        *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerLink) TableName() string {
	return "customer_links"
}

// NewCustomerLink creates a link for orgID
func NewCustomerLink(orgID, masterID, createdBy uuid.UUID, alias string) (*CustomerLink, error) {
	if orgID == uuid.Nil || masterID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Organization and master customer are required")
	}
	alias = strings.TrimSpace(alias)
	if shared.RuneLen(alias) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Alias cannot exceed 200 characters")
	}
	now := time.Now()
	return &CustomerLink{
		ID:               uuid.New(),
		TenantID:         orgID,
		MasterCustomerID: masterID,
		Alias:            alias,
		CreatedBy:        &createdBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Rename changes the organization-local display name
func (l *CustomerLink) Rename(alias string) error {
	alias = strings.TrimSpace(alias)
	if shared.RuneLen(alias) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Alias cannot exceed 200 characters")
	}
	l.Alias = alias
	l.UpdatedAt = time.Now()
	return nil
}
