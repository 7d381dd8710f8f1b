package persistence

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMembershipRepository implements identity.MembershipRepository using GORM
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewGormMembershipRepository creates a new GormMembershipRepository
func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// Create adds a member to the caller's organization. A principal already holding a
// membership anywhere yields shared.ErrAlreadyExists.
func (r *GormMembershipRepository) Create(ctx context.Context, m *identity.Membership) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

// FindByPrincipal finds the membership of a principal in the caller's organization
func (r *GormMembershipRepository) FindByPrincipal(ctx context.Context, principalID uuid.UUID) (*identity.Membership, error) {
	var m identity.Membership
	if err := r.db.WithContext(ctx).Where("principal_id = ?", principalID).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// ListByOrganization lists the members of orgID; other organizations yield nothing
func (r *GormMembershipRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]identity.Membership, error) {
	var members []identity.Membership
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", orgID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// Save writes role and reporting line
func (r *GormMembershipRepository) Save(ctx context.Context, m *identity.Membership) error {
	result := r.db.WithContext(ctx).
		Model(&identity.Membership{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"role":                    m.Role,
			"reports_to_principal_id": m.ReportsToPrincipalID,
			"updated_at":              m.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// ManagerOf returns the manager of principalID for reporting-line validation
func (r *GormMembershipRepository) ManagerOf(ctx context.Context, principalID uuid.UUID) (*uuid.UUID, error) {
	m, err := r.FindByPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}
	return m.ReportsToPrincipalID, nil
}

var _ identity.MembershipRepository = (*GormMembershipRepository)(nil)
