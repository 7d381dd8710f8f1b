package persistence

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrganizationRepository implements identity.OrganizationRepository using GORM.
// Reads return only the caller's organization (all of them for platform admins).
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// FindByID finds an organization by its ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	var org identity.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		return nil, translate(err)
	}
	return &org, nil
}

// FindBySlug finds an organization by its slug
func (r *GormOrganizationRepository) FindBySlug(ctx context.Context, slug string) (*identity.Organization, error) {
	var org identity.Organization
	if err := r.db.WithContext(ctx).Where("slug = ?", identity.Slugify(slug)).First(&org).Error; err != nil {
		return nil, translate(err)
	}
	return &org, nil
}

// SaveWithLock updates the organization if its stored version is one behind
func (r *GormOrganizationRepository) SaveWithLock(ctx context.Context, org *identity.Organization) error {
	result := r.db.WithContext(ctx).
		Model(&identity.Organization{}).
		Where("id = ? AND version = ?", org.ID, org.Version-1).
		Updates(map[string]any{
			"name":                     org.Name,
			"home_jurisdiction":        org.HomeJurisdiction,
			"tax_registration_enabled": org.TaxRegistrationEnabled,
			"status":                   org.Status,
			"version":                  org.Version,
			"updated_at":               org.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrStaleState
	}
	return nil
}

var _ identity.OrganizationRepository = (*GormOrganizationRepository)(nil)
