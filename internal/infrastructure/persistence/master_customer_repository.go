package persistence

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/partner"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMasterCustomerRepository reads master customers linked to the caller's organization
type GormMasterCustomerRepository struct {
	db *gorm.DB
}

// NewGormMasterCustomerRepository creates a new GormMasterCustomerRepository
func NewGormMasterCustomerRepository(db *gorm.DB) *GormMasterCustomerRepository {
	return &GormMasterCustomerRepository{db: db}
}

// FindByID finds a master customer; unlinked customers are not found
func (r *GormMasterCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.MasterCustomer, error) {
	var c partner.MasterCustomer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

var _ partner.MasterCustomerRepository = (*GormMasterCustomerRepository)(nil)
