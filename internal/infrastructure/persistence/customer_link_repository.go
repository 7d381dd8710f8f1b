package persistence

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/partner"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerLinkRepository implements partner.CustomerLinkRepository using GORM
type GormCustomerLinkRepository struct {
	db *gorm.DB
}

// NewGormCustomerLinkRepository creates a new GormCustomerLinkRepository
func NewGormCustomerLinkRepository(db *gorm.DB) *GormCustomerLinkRepository {
	return &GormCustomerLinkRepository{db: db}
}

// EnsureLink inserts the link with ON CONFLICT DO NOTHING and returns the stored row,
// so repeated or concurrent calls converge on one link.
func (r *GormCustomerLinkRepository) EnsureLink(ctx context.Context, link *partner.CustomerLink) (*partner.CustomerLink, error) {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "master_customer_id"}},
			DoNothing: true,
		}).
		Create(link).Error; err != nil {
		return nil, translate(err)
	}
	return r.FindByMaster(ctx, link.MasterCustomerID)
}

// FindByID finds a link of the caller's organization
func (r *GormCustomerLinkRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.CustomerLink, error) {
	var link partner.CustomerLink
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

// FindByMaster finds the caller's link to a master customer
func (r *GormCustomerLinkRepository) FindByMaster(ctx context.Context, masterID uuid.UUID) (*partner.CustomerLink, error) {
	var link partner.CustomerLink
	if err := r.db.WithContext(ctx).Where("master_customer_id = ?", masterID).First(&link).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

// List lists the caller's links joined with their master identities
func (r *GormCustomerLinkRepository) List(ctx context.Context, filter shared.Filter) ([]partner.LinkedCustomer, int64, error) {
	query := r.db.WithContext(ctx).Model(&partner.CustomerLink{})
	if filter.Search != "" {
		query = query.Where("LOWER(alias) LIKE ? ESCAPE '\\'", likePattern(filter.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var links []partner.CustomerLink
	if err := paginate(query, filter, customerLinkSort).Find(&links).Error; err != nil {
		return nil, 0, err
	}
	if len(links) == 0 {
		return []partner.LinkedCustomer{}, total, nil
	}

	masterIDs := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		masterIDs = append(masterIDs, l.MasterCustomerID)
	}
	var masters []partner.MasterCustomer
	if err := r.db.WithContext(ctx).Where("id IN ?", masterIDs).Find(&masters).Error; err != nil {
		return nil, 0, err
	}
	byID := make(map[uuid.UUID]partner.MasterCustomer, len(masters))
	for _, m := range masters {
		byID[m.ID] = m
	}

	out := make([]partner.LinkedCustomer, 0, len(links))
	for _, l := range links {
		out = append(out, partner.LinkedCustomer{Link: l, Master: byID[l.MasterCustomerID]})
	}
	return out, total, nil
}

var _ partner.CustomerLinkRepository = (*GormCustomerLinkRepository)(nil)
