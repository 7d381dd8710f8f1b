package catalog

import (
	"context"
	"errors"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TaxCodeService reads tax codes for every tenant and lets platform admins maintain them
type TaxCodeService struct {
	codes catalog.TaxCodeRepository
	admin catalog.TaxCodeAdmin
	log   *zap.Logger
}

// NewTaxCodeService creates a new TaxCodeService
func NewTaxCodeService(codes catalog.TaxCodeRepository, admin catalog.TaxCodeAdmin, log *zap.Logger) *TaxCodeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaxCodeService{codes: codes, admin: admin, log: log}
}

// Save creates or replaces a tax code
func (s *TaxCodeService) Save(ctx context.Context, code string, req SaveTaxCodeRequest) (*TaxCodeResponse, error) {
	p, err := access.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ActionWrite, access.Resource{Kind: access.KindTaxCode}).Err(); err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	tc, err := s.codes.FindByCode(ctx, code)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		tc, err = catalog.NewTaxCode(code, req.Rate, req.Description)
		if err != nil {
			return nil, err
		}
		tc.Active = active
	case err != nil:
		return nil, err
	default:
		if err := tc.Update(req.Rate, req.Description, active); err != nil {
			return nil, err
		}
	}

	if err := s.admin.Save(ctx, tc); err != nil {
		return nil, err
	}
	s.log.Info("tax code saved",
		zap.String("code", tc.Code),
		zap.String("rate", tc.Rate.String()),
		zap.Bool("active", tc.Active))

	resp := ToTaxCodeResponse(tc)
	return &resp, nil
}

// List returns tax codes ordered by code
func (s *TaxCodeService) List(ctx context.Context, activeOnly bool) ([]TaxCodeResponse, error) {
	codes, err := s.codes.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]TaxCodeResponse, len(codes))
	for i := range codes {
		out[i] = ToTaxCodeResponse(&codes[i])
	}
	return out, nil
}
