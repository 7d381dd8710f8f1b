package handler

import (
	"context"
	"net/http"

	catalogapp "github.com/bizgrid/backend/internal/application/catalog"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GovernanceService is the master product governance surface used by MasterProductHandler
type GovernanceService interface {
	Submit(ctx context.Context, req catalogapp.SubmitMasterProductRequest) (*catalogapp.MasterProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.MasterProductResponse, error)
	List(ctx context.Context, filter catalogapp.MasterProductListFilter) (shared.Paginated[catalogapp.MasterProductResponse], error)
	ListPending(ctx context.Context, filter catalogapp.MasterProductListFilter) (shared.Paginated[catalogapp.MasterProductResponse], error)
	GetTaxRate(ctx context.Context, id uuid.UUID) (*catalogapp.TaxRateResponse, error)
	Review(ctx context.Context, id uuid.UUID, req catalogapp.ReviewRequest) (*catalogapp.MasterProductResponse, error)
	Resubmit(ctx context.Context, id uuid.UUID, req catalogapp.SubmitMasterProductRequest) (*catalogapp.MasterProductResponse, error)
	AuditTrail(ctx context.Context, id uuid.UUID) ([]catalogapp.ReviewAuditResponse, error)
}

// MasterProductHandler serves master product suggestions and their review workflow
type MasterProductHandler struct {
	BaseHandler
	governance GovernanceService
}

// NewMasterProductHandler creates a new MasterProductHandler
func NewMasterProductHandler(governance GovernanceService) *MasterProductHandler {
	return &MasterProductHandler{governance: governance}
}

// Submit godoc
// @Summary      Suggest a new master product
// @Tags         master-products
// @Router       /master-products/suggestions [post]
func (h *MasterProductHandler) Submit(c *gin.Context) {
	var req catalogapp.SubmitMasterProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.governance.Submit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Get returns a master product visible to the caller
func (h *MasterProductHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.governance.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List returns a page of master products visible to the caller
func (h *MasterProductHandler) List(c *gin.Context) {
	h.list(c, h.governance.List)
}

// ListPending godoc
// @Summary      Master products awaiting review
// @Tags         governance
// @Router       /governance/pending [get]
func (h *MasterProductHandler) ListPending(c *gin.Context) {
	h.list(c, h.governance.ListPending)
}

func (h *MasterProductHandler) list(
	c *gin.Context,
	fetch func(context.Context, catalogapp.MasterProductListFilter) (shared.Paginated[catalogapp.MasterProductResponse], error),
) {
	var filter catalogapp.MasterProductListFilter
	if !bindQuery(c, &filter) {
		return
	}
	page, err := fetch(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// GetTaxRate resolves the effective tax rate of a master product
func (h *MasterProductHandler) GetTaxRate(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	rate, err := h.governance.GetTaxRate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// Review godoc
// @Summary      Approve, reject or auto-pass a master product
// @Tags         governance
// @Router       /master-products/{id}/review [post]
func (h *MasterProductHandler) Review(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.governance.Review(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Resubmit sends a rejected master product back to review with corrected fields
func (h *MasterProductHandler) Resubmit(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.SubmitMasterProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.governance.Resubmit(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// AuditTrail returns the review history of a master product, oldest first
func (h *MasterProductHandler) AuditTrail(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	records, err := h.governance.AuditTrail(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}
