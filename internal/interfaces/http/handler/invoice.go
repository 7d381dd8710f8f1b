package handler

import (
	"context"
	"net/http"

	tradeapp "github.com/bizgrid/backend/internal/application/trade"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/domain/trade"
	"github.com/bizgrid/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceService is the invoice surface used by InvoiceHandler
type InvoiceService interface {
	ValidateInvoiceItems(ctx context.Context, req tradeapp.ValidateItemsRequest) (*trade.ValidationResult, error)
	CreateDraft(ctx context.Context, req tradeapp.SaveDraftRequest) (*tradeapp.InvoiceResponse, error)
	SaveDraft(ctx context.Context, id uuid.UUID, req tradeapp.SaveDraftRequest) (*tradeapp.InvoiceResponse, error)
	Finalize(ctx context.Context, id uuid.UUID) (*tradeapp.FinalizeResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, req tradeapp.CancelInvoiceRequest) (*tradeapp.InvoiceResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*tradeapp.InvoiceResponse, error)
	List(ctx context.Context, filter tradeapp.InvoiceListFilter) (shared.Paginated[tradeapp.InvoiceResponse], error)
}

// InvoiceHandler serves invoice validation and the invoice lifecycle
type InvoiceHandler struct {
	BaseHandler
	invoices InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Validate godoc
// @Summary      Validate invoice lines and compute the tax split
// @Description  Line problems are returned as issues in the result, not as an error response
// @Tags         invoices
// @Router       /invoices/validate [post]
func (h *InvoiceHandler) Validate(c *gin.Context) {
	var req tradeapp.ValidateItemsRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.invoices.ValidateInvoiceItems(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Create starts a draft invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req tradeapp.SaveDraftRequest
	if !bindJSON(c, &req) {
		return
	}
	inv, err := h.invoices.CreateDraft(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// SaveDraft godoc
// @Summary      Autosave a draft invoice
// @Description  Fails with STALE_STATE when the version is not the current one
// @Tags         invoices
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) SaveDraft(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.SaveDraftRequest
	if !bindJSON(c, &req) {
		return
	}
	inv, err := h.invoices.SaveDraft(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Finalize godoc
// @Summary      Finalize a draft invoice
// @Description  When lines fail validation the invoice stays a draft and the issues are returned with a nil invoice
// @Tags         invoices
// @Router       /invoices/{id}/finalize [post]
func (h *InvoiceHandler) Finalize(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.invoices.Finalize(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel reverses a finalized invoice, or discards a draft
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelInvoiceRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	inv, err := h.invoices.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Get returns one invoice with its lines
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// List returns a page of the caller's invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter tradeapp.InvoiceListFilter
	if !bindQuery(c, &filter) {
		return
	}
	page, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}
