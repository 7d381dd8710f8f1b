package handler

import (
	"context"
	"net/http"

	inventoryapp "github.com/bizgrid/backend/internal/application/inventory"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryService is the stock surface used by InventoryHandler
type InventoryService interface {
	RecordMovement(ctx context.Context, req inventoryapp.StockMovementRequest) (*inventoryapp.LedgerEntryResponse, error)
	RegisterSerials(ctx context.Context, req inventoryapp.RegisterSerialsRequest) (*inventoryapp.RegisterSerialsResponse, error)
	GetStockLevel(ctx context.Context, productID uuid.UUID) (*inventoryapp.StockLevelResponse, error)
	ListLedger(ctx context.Context, productID uuid.UUID, filter shared.Filter) (shared.Paginated[inventoryapp.LedgerEntryResponse], error)
}

// InventoryHandler serves stock movements, serial units and on-hand levels
type InventoryHandler struct {
	BaseHandler
	inventory InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventory InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

type ledgerQuery struct {
	Page     int `form:"page" binding:"min=0"`
	PageSize int `form:"page_size" binding:"min=0,max=100"`
}

// RecordMovement godoc
// @Summary      Record a manual stock movement
// @Tags         stock
// @Router       /stock/movements [post]
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	var req inventoryapp.StockMovementRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.inventory.RecordMovement(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// RegisterSerials adds serial units to stock
func (h *InventoryHandler) RegisterSerials(c *gin.Context) {
	var req inventoryapp.RegisterSerialsRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.inventory.RegisterSerials(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetStockLevel returns the on-hand quantity of a product
func (h *InventoryHandler) GetStockLevel(c *gin.Context) {
	id, ok := h.pathUUID(c, "productId")
	if !ok {
		return
	}
	level, err := h.inventory.GetStockLevel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// ListLedger returns a page of a product's ledger entries
func (h *InventoryHandler) ListLedger(c *gin.Context) {
	id, ok := h.pathUUID(c, "productId")
	if !ok {
		return
	}
	var query ledgerQuery
	if !bindQuery(c, &query) {
		return
	}
	page, err := h.inventory.ListLedger(c.Request.Context(), id, shared.Filter{Page: query.Page, PageSize: query.PageSize})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}
