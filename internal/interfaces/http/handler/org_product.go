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

// OrgProductService is the catalog application surface used by OrgProductHandler
type OrgProductService interface {
	Create(ctx context.Context, req catalogapp.CreateOrgProductRequest) (*catalogapp.OrgProductResponse, error)
	AutoLink(ctx context.Context, id uuid.UUID) (*catalogapp.AutoLinkResponse, error)
	Link(ctx context.Context, id uuid.UUID, req catalogapp.LinkOrgProductRequest) (*catalogapp.OrgProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.OrgProductResponse, error)
	List(ctx context.Context, filter catalogapp.OrgProductListFilter) (shared.Paginated[catalogapp.OrgProductResponse], error)
}

// OrgProductHandler serves the caller's organization products
type OrgProductHandler struct {
	BaseHandler
	products OrgProductService
}

// NewOrgProductHandler creates a new OrgProductHandler
func NewOrgProductHandler(products OrgProductService) *OrgProductHandler {
	return &OrgProductHandler{products: products}
}

// Create godoc
// @Summary      Create an organization product
// @Description  Products with a barcode are linked to a published master product or submitted as a new one
// @Tags         org-products
// @Router       /org-products [post]
func (h *OrgProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateOrgProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Get returns one organization product
func (h *OrgProductHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List returns a page of the caller's organization products
func (h *OrgProductHandler) List(c *gin.Context) {
	var filter catalogapp.OrgProductListFilter
	if !bindQuery(c, &filter) {
		return
	}
	page, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// AutoLink godoc
// @Summary      Link a product to a master product, submitting one when none exists
// @Tags         org-products
// @Router       /org-products/{id}/auto-link [post]
func (h *OrgProductHandler) AutoLink(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.products.AutoLink(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Link attaches a product to an existing master product
func (h *OrgProductHandler) Link(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.LinkOrgProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.products.Link(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
