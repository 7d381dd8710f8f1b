package handler

import (
	"context"
	"net/http"

	partnerapp "github.com/bizgrid/backend/internal/application/partner"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CustomerService is the partner application surface used by CustomerHandler
type CustomerService interface {
	UpsertMasterCustomer(ctx context.Context, req partnerapp.UpsertCustomerRequest) (*partnerapp.UpsertCustomerResponse, error)
	GetLinked(ctx context.Context, linkID uuid.UUID) (*partnerapp.LinkedCustomerResponse, error)
	ListLinked(ctx context.Context, filter partnerapp.CustomerListFilter) (shared.Paginated[partnerapp.LinkedCustomerResponse], error)
}

// CustomerHandler serves deduplicated customers linked to the caller's organization
type CustomerHandler struct {
	BaseHandler
	customers CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customers CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// Upsert godoc
// @Summary      Find or create the master customer and link it to the caller's organization
// @Description  Responds 201 when a master customer was created and 200 when an existing one was reused
// @Tags         customers
// @Router       /customers/upsert [post]
func (h *CustomerHandler) Upsert(c *gin.Context) {
	var req partnerapp.UpsertCustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.customers.UpsertMasterCustomer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}

// Get returns one linked customer
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.customers.GetLinked(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List customers linked to the caller's organization
// @Tags         customers
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var filter partnerapp.CustomerListFilter
	if !bindQuery(c, &filter) {
		return
	}
	page, err := h.customers.ListLinked(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}
