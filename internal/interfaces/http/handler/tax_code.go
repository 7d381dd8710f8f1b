package handler

import (
	"context"

	catalogapp "github.com/bizgrid/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// TaxCodeService is the tax code administration surface used by TaxCodeHandler
type TaxCodeService interface {
	Save(ctx context.Context, code string, req catalogapp.SaveTaxCodeRequest) (*catalogapp.TaxCodeResponse, error)
	List(ctx context.Context, activeOnly bool) ([]catalogapp.TaxCodeResponse, error)
}

// TaxCodeHandler serves the global tax code table
type TaxCodeHandler struct {
	BaseHandler
	codes TaxCodeService
}

// NewTaxCodeHandler creates a new TaxCodeHandler
func NewTaxCodeHandler(codes TaxCodeService) *TaxCodeHandler {
	return &TaxCodeHandler{codes: codes}
}

type taxCodeListQuery struct {
	ActiveOnly bool `form:"active_only"`
}

// Save godoc
// @Summary      Create or replace a tax code
// @Description  Platform admins only
// @Tags         tax-codes
// @Router       /tax-codes/{code} [put]
func (h *TaxCodeHandler) Save(c *gin.Context) {
	var req catalogapp.SaveTaxCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	code, err := h.codes.Save(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, code)
}

// List returns tax codes, optionally only the active ones
func (h *TaxCodeHandler) List(c *gin.Context) {
	var query taxCodeListQuery
	if !bindQuery(c, &query) {
		return
	}
	codes, err := h.codes.List(c.Request.Context(), query.ActiveOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, codes)
}
