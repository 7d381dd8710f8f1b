package handler

import (
	"context"

	identityapp "github.com/bizgrid/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrganizationService is the identity application surface used by IdentityHandler
type OrganizationService interface {
	Me(ctx context.Context) (*identityapp.PrincipalDTO, error)
	Signup(ctx context.Context, input identityapp.SignupInput) (*identityapp.OrganizationDTO, error)
	GetCurrent(ctx context.Context) (*identityapp.OrganizationDTO, error)
	Update(ctx context.Context, input identityapp.UpdateOrganizationInput) (*identityapp.OrganizationDTO, error)
	ListMembers(ctx context.Context) ([]identityapp.MemberDTO, error)
	AddMember(ctx context.Context, input identityapp.AddMemberInput) (*identityapp.MemberDTO, error)
	SetReportsTo(ctx context.Context, principalID uuid.UUID, input identityapp.SetReportsToInput) (*identityapp.MemberDTO, error)
}

// IdentityHandler serves the caller's identity, organization and members
type IdentityHandler struct {
	BaseHandler
	orgs OrganizationService
}

// NewIdentityHandler creates a new IdentityHandler
func NewIdentityHandler(orgs OrganizationService) *IdentityHandler {
	return &IdentityHandler{orgs: orgs}
}

// Me godoc
// @Summary      Current principal, organization and role
// @Tags         identity
// @Router       /me [get]
func (h *IdentityHandler) Me(c *gin.Context) {
	me, err := h.orgs.Me(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, me)
}

// Signup godoc
// @Summary      Register an organization owned by the caller
// @Tags         organizations
// @Router       /organizations [post]
func (h *IdentityHandler) Signup(c *gin.Context) {
	var req identityapp.SignupInput
	if !bindJSON(c, &req) {
		return
	}
	org, err := h.orgs.Signup(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, org)
}

// GetCurrent returns the caller's organization
func (h *IdentityHandler) GetCurrent(c *gin.Context) {
	org, err := h.orgs.GetCurrent(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, org)
}

// UpdateCurrent updates the caller's organization; owners only
func (h *IdentityHandler) UpdateCurrent(c *gin.Context) {
	var req identityapp.UpdateOrganizationInput
	if !bindJSON(c, &req) {
		return
	}
	org, err := h.orgs.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, org)
}

// ListMembers lists the members of the caller's organization
func (h *IdentityHandler) ListMembers(c *gin.Context) {
	members, err := h.orgs.ListMembers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, members)
}

// AddMember godoc
// @Summary      Add a principal to the caller's organization
// @Tags         organizations
// @Router       /organizations/members [post]
func (h *IdentityHandler) AddMember(c *gin.Context) {
	var req identityapp.AddMemberInput
	if !bindJSON(c, &req) {
		return
	}
	member, err := h.orgs.AddMember(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, member)
}

// SetReportsTo godoc
// @Summary      Set or clear a member's manager
// @Tags         organizations
// @Router       /organizations/members/{principalId}/reports-to [put]
func (h *IdentityHandler) SetReportsTo(c *gin.Context) {
	principalID, ok := h.pathUUID(c, "principalId")
	if !ok {
		return
	}
	var req identityapp.SetReportsToInput
	if !bindJSON(c, &req) {
		return
	}
	member, err := h.orgs.SetReportsTo(c.Request.Context(), principalID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}
