package identity

import (
	"context"
	"errors"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrganizationService handles signup, members and reporting lines
type OrganizationService struct {
	orgRepo    identity.OrganizationRepository
	memberRepo identity.MembershipRepository
	registrar  identity.OrganizationRegistrar
	maxDepth   int
	logger     *zap.Logger
}

// NewOrganizationService creates a new organization service. maxReportingDepth bounds
// the reporting chain walk; zero uses identity.DefaultMaxReportingDepth.
func NewOrganizationService(
	orgRepo identity.OrganizationRepository,
	memberRepo identity.MembershipRepository,
	registrar identity.OrganizationRegistrar,
	maxReportingDepth int,
	logger *zap.Logger,
) *OrganizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrganizationService{
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
		registrar:  registrar,
		maxDepth:   maxReportingDepth,
		logger:     logger,
	}
}

// CurrentPrincipalOrgID returns the caller's organization, uuid.Nil without membership
func CurrentPrincipalOrgID(ctx context.Context) (uuid.UUID, error) {
	p, err := access.RequirePrincipal(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return p.OrgID, nil
}

// CurrentPrincipalRole returns the caller's effective role, access.RoleNone without one
func CurrentPrincipalRole(ctx context.Context) (access.Role, error) {
	p, err := access.RequirePrincipal(ctx)
	if err != nil {
		return access.RoleNone, err
	}
	return p.EffectiveRole(), nil
}

// Me describes the acting principal
func (s *OrganizationService) Me(ctx context.Context) (*PrincipalDTO, error) {
	p, err := access.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	dto := ToPrincipalDTO(p)
	return &dto, nil
}

// Signup creates an organization owned by the calling principal
func (s *OrganizationService) Signup(ctx context.Context, input SignupInput) (*OrganizationDTO, error) {
	p, err := access.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if p.HasTenant() {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Principal already belongs to an organization")
	}

	org, err := identity.NewOrganization(input.Name, input.Slug, input.HomeJurisdiction)
	if err != nil {
		return nil, err
	}
	if input.TaxRegistrationEnabled {
		org.TaxRegistrationEnabled = true
	}
	owner, err := identity.NewMembership(org.ID, p.ID, access.RoleOwner)
	if err != nil {
		return nil, err
	}
	if err := s.registrar.Register(ctx, org, owner); err != nil {
		return nil, err
	}

	s.logger.Info("organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("slug", org.Slug),
		zap.String("owner", p.ID.String()),
	)
	dto := ToOrganizationDTO(org)
	return &dto, nil
}

// GetCurrent returns the caller's organization
func (s *OrganizationService) GetCurrent(ctx context.Context) (*OrganizationDTO, error) {
	p, err := access.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindByID(ctx, p.OrgID)
	if err != nil {
		return nil, err
	}
	dto := ToOrganizationDTO(org)
	return &dto, nil
}

// Update changes settings of the caller's organization. Only the owner may do this.
func (s *OrganizationService) Update(ctx context.Context, input UpdateOrganizationInput) (*OrganizationDTO, error) {
	p, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindByID(ctx, p.OrgID)
	if err != nil {
		return nil, err
	}
	if org.Version != input.Version {
		return nil, shared.ErrStaleState
	}

	loaded := org.Version
	if input.Name != nil {
		if err := org.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.HomeJurisdiction != nil {
		if err := org.SetHomeJurisdiction(*input.HomeJurisdiction); err != nil {
			return nil, err
		}
	}
	if input.TaxRegistrationEnabled != nil {
		org.EnableTaxRegistration(*input.TaxRegistrationEnabled)
	}
	if org.Version == loaded {
		dto := ToOrganizationDTO(org)
		return &dto, nil
	}
	// one save is one version step however many fields changed
	org.Version = loaded + 1

	if err := s.orgRepo.SaveWithLock(ctx, org); err != nil {
		return nil, err
	}
	dto := ToOrganizationDTO(org)
	return &dto, nil
}

// ListMembers lists the members of the caller's organization
func (s *OrganizationService) ListMembers(ctx context.Context) ([]MemberDTO, error) {
	p, err := access.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListByOrganization(ctx, p.OrgID)
	if err != nil {
		return nil, err
	}
	dtos := make([]MemberDTO, len(members))
	for i := range members {
		dtos[i] = ToMemberDTO(&members[i])
	}
	return dtos, nil
}

// AddMember adds a principal to the caller's organization. A principal belongs to at
// most one organization, so one that is already a member anywhere is rejected.
func (s *OrganizationService) AddMember(ctx context.Context, input AddMemberInput) (*MemberDTO, error) {
	p, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	m, err := identity.NewMembership(p.OrgID, input.PrincipalID, access.Role(input.Role))
	if err != nil {
		return nil, err
	}
	if input.ReportsTo != nil {
		if err := s.validateManager(ctx, input.PrincipalID, *input.ReportsTo); err != nil {
			return nil, err
		}
		m.SetReportsTo(input.ReportsTo)
	}
	if err := s.memberRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("member added",
		zap.String("org_id", p.OrgID.String()),
		zap.String("principal_id", m.PrincipalID.String()),
		zap.String("role", string(m.Role)),
	)
	dto := ToMemberDTO(m)
	return &dto, nil
}

// SetReportsTo sets or clears the manager of a member, rejecting cycles
func (s *OrganizationService) SetReportsTo(ctx context.Context, principalID uuid.UUID, input SetReportsToInput) (*MemberDTO, error) {
	if _, err := s.owner(ctx); err != nil {
		return nil, err
	}
	m, err := s.memberRepo.FindByPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if input.ManagerID != nil {
		if err := s.validateManager(ctx, principalID, *input.ManagerID); err != nil {
			return nil, err
		}
	}
	m.SetReportsTo(input.ManagerID)
	if err := s.memberRepo.Save(ctx, m); err != nil {
		return nil, err
	}
	dto := ToMemberDTO(m)
	return &dto, nil
}

func (s *OrganizationService) owner(ctx context.Context) (access.Principal, error) {
	p, err := access.RequireTenant(ctx)
	if err != nil {
		return p, err
	}
	resource := access.Resource{Kind: access.KindOrganization, OrgID: p.OrgID}
	return p, access.Authorize(p, access.ActionWrite, resource).Err()
}

// validateManager requires the manager to be a member of the same organization and the
// new line to leave the chain acyclic. Membership reads are tenant scoped, so a manager
// from another organization is not found.
func (s *OrganizationService) validateManager(ctx context.Context, subject, manager uuid.UUID) error {
	if _, err := s.memberRepo.FindByPrincipal(ctx, manager); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError(shared.CodeInvalidInput, "Manager is not a member of this organization")
		}
		return err
	}
	return identity.ValidateReportingLine(ctx, subject, manager, s.maxDepth, s.managerOf)
}

func (s *OrganizationService) managerOf(ctx context.Context, principalID uuid.UUID) (*uuid.UUID, error) {
	m, err := s.memberRepo.FindByPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}
	return m.ReportsToPrincipalID, nil
}
