package access

import (
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ResourceKind names the kind of row being accessed
type ResourceKind string

const (
	KindTenantRow      ResourceKind = "tenant_row"
	KindOrganization   ResourceKind = "organization"
	KindMasterProduct  ResourceKind = "master_product"
	KindMasterCustomer ResourceKind = "master_customer"
	KindTaxCode        ResourceKind = "tax_code"
	KindReviewAudit    ResourceKind = "review_audit"
)

// Action is what the principal wants to do with the resource
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionReview Action = "review"
)

// Resource describes a row as pure data
type Resource struct {
	Kind ResourceKind
	// OrgID owns tenant rows and organizations; for governance objects it is the submitting org.
	OrgID uuid.UUID
	// Published marks a master product that is approved or auto-passed.
	Published bool
	// Linked marks a master customer that the caller's organization has linked.
	Linked bool
}

// TenantRow describes a row owned by orgID
func TenantRow(orgID uuid.UUID) Resource {
	return Resource{Kind: KindTenantRow, OrgID: orgID}
}

// Decision is the outcome of Authorize
type Decision int

const (
	Allow Decision = iota
	// Hidden means the row is treated as absent for this principal.
	Hidden
	Denied
	NoTenant
)

// Err converts the decision into the error reported to callers
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case Hidden:
		return shared.ErrNotFound
	case NoTenant:
		return shared.ErrNoTenant
	default:
		return shared.ErrAuthorizationDenied
	}
}

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Hidden:
		return "hidden"
	case NoTenant:
		return "no_tenant"
	default:
		return "denied"
	}
}

// Authorize is the single access predicate used by every data path
func Authorize(p Principal, action Action, r Resource) Decision {
	switch r.Kind {
	case KindTenantRow, KindOrganization:
		return authorizeTenantRow(p, action, r)
	case KindMasterProduct:
		return authorizeMasterProduct(p, action, r)
	case KindMasterCustomer:
		return authorizeMasterCustomer(p, action, r)
	case KindTaxCode:
		return authorizeTaxCode(p, action)
	case KindReviewAudit:
		if action != ActionRead {
			return Denied
		}
		return authorizeMasterProduct(p, ActionRead, Resource{Kind: KindMasterProduct, OrgID: r.OrgID})
	}
	return Denied
}

func authorizeTenantRow(p Principal, action Action, r Resource) Decision {
	if !p.HasTenant() {
		return NoTenant
	}
	if r.OrgID != p.OrgID {
		return Hidden
	}
	switch action {
	case ActionRead:
		return Allow
	case ActionWrite:
		if r.Kind == KindOrganization {
			if p.Role.CanManageOrganization() {
				return Allow
			}
			return Denied
		}
		if p.Role.CanWriteTenantRows() {
			return Allow
		}
	}
	return Denied
}

func authorizeMasterProduct(p Principal, action Action, r Resource) Decision {
	if !p.HasTenant() && !p.PlatformAdmin {
		return NoTenant
	}
	visible := p.IsReviewer() || r.Published || (p.HasTenant() && r.OrgID == p.OrgID)

	switch action {
	case ActionRead:
		if visible {
			return Allow
		}
		return Hidden
	case ActionReview:
		if p.IsReviewer() {
			return Allow
		}
		return Denied
	case ActionWrite:
		if !visible {
			return Hidden
		}
		if p.HasTenant() && r.OrgID == p.OrgID && p.Role.CanWriteTenantRows() {
			return Allow
		}
		return Denied
	}
	return Denied
}

func authorizeMasterCustomer(p Principal, action Action, r Resource) Decision {
	if !p.HasTenant() && !p.PlatformAdmin {
		return NoTenant
	}
	switch action {
	case ActionRead:
		if p.IsReviewer() || r.Linked {
			return Allow
		}
		return Hidden
	case ActionWrite:
		if p.HasTenant() && p.Role.CanWriteTenantRows() {
			return Allow
		}
	}
	return Denied
}

func authorizeTaxCode(p Principal, action Action) Decision {
	if action == ActionRead {
		if p.HasTenant() || p.PlatformAdmin {
			return Allow
		}
		return NoTenant
	}
	if p.PlatformAdmin {
		return Allow
	}
	return Denied
}

// CanSeeRejectionNote reports whether the principal may read a reviewer's note on a
// submission made by submittingOrg.
func CanSeeRejectionNote(p Principal, submittingOrg uuid.UUID) bool {
	return p.IsReviewer() || (p.HasTenant() && p.OrgID == submittingOrg)
}

// MasterScope is the row filter applied to master tables for a principal.
// Unrestricted principals see every row; otherwise rows are limited to those
// published or owned/linked by OrgID.
type MasterScope struct {
	Unrestricted bool
	OrgID        uuid.UUID
}

// MasterReadScope resolves the master-table row filter for p
func MasterReadScope(p Principal) (MasterScope, error) {
	if p.IsReviewer() {
		return MasterScope{Unrestricted: true}, nil
	}
	if !p.HasTenant() {
		return MasterScope{}, shared.ErrNoTenant
	}
	return MasterScope{OrgID: p.OrgID}, nil
}
