package access

import (
	"context"
	"math/rand"
	"testing"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(org uuid.UUID, role Role) Principal {
	return Principal{ID: uuid.New(), OrgID: org, Role: role}
}

func TestAuthorize_TenantRow(t *testing.T) {
	orgA := uuid.New()
	orgB := uuid.New()

	tests := []struct {
		name      string
		principal Principal
		action    Action
		rowOrg    uuid.UUID
		want      Decision
	}{
		{"owner reads own row", member(orgA, RoleOwner), ActionRead, orgA, Allow},
		{"staff writes own row", member(orgA, RoleStaff), ActionWrite, orgA, Allow},
		{"reviewer reads own row", member(orgA, RoleReadOnlyReviewer), ActionRead, orgA, Allow},
		{"reviewer cannot write", member(orgA, RoleReadOnlyReviewer), ActionWrite, orgA, Denied},
		{"other tenant is hidden on read", member(orgA, RoleOwner), ActionRead, orgB, Hidden},
		{"other tenant is hidden on write", member(orgA, RoleOwner), ActionWrite, orgB, Hidden},
		{"no membership", Principal{ID: uuid.New()}, ActionRead, orgA, NoTenant},
		{"platform admin without membership", Principal{ID: uuid.New(), PlatformAdmin: true}, ActionRead, orgA, NoTenant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.principal, tt.action, TenantRow(tt.rowOrg)))
		})
	}
}

func TestAuthorize_OrganizationWriteRequiresOwner(t *testing.T) {
	org := uuid.New()
	res := Resource{Kind: KindOrganization, OrgID: org}

	assert.Equal(t, Allow, Authorize(member(org, RoleOwner), ActionWrite, res))
	assert.Equal(t, Denied, Authorize(member(org, RoleBranchManager), ActionWrite, res))
	assert.Equal(t, Allow, Authorize(member(org, RoleStaff), ActionRead, res))
}

func TestAuthorize_CrossTenantRowsNeverVisible(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	orgs := make([]uuid.UUID, 8)
	for i := range orgs {
		orgs[i] = uuid.New()
	}

	for i := 0; i < 1000; i++ {
		callerOrg := orgs[rng.Intn(len(orgs))]
		rowOrg := orgs[rng.Intn(len(orgs))]
		role := MembershipRoles[rng.Intn(len(MembershipRoles))]
		action := []Action{ActionRead, ActionWrite}[rng.Intn(2)]

		d := Authorize(member(callerOrg, role), action, TenantRow(rowOrg))
		if callerOrg != rowOrg {
			require.Equal(t, Hidden, d, "caller %s row %s", callerOrg, rowOrg)
		}
	}
}

func TestAuthorize_MasterProductVisibility(t *testing.T) {
	submitter := uuid.New()
	other := uuid.New()
	pending := Resource{Kind: KindMasterProduct, OrgID: submitter}
	published := Resource{Kind: KindMasterProduct, OrgID: submitter, Published: true}

	t.Run("submitting org sees its pending submission", func(t *testing.T) {
		assert.Equal(t, Allow, Authorize(member(submitter, RoleStaff), ActionRead, pending))
	})
	t.Run("other org cannot see pending submission", func(t *testing.T) {
		assert.Equal(t, Hidden, Authorize(member(other, RoleOwner), ActionRead, pending))
	})
	t.Run("everyone sees published entries", func(t *testing.T) {
		assert.Equal(t, Allow, Authorize(member(other, RoleStaff), ActionRead, published))
	})
	t.Run("reviewer sees every submission", func(t *testing.T) {
		assert.Equal(t, Allow, Authorize(member(other, RoleReadOnlyReviewer), ActionRead, pending))
		assert.Equal(t, Allow, Authorize(Principal{ID: uuid.New(), PlatformAdmin: true}, ActionRead, pending))
	})
	t.Run("review needs reviewer role", func(t *testing.T) {
		assert.Equal(t, Denied, Authorize(member(submitter, RoleOwner), ActionReview, pending))
		assert.Equal(t, Allow, Authorize(member(other, RoleReadOnlyReviewer), ActionReview, pending))
	})
	t.Run("only submitting org amends", func(t *testing.T) {
		assert.Equal(t, Allow, Authorize(member(submitter, RoleStaff), ActionWrite, pending))
		assert.Equal(t, Hidden, Authorize(member(other, RoleStaff), ActionWrite, pending))
		assert.Equal(t, Denied, Authorize(member(other, RoleStaff), ActionWrite, published))
	})
	t.Run("no membership", func(t *testing.T) {
		assert.Equal(t, NoTenant, Authorize(Principal{ID: uuid.New()}, ActionRead, published))
	})
}

func TestAuthorize_MasterCustomer(t *testing.T) {
	org := uuid.New()
	assert.Equal(t, Allow, Authorize(member(org, RoleStaff), ActionRead, Resource{Kind: KindMasterCustomer, Linked: true}))
	assert.Equal(t, Hidden, Authorize(member(org, RoleStaff), ActionRead, Resource{Kind: KindMasterCustomer}))
	assert.Equal(t, Allow, Authorize(member(org, RoleStaff), ActionWrite, Resource{Kind: KindMasterCustomer}))
	assert.Equal(t, Denied, Authorize(member(org, RoleReadOnlyReviewer), ActionWrite, Resource{Kind: KindMasterCustomer}))
}

func TestAuthorize_TaxCode(t *testing.T) {
	org := uuid.New()
	admin := Principal{ID: uuid.New(), PlatformAdmin: true}
	res := Resource{Kind: KindTaxCode}

	assert.Equal(t, Allow, Authorize(member(org, RoleStaff), ActionRead, res))
	assert.Equal(t, Denied, Authorize(member(org, RoleOwner), ActionWrite, res))
	assert.Equal(t, Allow, Authorize(admin, ActionWrite, res))
	assert.Equal(t, NoTenant, Authorize(Principal{ID: uuid.New()}, ActionRead, res))
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, Allow.Err())
	assert.ErrorIs(t, Hidden.Err(), shared.ErrNotFound)
	assert.ErrorIs(t, Denied.Err(), shared.ErrAuthorizationDenied)
	assert.ErrorIs(t, NoTenant.Err(), shared.ErrNoTenant)
	assert.NotErrorIs(t, NoTenant.Err(), shared.ErrAuthorizationDenied)
}

func TestMasterReadScope(t *testing.T) {
	org := uuid.New()

	scope, err := MasterReadScope(member(org, RoleStaff))
	require.NoError(t, err)
	assert.False(t, scope.Unrestricted)
	assert.Equal(t, org, scope.OrgID)

	scope, err = MasterReadScope(member(org, RoleReadOnlyReviewer))
	require.NoError(t, err)
	assert.True(t, scope.Unrestricted)

	_, err = MasterReadScope(Principal{ID: uuid.New()})
	assert.ErrorIs(t, err, shared.ErrNoTenant)
}

func TestCanSeeRejectionNote(t *testing.T) {
	org := uuid.New()
	assert.True(t, CanSeeRejectionNote(member(org, RoleStaff), org))
	assert.False(t, CanSeeRejectionNote(member(uuid.New(), RoleStaff), org))
	assert.True(t, CanSeeRejectionNote(member(uuid.New(), RoleReadOnlyReviewer), org))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	p := member(uuid.New(), RoleOwner)
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Equal(t, p, got)
	assert.Equal(t, RoleOwner, got.EffectiveRole())
	assert.Equal(t, RolePlatformAdmin, Principal{PlatformAdmin: true}.EffectiveRole())
}

func TestRequirePrincipalAndTenant(t *testing.T) {
	_, err := RequirePrincipal(context.Background())
	assert.ErrorIs(t, err, shared.ErrAuthorizationDenied)

	admin := Principal{ID: uuid.New(), PlatformAdmin: true}
	ctx := WithPrincipal(context.Background(), admin)
	p, err := RequirePrincipal(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin, p)
	_, err = RequireTenant(ctx)
	assert.ErrorIs(t, err, shared.ErrNoTenant)

	staff := member(uuid.New(), RoleStaff)
	p, err = RequireTenant(WithPrincipal(context.Background(), staff))
	require.NoError(t, err)
	assert.Equal(t, staff.OrgID, p.OrgID)
}
