package catalog

import (
	"testing"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrgProduct(t *testing.T) {
	tenant := uuid.New()
	creator := uuid.New()

	p, err := NewOrgProduct(tenant, creator, "Phone X", "phx-1", "")
	require.NoError(t, err)
	assert.Equal(t, tenant, p.TenantID)
	assert.Equal(t, creator, *p.CreatedBy)
	assert.Equal(t, "PHX-1", p.SKU)
	assert.Equal(t, TrackingQuantity, p.TrackingMode)
	assert.True(t, p.IsActive())
	assert.False(t, p.IsLinked())

	_, err = NewOrgProduct(tenant, creator, "Phone X", "phx-1", "batch")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewOrgProduct(tenant, creator, "", "phx-1", TrackingSerial)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestOrgProduct_LinkMaster(t *testing.T) {
	p, err := NewOrgProduct(uuid.New(), uuid.New(), "Phone X", "PHX-1", TrackingSerial)
	require.NoError(t, err)
	assert.True(t, p.IsSerialTracked())

	master := uuid.New()
	require.NoError(t, p.LinkMaster(master))
	require.NoError(t, p.LinkMaster(master))
	assert.ErrorIs(t, p.LinkMaster(uuid.New()), shared.ErrInvalidState)
	assert.ErrorIs(t, p.LinkMaster(uuid.Nil), shared.ErrInvalidInput)
}

func TestOrgProduct_StatusAndPrices(t *testing.T) {
	p, err := NewOrgProduct(uuid.New(), uuid.New(), "Cable", "CBL", TrackingQuantity)
	require.NoError(t, err)

	require.NoError(t, p.SetPrices(decimal.NewFromInt(10), decimal.NewFromInt(15)))
	assert.Error(t, p.SetPrices(decimal.NewFromInt(-1), decimal.NewFromInt(15)))

	require.NoError(t, p.Deactivate())
	assert.Error(t, p.Deactivate())
	require.NoError(t, p.Activate())

	f := p.SubmissionFields()
	assert.Equal(t, "Cable", f.Name)
	assert.True(t, decimal.NewFromInt(15).Equal(f.BasePrice))
}

func TestNewTaxCode(t *testing.T) {
	code, err := NewTaxCode(" 8517 ", decimal.NewFromInt(18), "Telephones")
	require.NoError(t, err)
	assert.Equal(t, "8517", code.Code)
	assert.True(t, code.Active)

	_, err = NewTaxCode("", decimal.NewFromInt(18), "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewTaxCode("X", decimal.NewFromInt(150), "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	require.NoError(t, code.Update(decimal.NewFromInt(12), "Phones", false))
	assert.False(t, code.Active)
	assert.Error(t, code.Update(decimal.NewFromInt(-5), "", true))
}
