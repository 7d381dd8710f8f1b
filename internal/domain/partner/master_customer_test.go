package partner

import (
	"testing"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNaturalKey(t *testing.T) {
	t.Run("requires at least one identifier", func(t *testing.T) {
		_, err := NormalizeNaturalKey("  ", "")
		assert.ErrorIs(t, err, shared.ErrIdentifierRequired)

		_, err = NormalizeNaturalKey("+", " ")
		assert.ErrorIs(t, err, shared.ErrIdentifierRequired)
	})

	t.Run("normalizes mobile and tax registration", func(t *testing.T) {
		key, err := NormalizeNaturalKey(" +91 98450-12345 ", "29abcde 1234f1z5")
		require.NoError(t, err)
		assert.Equal(t, "+919845012345", key.Mobile)
		assert.Equal(t, "29ABCDE1234F1Z5", key.TaxRegistrationNo)
	})

	t.Run("accepts only tax registration", func(t *testing.T) {
		key, err := NormalizeNaturalKey("", "27AAPFU0939F1ZV")
		require.NoError(t, err)
		assert.Empty(t, key.Mobile)
	})

	t.Run("rejects short mobile", func(t *testing.T) {
		_, err := NormalizeNaturalKey("12345", "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("counts digits, not the plus sign", func(t *testing.T) {
		tests := []struct {
			mobile string
			valid  bool
		}{
			{mobile: "+123456", valid: false},
			{mobile: "1234567", valid: true},
			{mobile: "+1234567", valid: true},
			{mobile: "123456789012345", valid: true},
			{mobile: "+123456789012345", valid: true},
			{mobile: "1234567890123456", valid: false},
		}
		for _, tt := range tests {
			_, err := NormalizeNaturalKey(tt.mobile, "")
			if tt.valid {
				assert.NoError(t, err, tt.mobile)
			} else {
				assert.ErrorIs(t, err, shared.ErrInvalidInput, tt.mobile)
			}
		}
	})
}

func TestNewMasterCustomer(t *testing.T) {
	key := NaturalKey{Mobile: "9845012345"}

	c, err := NewMasterCustomer(key, "  Ravi   Traders ", "ka")
	require.NoError(t, err)
	assert.Equal(t, "Ravi Traders", c.LegalName)
	require.NotNil(t, c.Mobile)
	assert.Equal(t, "9845012345", *c.Mobile)
	assert.Nil(t, c.TaxRegistrationNo)
	require.NotNil(t, c.StateCode)
	assert.Equal(t, "KA", *c.StateCode)

	_, err = NewMasterCustomer(key, " ", "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewMasterCustomer(NaturalKey{}, "Ravi", "")
	assert.ErrorIs(t, err, shared.ErrIdentifierRequired)

	_, err = NewMasterCustomer(key, "Ravi", "QQ")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestMasterCustomer_Jurisdiction(t *testing.T) {
	t.Run("stored state wins", func(t *testing.T) {
		c, err := NewMasterCustomer(NaturalKey{TaxRegistrationNo: "27AAPFU0939F1ZV"}, "Acme", "KA")
		require.NoError(t, err)
		j, ok := c.Jurisdiction()
		assert.True(t, ok)
		assert.Equal(t, valueobject.Jurisdiction("KA"), j)
	})

	t.Run("falls back to tax registration prefix", func(t *testing.T) {
		c, err := NewMasterCustomer(NaturalKey{TaxRegistrationNo: "27AAPFU0939F1ZV"}, "Acme", "")
		require.NoError(t, err)
		j, ok := c.Jurisdiction()
		assert.True(t, ok)
		assert.Equal(t, valueobject.Jurisdiction("MH"), j)
	})

	t.Run("unknown without state or registration", func(t *testing.T) {
		c, err := NewMasterCustomer(NaturalKey{Mobile: "9845012345"}, "Acme", "")
		require.NoError(t, err)
		_, ok := c.Jurisdiction()
		assert.False(t, ok)
	})
}

func TestNewCustomerLink(t *testing.T) {
	org, master, by := uuid.New(), uuid.New(), uuid.New()

	l, err := NewCustomerLink(org, master, by, " Ravi (Jayanagar) ")
	require.NoError(t, err)
	assert.Equal(t, org, l.TenantID)
	assert.Equal(t, master, l.MasterCustomerID)
	assert.Equal(t, "Ravi (Jayanagar)", l.Alias)

	require.NoError(t, l.Rename("Ravi"))
	assert.Equal(t, "Ravi", l.Alias)

	_, err = NewCustomerLink(uuid.Nil, master, by, "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
