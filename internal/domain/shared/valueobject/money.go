package valueobject

import (
	"github.com/shopspring/decimal"
)

// CurrencyScale is the number of decimal places of the smallest currency unit
const CurrencyScale int32 = 2

var hundred = decimal.NewFromInt(100)

// RoundCurrency rounds an amount to the smallest currency unit, half away from zero.
// For the non-negative amounts used on invoices this is standard half-up rounding.
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyScale)
}

// PercentOf returns amount × percent / 100 without rounding
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

// ValidRatePercent reports whether a tax rate expressed in percent lies in [0, 100]
func ValidRatePercent(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(hundred)
}
