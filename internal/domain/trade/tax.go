package trade

import (
	"github.com/bizgrid/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TaxMode decides how a line's tax rate is split
type TaxMode string

const (
	// TaxModeDomestic splits the rate into two equal components (same jurisdiction)
	TaxModeDomestic TaxMode = "domestic"
	// TaxModeCrossJurisdiction applies the full rate as one component
	TaxModeCrossJurisdiction TaxMode = "cross_jurisdiction"
)

var two = decimal.NewFromInt(2)

// DetermineTaxMode compares the seller's home jurisdiction with the customer's.
// A customer without a resolvable jurisdiction is treated as a local sale.
func DetermineTaxMode(orgHome, customer valueobject.Jurisdiction, customerKnown bool) TaxMode {
	if !customerKnown || customer == orgHome {
		return TaxModeDomestic
	}
	return TaxModeCrossJurisdiction
}

// LineTax holds the tax components of one line, each rounded to the currency unit
type LineTax struct {
	ComponentA decimal.Decimal
	ComponentB decimal.Decimal
	Cross      decimal.Decimal
}

// Total is the sum of all components
func (t LineTax) Total() decimal.Decimal {
	return t.ComponentA.Add(t.ComponentB).Add(t.Cross)
}

// ComputeLineTax applies ratePercent to subtotal. Every component is computed from the
// subtotal and rounded on its own; no component is derived from another.
func ComputeLineTax(subtotal, ratePercent decimal.Decimal, mode TaxMode) LineTax {
	if mode == TaxModeCrossJurisdiction {
		return LineTax{
			ComponentA: decimal.Zero,
			ComponentB: decimal.Zero,
			Cross:      valueobject.RoundCurrency(valueobject.PercentOf(subtotal, ratePercent)),
		}
	}
	half := ratePercent.Div(two)
	return LineTax{
		ComponentA: valueobject.RoundCurrency(valueobject.PercentOf(subtotal, half)),
		ComponentB: valueobject.RoundCurrency(valueobject.PercentOf(subtotal, half)),
		Cross:      decimal.Zero,
	}
}
