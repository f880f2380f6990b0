package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals are the derived money fields of an invoice
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals sums the line item amounts and applies taxRate (percent) when enabled
func ComputeTotals(items []LineItem, taxEnabled bool, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}

	tax := decimal.Zero
	if taxEnabled {
		tax = subtotal.Mul(taxRate).Div(hundred)
	}

	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}
