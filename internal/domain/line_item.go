package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
	SortOrder   int
}

// NewLineItem returns a blank row: quantity 1, rate 0, amount 0
func NewLineItem() LineItem {
	return LineItem{
		Quantity: decimal.NewFromInt(1),
		Rate:     decimal.Zero,
		Amount:   decimal.Zero,
	}
}

// SetQuantity updates the quantity and recomputes the amount
func (li *LineItem) SetQuantity(q decimal.Decimal) {
	li.Quantity = q
	li.Recalculate()
}

// SetRate updates the rate and recomputes the amount
func (li *LineItem) SetRate(r decimal.Decimal) {
	li.Rate = r
	li.Recalculate()
}

// Recalculate sets amount = quantity * rate. No rounding is applied.
func (li *LineItem) Recalculate() {
	li.Amount = li.Quantity.Mul(li.Rate)
}

func (li *LineItem) Validate() error {
	if li.Quantity.IsNegative() {
		return fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	}
	if li.Rate.IsNegative() {
		return fmt.Errorf("%w: rate cannot be negative", ErrValidation)
	}
	if !li.Amount.Equal(li.Quantity.Mul(li.Rate)) {
		return fmt.Errorf("%w: amount does not match quantity x rate", ErrValidation)
	}
	return nil
}
