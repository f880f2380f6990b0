package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Draft is the editable state of one invoice in the editor. Totals are never
// stored on it; they are computed from Items on every call to Totals.
type Draft struct {
	ID            string // empty until the first successful save
	InvoiceNumber string
	Type          InvoiceType
	InvoiceDate   time.Time
	DueDate       *time.Time
	Status        InvoiceStatus
	ClientName    string
	ClientEmail   string
	ClientAddress string
	TaxEnabled    bool
	TaxRate       decimal.Decimal
	PaymentTerms  string
	Notes         string
	Items         []LineItem
}

// NewDraft returns a blank invoice dated on the given day with one blank row.
// Tax and payment-term defaults are seeded from settings when available.
func NewDraft(settings *CompanySettings, number string, day time.Time) *Draft {
	d := &Draft{
		InvoiceNumber: number,
		Type:          InvoiceTypeInvoice,
		InvoiceDate:   truncateDay(day),
		Status:        InvoiceStatusDraft,
		TaxEnabled:    true,
		TaxRate:       decimal.NewFromInt(defaultTaxRatePct),
		PaymentTerms:  DefaultPaymentTerms,
		Items:         []LineItem{NewLineItem()},
	}
	if settings != nil {
		d.ApplySettings(settings)
	}
	return d
}

// DraftFromInvoice copies a persisted invoice into an editable draft
func DraftFromInvoice(inv *Invoice) *Draft {
	d := &Draft{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Type:          inv.Type,
		InvoiceDate:   inv.InvoiceDate,
		Status:        inv.Status,
		ClientName:    inv.ClientName,
		ClientEmail:   inv.ClientEmail,
		ClientAddress: inv.ClientAddress,
		TaxEnabled:    inv.TaxEnabled,
		TaxRate:       inv.TaxRate,
		PaymentTerms:  inv.PaymentTerms,
		Notes:         inv.Notes,
	}
	if inv.DueDate != nil {
		due := *inv.DueDate
		d.DueDate = &due
	}
	d.Items = make([]LineItem, len(inv.LineItems))
	copy(d.Items, inv.LineItems)
	if len(d.Items) == 0 {
		d.Items = []LineItem{NewLineItem()}
	}
	return d
}

// ApplySettings seeds the tax flag, tax rate and payment terms from the company profile
func (d *Draft) ApplySettings(s *CompanySettings) {
	d.TaxEnabled = s.TaxEnabled
	d.TaxRate = s.TaxRate
	d.PaymentTerms = s.DefaultPaymentTerms
}

// Clone returns a deep copy safe to hand to another goroutine
func (d *Draft) Clone() *Draft {
	c := *d
	if d.DueDate != nil {
		due := *d.DueDate
		c.DueDate = &due
	}
	c.Items = make([]LineItem, len(d.Items))
	copy(c.Items, d.Items)
	return &c
}

// IsNew reports whether the draft has never been saved
func (d *Draft) IsNew() bool {
	return d.ID == ""
}

// AddItem appends a blank row
func (d *Draft) AddItem() {
	d.Items = append(d.Items, NewLineItem())
}

// RemoveItem deletes the row at index i. It refuses when only one row remains
// and reports whether a row was removed.
func (d *Draft) RemoveItem(i int) bool {
	if len(d.Items) <= 1 || i < 0 || i >= len(d.Items) {
		return false
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
	return true
}

func (d *Draft) SetDescription(i int, desc string) {
	if i >= 0 && i < len(d.Items) {
		d.Items[i].Description = desc
	}
}

func (d *Draft) SetQuantity(i int, q decimal.Decimal) {
	if i >= 0 && i < len(d.Items) {
		d.Items[i].SetQuantity(q)
	}
}

func (d *Draft) SetRate(i int, r decimal.Decimal) {
	if i >= 0 && i < len(d.Items) {
		d.Items[i].SetRate(r)
	}
}

// Totals computes subtotal, tax and total from the current rows
func (d *Draft) Totals() Totals {
	return ComputeTotals(d.Items, d.TaxEnabled, d.TaxRate)
}

// Validate checks the fields required before anything is written
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.ClientName) == "" {
		return fmt.Errorf("%w: client name is required", ErrValidation)
	}
	return nil
}

// Invoice builds the record to persist, totals and display order included
func (d *Draft) Invoice() *Invoice {
	totals := d.Totals()
	inv := &Invoice{
		ID:            d.ID,
		InvoiceNumber: d.InvoiceNumber,
		Type:          d.Type,
		InvoiceDate:   d.InvoiceDate,
		Status:        d.Status,
		ClientName:    strings.TrimSpace(d.ClientName),
		ClientEmail:   d.ClientEmail,
		ClientAddress: d.ClientAddress,
		Subtotal:      totals.Subtotal,
		TaxEnabled:    d.TaxEnabled,
		TaxRate:       d.TaxRate,
		TaxAmount:     totals.TaxAmount,
		Total:         totals.Total,
		PaymentTerms:  d.PaymentTerms,
		Notes:         d.Notes,
		LineItems:     make([]LineItem, len(d.Items)),
	}
	if d.DueDate != nil {
		due := *d.DueDate
		inv.DueDate = &due
	}
	for i, item := range d.Items {
		item.InvoiceID = d.ID
		item.SortOrder = i
		inv.LineItems[i] = item
	}
	return inv
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
