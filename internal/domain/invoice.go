package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceType string

const (
	InvoiceTypeInvoice InvoiceType = "invoice"
	InvoiceTypeQuote   InvoiceType = "quote"
)

// InvoiceTypes lists the types in the order the editor cycles through them
var InvoiceTypes = []InvoiceType{InvoiceTypeInvoice, InvoiceTypeQuote}

// Label returns the display name of the type
func (t InvoiceType) Label() string {
	if t == InvoiceTypeQuote {
		return "Quote"
	}
	return "Invoice"
}

func (t InvoiceType) Valid() bool {
	return t == InvoiceTypeInvoice || t == InvoiceTypeQuote
}

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// InvoiceStatuses lists the statuses in the order the editor cycles through them
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
}

func (s InvoiceStatus) Valid() bool {
	for _, v := range InvoiceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Invoice struct {
	ID            string
	InvoiceNumber string
	Type          InvoiceType
	InvoiceDate   time.Time
	DueDate       *time.Time
	Status        InvoiceStatus
	ClientName    string
	ClientEmail   string
	ClientAddress string
	Subtotal      decimal.Decimal
	TaxEnabled    bool
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	PaymentTerms  string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Populated by the repository on single-record reads
	LineItems []LineItem
}

// Validate returns an error if the invoice is invalid
func (i *Invoice) Validate() error {
	if strings.TrimSpace(i.ClientName) == "" {
		return fmt.Errorf("%w: client name is required", ErrValidation)
	}
	if strings.TrimSpace(i.InvoiceNumber) == "" {
		return fmt.Errorf("%w: invoice number is required", ErrValidation)
	}
	if !i.Type.Valid() {
		return fmt.Errorf("%w: unknown invoice type %q", ErrValidation, i.Type)
	}
	if !i.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, i.Status)
	}
	if i.InvoiceDate.IsZero() {
		return fmt.Errorf("%w: invoice date is required", ErrValidation)
	}
	for n, item := range i.LineItems {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("line item %d: %w", n+1, err)
		}
	}
	return nil
}
