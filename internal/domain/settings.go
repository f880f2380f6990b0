package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultPaymentTerms  = "Due within 30 days"
	DefaultNumberPrefix  = "INV"
	DefaultNumberWidth   = 4
	defaultTaxRatePct    = 10
	firstInvoiceSequence = 1
)

// CompanySettings is the single company profile. Exactly one row exists.
type CompanySettings struct {
	ID                  string
	CompanyName         string
	CompanyEmail        string
	CompanyPhone        string
	CompanyAddress      string
	TaxEnabled          bool
	TaxRate             decimal.Decimal // percent, 10 = 10%
	DefaultPaymentTerms string
	NextInvoiceNumber   int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewCompanySettings returns the profile used when none has been provisioned yet
func NewCompanySettings() *CompanySettings {
	now := time.Now()
	return &CompanySettings{
		CompanyName:         "My Company",
		TaxEnabled:          true,
		TaxRate:             decimal.NewFromInt(defaultTaxRatePct),
		DefaultPaymentTerms: DefaultPaymentTerms,
		NextInvoiceNumber:   firstInvoiceSequence,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Validate returns an error if the settings are invalid
func (s *CompanySettings) Validate() error {
	if strings.TrimSpace(s.CompanyName) == "" {
		return fmt.Errorf("%w: company name is required", ErrValidation)
	}
	if s.TaxRate.IsNegative() || s.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: tax rate must be between 0 and 100", ErrValidation)
	}
	if s.NextInvoiceNumber < firstInvoiceSequence {
		return fmt.Errorf("%w: next invoice number must be at least %d", ErrValidation, firstInvoiceSequence)
	}
	return nil
}

// InvoiceNumber derives the human-readable number for the current sequence counter
func (s *CompanySettings) InvoiceNumber(prefix string, width int) string {
	return FormatInvoiceNumber(prefix, s.NextInvoiceNumber, width)
}

// FormatInvoiceNumber formats seq as PREFIX-NNNN, zero padded to width digits.
// FormatInvoiceNumber("INV", 7, 4) == "INV-0007"
func FormatInvoiceNumber(prefix string, seq, width int) string {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	if width <= 0 {
		width = DefaultNumberWidth
	}
	return fmt.Sprintf("%s-%0*d", prefix, width, seq)
}
