// Package export renders invoices for reading and sending: a fixed-width text
// layout for the terminal and an A4 PDF.
package export

import (
	"fmt"
	"strings"

	"github.com/andy/invoicer/internal/domain"
	"github.com/shopspring/decimal"
)

const dateFormat = "Jan 02, 2006"

// Document is everything needed to render one invoice
type Document struct {
	Invoice *domain.Invoice
	Company *domain.CompanySettings // optional
}

// Money formats an amount with a dollar sign and two decimals
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Percent formats a tax rate without trailing zeros
func Percent(d decimal.Decimal) string {
	return d.String() + "%"
}

// TaxLabel returns "Tax (10%)" for the given rate
func TaxLabel(rate decimal.Decimal) string {
	return fmt.Sprintf("Tax (%s)", Percent(rate))
}

// Text renders the document as plain text
func Text(doc Document) string {
	inv := doc.Invoice
	var b strings.Builder

	sep := strings.Repeat("=", 64)
	line := strings.Repeat("-", 64)

	b.WriteString(strings.ToUpper(inv.Type.Label()) + "\n")
	b.WriteString(sep + "\n")
	fmt.Fprintf(&b, "Number:     %s\n", inv.InvoiceNumber)
	fmt.Fprintf(&b, "Date:       %s\n", inv.InvoiceDate.Format(dateFormat))
	if inv.DueDate != nil {
		fmt.Fprintf(&b, "Due:        %s\n", inv.DueDate.Format(dateFormat))
	}
	fmt.Fprintf(&b, "Status:     %s\n", strings.ToUpper(string(inv.Status)))

	if c := doc.Company; c != nil {
		b.WriteString("\nFrom:\n")
		writeLines(&b, c.CompanyName, c.CompanyEmail, c.CompanyPhone, c.CompanyAddress)
	}

	b.WriteString("\nBill To:\n")
	writeLines(&b, inv.ClientName, inv.ClientEmail, inv.ClientAddress)

	b.WriteString("\n" + line + "\n")
	fmt.Fprintf(&b, "%-30s %8s %11s %12s\n", "Description", "Qty", "Rate", "Amount")
	b.WriteString(line + "\n")
	for _, item := range inv.LineItems {
		fmt.Fprintf(&b, "%-30s %8s %11s %12s\n",
			truncate(item.Description, 30),
			item.Quantity.String(),
			Money(item.Rate),
			Money(item.Amount),
		)
	}
	b.WriteString(line + "\n")

	fmt.Fprintf(&b, "%51s %12s\n", "Subtotal", Money(inv.Subtotal))
	if inv.TaxEnabled {
		fmt.Fprintf(&b, "%51s %12s\n", TaxLabel(inv.TaxRate), Money(inv.TaxAmount))
	}
	fmt.Fprintf(&b, "%51s %12s\n", "TOTAL", Money(inv.Total))
	b.WriteString(sep + "\n")

	if inv.PaymentTerms != "" {
		fmt.Fprintf(&b, "\nPayment terms: %s\n", inv.PaymentTerms)
	}
	if inv.Notes != "" {
		fmt.Fprintf(&b, "\nNotes:\n%s\n", indent(inv.Notes))
	}

	return b.String()
}

func writeLines(b *strings.Builder, lines ...string) {
	for _, l := range lines {
		if l != "" {
			b.WriteString(indent(l) + "\n")
		}
	}
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
