package tui

import (
	"strings"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const inputDateLayout = "2006-01-02"

// formatMoney formats money as "$X,XXX.XX" with comma separators
func formatMoney(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	s := amount.Abs().StringFixed(2)

	dotPos := len(s) - 3
	intPart := s[:dotPos]
	decPart := s[dotPos:]

	result := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}

	prefix := "$"
	if negative {
		prefix = "-$"
	}
	return prefix + string(result) + decPart
}

// parseAmount reads a quantity or rate typed by the user. Anything that is not
// a non-negative number counts as zero.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// parseDay reads a YYYY-MM-DD date in local time
func parseDay(s string) (time.Time, error) {
	return time.ParseInLocation(inputDateLayout, strings.TrimSpace(s), time.Local)
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(inputDateLayout)
}

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// statusBadge renders an invoice status with color
func statusBadge(status domain.InvoiceStatus) string {
	label := strings.ToUpper(string(status))
	switch status {
	case domain.InvoiceStatusDraft:
		return lipgloss.NewStyle().Foreground(mutedColor).Render(label)
	case domain.InvoiceStatusSent:
		return lipgloss.NewStyle().Foreground(warningColor).Render(label)
	case domain.InvoiceStatusPaid:
		return lipgloss.NewStyle().Foreground(successColor).Render(label)
	case domain.InvoiceStatusOverdue:
		return lipgloss.NewStyle().Foreground(errorColor).Render(label)
	default:
		return label
	}
}

func taxLabel(rate decimal.Decimal) string {
	return export.TaxLabel(rate)
}
