package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	d := domain.NewDraft(nil, "INV-0007", time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local))
	d.ClientName = "Globex"
	d.ClientEmail = "ap@globex.test"
	d.Notes = "Thanks for your business"
	d.SetDescription(0, "Design work")
	d.SetQuantity(0, decimal.NewFromInt(3))
	d.SetRate(0, decimal.NewFromInt(10))
	d.AddItem()
	d.SetDescription(1, "Hosting")
	d.SetRate(1, decimal.NewFromInt(5))

	company := domain.NewCompanySettings()
	company.CompanyName = "ACME Pty Ltd"
	company.CompanyEmail = "billing@acme.test"

	return Document{Invoice: d.Invoice(), Company: company}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$38.50", Money(decimal.RequireFromString("38.5")))
	assert.Equal(t, "$0.00", Money(decimal.Zero))
	assert.Equal(t, "$4.16", Money(decimal.RequireFromString("4.1625")))
	assert.Equal(t, "Tax (12.5%)", TaxLabel(decimal.RequireFromString("12.5")))
}

func TestText(t *testing.T) {
	doc := sampleDocument()
	out := Text(doc)

	assert.True(t, strings.HasPrefix(out, "INVOICE\n"))
	for _, want := range []string{
		"INV-0007", "Mar 01, 2026", "ACME Pty Ltd", "Globex", "ap@globex.test",
		"Design work", "Hosting", "$30.00", "$35.00", "Tax (10%)", "$3.50", "$38.50",
		"Due within 30 days", "Thanks for your business",
	} {
		assert.Contains(t, out, want)
	}

	doc.Invoice.TaxEnabled = false
	assert.NotContains(t, Text(doc), "Tax (")

	doc.Invoice.Type = domain.InvoiceTypeQuote
	doc.Company = nil
	out = Text(doc)
	assert.True(t, strings.HasPrefix(out, "QUOTE\n"))
	assert.NotContains(t, out, "From:")
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(sampleDocument(), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWritePDF(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	doc := sampleDocument()
	doc.Invoice.InvoiceNumber = "INV/0007"

	path, err := WritePDF(doc, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "INV_0007.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestFileNameFallsBackToType(t *testing.T) {
	doc := sampleDocument()
	doc.Invoice.InvoiceNumber = ""
	doc.Invoice.Type = domain.InvoiceTypeQuote
	assert.Equal(t, "quote.pdf", FileName(doc))
}
