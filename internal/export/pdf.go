package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDF writes the document as a single A4 page (more if the items overflow)
func PDF(doc Document, w io.Writer) error {
	inv := doc.Invoice

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(inv.Type.Label()+" "+inv.InvoiceNumber, true)
	pdf.SetCreator("invoicer", true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right

	// Header
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(width/2, 10, strings.ToUpper(inv.Type.Label()), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(width/2, 5, tr(inv.InvoiceNumber), "", 2, "R", false, 0, "")
	pdf.CellFormat(width/2, 5, "Date: "+inv.InvoiceDate.Format(dateFormat), "", 2, "R", false, 0, "")
	if inv.DueDate != nil {
		pdf.CellFormat(width/2, 5, "Due: "+inv.DueDate.Format(dateFormat), "", 2, "R", false, 0, "")
	}
	pdf.SetX(left)
	pdf.Ln(8)

	// Parties
	top := pdf.GetY()
	if c := doc.Company; c != nil {
		block(pdf, tr, left, width/2, "From", c.CompanyName, c.CompanyEmail, c.CompanyPhone, c.CompanyAddress)
	}
	fromBottom := pdf.GetY()
	pdf.SetY(top)
	block(pdf, tr, left+width/2, width/2, "Bill To", inv.ClientName, inv.ClientEmail, inv.ClientAddress)
	if pdf.GetY() < fromBottom {
		pdf.SetY(fromBottom)
	}
	pdf.Ln(6)

	// Line items
	cols := []float64{width * 0.52, width * 0.12, width * 0.18, width * 0.18}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range []string{"Description", "Qty", "Rate", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 8, h, "B", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range inv.LineItems {
		pdf.CellFormat(cols[0], 7, tr(truncate(item.Description, 60)), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 7, item.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 7, Money(item.Rate), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, Money(item.Amount), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals
	labelW := width - cols[3]
	totalRow := func(label, value string) {
		pdf.CellFormat(labelW, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, value, "", 1, "R", false, 0, "")
	}
	totalRow("Subtotal", Money(inv.Subtotal))
	if inv.TaxEnabled {
		totalRow(TaxLabel(inv.TaxRate), Money(inv.TaxAmount))
	}
	pdf.SetFont("Helvetica", "B", 12)
	totalRow("Total", Money(inv.Total))

	// Terms and notes
	pdf.SetFont("Helvetica", "", 10)
	if inv.PaymentTerms != "" {
		pdf.Ln(6)
		pdf.MultiCell(width, 5, tr("Payment terms: "+inv.PaymentTerms), "", "L", false)
	}
	if inv.Notes != "" {
		pdf.Ln(4)
		pdf.MultiCell(width, 5, tr(inv.Notes), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

// WritePDF renders the document to <dir>/<invoice number>.pdf and returns the path
func WritePDF(doc Document, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, FileName(doc))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create pdf: %w", err)
	}

	if err := PDF(doc, f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close pdf: %w", err)
	}

	return path, nil
}

// FileName returns the PDF name for the document, safe for any filesystem
func FileName(doc Document) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, doc.Invoice.InvoiceNumber)
	if name == "" {
		name = strings.ToLower(doc.Invoice.Type.Label())
	}
	return name + ".pdf"
}

func block(pdf *gofpdf.Fpdf, tr func(string) string, x, w float64, title string, lines ...string) {
	pdf.SetX(x)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(w, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range lines {
		if l == "" {
			continue
		}
		pdf.SetX(x)
		pdf.MultiCell(w, 5, tr(l), "", "L", false)
	}
}
