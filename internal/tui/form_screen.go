package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
	"github.com/andy/invoicer/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// formMode is either editing the draft or previewing it
type formMode int

const (
	formEditing formMode = iota
	formPreviewing
)

// toggle switches between editing and previewing. The draft is untouched.
func (m formMode) toggle() formMode {
	if m == formEditing {
		return formPreviewing
	}
	return formEditing
}

// header field indices; line item cells follow them in focus order
const (
	fieldNumber = iota
	fieldType
	fieldDate
	fieldDue
	fieldStatus
	fieldClientName
	fieldClientEmail
	fieldClientAddress
	fieldTax
	fieldTerms
	fieldNotes
	headerFieldCount
)

const (
	colDescription = iota
	colQuantity
	colRate
	itemColCount
)

var fieldLabels = [headerFieldCount]string{
	"Number:", "Type:", "Date:", "Due Date:", "Status:",
	"Client Name:", "Client Email:", "Client Address:",
	"Tax:", "Payment Terms:", "Notes:",
}

type itemRow [itemColCount]textinput.Model

type draftOpenedMsg struct {
	opened *service.OpenedDraft
	err    error
}

type invoiceSavedMsg struct {
	invoice *domain.Invoice
	created bool
	err     error
}

type pdfExportedMsg struct {
	path string
	err  error
}

// FormModel creates and edits one invoice
type FormModel struct {
	svc       Services
	invoiceID string
	mode      formMode
	draft     *domain.Draft
	company   *domain.CompanySettings
	fields    []textinput.Model
	rows      []itemRow
	focus     int
	loading   bool
	saving    bool
	err       string
	statusMsg string
}

// NewFormModel opens the editor. An empty invoiceID starts a new invoice.
func NewFormModel(svc Services, invoiceID string) *FormModel {
	return &FormModel{
		svc:       svc,
		invoiceID: invoiceID,
		mode:      formEditing,
		loading:   true,
	}
}

// IsCapturingInput returns true once the draft is loaded. Preview keeps the
// keyboard too; its only way out is back to editing.
func (m *FormModel) IsCapturingInput() bool {
	return !m.loading
}

func (m *FormModel) Init() tea.Cmd {
	id := m.invoiceID
	return func() tea.Msg {
		opened, err := m.svc.Invoices.OpenDraft(context.Background(), id)
		return draftOpenedMsg{opened: opened, err: err}
	}
}

func isTextField(f int) bool {
	return f != fieldType && f != fieldStatus && f != fieldTax
}

func newInput(placeholder string, width, limit int, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Width = width
	ti.CharLimit = limit
	ti.SetValue(value)
	return ti
}

func newItemRow(item domain.LineItem) itemRow {
	return itemRow{
		colDescription: newInput("Description", 32, 200, item.Description),
		colQuantity:    newInput("1", 8, 12, item.Quantity.String()),
		colRate:        newInput("0.00", 10, 14, item.Rate.String()),
	}
}

// initInputs builds the edit buffers from the draft
func (m *FormModel) initInputs() {
	d := m.draft
	m.fields = make([]textinput.Model, headerFieldCount)
	m.fields[fieldNumber] = newInput("INV-0001", 20, 40, d.InvoiceNumber)
	m.fields[fieldDate] = newInput(inputDateLayout, 12, 10, d.InvoiceDate.Format(inputDateLayout))
	m.fields[fieldDue] = newInput("optional, "+inputDateLayout, 24, 10, formatDay(d.DueDate))
	m.fields[fieldClientName] = newInput("Client or company name", 40, 120, d.ClientName)
	m.fields[fieldClientEmail] = newInput("client@example.com", 40, 120, d.ClientEmail)
	m.fields[fieldClientAddress] = newInput("Street, City", 60, 240, d.ClientAddress)
	m.fields[fieldTerms] = newInput(domain.DefaultPaymentTerms, 40, 120, d.PaymentTerms)
	m.fields[fieldNotes] = newInput("Additional notes or terms...", 60, 500, d.Notes)

	m.rows = make([]itemRow, len(d.Items))
	for i, item := range d.Items {
		m.rows[i] = newItemRow(item)
	}

	m.focus = fieldClientName
	if m.draft.IsNew() && m.draft.InvoiceNumber == "" {
		m.focus = fieldNumber
	}
	m.fields[m.focus].Focus()
}

func (m *FormModel) focusCount() int {
	return headerFieldCount + len(m.rows)*itemColCount
}

// input returns the text input at focus index f, or nil for non-text fields
func (m *FormModel) input(f int) *textinput.Model {
	if f < headerFieldCount {
		if !isTextField(f) {
			return nil
		}
		return &m.fields[f]
	}
	r, c := m.cell(f)
	return &m.rows[r][c]
}

// cell maps a focus index past the header to a row and column
func (m *FormModel) cell(f int) (int, int) {
	i := f - headerFieldCount
	return i / itemColCount, i % itemColCount
}

func (m *FormModel) setFocus(f int) tea.Cmd {
	n := m.focusCount()
	f = ((f % n) + n) % n
	if in := m.input(m.focus); in != nil {
		in.Blur()
	}
	m.focus = f
	if in := m.input(f); in != nil {
		return in.Focus()
	}
	return nil
}

// applyInput copies the text at focus index f into the draft
func (m *FormModel) applyInput(f int) {
	d := m.draft
	in := m.input(f)
	if in == nil {
		return
	}
	v := in.Value()

	switch f {
	case fieldNumber:
		d.InvoiceNumber = v
	case fieldDate:
		if t, err := parseDay(v); err == nil {
			d.InvoiceDate = t
		}
	case fieldDue:
		if strings.TrimSpace(v) == "" {
			d.DueDate = nil
		} else if t, err := parseDay(v); err == nil {
			d.DueDate = &t
		}
	case fieldClientName:
		d.ClientName = v
	case fieldClientEmail:
		d.ClientEmail = v
	case fieldClientAddress:
		d.ClientAddress = v
	case fieldTerms:
		d.PaymentTerms = v
	case fieldNotes:
		d.Notes = v
	default:
		r, c := m.cell(f)
		switch c {
		case colDescription:
			d.SetDescription(r, v)
		case colQuantity:
			d.SetQuantity(r, parseAmount(v))
		case colRate:
			d.SetRate(r, parseAmount(v))
		}
	}
}

// dateError reports a date field whose text is not a valid date
func (m *FormModel) dateError() string {
	if _, err := parseDay(m.fields[fieldDate].Value()); err != nil {
		return "Invoice date must be " + inputDateLayout
	}
	if v := strings.TrimSpace(m.fields[fieldDue].Value()); v != "" {
		if _, err := parseDay(v); err != nil {
			return "Due date must be " + inputDateLayout + " or empty"
		}
	}
	return ""
}

func (m *FormModel) cycleType(step int) {
	m.draft.Type = domain.InvoiceTypes[cycleIndex(domain.InvoiceTypes, m.draft.Type, step)]
}

func (m *FormModel) cycleStatus(step int) {
	m.draft.Status = domain.InvoiceStatuses[cycleIndex(domain.InvoiceStatuses, m.draft.Status, step)]
}

func cycleIndex[T comparable](values []T, current T, step int) int {
	i := 0
	for j, v := range values {
		if v == current {
			i = j
			break
		}
	}
	n := len(values)
	return ((i+step)%n + n) % n
}

func (m *FormModel) addRow() tea.Cmd {
	m.draft.AddItem()
	m.rows = append(m.rows, newItemRow(m.draft.Items[len(m.draft.Items)-1]))
	return m.setFocus(headerFieldCount + (len(m.rows)-1)*itemColCount)
}

// removeRow drops the focused line item; the last remaining row stays
func (m *FormModel) removeRow() tea.Cmd {
	if m.focus < headerFieldCount {
		return nil
	}
	r, c := m.cell(m.focus)
	if !m.draft.RemoveItem(r) {
		return nil
	}
	m.rows = append(m.rows[:r], m.rows[r+1:]...)
	if r >= len(m.rows) {
		r = len(m.rows) - 1
	}
	m.focus = headerFieldCount + r*itemColCount + c
	return m.input(m.focus).Focus()
}

func (m *FormModel) save() tea.Cmd {
	if m.saving {
		return nil
	}
	if msg := m.dateError(); msg != "" {
		m.err = msg
		return nil
	}
	if err := m.draft.Validate(); err != nil {
		m.err = "Client name is required"
		return nil
	}

	m.saving = true
	m.err = ""
	d := m.draft.Clone()
	created := d.IsNew()
	return func() tea.Msg {
		invoice, err := m.svc.Invoices.Save(context.Background(), d)
		return invoiceSavedMsg{invoice: invoice, created: created, err: err}
	}
}

func (m *FormModel) document() export.Document {
	return export.Document{Invoice: m.draft.Invoice(), Company: m.company}
}

func (m *FormModel) exportPDF() tea.Cmd {
	doc := m.document()
	dir := m.svc.OutputDir
	logger := m.svc.logger()
	return func() tea.Msg {
		path, err := export.WritePDF(doc, dir)
		if err != nil {
			logger.Error("error exporting pdf", "invoice_number", doc.Invoice.InvoiceNumber, "error", err)
		}
		return pdfExportedMsg{path: path, err: err}
	}
}

func (m *FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case draftOpenedMsg:
		m.loading = false
		m.draft = msg.opened.Draft
		m.company = msg.opened.Company
		switch {
		case msg.err == nil:
		case m.invoiceID != "" && m.draft.IsNew():
			m.err = "Failed to load invoice"
		case errors.Is(msg.err, service.ErrSettingsMissing):
			m.err = "Company settings are missing"
		default:
			m.err = "Failed to load settings"
		}
		m.initInputs()
		return m, textinput.Blink

	case invoiceSavedMsg:
		m.saving = false
		if msg.err != nil {
			// draft stays exactly as the user left it
			m.err = "Failed to save invoice"
			if errors.Is(msg.err, domain.ErrValidation) {
				m.err = "Invoice is invalid: " + msg.err.Error()
			}
			return m, nil
		}
		m.draft.ID = msg.invoice.ID
		status := "Invoice updated successfully"
		if msg.created {
			status = "Invoice created successfully"
		}
		return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenList, Status: status} }

	case pdfExportedMsg:
		if msg.err != nil {
			m.err = "Failed to export PDF"
			return m, nil
		}
		m.err = ""
		m.statusMsg = "PDF saved to " + msg.path
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		if m.mode == formPreviewing {
			return m.updatePreview(msg)
		}
		return m.updateEditing(msg)
	}

	if m.loading || m.mode == formPreviewing {
		return m, nil
	}

	// cursor blink and other input messages
	if in := m.input(m.focus); in != nil {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *FormModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenList} }

	case key.Matches(msg, DefaultKeyMap.Save):
		return m, m.save()

	case key.Matches(msg, DefaultKeyMap.Preview):
		m.mode = m.mode.toggle()
		m.statusMsg = ""
		return m, nil

	case key.Matches(msg, DefaultKeyMap.AddRow):
		return m, m.addRow()

	case key.Matches(msg, DefaultKeyMap.DelRow):
		return m, m.removeRow()

	case key.Matches(msg, DefaultKeyMap.Next), msg.String() == "enter":
		return m, m.setFocus(m.focus + 1)

	case key.Matches(msg, DefaultKeyMap.Previous):
		return m, m.setFocus(m.focus - 1)
	}

	switch m.focus {
	case fieldType:
		if step := cycleStep(msg); step != 0 {
			m.cycleType(step)
		}
		return m, nil
	case fieldStatus:
		if step := cycleStep(msg); step != 0 {
			m.cycleStatus(step)
		}
		return m, nil
	case fieldTax:
		if key.Matches(msg, DefaultKeyMap.Toggle) || cycleStep(msg) != 0 {
			m.draft.TaxEnabled = !m.draft.TaxEnabled
		}
		return m, nil
	}

	in := m.input(m.focus)
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	m.applyInput(m.focus)
	return m, cmd
}

func cycleStep(msg tea.KeyMsg) int {
	switch {
	case key.Matches(msg, DefaultKeyMap.Left):
		return -1
	case key.Matches(msg, DefaultKeyMap.Right):
		return 1
	}
	return 0
}

func (m *FormModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back), key.Matches(msg, DefaultKeyMap.Preview):
		m.mode = m.mode.toggle()
		if in := m.input(m.focus); in != nil {
			return m, in.Focus()
		}
	case key.Matches(msg, DefaultKeyMap.Export):
		m.statusMsg = "Exporting PDF..."
		return m, m.exportPDF()
	case key.Matches(msg, DefaultKeyMap.Save):
		return m, m.save()
	}
	return m, nil
}

func (m *FormModel) View() string {
	if m.loading {
		return "Loading invoice..."
	}
	if m.mode == formPreviewing {
		return m.viewPreview()
	}
	return m.viewEditing()
}

func (m *FormModel) viewEditing() string {
	var b strings.Builder

	title := "Edit " + m.draft.Type.Label()
	if m.draft.IsNew() {
		title = "New " + m.draft.Type.Label()
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	labelStyle := lipgloss.NewStyle().Width(16)
	for f := 0; f < headerFieldCount; f++ {
		indicator := "  "
		label := subtitleStyle.Render(labelStyle.Render(fieldLabels[f]))
		if f == m.focus {
			indicator = "> "
			label = focusedLabel.Render(labelStyle.Render(fieldLabels[f]))
		}
		fmt.Fprintf(&b, "%s%s %s\n", indicator, label, m.fieldView(f))
	}

	b.WriteString("\n" + subtitleStyle.Render(fmt.Sprintf("  %-34s %-10s %-12s %12s", "Description", "Qty", "Rate", "Amount")) + "\n")
	for r, row := range m.rows {
		indicator := "  "
		if m.focus >= headerFieldCount {
			if fr, _ := m.cell(m.focus); fr == r {
				indicator = "> "
			}
		}
		fmt.Fprintf(&b, "%s%s %s %s %12s\n", indicator,
			row[colDescription].View(), row[colQuantity].View(), row[colRate].View(),
			formatMoney(m.draft.Items[r].Amount))
	}

	totals := m.draft.Totals()
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %56s %12s\n", "Subtotal:", formatMoney(totals.Subtotal))
	if m.draft.TaxEnabled {
		fmt.Fprintf(&b, "  %56s %12s\n", taxLabel(m.draft.TaxRate)+":", formatMoney(totals.TaxAmount))
	}
	b.WriteString("  " + totalStyle.Render(fmt.Sprintf("%56s %12s", "Total:", formatMoney(totals.Total))) + "\n\n")

	m.writeMessages(&b)

	b.WriteString(helpStyle.Render("  tab/shift+tab: fields  ←/→: change  space: toggle tax  ctrl+n: add row  ctrl+d: remove row\n  ctrl+s: save  ctrl+p: preview  esc: back"))
	return b.String()
}

func (m *FormModel) fieldView(f int) string {
	switch f {
	case fieldType:
		return "< " + m.draft.Type.Label() + " >"
	case fieldStatus:
		return "< " + statusBadge(m.draft.Status) + " >"
	case fieldTax:
		box := "[ ]"
		if m.draft.TaxEnabled {
			box = "[x]"
		}
		return box + " " + taxLabel(m.draft.TaxRate)
	}
	return m.fields[f].View()
}

func (m *FormModel) writeMessages(b *strings.Builder) {
	if m.saving {
		b.WriteString(subtitleStyle.Render("  Saving...") + "\n\n")
	}
	if m.statusMsg != "" {
		b.WriteString(statusStyle.Render("  "+m.statusMsg) + "\n\n")
	}
	if m.err != "" {
		b.WriteString(errStyle.Render("  Error: "+m.err) + "\n\n")
	}
}

func (m *FormModel) viewPreview() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Preview") + "\n\n")
	b.WriteString(boxStyle.Render(export.Text(m.document())) + "\n\n")
	m.writeMessages(&b)
	b.WriteString(helpStyle.Render("  x: export PDF  ctrl+s: save  esc: back to editing"))
	return b.String()
}
