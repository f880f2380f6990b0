package tui

import (
	"context"
	"fmt"

	"github.com/andy/invoicer/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ListModel shows every invoice, newest first
type ListModel struct {
	svc       Services
	invoices  []*domain.Invoice
	cursor    int
	loading   bool
	loadErr   bool
	statusMsg string
}

type invoicesDataMsg struct {
	invoices []*domain.Invoice
	err      error
}

// NewListModel creates the invoice list. status is a message carried over
// from the previous screen, e.g. after a save.
func NewListModel(svc Services, status string) *ListModel {
	return &ListModel{
		svc:       svc,
		loading:   true,
		statusMsg: status,
	}
}

func (m *ListModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *ListModel) loadInvoices() tea.Cmd {
	return func() tea.Msg {
		invoices, err := m.svc.Invoices.ListInvoices(context.Background())
		return invoicesDataMsg{invoices: invoices, err: err}
	}
}

func (m *ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadInvoices()

	case invoicesDataMsg:
		m.loading = false
		// the service has already logged the cause
		m.loadErr = msg.err != nil
		m.invoices = msg.invoices
		if m.loadErr {
			m.invoices = nil
		}
		if m.cursor >= len(m.invoices) {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m *ListModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		if len(m.invoices) > 0 {
			id := m.invoices[m.cursor].ID
			return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenForm, InvoiceID: id} }
		}
	case key.Matches(msg, DefaultKeyMap.New):
		return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenForm} }
	case key.Matches(msg, DefaultKeyMap.Refresh):
		m.statusMsg = ""
		return m, func() tea.Msg { return RefreshDataMsg{} }
	}

	return m, nil
}

func (m *ListModel) View() string {
	if m.loading {
		return "Loading invoices..."
	}

	var s string
	s += titleStyle.Render("Invoices") + "\n\n"

	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}

	if m.loadErr {
		s += errStyle.Render("  Failed to load invoices") + "\n\n"
	}

	if len(m.invoices) == 0 {
		if !m.loadErr {
			s += subtitleStyle.Render("  No invoices yet. Press 'n' to create one.") + "\n"
		}
		s += "\n" + helpStyle.Render("  n: new invoice  r: refresh  ,: settings")
		return s
	}

	s += subtitleStyle.Render(fmt.Sprintf(
		"  %-12s  %-8s  %-24s  %-12s  %12s  %s",
		"Number", "Type", "Client", "Date", "Total", "Status",
	)) + "\n"

	for i, inv := range m.invoices {
		line := fmt.Sprintf("  %-12s  %-8s  %-24s  %-12s  %12s  ",
			truncateStr(inv.InvoiceNumber, 12),
			inv.Type.Label(),
			truncateStr(inv.ClientName, 24),
			inv.InvoiceDate.Format("Jan 02, 2006"),
			formatMoney(inv.Total),
		)

		if i == m.cursor {
			s += selectedStyle.Render(line+string(inv.Status)) + "\n"
		} else {
			s += line + statusBadge(inv.Status) + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: edit  n: new invoice  r: refresh  ,: settings")

	return s
}
