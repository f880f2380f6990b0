package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeEdit
)

// settings form field indices
const (
	settingsFieldName = iota
	settingsFieldEmail
	settingsFieldPhone
	settingsFieldAddress
	settingsFieldTax
	settingsFieldTaxRate
	settingsFieldTerms
	settingsFieldCount
)

var settingsLabels = [settingsFieldCount]string{
	"Company Name:", "Email:", "Phone:", "Address:", "Tax Enabled:", "Tax Rate (%):", "Payment Terms:",
}

type settingsLoadedMsg struct {
	settings *domain.CompanySettings
	err      error
}

type settingsSavedMsg struct {
	settings *domain.CompanySettings
	err      error
}

// SettingsModel manages the company profile screen
type SettingsModel struct {
	svc        Services
	mode       settingsMode
	settings   *domain.CompanySettings
	taxEnabled bool // edit buffer for the switch
	fields     []textinput.Model
	fieldFocus int
	loading    bool
	saving     bool
	err        string
	statusMsg  string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(svc Services) *SettingsModel {
	return &SettingsModel{
		svc:     svc,
		mode:    settingsModeView,
		loading: true,
	}
}

// IsCapturingInput returns true when the edit form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode == settingsModeEdit
}

func (m *SettingsModel) Init() tea.Cmd {
	return func() tea.Msg {
		s, err := m.svc.Settings.Get(context.Background())
		return settingsLoadedMsg{settings: s, err: err}
	}
}

func (m *SettingsModel) initForm() {
	s := m.settings
	m.fields = make([]textinput.Model, settingsFieldCount)
	m.fields[settingsFieldName] = newInput("Company name", 40, 120, s.CompanyName)
	m.fields[settingsFieldEmail] = newInput("billing@example.com", 40, 120, s.CompanyEmail)
	m.fields[settingsFieldPhone] = newInput("Phone", 24, 40, s.CompanyPhone)
	m.fields[settingsFieldAddress] = newInput("Street, City", 60, 240, s.CompanyAddress)
	m.fields[settingsFieldTaxRate] = newInput("10", 10, 10, s.TaxRate.String())
	m.fields[settingsFieldTerms] = newInput(domain.DefaultPaymentTerms, 40, 120, s.DefaultPaymentTerms)
	m.taxEnabled = s.TaxEnabled

	m.fieldFocus = settingsFieldName
	m.fields[settingsFieldName].Focus()
}

// fieldVisible hides the tax rate while tax is switched off
func (m *SettingsModel) fieldVisible(f int) bool {
	return f != settingsFieldTaxRate || m.taxEnabled
}

func (m *SettingsModel) moveFocus(step int) tea.Cmd {
	m.fields[m.fieldFocus].Blur()
	f := m.fieldFocus
	for {
		f = (f + step + settingsFieldCount) % settingsFieldCount
		if m.fieldVisible(f) {
			break
		}
	}
	m.fieldFocus = f
	if f == settingsFieldTax {
		return nil
	}
	return m.fields[f].Focus()
}

// formSettings builds the settings to save from the edit buffers. A hidden
// tax rate keeps whatever was last typed, or the stored rate if that does not parse.
func (m *SettingsModel) formSettings() *domain.CompanySettings {
	s := *m.settings
	s.CompanyName = strings.TrimSpace(m.fields[settingsFieldName].Value())
	s.CompanyEmail = m.fields[settingsFieldEmail].Value()
	s.CompanyPhone = m.fields[settingsFieldPhone].Value()
	s.CompanyAddress = m.fields[settingsFieldAddress].Value()
	s.TaxEnabled = m.taxEnabled
	rate := m.fields[settingsFieldTaxRate].Value()
	if m.taxEnabled {
		s.TaxRate = parseAmount(rate)
	} else if d, err := decimal.NewFromString(strings.TrimSpace(rate)); err == nil && !d.IsNegative() {
		s.TaxRate = d
	}
	s.DefaultPaymentTerms = m.fields[settingsFieldTerms].Value()
	return &s
}

func (m *SettingsModel) saveSettings() tea.Cmd {
	if m.saving {
		return nil
	}
	s := m.formSettings()
	if s.CompanyName == "" {
		m.err = "Company name is required"
		return nil
	}
	if err := s.Validate(); err != nil {
		m.err = strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
		return nil
	}

	m.saving = true
	m.err = ""
	return func() tea.Msg {
		err := m.svc.Settings.Update(context.Background(), s)
		return settingsSavedMsg{settings: s, err: err}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsLoadedMsg:
		m.loading = false
		m.settings = msg.settings
		switch {
		case errors.Is(msg.err, service.ErrSettingsMissing):
			m.err = "Company settings are missing"
		case msg.err != nil:
			m.err = "Failed to load settings"
		}
		return m, nil

	case settingsSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.err = "Failed to save settings"
			return m, nil
		}
		m.settings = msg.settings
		m.mode = settingsModeView
		m.statusMsg = "Settings saved successfully"
		return m, nil
	}

	if m.mode == settingsModeEdit {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok && !m.loading {
		if key.Matches(msg, DefaultKeyMap.Select) && m.settings != nil {
			m.mode = settingsModeEdit
			m.statusMsg = ""
			m.err = ""
			m.initForm()
			return m, textinput.Blink
		}
		if key.Matches(msg, DefaultKeyMap.Back) {
			return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenList} }
		}
	}

	return m, nil
}

func (m *SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, DefaultKeyMap.Back):
			m.mode = settingsModeView
			m.err = ""
			return m, nil

		case key.Matches(msg, DefaultKeyMap.Next):
			return m, m.moveFocus(1)

		case key.Matches(msg, DefaultKeyMap.Previous):
			return m, m.moveFocus(-1)

		case key.Matches(msg, DefaultKeyMap.Save):
			return m, m.saveSettings()

		case msg.String() == "enter":
			if m.fieldFocus == settingsFieldTerms {
				return m, m.saveSettings()
			}
			return m, m.moveFocus(1)
		}

		if m.fieldFocus == settingsFieldTax {
			if key.Matches(msg, DefaultKeyMap.Toggle) || cycleStep(msg) != 0 {
				m.taxEnabled = !m.taxEnabled
			}
			return m, nil
		}
	}

	if m.fieldFocus == settingsFieldTax {
		return m, nil
	}

	// Update the focused text input
	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *SettingsModel) View() string {
	if m.loading {
		return "Loading settings..."
	}
	if m.mode == settingsModeEdit {
		return m.viewForm()
	}
	return m.viewSettings()
}

func (m *SettingsModel) viewSettings() string {
	var s string
	s += titleStyle.Render("Company Settings") + "\n\n"

	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != "" {
		s += errStyle.Render("  Error: "+m.err) + "\n\n"
	}
	if m.settings == nil {
		s += helpStyle.Render("  esc: back")
		return s
	}

	c := m.settings
	labelStyle := lipgloss.NewStyle().Bold(true).Width(22)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)
	row := func(label, value string) {
		s += fmt.Sprintf("  %s %s\n", labelStyle.Render(label), valueStyle.Render(value))
	}

	row("Company Name:", c.CompanyName)
	row("Email:", c.CompanyEmail)
	row("Phone:", c.CompanyPhone)
	row("Address:", c.CompanyAddress)
	if c.TaxEnabled {
		row("Tax:", taxLabel(c.TaxRate))
	} else {
		row("Tax:", "disabled")
	}
	row("Payment Terms:", c.DefaultPaymentTerms)
	row("Next Invoice:", c.InvoiceNumber(m.svc.Numbering.Prefix, m.svc.Numbering.Width))

	s += "\n" + helpStyle.Render("  enter: edit settings  esc: back")

	return s
}

func (m *SettingsModel) viewForm() string {
	var s string
	s += titleStyle.Render("Edit Company Settings") + "\n\n"

	for i, label := range settingsLabels {
		if !m.fieldVisible(i) {
			continue
		}
		indicator := "  "
		labelStyle := subtitleStyle
		if i == m.fieldFocus {
			indicator = "> "
			labelStyle = focusedLabel
		}

		value := ""
		if i == settingsFieldTax {
			value = "[ ] off"
			if m.taxEnabled {
				value = "[x] on"
			}
		} else {
			value = m.fields[i].View()
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), value)
	}

	if m.saving {
		s += subtitleStyle.Render("  Saving...") + "\n\n"
	}
	if m.err != "" {
		s += errStyle.Render("  Error: "+m.err) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  space: toggle tax  ctrl+s: save  esc: cancel")

	return s
}
