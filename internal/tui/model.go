package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenList Screen = iota
	ScreenForm
	ScreenSettings
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenList:
		return "Invoices"
	case ScreenForm:
		return "Invoice"
	case ScreenSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// Services is what the screens need from the application
type Services struct {
	Invoices  service.InvoiceService
	Settings  service.SettingsService
	Numbering service.Numbering
	OutputDir string // PDF export directory
	Logger    *slog.Logger
}

// ServicesFromApp pulls the screen dependencies out of the container
func ServicesFromApp(a *app.App) Services {
	return Services{
		Invoices:  a.InvoiceService,
		Settings:  a.SettingsService,
		Numbering: service.Numbering{Prefix: a.Config.Invoice.NumberPrefix, Width: a.Config.Invoice.NumberWidth},
		OutputDir: a.Config.Invoice.OutputDir,
		Logger:    a.Logger.With("component", "tui"),
	}
}

func (s Services) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Model is the root Bubble Tea model
type Model struct {
	svc           Services
	currentScreen Screen
	screen        tea.Model
	width         int
	height        int
}

// New creates a new root model showing the invoice list
func New(svc Services) Model {
	return Model{
		svc:           svc,
		currentScreen: ScreenList,
		screen:        NewListModel(svc, ""),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.screen.Init()
}

// openScreen builds a fresh screen so every visit reloads its data
func (m *Model) openScreen(msg SwitchScreenMsg) tea.Cmd {
	m.currentScreen = msg.Screen
	switch msg.Screen {
	case ScreenForm:
		m.screen = NewFormModel(m.svc, msg.InvoiceID)
	case ScreenSettings:
		m.screen = NewSettingsModel(m.svc)
	default:
		m.currentScreen = ScreenList
		m.screen = NewListModel(m.svc, msg.Status)
	}
	return m.screen.Init()
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys (I, ",", Q) are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.screen.(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				return m, tea.Quit

			case key.Matches(msg, DefaultKeyMap.Invoices):
				return m, m.openScreen(SwitchScreenMsg{Screen: ScreenList})

			case key.Matches(msg, DefaultKeyMap.Settings):
				return m, m.openScreen(SwitchScreenMsg{Screen: ScreenSettings})
			}
		}

	case SwitchScreenMsg:
		return m, m.openScreen(msg)
	}

	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("invoicer - %s", m.currentScreen.String()))
	footer := footerStyle.Render("[I]nvoices  [,] Settings  [Q]uit")
	if m.activeScreenCapturingInput() {
		footer = footerStyle.Render("ctrl+c: quit")
	}

	content := m.screen.View()

	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s\n\n%s\n%s", header, divider, content, divider, footer)

	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI
func Run(a *app.App) error {
	p := tea.NewProgram(New(ServicesFromApp(a)), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
