package tui

// SwitchScreenMsg requests a screen change. InvoiceID selects the invoice to
// edit on ScreenForm; empty means a new one. Status is shown by the target screen.
type SwitchScreenMsg struct {
	Screen    Screen
	InvoiceID string
	Status    string
}

// RefreshDataMsg asks the invoice list to reload
type RefreshDataMsg struct{}
