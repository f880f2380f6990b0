package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/logging"
	"github.com/andy/invoicer/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvoiceService struct {
	invoices []*domain.Invoice
	listErr  error
	opened   *service.OpenedDraft
	openErr  error
	saveErr  error
	saved    []*domain.Draft
}

func (f *fakeInvoiceService) ListInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.invoices, nil
}
func (f *fakeInvoiceService) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeInvoiceService) OpenDraft(ctx context.Context, id string) (*service.OpenedDraft, error) {
	return f.opened, f.openErr
}
func (f *fakeInvoiceService) Save(ctx context.Context, d *domain.Draft) (*domain.Invoice, error) {
	f.saved = append(f.saved, d)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	d.ID = "inv-1"
	return d.Invoice(), nil
}

type fakeSettingsService struct {
	settings *domain.CompanySettings
	updated  *domain.CompanySettings
}

func (f *fakeSettingsService) Get(ctx context.Context) (*domain.CompanySettings, error) {
	if f.settings == nil {
		return nil, service.ErrSettingsMissing
	}
	return f.settings, nil
}
func (f *fakeSettingsService) Update(ctx context.Context, s *domain.CompanySettings) error {
	f.updated = s
	return nil
}
func (f *fakeSettingsService) Provision(ctx context.Context) (bool, error) { return false, nil }

func testSettings() *domain.CompanySettings {
	s := domain.NewCompanySettings()
	s.ID = "settings-1"
	s.CompanyName = "ACME"
	s.NextInvoiceNumber = 7
	return s
}

func testServices(t *testing.T, inv *fakeInvoiceService, set *fakeSettingsService) Services {
	return Services{
		Invoices:  inv,
		Settings:  set,
		Numbering: service.Numbering{Prefix: "INV", Width: 4},
		OutputDir: t.TempDir(),
		Logger:    logging.Discard(),
	}
}

// run executes a command and feeds its message back into the model
func run(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	m.Update(msg)
	return msg
}

func keyMsg(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func typeText(m tea.Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func openForm(t *testing.T) (*FormModel, *fakeInvoiceService) {
	t.Helper()
	settings := testSettings()
	fake := &fakeInvoiceService{opened: &service.OpenedDraft{
		Draft:   domain.NewDraft(settings, "INV-0007", time.Now()),
		Company: settings,
	}}
	m := NewFormModel(testServices(t, fake, &fakeSettingsService{settings: settings}), "")
	run(t, m, m.Init())
	require.False(t, m.loading)
	return m, fake
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$0.00", formatMoney(decimal.Zero))
	assert.Equal(t, "$38.50", formatMoney(decimal.RequireFromString("38.5")))
	assert.Equal(t, "$1,234,567.89", formatMoney(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "-$1,000.00", formatMoney(decimal.NewFromInt(-1000)))
}

func TestParseAmountTreatsInvalidAsZero(t *testing.T) {
	assert.True(t, parseAmount("12.5").Equal(decimal.RequireFromString("12.5")))
	assert.True(t, parseAmount(" 3 ").Equal(decimal.NewFromInt(3)))
	assert.True(t, parseAmount("abc").IsZero())
	assert.True(t, parseAmount("").IsZero())
	assert.True(t, parseAmount("-4").IsZero())
}

func TestFormModeToggle(t *testing.T) {
	assert.Equal(t, formPreviewing, formEditing.toggle())
	assert.Equal(t, formEditing, formPreviewing.toggle())
}

func TestFormPreviewKeepsDraft(t *testing.T) {
	m, _ := openForm(t)
	m.setFocus(fieldClientName)
	typeText(m, "Globex")
	require.Equal(t, "Globex", m.draft.ClientName)
	assert.True(t, m.IsCapturingInput())

	m.Update(keyMsg(tea.KeyCtrlP))
	assert.Equal(t, formPreviewing, m.mode)
	assert.True(t, m.IsCapturingInput())
	assert.Contains(t, m.View(), "Globex")
	assert.Contains(t, m.View(), "INV-0007")

	m.Update(keyMsg(tea.KeyEsc))
	assert.Equal(t, formEditing, m.mode)
	assert.Equal(t, "Globex", m.draft.ClientName)
}

func TestFormLineItemEditing(t *testing.T) {
	m, _ := openForm(t)

	qty := headerFieldCount + colQuantity
	rate := headerFieldCount + colRate

	m.setFocus(rate)
	typeText(m, "12.5")
	m.setFocus(qty)
	m.input(qty).SetValue("")
	typeText(m, "2")

	assert.True(t, m.draft.Items[0].Amount.Equal(decimal.NewFromInt(25)))
	totals := m.draft.Totals()
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("27.5")))

	// invalid numeric input counts as zero
	typeText(m, "x")
	assert.True(t, m.draft.Items[0].Quantity.IsZero())
	assert.True(t, m.draft.Items[0].Amount.IsZero())
}

func TestFormRowOperations(t *testing.T) {
	m, _ := openForm(t)

	// the only row cannot be removed
	m.setFocus(headerFieldCount)
	m.Update(keyMsg(tea.KeyCtrlD))
	assert.Len(t, m.draft.Items, 1)
	assert.Len(t, m.rows, 1)

	m.Update(keyMsg(tea.KeyCtrlN))
	require.Len(t, m.draft.Items, 2)
	require.Len(t, m.rows, 2)
	assert.Equal(t, headerFieldCount+itemColCount, m.focus)
	assert.True(t, m.draft.Items[1].Quantity.Equal(decimal.NewFromInt(1)))

	typeText(m, "Hosting")
	assert.Equal(t, "Hosting", m.draft.Items[1].Description)

	m.setFocus(headerFieldCount)
	m.Update(keyMsg(tea.KeyCtrlD))
	require.Len(t, m.draft.Items, 1)
	assert.Equal(t, "Hosting", m.draft.Items[0].Description)
	assert.Equal(t, "Hosting", m.rows[0][colDescription].Value())
}

func TestFormCycleAndToggleFields(t *testing.T) {
	m, _ := openForm(t)

	m.setFocus(fieldType)
	m.Update(keyMsg(tea.KeyRight))
	assert.Equal(t, domain.InvoiceTypeQuote, m.draft.Type)
	m.Update(keyMsg(tea.KeyRight))
	assert.Equal(t, domain.InvoiceTypeInvoice, m.draft.Type)

	m.setFocus(fieldStatus)
	m.Update(keyMsg(tea.KeyLeft))
	assert.Equal(t, domain.InvoiceStatusOverdue, m.draft.Status)

	m.setFocus(fieldTax)
	require.True(t, m.draft.TaxEnabled)
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.False(t, m.draft.TaxEnabled)
	assert.NotContains(t, m.View(), "Tax (10%):")
}

func TestFormSaveRequiresClientName(t *testing.T) {
	m, fake := openForm(t)

	_, cmd := m.Update(keyMsg(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	assert.Empty(t, fake.saved)
	assert.Equal(t, "Client name is required", m.err)
}

func TestFormSaveSuccessReturnsToList(t *testing.T) {
	m, fake := openForm(t)
	m.setFocus(fieldClientName)
	typeText(m, "Globex")

	_, cmd := m.Update(keyMsg(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	assert.True(t, m.saving)

	saved := cmd().(invoiceSavedMsg)
	require.NoError(t, saved.err)
	assert.True(t, saved.created)

	_, cmd = m.Update(saved)
	require.NotNil(t, cmd)
	sw, ok := cmd().(SwitchScreenMsg)
	require.True(t, ok)
	assert.Equal(t, ScreenList, sw.Screen)
	assert.Equal(t, "Invoice created successfully", sw.Status)
	assert.Equal(t, "inv-1", m.draft.ID)
	require.Len(t, fake.saved, 1)
	assert.NotSame(t, m.draft, fake.saved[0])
}

func TestFormSaveFailureKeepsDraft(t *testing.T) {
	m, fake := openForm(t)
	fake.saveErr = service.ErrSaveFailed
	m.setFocus(fieldClientName)
	typeText(m, "Globex")

	_, cmd := m.Update(keyMsg(tea.KeyCtrlS))
	run(t, m, cmd)

	assert.False(t, m.saving)
	assert.Equal(t, "Failed to save invoice", m.err)
	assert.True(t, m.draft.IsNew())
	assert.Equal(t, "Globex", m.draft.ClientName)
}

func TestFormRejectsBadDate(t *testing.T) {
	m, fake := openForm(t)
	m.setFocus(fieldClientName)
	typeText(m, "Globex")
	m.setFocus(fieldDue)
	typeText(m, "soon")

	_, cmd := m.Update(keyMsg(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	assert.Empty(t, fake.saved)
	assert.Contains(t, m.err, "Due date")
}

func TestFormLoadFailureShowsDefaults(t *testing.T) {
	fake := &fakeInvoiceService{
		opened:  &service.OpenedDraft{Draft: domain.NewDraft(nil, "", time.Now())},
		openErr: service.ErrLoadFailed,
	}
	m := NewFormModel(testServices(t, fake, &fakeSettingsService{}), "missing")
	run(t, m, m.Init())

	assert.Equal(t, "Failed to load invoice", m.err)
	assert.Len(t, m.rows, 1)
	assert.Contains(t, m.View(), "Failed to load invoice")
}

func TestFormSettingsFailureKeepsInvoice(t *testing.T) {
	settings := testSettings()
	d := domain.NewDraft(settings, "INV-0003", time.Now())
	d.ID = "inv-3"
	d.ClientName = "Globex"
	fake := &fakeInvoiceService{
		opened:  &service.OpenedDraft{Draft: d},
		openErr: fmt.Errorf("%w settings: %w", service.ErrLoadFailed, errors.New("disk I/O error")),
	}
	m := NewFormModel(testServices(t, fake, &fakeSettingsService{}), "inv-3")
	run(t, m, m.Init())

	assert.Equal(t, "Failed to load settings", m.err)
	assert.Equal(t, "Globex", m.draft.ClientName)
}

func TestPreviewKeepsKeysFromRoot(t *testing.T) {
	m, _ := openForm(t)
	root := New(m.svc)
	root.currentScreen = ScreenForm
	root.screen = m

	m.setFocus(fieldClientName)
	typeText(m, "Globex")
	m.Update(keyMsg(tea.KeyCtrlP))
	require.Equal(t, formPreviewing, m.mode)

	for _, k := range []string{"i", ",", "q"} {
		next, cmd := root.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		root = next.(Model)
		assert.Equal(t, ScreenForm, root.currentScreen, "key %q", k)
		assert.Same(t, m, root.screen, "key %q", k)
		if cmd != nil {
			_, quit := cmd().(tea.QuitMsg)
			assert.False(t, quit, "key %q", k)
		}
	}
	assert.Equal(t, "Globex", m.draft.ClientName)

	next, _ := root.Update(keyMsg(tea.KeyEsc))
	root = next.(Model)
	assert.Equal(t, formEditing, m.mode)
	assert.Equal(t, ScreenForm, root.currentScreen)

	// ctrl+c still quits
	_, cmd := root.Update(keyMsg(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	_, quit := cmd().(tea.QuitMsg)
	assert.True(t, quit)
}

func TestFormExportPDF(t *testing.T) {
	m, _ := openForm(t)
	m.setFocus(fieldClientName)
	typeText(m, "Globex")
	m.Update(keyMsg(tea.KeyCtrlP))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	msg := run(t, m, cmd).(pdfExportedMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, filepath.Join(m.svc.OutputDir, "INV-0007.pdf"), msg.path)

	data, err := os.ReadFile(msg.path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Contains(t, m.statusMsg, "INV-0007.pdf")
}

func TestListStates(t *testing.T) {
	fake := &fakeInvoiceService{}
	m := NewListModel(testServices(t, fake, &fakeSettingsService{}), "")
	assert.Equal(t, "Loading invoices...", m.View())

	run(t, m, m.Init())
	assert.Contains(t, m.View(), "No invoices yet")

	fake.invoices = []*domain.Invoice{
		{ID: "b", InvoiceNumber: "INV-0002", Type: domain.InvoiceTypeQuote, ClientName: "Initech", Status: domain.InvoiceStatusSent, Total: decimal.NewFromInt(1500)},
		{ID: "a", InvoiceNumber: "INV-0001", Type: domain.InvoiceTypeInvoice, ClientName: "Globex", Status: domain.InvoiceStatusDraft, Total: decimal.RequireFromString("38.5")},
	}
	m.Update(RefreshDataMsg{})
	run(t, m, m.loadInvoices())
	view := m.View()
	assert.True(t, strings.Index(view, "Initech") < strings.Index(view, "Globex"))
	assert.Contains(t, view, "$1,500.00")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	_, cmd := m.Update(keyMsg(tea.KeyEnter))
	sw := cmd().(SwitchScreenMsg)
	assert.Equal(t, SwitchScreenMsg{Screen: ScreenForm, InvoiceID: "a"}, sw)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.Equal(t, SwitchScreenMsg{Screen: ScreenForm}, cmd())
}

func TestListLoadFailure(t *testing.T) {
	fake := &fakeInvoiceService{listErr: errors.New("offline")}
	m := NewListModel(testServices(t, fake, &fakeSettingsService{}), "")
	run(t, m, m.Init())

	assert.Empty(t, m.invoices)
	assert.Contains(t, m.View(), "Failed to load invoices")
	assert.NotContains(t, m.View(), "offline")

	// r retries the load
	fake.listErr = nil
	fake.invoices = []*domain.Invoice{{ID: "a", InvoiceNumber: "INV-0001", ClientName: "Globex"}}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	require.Equal(t, RefreshDataMsg{}, cmd())
	_, cmd = m.Update(RefreshDataMsg{})
	assert.True(t, m.loading)
	run(t, m, cmd)
	assert.Contains(t, m.View(), "INV-0001")
	assert.NotContains(t, m.View(), "Failed to load invoices")
}

func TestSettingsKeepsStoredRateWhenHiddenInputIsInvalid(t *testing.T) {
	stored := testSettings()
	stored.TaxRate = decimal.RequireFromString("12.5")
	set := &fakeSettingsService{settings: stored}
	m := NewSettingsModel(testServices(t, &fakeInvoiceService{}, set))
	run(t, m, m.Init())

	m.Update(keyMsg(tea.KeyEnter))
	require.Equal(t, settingsModeEdit, m.mode)
	m.fields[settingsFieldTaxRate].SetValue("abc")
	for m.fieldFocus != settingsFieldTax {
		m.Update(keyMsg(tea.KeyTab))
	}
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.False(t, m.taxEnabled)

	_, cmd := m.Update(keyMsg(tea.KeyCtrlS))
	run(t, m, cmd)
	require.NotNil(t, set.updated)
	assert.False(t, set.updated.TaxEnabled)
	assert.True(t, set.updated.TaxRate.Equal(decimal.RequireFromString("12.5")), "got %s", set.updated.TaxRate)
}

func TestSettingsHidesTaxRateWhenDisabled(t *testing.T) {
	set := &fakeSettingsService{settings: testSettings()}
	m := NewSettingsModel(testServices(t, &fakeInvoiceService{}, set))
	run(t, m, m.Init())
	assert.Contains(t, m.View(), "INV-0007")

	m.Update(keyMsg(tea.KeyEnter))
	require.Equal(t, settingsModeEdit, m.mode)
	assert.Contains(t, m.View(), "Tax Rate (%):")

	m.fields[settingsFieldTaxRate].SetValue("12.5")
	for m.fieldFocus != settingsFieldTax {
		m.Update(keyMsg(tea.KeyTab))
	}
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.False(t, m.taxEnabled)
	assert.NotContains(t, m.View(), "Tax Rate (%):")

	m.Update(keyMsg(tea.KeyTab))
	assert.Equal(t, settingsFieldTerms, m.fieldFocus, "hidden tax rate is skipped")

	_, cmd := m.Update(keyMsg(tea.KeyCtrlS))
	run(t, m, cmd)
	require.NotNil(t, set.updated)
	assert.False(t, set.updated.TaxEnabled)
	assert.True(t, set.updated.TaxRate.Equal(decimal.RequireFromString("12.5")), "hidden rate is retained")
	assert.Equal(t, settingsModeView, m.mode)
	assert.Equal(t, "Settings saved successfully", m.statusMsg)
}

func TestSettingsRequiresCompanyName(t *testing.T) {
	set := &fakeSettingsService{settings: testSettings()}
	m := NewSettingsModel(testServices(t, &fakeInvoiceService{}, set))
	run(t, m, m.Init())
	m.Update(keyMsg(tea.KeyEnter))

	m.fields[settingsFieldName].SetValue("  ")
	_, cmd := m.Update(keyMsg(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	assert.Nil(t, set.updated)
	assert.Equal(t, "Company name is required", m.err)
}

func TestRootNavigationRebuildsScreens(t *testing.T) {
	fake := &fakeInvoiceService{}
	root := New(testServices(t, fake, &fakeSettingsService{settings: testSettings()}))

	next, _ := root.Update(SwitchScreenMsg{Screen: ScreenSettings})
	root = next.(Model)
	assert.Equal(t, ScreenSettings, root.currentScreen)
	_, ok := root.screen.(*SettingsModel)
	assert.True(t, ok)

	next, _ = root.Update(SwitchScreenMsg{Screen: ScreenList, Status: "Invoice created successfully"})
	root = next.(Model)
	list, ok := root.screen.(*ListModel)
	require.True(t, ok)
	assert.Equal(t, "Invoice created successfully", list.statusMsg)
	assert.True(t, list.loading)
}
