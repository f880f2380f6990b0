package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"), "test-key")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, database.RunMigrations())
	return NewSQLStore(database)
}

func seedSettings(t *testing.T, store *SQLStore) *domain.CompanySettings {
	t.Helper()

	s := domain.NewCompanySettings()
	s.CompanyName = "ACME Pty Ltd"
	s.CompanyEmail = "billing@acme.test"
	s.NextInvoiceNumber = 7
	require.NoError(t, store.Settings().Create(context.Background(), s))
	return s
}

func sampleInvoice(client string) *domain.Invoice {
	d := domain.NewDraft(nil, "INV-0007", time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local))
	d.ClientName = client
	d.TaxRate = decimal.NewFromInt(10)
	d.SetDescription(0, "Design")
	d.SetQuantity(0, decimal.NewFromInt(3))
	d.SetRate(0, decimal.NewFromInt(10))
	d.AddItem()
	d.SetDescription(1, "Hosting")
	d.SetRate(1, decimal.NewFromInt(5))
	return d.Invoice()
}

func TestSettingsRepo(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("Get before provisioning", func(t *testing.T) {
		_, err := store.Settings().Get(ctx)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	created := seedSettings(t, store)
	require.NotEmpty(t, created.ID)

	t.Run("Get returns the stored profile", func(t *testing.T) {
		got, err := store.Settings().Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "ACME Pty Ltd", got.CompanyName)
		assert.Equal(t, "billing@acme.test", got.CompanyEmail)
		assert.Equal(t, "", got.CompanyPhone)
		assert.True(t, got.TaxEnabled)
		assert.True(t, got.TaxRate.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, 7, got.NextInvoiceNumber)
	})

	t.Run("Update keeps the counter", func(t *testing.T) {
		got, err := store.Settings().Get(ctx)
		require.NoError(t, err)
		got.TaxEnabled = false
		got.TaxRate = decimal.RequireFromString("12.5")
		got.NextInvoiceNumber = 99
		require.NoError(t, store.Settings().Update(ctx, got))

		reloaded, err := store.Settings().Get(ctx)
		require.NoError(t, err)
		assert.False(t, reloaded.TaxEnabled)
		assert.True(t, reloaded.TaxRate.Equal(decimal.RequireFromString("12.5")))
		assert.Equal(t, 7, reloaded.NextInvoiceNumber)
	})

	t.Run("Increment", func(t *testing.T) {
		require.NoError(t, store.Settings().IncrementNextInvoiceNumber(ctx, created.ID))
		got, err := store.Settings().Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 8, got.NextInvoiceNumber)

		err = store.Settings().IncrementNextInvoiceNumber(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Second row is rejected", func(t *testing.T) {
		err := store.Settings().Create(ctx, domain.NewCompanySettings())
		assert.Error(t, err)
	})
}

func TestInvoiceRepo(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	repo := store.Invoices()

	inv := sampleInvoice("Globex")
	due := time.Date(2026, 3, 31, 0, 0, 0, 0, time.Local)
	inv.DueDate = &due
	inv.Notes = "Thanks"

	require.NoError(t, repo.Create(ctx, inv))
	require.NotEmpty(t, inv.ID)
	require.NoError(t, repo.InsertLineItems(ctx, inv.ID, inv.LineItems))
	assert.NotEmpty(t, inv.LineItems[0].ID)

	t.Run("GetByID joins line items in order", func(t *testing.T) {
		got, err := repo.GetByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-0007", got.InvoiceNumber)
		assert.Equal(t, domain.InvoiceTypeInvoice, got.Type)
		assert.Equal(t, domain.InvoiceStatusDraft, got.Status)
		assert.Equal(t, "Globex", got.ClientName)
		assert.Equal(t, "Thanks", got.Notes)
		assert.Equal(t, "2026-03-01", got.InvoiceDate.Format("2006-01-02"))
		require.NotNil(t, got.DueDate)
		assert.Equal(t, "2026-03-31", got.DueDate.Format("2006-01-02"))
		assert.True(t, got.Subtotal.Equal(decimal.NewFromInt(35)))
		assert.True(t, got.TaxAmount.Equal(decimal.RequireFromString("3.5")))
		assert.True(t, got.Total.Equal(decimal.RequireFromString("38.5")))
		assert.True(t, got.TaxRate.Equal(decimal.NewFromInt(10)))

		require.Len(t, got.LineItems, 2)
		assert.Equal(t, "Design", got.LineItems[0].Description)
		assert.Equal(t, "Hosting", got.LineItems[1].Description)
		assert.True(t, got.LineItems[0].Amount.Equal(decimal.NewFromInt(30)))
		assert.Equal(t, 1, got.LineItems[1].SortOrder)
	})

	t.Run("GetByID missing", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "does-not-exist")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Update and replace line items", func(t *testing.T) {
		inv.Status = domain.InvoiceStatusPaid
		inv.DueDate = nil
		require.NoError(t, repo.Update(ctx, inv))
		require.NoError(t, repo.DeleteLineItems(ctx, inv.ID))

		replacement := []domain.LineItem{domain.NewLineItem()}
		replacement[0].Description = "Only row"
		require.NoError(t, repo.InsertLineItems(ctx, inv.ID, replacement))

		got, err := repo.GetByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, got.Status)
		assert.Nil(t, got.DueDate)
		require.Len(t, got.LineItems, 1)
		assert.Equal(t, "Only row", got.LineItems[0].Description)
	})

	t.Run("Update missing", func(t *testing.T) {
		ghost := sampleInvoice("Nobody")
		ghost.ID = "ghost"
		assert.ErrorIs(t, repo.Update(ctx, ghost), domain.ErrNotFound)
	})

	t.Run("List newest first", func(t *testing.T) {
		second := sampleInvoice("Initech")
		second.InvoiceNumber = "INV-0008"
		require.NoError(t, repo.Create(ctx, second))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Initech", list[0].ClientName)
		assert.Equal(t, "Globex", list[1].ClientName)
		assert.Empty(t, list[0].LineItems)
	})
}

func TestRunInTxRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	settings := seedSettings(t, store)

	boom := errors.New("boom")
	inv := sampleInvoice("Globex")

	err := store.RunInTx(ctx, func(r Repositories) error {
		if err := r.Invoices().Create(ctx, inv); err != nil {
			return err
		}
		if err := r.Settings().IncrementNextInvoiceNumber(ctx, settings.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, err := store.Invoices().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := store.Settings().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, got.NextInvoiceNumber)
}

func TestRunInTxCommits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	inv := sampleInvoice("Globex")

	err := store.RunInTx(ctx, func(r Repositories) error {
		if err := r.Invoices().Create(ctx, inv); err != nil {
			return err
		}
		return r.Invoices().InsertLineItems(ctx, inv.ID, inv.LineItems)
	})
	require.NoError(t, err)

	got, err := store.Invoices().GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, got.LineItems, 2)
}
