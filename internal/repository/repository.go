package repository

import (
	"context"

	"github.com/andy/invoicer/internal/domain"
)

// SettingsRepository manages the singleton company profile
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.CompanySettings, error) // domain.ErrNotFound if not provisioned
	Create(ctx context.Context, settings *domain.CompanySettings) error
	Update(ctx context.Context, settings *domain.CompanySettings) error // leaves the sequence counter alone
	IncrementNextInvoiceNumber(ctx context.Context, id string) error
}

// InvoiceRepository manages invoice and line item persistence
type InvoiceRepository interface {
	List(ctx context.Context) ([]*domain.Invoice, error) // newest first, without line items
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	Create(ctx context.Context, invoice *domain.Invoice) error
	Update(ctx context.Context, invoice *domain.Invoice) error
	DeleteLineItems(ctx context.Context, invoiceID string) error
	// InsertLineItems stores items in slice order and assigns their IDs in place
	InsertLineItems(ctx context.Context, invoiceID string, items []domain.LineItem) error
}

// Repositories groups the repositories bound to one connection or transaction
type Repositories interface {
	Settings() SettingsRepository
	Invoices() InvoiceRepository
}

// Store is the record store. RunInTx commits when fn returns nil and rolls
// back otherwise.
type Store interface {
	Repositories
	RunInTx(ctx context.Context, fn func(Repositories) error) error
}
