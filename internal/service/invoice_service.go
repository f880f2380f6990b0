package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Numbering controls how new invoice numbers are rendered
type Numbering struct {
	Prefix string
	Width  int
}

// OpenedDraft is what the editor starts from
type OpenedDraft struct {
	Draft   *domain.Draft
	Company *domain.CompanySettings // nil when settings could not be loaded
}

// InvoiceService loads, edits and persists invoices
type InvoiceService interface {
	// ListInvoices returns every invoice, newest first, without line items
	ListInvoices(ctx context.Context) ([]*domain.Invoice, error)

	// GetInvoice returns one invoice with its line items
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)

	// OpenDraft prepares the editor state. An empty id starts a new invoice.
	// The result is never nil; on error it holds defaults.
	OpenDraft(ctx context.Context, id string) (*OpenedDraft, error)

	// Save validates and persists the draft in one transaction. On success
	// the draft is bound to the stored invoice so later saves update it.
	Save(ctx context.Context, d *domain.Draft) (*domain.Invoice, error)
}

type invoiceService struct {
	store     repository.Store
	numbering Numbering
	logger    *slog.Logger
	now       func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(store repository.Store, numbering Numbering, logger *slog.Logger) InvoiceService {
	return &invoiceService{
		store:     store,
		numbering: numbering,
		logger:    logger.With("component", "invoice"),
		now:       time.Now,
	}
}

func (s *invoiceService) ListInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	invoices, err := s.store.Invoices().List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "error loading invoices", "error", err)
		return nil, fmt.Errorf("%w invoices: %w", ErrLoadFailed, err)
	}
	return invoices, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	invoice, err := s.store.Invoices().GetByID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "error loading invoice", "invoice_id", id, "error", err)
		return nil, fmt.Errorf("%w invoice: %w", ErrLoadFailed, err)
	}
	return invoice, nil
}

func (s *invoiceService) OpenDraft(ctx context.Context, id string) (*OpenedDraft, error) {
	var (
		g                       errgroup.Group
		settings                *domain.CompanySettings
		invoice                 *domain.Invoice
		settingsErr, invoiceErr error
	)

	g.Go(func() error {
		var err error
		settings, err = s.store.Settings().Get(ctx)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			settingsErr = ErrSettingsMissing
		case err != nil:
			settingsErr = fmt.Errorf("%w settings: %w", ErrLoadFailed, err)
		}
		return settingsErr
	})

	if id != "" {
		g.Go(func() error {
			var err error
			invoice, err = s.store.Invoices().GetByID(ctx, id)
			if err != nil {
				invoiceErr = fmt.Errorf("%w invoice: %w", ErrLoadFailed, err)
			}
			return invoiceErr
		})
	}

	// both failures are reported, not just the first
	_ = g.Wait()
	err := errors.Join(invoiceErr, settingsErr)
	if err != nil {
		s.logger.ErrorContext(ctx, "error opening draft", "invoice_id", id, "error", err)
	}

	opened := &OpenedDraft{Company: settings}
	switch {
	case invoice != nil:
		opened.Draft = domain.DraftFromInvoice(invoice)
	case settings != nil && id == "":
		number := settings.InvoiceNumber(s.numbering.Prefix, s.numbering.Width)
		opened.Draft = domain.NewDraft(settings, number, s.now())
	default:
		opened.Draft = domain.NewDraft(settings, "", s.now())
	}

	return opened, err
}

func (s *invoiceService) Save(ctx context.Context, d *domain.Draft) (*domain.Invoice, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	invoice := d.Invoice()
	if err := invoice.Validate(); err != nil {
		return nil, err
	}

	creating := d.IsNew()
	err := s.store.RunInTx(ctx, func(r repository.Repositories) error {
		if creating {
			settings, err := r.Settings().Get(ctx)
			if err != nil {
				return err
			}
			if err := r.Invoices().Create(ctx, invoice); err != nil {
				return err
			}
			if err := r.Settings().IncrementNextInvoiceNumber(ctx, settings.ID); err != nil {
				return err
			}
		} else {
			if err := r.Invoices().Update(ctx, invoice); err != nil {
				return err
			}
			if err := r.Invoices().DeleteLineItems(ctx, invoice.ID); err != nil {
				return err
			}
		}
		return r.Invoices().InsertLineItems(ctx, invoice.ID, invoice.LineItems)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "error saving invoice",
			"invoice_id", d.ID, "invoice_number", d.InvoiceNumber, "error", err)
		return nil, fmt.Errorf("%w invoice: %w", ErrSaveFailed, err)
	}

	d.ID = invoice.ID
	s.logger.InfoContext(ctx, "invoice saved",
		"invoice_id", invoice.ID,
		"invoice_number", invoice.InvoiceNumber,
		"created", creating,
		"items", len(invoice.LineItems),
		"total", invoice.Total.StringFixed(2))

	return invoice, nil
}
