package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/google/uuid"
)

// InvoiceRepo is a SQLite implementation of InvoiceRepository
type InvoiceRepo struct {
	q querier
}

const invoiceColumns = `
	id, invoice_number, invoice_type, invoice_date, due_date, status,
	client_name, client_email, client_address,
	subtotal, gst_enabled, gst_rate, gst_amount, total,
	payment_terms, notes, created_at, updated_at
`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a new invoice and assigns its ID. Line items are stored separately.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}

	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	now := time.Now()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.q.ExecContext(ctx, query,
		invoice.ID,
		invoice.InvoiceNumber,
		string(invoice.Type),
		invoice.InvoiceDate.Format(dateLayout),
		nullDate(invoice.DueDate),
		string(invoice.Status),
		invoice.ClientName,
		nullString(invoice.ClientEmail),
		nullString(invoice.ClientAddress),
		invoice.Subtotal.String(),
		invoice.TaxEnabled,
		invoice.TaxRate.String(),
		invoice.TaxAmount.String(),
		invoice.Total.String(),
		nullString(invoice.PaymentTerms),
		nullString(invoice.Notes),
		formatTime(invoice.CreatedAt),
		formatTime(invoice.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

// GetByID retrieves an invoice together with its line items in display order
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`

	invoice, err := scanInvoice(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	items, err := r.getLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	invoice.LineItems = items

	return invoice, nil
}

// List retrieves all invoices, most recently created first
func (r *InvoiceRepo) List(ctx context.Context) ([]*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC, rowid DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}

// Update overwrites an existing invoice record
func (r *InvoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}

	query := `
		UPDATE invoices
		SET invoice_number = ?, invoice_type = ?, invoice_date = ?, due_date = ?, status = ?,
		    client_name = ?, client_email = ?, client_address = ?,
		    subtotal = ?, gst_enabled = ?, gst_rate = ?, gst_amount = ?, total = ?,
		    payment_terms = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	invoice.UpdatedAt = time.Now()

	result, err := r.q.ExecContext(ctx, query,
		invoice.InvoiceNumber,
		string(invoice.Type),
		invoice.InvoiceDate.Format(dateLayout),
		nullDate(invoice.DueDate),
		string(invoice.Status),
		invoice.ClientName,
		nullString(invoice.ClientEmail),
		nullString(invoice.ClientAddress),
		invoice.Subtotal.String(),
		invoice.TaxEnabled,
		invoice.TaxRate.String(),
		invoice.TaxAmount.String(),
		invoice.Total.String(),
		nullString(invoice.PaymentTerms),
		nullString(invoice.Notes),
		formatTime(invoice.UpdatedAt),
		invoice.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	return expectOneRow(result, "invoice "+invoice.ID)
}

// DeleteLineItems removes every line item of an invoice
func (r *InvoiceRepo) DeleteLineItems(ctx context.Context, invoiceID string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM line_items WHERE invoice_id = ?`, invoiceID); err != nil {
		return fmt.Errorf("failed to delete line items: %w", err)
	}
	return nil
}

// InsertLineItems adds items to an invoice, sort order taken from slice position
func (r *InvoiceRepo) InsertLineItems(ctx context.Context, invoiceID string, items []domain.LineItem) error {
	query := `
		INSERT INTO line_items (id, invoice_id, description, quantity, rate, amount, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	for i := range items {
		item := &items[i]
		if err := item.Validate(); err != nil {
			return fmt.Errorf("invalid line item %d: %w", i+1, err)
		}

		id := uuid.NewString()
		_, err := r.q.ExecContext(ctx, query,
			id,
			invoiceID,
			item.Description,
			item.Quantity.String(),
			item.Rate.String(),
			item.Amount.String(),
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to add line item %d: %w", i+1, err)
		}

		item.ID = id
		item.InvoiceID = invoiceID
		item.SortOrder = i
	}

	return nil
}

func (r *InvoiceRepo) getLineItems(ctx context.Context, invoiceID string) ([]domain.LineItem, error) {
	query := `
		SELECT id, invoice_id, description, quantity, rate, amount, sort_order
		FROM line_items
		WHERE invoice_id = ?
		ORDER BY sort_order
	`

	rows, err := r.q.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var item domain.LineItem
		err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.Description,
			&item.Quantity,
			&item.Rate,
			&item.Amount,
			&item.SortOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return items, nil
}

// scanInvoice reads one invoiceColumns row
func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	var invoiceType, invoiceDate, status, createdAt, updatedAt string
	var dueDate, email, address, terms, notes sql.NullString

	err := row.Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoiceType,
		&invoiceDate,
		&dueDate,
		&status,
		&invoice.ClientName,
		&email,
		&address,
		&invoice.Subtotal,
		&invoice.TaxEnabled,
		&invoice.TaxRate,
		&invoice.TaxAmount,
		&invoice.Total,
		&terms,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	invoice.Type = domain.InvoiceType(invoiceType)
	invoice.Status = domain.InvoiceStatus(status)
	invoice.ClientEmail = email.String
	invoice.ClientAddress = address.String
	invoice.PaymentTerms = terms.String
	invoice.Notes = notes.String

	if invoice.InvoiceDate, err = parseDate(invoiceDate); err != nil {
		return nil, fmt.Errorf("failed to parse invoice_date: %w", err)
	}

	if dueDate.Valid {
		t, err := parseDate(dueDate.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse due_date: %w", err)
		}
		invoice.DueDate = &t
	}

	if invoice.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	if invoice.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return invoice, nil
}
