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

// SettingsRepo is a SQLite implementation of SettingsRepository
type SettingsRepo struct {
	q querier
}

// Get retrieves the company profile
func (r *SettingsRepo) Get(ctx context.Context) (*domain.CompanySettings, error) {
	query := `
		SELECT id, company_name, company_email, company_phone, company_address,
		       gst_enabled, gst_rate, default_payment_terms, next_invoice_number,
		       created_at, updated_at
		FROM company_settings
		LIMIT 1
	`

	s := &domain.CompanySettings{}
	var email, phone, address sql.NullString
	var createdAt, updatedAt string

	err := r.q.QueryRowContext(ctx, query).Scan(
		&s.ID,
		&s.CompanyName,
		&email,
		&phone,
		&address,
		&s.TaxEnabled,
		&s.TaxRate,
		&s.DefaultPaymentTerms,
		&s.NextInvoiceNumber,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company settings: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company settings: %w", err)
	}

	s.CompanyEmail = email.String
	s.CompanyPhone = phone.String
	s.CompanyAddress = address.String

	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return s, nil
}

// Create inserts the company profile. The table accepts a single row only.
func (r *SettingsRepo) Create(ctx context.Context, s *domain.CompanySettings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO company_settings (
			id, company_name, company_email, company_phone, company_address,
			gst_enabled, gst_rate, default_payment_terms, next_invoice_number,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.q.ExecContext(ctx, query,
		s.ID,
		s.CompanyName,
		nullString(s.CompanyEmail),
		nullString(s.CompanyPhone),
		nullString(s.CompanyAddress),
		s.TaxEnabled,
		s.TaxRate.String(),
		s.DefaultPaymentTerms,
		s.NextInvoiceNumber,
		formatTime(s.CreatedAt),
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create company settings: %w", err)
	}
	return nil
}

// Update writes every profile field except the invoice sequence counter
func (r *SettingsRepo) Update(ctx context.Context, s *domain.CompanySettings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	query := `
		UPDATE company_settings
		SET company_name = ?, company_email = ?, company_phone = ?, company_address = ?,
		    gst_enabled = ?, gst_rate = ?, default_payment_terms = ?, updated_at = ?
		WHERE id = ?
	`

	s.UpdatedAt = time.Now()

	result, err := r.q.ExecContext(ctx, query,
		s.CompanyName,
		nullString(s.CompanyEmail),
		nullString(s.CompanyPhone),
		nullString(s.CompanyAddress),
		s.TaxEnabled,
		s.TaxRate.String(),
		s.DefaultPaymentTerms,
		formatTime(s.UpdatedAt),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update company settings: %w", err)
	}

	return expectOneRow(result, "company settings")
}

// IncrementNextInvoiceNumber advances the sequence counter by one
func (r *SettingsRepo) IncrementNextInvoiceNumber(ctx context.Context, id string) error {
	query := `
		UPDATE company_settings
		SET next_invoice_number = next_invoice_number + 1, updated_at = ?
		WHERE id = ?
	`

	result, err := r.q.ExecContext(ctx, query, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to increment invoice number: %w", err)
	}

	return expectOneRow(result, "company settings")
}

func expectOneRow(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}
