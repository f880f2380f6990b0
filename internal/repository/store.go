package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andy/invoicer/internal/db"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore is a SQLite implementation of Store
type SQLStore struct {
	db       *db.DB
	settings *SettingsRepo
	invoices *InvoiceRepo
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a store over an open, migrated database
func NewSQLStore(database *db.DB) *SQLStore {
	return &SQLStore{
		db:       database,
		settings: &SettingsRepo{q: database},
		invoices: &InvoiceRepo{q: database},
	}
}

func (s *SQLStore) Settings() SettingsRepository { return s.settings }

func (s *SQLStore) Invoices() InvoiceRepository { return s.invoices }

// RunInTx runs fn against repositories bound to a single transaction
func (s *SQLStore) RunInTx(ctx context.Context, fn func(Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(txRepos{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type txRepos struct {
	tx *sql.Tx
}

func (r txRepos) Settings() SettingsRepository { return &SettingsRepo{q: r.tx} }

func (r txRepos) Invoices() InvoiceRepository { return &InvoiceRepo{q: r.tx} }
