package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/repository"
)

// SettingsService manages the company profile
type SettingsService interface {
	// Get returns the profile, or ErrSettingsMissing when none exists
	Get(ctx context.Context) (*domain.CompanySettings, error)

	// Update validates and writes every editable field
	Update(ctx context.Context, settings *domain.CompanySettings) error

	// Provision creates the default profile if none exists and reports whether it did
	Provision(ctx context.Context) (bool, error)
}

type settingsService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(store repository.Store, logger *slog.Logger) SettingsService {
	return &settingsService{
		store:  store,
		logger: logger.With("component", "settings"),
	}
}

func (s *settingsService) Get(ctx context.Context) (*domain.CompanySettings, error) {
	settings, err := s.store.Settings().Get(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "error loading settings", "error", err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrSettingsMissing
		}
		return nil, fmt.Errorf("%w settings: %w", ErrLoadFailed, err)
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, settings *domain.CompanySettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.store.Settings().Update(ctx, settings); err != nil {
		s.logger.ErrorContext(ctx, "error saving settings", "error", err)
		return fmt.Errorf("%w settings: %w", ErrSaveFailed, err)
	}

	s.logger.InfoContext(ctx, "settings saved", "tax_enabled", settings.TaxEnabled, "tax_rate", settings.TaxRate.String())
	return nil
}

func (s *settingsService) Provision(ctx context.Context) (bool, error) {
	_, err := s.store.Settings().Get(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("%w settings: %w", ErrLoadFailed, err)
	}

	if err := s.store.Settings().Create(ctx, domain.NewCompanySettings()); err != nil {
		return false, fmt.Errorf("failed to provision settings: %w", err)
	}

	s.logger.InfoContext(ctx, "provisioned default company settings")
	return true, nil
}
