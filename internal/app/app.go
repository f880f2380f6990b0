package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"syscall"

	"github.com/andy/invoicer/internal/config"
	"github.com/andy/invoicer/internal/crypto"
	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/logging"
	"github.com/andy/invoicer/internal/repository"
	"github.com/andy/invoicer/internal/service"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	Store repository.Store

	// Services
	InvoiceService  service.InvoiceService
	SettingsService service.SettingsService

	logFile io.Closer
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config and opening the log file
// 2. Getting encryption key from keyring
// 3. Opening database and running migrations
// 4. Creating the store and services
// 5. Provisioning default company settings
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logger, logFile, err := logging.Setup(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	password, err := encryptionKey(crypto.NewKeyring())
	if err != nil {
		logFile.Close()
		return nil, err
	}

	a, err := newApp(ctx, cfg, password, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		logFile.Close()
		return nil, err
	}
	a.logFile = logFile
	return a, nil
}

// newApp wires everything below the keyring
func newApp(ctx context.Context, cfg *config.Config, password string, logger *slog.Logger) (*App, error) {
	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := repository.NewSQLStore(database)
	numbering := service.Numbering{
		Prefix: cfg.Invoice.NumberPrefix,
		Width:  cfg.Invoice.NumberWidth,
	}
	invoiceService := service.NewInvoiceService(store, numbering, logger)
	settingsService := service.NewSettingsService(store, logger)

	if _, err := settingsService.Provision(ctx); err != nil {
		database.Close()
		return nil, err
	}

	logger.Info("invoicer started", "db", cfg.Database.Path)

	return &App{
		Config:          cfg,
		DB:              database,
		Logger:          logger,
		Store:           store,
		InvoiceService:  invoiceService,
		SettingsService: settingsService,
	}, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	var err error
	if a.DB != nil {
		err = a.DB.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return err
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}

// encryptionKey returns the stored key, prompting for a new one on first run
func encryptionKey(keyring crypto.Keyring) (string, error) {
	password, err := keyring.GetKey()
	if err == nil {
		return password, nil
	}

	fmt.Println("Setting up database encryption for the first time...")
	password, err = promptForPassword()
	if err != nil {
		return "", fmt.Errorf("failed to set password: %w", err)
	}

	if err := keyring.SetKey(password); err != nil {
		return "", fmt.Errorf("failed to store encryption key: %w", err)
	}
	return password, nil
}

// promptForPassword prompts user for a new database password (first run)
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your invoices will be stored in an encrypted database.")
	fmt.Println("The password is kept in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}
