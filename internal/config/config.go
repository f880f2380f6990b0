package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Invoice numbering and export
	Invoice InvoiceConfig `yaml:"invoice"`

	// Log output
	Log LogConfig `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLCipher database
}

type InvoiceConfig struct {
	NumberPrefix string `yaml:"number_prefix"` // Invoice number prefix (e.g., "INV")
	NumberWidth  int    `yaml:"number_width"`  // Zero-padded digits in the sequence
	OutputDir    string `yaml:"output_dir"`    // Directory for generated PDFs
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"` // debug, info, warn, error
}

// configDir returns ~/.config/invoicer
func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", "invoicer")
}

// DefaultConfigPath returns ~/.config/invoicer/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := configDir()

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "invoicer.db"),
		},
		Invoice: InvoiceConfig{
			NumberPrefix: "INV",
			NumberWidth:  4,
			OutputDir:    filepath.Join(dir, "invoices"),
		},
		Log: LogConfig{
			Path:  filepath.Join(dir, "invoicer.log"),
			Level: "info",
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Fields missing from the file keep their defaults
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.Invoice.NumberWidth <= 0 {
		cfg.Invoice.NumberWidth = 4
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates the database, PDF output and log directories
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Database.Path),
		c.Invoice.OutputDir,
		filepath.Dir(c.Log.Path),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
