package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Billing settings
	Billing BillingConfig `yaml:"billing"`

	// User info printed on exported bills
	User UserConfig `yaml:"user"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database
}

type BillingConfig struct {
	DefaultType   string `yaml:"default_type"`   // "invoice" or "act"
	DefaultStatus string `yaml:"default_status"` // status for freshly generated bills
	OutputDir     string `yaml:"output_dir"`     // Directory for exported PDFs
}

type UserConfig struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
}

// DefaultConfigPath returns ~/.config/hourtab/config.yaml
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "hourtab", "config.yaml")
	}
	return filepath.Join(homeDir, ".config", "hourtab", "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", "hourtab", "hourtab.db"),
		},
		Billing: BillingConfig{
			DefaultType:   "invoice",
			DefaultStatus: "draft",
			OutputDir:     filepath.Join(homeDir, ".config", "hourtab", "bills"),
		},
		User: UserConfig{
			Name:    "",
			Email:   "",
			Address: "",
			Phone:   "",
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse YAML
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (for database, exports, etc.)
func (c *Config) EnsureDirectories() error {
	// Create database directory
	dbDir := filepath.Dir(c.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return err
	}

	// Create bill output directory
	if err := os.MkdirAll(c.Billing.OutputDir, 0755); err != nil {
		return err
	}

	return nil
}
