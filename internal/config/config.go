package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/sodcapital/reconcile/internal/matcher"
)

// Config represents the top-level reconcile.yaml configuration.
type Config struct {
	Database     DatabaseConfig `yaml:"database"`
	Matching     MatchingConfig `yaml:"matching"`
	Audit        AuditConfig    `yaml:"audit"`
	BankAccounts []BankAccount  `yaml:"bank_accounts,omitempty"`
}

// DatabaseConfig locates the reconciliation database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// MatchingConfig overrides the matcher thresholds.
type MatchingConfig struct {
	AmountTolerance string `yaml:"amount_tolerance"` // decimal string, e.g. "0.01"
	WindowDays      int    `yaml:"window_days"`
}

// AuditConfig locates the append-only reconciliation log.
type AuditConfig struct {
	Dir string `yaml:"dir"`
}

// BankAccount maps a bank feed to an internal account identifier.
type BankAccount struct {
	Name     string `yaml:"name"`
	Format   string `yaml:"format"` // statement parser format: "ofx" or "csv"
	LastFour string `yaml:"last_four"`
	Account  string `yaml:"account"`
}

// Load reads a reconcile.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	std := matcher.DefaultConfig()
	return &Config{
		Database: DatabaseConfig{
			Path: "data/reconcile.db",
		},
		Matching: MatchingConfig{
			AmountTolerance: std.Tolerance.String(),
			WindowDays:      std.WindowDays,
		},
		Audit: AuditConfig{
			Dir: "logs",
		},
	}
}

// MatcherConfig converts the matching section into matcher thresholds.
func (c *Config) MatcherConfig() (matcher.Config, error) {
	tolerance, err := decimal.NewFromString(c.Matching.AmountTolerance)
	if err != nil {
		return matcher.Config{}, fmt.Errorf("parsing amount_tolerance %q: %w", c.Matching.AmountTolerance, err)
	}
	return matcher.Config{Tolerance: tolerance, WindowDays: c.Matching.WindowDays}, nil
}

// AccountFor returns the bank account mapping whose name matches, or nil.
func (c *Config) AccountFor(name string) *BankAccount {
	for i := range c.BankAccounts {
		if c.BankAccounts[i].Name == name {
			return &c.BankAccounts[i]
		}
	}
	return nil
}
