package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for configuration fields.
const (
	DefaultMigrationsDir    = "./migrations"
	DefaultLedgerTable      = "schema_ledger"
	DefaultChecksumPolicy   = "sha256"
	DefaultDelimiter        = ";"
	DefaultInstalledBy      = "migledger"
	DefaultLockTimeout      = 5 * time.Second
	DefaultStatementTimeout = 30 * time.Second
)

// Config holds the application configuration loaded from file, environment, and flags.
type Config struct {
	DatabaseURL      string
	MigrationsDir    string
	LedgerTable      string
	ChecksumPolicy   string
	Delimiter        string
	WholeBody        bool
	InstalledBy      string
	LockTimeout      time.Duration
	StatementTimeout time.Duration
}

// yamlConfig is the raw YAML file representation with string durations.
type yamlConfig struct {
	DatabaseURL      string `yaml:"database_url"`
	MigrationsDir    string `yaml:"migrations_dir"`
	LedgerTable      string `yaml:"ledger_table"`
	ChecksumPolicy   string `yaml:"checksum_policy"`
	Delimiter        string `yaml:"delimiter"`
	WholeBody        bool   `yaml:"whole_body"`
	InstalledBy      string `yaml:"installed_by"`
	LockTimeout      string `yaml:"lock_timeout"`
	StatementTimeout string `yaml:"statement_timeout"`
}

// New returns a Config populated with default values.
func New() *Config {
	return &Config{
		MigrationsDir:    DefaultMigrationsDir,
		LedgerTable:      DefaultLedgerTable,
		ChecksumPolicy:   DefaultChecksumPolicy,
		Delimiter:        DefaultDelimiter,
		InstalledBy:      DefaultInstalledBy,
		LockTimeout:      DefaultLockTimeout,
		StatementTimeout: DefaultStatementTimeout,
	}
}

// Load reads a YAML configuration file and returns a Config.
// If allowMissing is true and the file does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return New(), nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return fromYAML(&raw)
}

// fromYAML converts the raw YAML representation to a Config with defaults applied.
func fromYAML(raw *yamlConfig) (*Config, error) {
	cfg := New()

	if raw.DatabaseURL != "" {
		cfg.DatabaseURL = raw.DatabaseURL
	}

	if raw.MigrationsDir != "" {
		cfg.MigrationsDir = raw.MigrationsDir
	}

	if raw.LedgerTable != "" {
		cfg.LedgerTable = raw.LedgerTable
	}

	if raw.ChecksumPolicy != "" {
		cfg.ChecksumPolicy = raw.ChecksumPolicy
	}

	if raw.Delimiter != "" {
		cfg.Delimiter = raw.Delimiter
	}

	cfg.WholeBody = raw.WholeBody

	if raw.InstalledBy != "" {
		cfg.InstalledBy = raw.InstalledBy
	}

	if raw.LockTimeout != "" {
		d, err := time.ParseDuration(raw.LockTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing lock_timeout %q: %w", raw.LockTimeout, err)
		}

		cfg.LockTimeout = d
	}

	if raw.StatementTimeout != "" {
		d, err := time.ParseDuration(raw.StatementTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing statement_timeout %q: %w", raw.StatementTimeout, err)
		}

		cfg.StatementTimeout = d
	}

	return cfg, nil
}

// MergeEnv overrides config fields from MIGLEDGER_* environment variables.
func MergeEnv(cfg *Config) {
	if v := os.Getenv("MIGLEDGER_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	if v := os.Getenv("MIGLEDGER_MIGRATIONS_DIR"); v != "" {
		cfg.MigrationsDir = v
	}

	if v := os.Getenv("MIGLEDGER_LEDGER_TABLE"); v != "" {
		cfg.LedgerTable = v
	}

	if v := os.Getenv("MIGLEDGER_CHECKSUM_POLICY"); v != "" {
		cfg.ChecksumPolicy = v
	}

	if v := os.Getenv("MIGLEDGER_INSTALLED_BY"); v != "" {
		cfg.InstalledBy = v
	}

	if v := os.Getenv("MIGLEDGER_LOCK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LockTimeout = d
		}
	}

	if v := os.Getenv("MIGLEDGER_STATEMENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.StatementTimeout = d
		}
	}
}
