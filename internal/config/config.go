package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alvmarrod/peer-metrics/internal/stats"
)

const (
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"

	// PasswordEnv overrides postgres.password when set
	PasswordEnv = "PEER_METRICS_PG_PASSWORD"
)

// DefaultDatabases are the Nebula networks analyzed when none are configured
var DefaultDatabases = []string{
	"nebula_ipfs",
	"nebula_filecoin",
	"nebula_polkadot",
	"nebula_avail_mainnet",
}

// Postgres holds the connection parameters shared by every network database
type Postgres struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslmode"`
}

// Config holds all runtime configuration parameters
type Config struct {
	Databases           []string `json:"databases"`
	Source              string   `json:"source"`
	Postgres            Postgres `json:"postgres"`
	SQLiteDir           string   `json:"sqlite_dir"`
	SampleSize          int      `json:"sample_size"`
	BinWidth            int      `json:"bin_width"`
	CentralizationGuard string   `json:"centralization_guard"`
	Workers             int      `json:"workers"`
	OutputDir           string   `json:"output_dir"`
	MetricsPath         string   `json:"metrics_path"`
}

// LoadConfig reads and validates configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if pw, ok := os.LookupEnv(PasswordEnv); ok {
		cfg.Postgres.Password = pw
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Guard returns the parsed centralization guard
func (c *Config) Guard() stats.Guard {
	g, _ := stats.ParseGuard(c.CentralizationGuard)
	return g
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if len(cfg.Databases) == 0 {
		cfg.Databases = append([]string(nil), DefaultDatabases...)
	}
	if cfg.Source == "" {
		cfg.Source = SourcePostgres
	}
	if cfg.Postgres.Host == "" {
		cfg.Postgres.Host = "localhost"
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = 5432
	}
	if cfg.Postgres.User == "" {
		cfg.Postgres.User = "nebula"
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}
	if cfg.SQLiteDir == "" {
		cfg.SQLiteDir = "data"
	}
	if cfg.SampleSize == 0 {
		cfg.SampleSize = 5
	}
	if cfg.BinWidth == 0 {
		cfg.BinWidth = 20
	}
	if cfg.CentralizationGuard == "" {
		cfg.CentralizationGuard = stats.GuardReference.String()
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "results"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "run_metrics.json"
	}
}

// validate checks that required fields are present and values are sensible
func validate(cfg *Config) error {
	if cfg.Source != SourcePostgres && cfg.Source != SourceSQLite {
		return fmt.Errorf("source must be %q or %q, got %q", SourcePostgres, SourceSQLite, cfg.Source)
	}

	seen := make(map[string]bool, len(cfg.Databases))
	for _, db := range cfg.Databases {
		if db == "" {
			return fmt.Errorf("databases must not contain empty names")
		}
		if seen[db] {
			return fmt.Errorf("database %s listed more than once", db)
		}
		seen[db] = true
	}

	if cfg.SampleSize < 1 {
		return fmt.Errorf("sample_size must be >= 1")
	}
	if cfg.BinWidth < 1 {
		return fmt.Errorf("bin_width must be >= 1")
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}
	if cfg.Postgres.Port < 1 || cfg.Postgres.Port > 65535 {
		return fmt.Errorf("postgres.port must be between 1 and 65535")
	}
	if _, err := stats.ParseGuard(cfg.CentralizationGuard); err != nil {
		return err
	}
	return nil
}
