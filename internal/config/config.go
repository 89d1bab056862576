// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fencecost/core/bom"
	"fencecost/core/types"
	"fencecost/internal/errors"
	"fencecost/internal/logging"
)

// Environment variables that override file settings
const (
	EnvPricebookPath   = "PRICEBOOK_PATH"
	EnvPricebookSource = "PRICEBOOK_SOURCE"
	EnvPricebookDSN    = "PRICEBOOK_DSN"
	EnvAddr            = "FENCECOST_ADDR"
	EnvStore           = "FENCECOST_STORE"
	EnvStorePath       = "FENCECOST_STORE_PATH"
	EnvLogLevel        = "FENCECOST_LOG_LEVEL"
	EnvFormat          = "FENCECOST_FORMAT"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricebook selects where catalog prices come from
	Pricebook PricebookConfig `json:"pricebook"`

	// Estimate holds pricing defaults and fence ratios
	Estimate EstimateConfig `json:"estimate"`

	// Server configures the HTTP API
	Server ServerConfig `json:"server"`

	// Storage configures where quotes are kept
	Storage StorageConfig `json:"storage"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricebookConfig contains pricebook source settings
type PricebookConfig struct {
	// Path is an explicit CSV or XLSX file
	Path string `json:"path,omitempty"`

	// Source is csv, xlsx or postgres; empty infers from Path
	Source string `json:"source,omitempty"`

	// DSN is the Postgres connection string
	DSN string `json:"dsn,omitempty"`

	// Table is the Postgres table name
	Table string `json:"table,omitempty"`

	// Sheet is the XLSX sheet name
	Sheet string `json:"sheet,omitempty"`

	// SearchPaths are tried in order when Path is empty
	SearchPaths []string `json:"search_paths"`
}

// EstimateConfig contains estimate defaults
type EstimateConfig struct {
	// Currency labels rendered quotes
	Currency types.Currency `json:"currency"`

	// DefaultPostsPerFt is used when a fence request omits posts_per_ft
	DefaultPostsPerFt decimal.Decimal `json:"default_posts_per_ft"`

	// Ratios size fence materials
	Ratios bom.Ratios `json:"ratios"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr                  string `json:"addr"`
	ReadTimeoutSeconds    int    `json:"read_timeout_seconds"`
	WriteTimeoutSeconds   int    `json:"write_timeout_seconds"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// ReadTimeout returns the read timeout
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-request timeout
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// StorageConfig contains quote storage settings
type StorageConfig struct {
	// Backend is memory, file or sqlite
	Backend string `json:"backend"`

	// Path is the directory or database file
	Path string `json:"path,omitempty"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Pricebook: PricebookConfig{
			SearchPaths: []string{"pricebook.csv", filepath.Join("samples", "pricebook.csv")},
		},
		Estimate: EstimateConfig{
			Currency:          types.CurrencyUSD,
			DefaultPostsPerFt: types.DefaultPostsPerFt,
			Ratios:            bom.DefaultRatios(),
		},
		Server: ServerConfig{
			Addr:                  ":8000",
			ReadTimeoutSeconds:    15,
			WriteTimeoutSeconds:   30,
			RequestTimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			Backend: "memory",
		},
		Output: OutputConfig{
			DefaultFormat: "text",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, then applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Config("failed to read config "+path, err)
		default:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, errors.Config("failed to parse config "+path, err)
			}
		}
	}

	config.ApplyEnv(os.Getenv)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides settings from environment variables read via getenv
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Pricebook.Path, EnvPricebookPath)
	set(&c.Pricebook.Source, EnvPricebookSource)
	set(&c.Pricebook.DSN, EnvPricebookDSN)
	set(&c.Server.Addr, EnvAddr)
	set(&c.Storage.Backend, EnvStore)
	set(&c.Storage.Path, EnvStorePath)
	set(&c.Logging.Level, EnvLogLevel)
	set(&c.Output.DefaultFormat, EnvFormat)
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	switch c.Pricebook.Source {
	case "", "csv", "xlsx":
	case "postgres":
		if c.Pricebook.DSN == "" {
			return errors.Config("pricebook.dsn is required for the postgres source", nil)
		}
	default:
		return errors.Config("pricebook.source must be csv, xlsx or postgres, got "+c.Pricebook.Source, nil)
	}

	switch c.Storage.Backend {
	case "memory", "file", "sqlite":
	default:
		return errors.Config("storage.backend must be memory, file or sqlite, got "+c.Storage.Backend, nil)
	}

	if !c.Estimate.DefaultPostsPerFt.IsPositive() {
		return errors.Config("estimate.default_posts_per_ft must be positive", nil)
	}
	if err := c.Estimate.Ratios.Validate(); err != nil {
		return err
	}

	if c.Server.Addr == "" {
		return errors.Config("server.addr is required", nil)
	}
	return nil
}

// PricebookCandidates lists files to try in discovery order: the explicit
// path first, then the search paths
func (c *Config) PricebookCandidates() []string {
	candidates := make([]string, 0, len(c.Pricebook.SearchPaths)+1)
	if c.Pricebook.Path != "" {
		candidates = append(candidates, c.Pricebook.Path)
	}
	return append(candidates, c.Pricebook.SearchPaths...)
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
