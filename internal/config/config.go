// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/errors"
	"lakehouse-cost/internal/logging"
)

// Environment variables that override file settings
const (
	EnvRatesDir = "LAKEHOUSE_COST_RATES_DIR"
	EnvAddr     = "LAKEHOUSE_COST_ADDR"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Pricing contains rate card settings
	Pricing PricingConfig `json:"pricing" yaml:"pricing"`

	// Workload contains defaults for new sessions
	Workload WorkloadConfig `json:"workload" yaml:"workload"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Server contains HTTP server settings
	Server ServerConfig `json:"server" yaml:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// PricingConfig contains rate card settings
type PricingConfig struct {
	// RatesDir is the directory holding the rate files
	RatesDir string `json:"rates_dir" yaml:"rates_dir"`

	// ComputeFile holds job and development instance rates (.csv or .xlsx)
	ComputeFile string `json:"compute_file" yaml:"compute_file"`

	// WarehouseFile holds SQL warehouse rates (.csv or .xlsx)
	WarehouseFile string `json:"warehouse_file" yaml:"warehouse_file"`

	// StorageFile holds storage class rates (.csv or .xlsx)
	StorageFile string `json:"storage_file" yaml:"storage_file"`

	// Currency labels report amounts; rate cards are single-currency
	Currency types.Currency `json:"currency" yaml:"currency"`

	// IngestFamilies are the compute families offered to Stage and Raw tiers
	IngestFamilies []string `json:"ingest_families" yaml:"ingest_families"`

	// TransformFamilies are the compute families offered to Curated and DataProduct tiers
	TransformFamilies []string `json:"transform_families" yaml:"transform_families"`

	// WarehouseFamilies filters the warehouse rate file
	WarehouseFamilies []string `json:"warehouse_families" yaml:"warehouse_families"`

	// DevelopmentFamilies filters the compute file for development clusters
	DevelopmentFamilies []string `json:"development_families" yaml:"development_families"`
}

// Path resolves a rate file name against RatesDir
func (p PricingConfig) Path(name string) string {
	if filepath.IsAbs(name) || p.RatesDir == "" {
		return name
	}
	return filepath.Join(p.RatesDir, name)
}

// WorkloadConfig contains defaults applied to new sessions
type WorkloadConfig struct {
	// StorageMode is the initial storage estimation mode
	StorageMode types.StorageMode `json:"storage_mode" yaml:"storage_mode"`

	// IncludeStageZone prices the Stage storage zone
	IncludeStageZone bool `json:"include_stage_zone" yaml:"include_stage_zone"`

	// DisabledTiers are created but excluded from pricing
	DisabledTiers []types.Tier `json:"disabled_tiers,omitempty" yaml:"disabled_tiers,omitempty"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" yaml:"default_format"`

	// ShowDetails shows per-record breakdowns
	ShowDetails bool `json:"show_details" yaml:"show_details"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" yaml:"addr"`

	// MaxSessions bounds the in-memory session store (0 = unbounded)
	MaxSessions int `json:"max_sessions" yaml:"max_sessions"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			RatesDir:            "rates",
			ComputeFile:         "compute_rates.csv",
			WarehouseFile:       "sql_warehouse_rates.csv",
			StorageFile:         "storage_rates.csv",
			Currency:            types.CurrencyUSD,
			IngestFamilies:      []string{"DLT Advanced Compute Photon", "DLT Advanced Compute"},
			TransformFamilies:   []string{"Jobs Compute", "Jobs Compute Photon"},
			WarehouseFamilies:   []string{"SQL Pro Compute", "SQL Compute"},
			DevelopmentFamilies: []string{"All-Purpose Compute"},
		},
		Workload: WorkloadConfig{
			StorageMode:      types.StorageDirect,
			IncludeStageZone: true,
		},
		Output: OutputConfig{
			DefaultFormat: "table",
			ShowDetails:   true,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxSessions: 1000,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a JSON or YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, errors.Config("read config "+path, err)
	}

	cfg := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Config("decode config "+path, err)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv() {
	if dir := os.Getenv(EnvRatesDir); dir != "" {
		c.Pricing.RatesDir = dir
	}
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
}

// Validate checks settings that would otherwise fail later
func (c *Config) Validate() error {
	if c.Workload.StorageMode != "" && !c.Workload.StorageMode.IsValid() {
		return errors.Config("invalid workload.storage_mode "+string(c.Workload.StorageMode), nil)
	}
	for _, t := range c.Workload.DisabledTiers {
		if !t.IsValid() {
			return errors.Config("invalid workload.disabled_tiers entry "+string(t), nil)
		}
	}
	if c.Server.MaxSessions < 0 {
		return errors.Config("server.max_sessions must be >= 0", nil)
	}
	return nil
}

// Save saves configuration to a file, as YAML when the extension asks for it
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
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
