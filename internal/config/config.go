package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBasePath is the BucketFS directory listed when no path is given
const DefaultBasePath = "/buckets/bfsdefault/default/"

// OutputFormats lists the accepted values of the format option
var OutputFormats = []string{"table", "json", "csv", "yaml"}

// CatalogConfig represents listing catalog configuration
type CatalogConfig struct {
	// Enabled records every listing made by the scan command in the catalog
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the catalog database; empty means $BFSWALK_HOME/catalog/scans.db
	DBPath string `yaml:"db_path"`

	// KeepScans is the number of scans kept per root after a new scan (0 = keep all)
	KeepScans int `yaml:"keep_scans"`
}

// Config represents bfswalk configuration options
type Config struct {
	// BasePath is the directory listed when no path argument is given
	BasePath string `yaml:"base_path"`

	// Timeout bounds a single listing (0 = no timeout)
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written (empty = console only)
	LogDir string `yaml:"log_dir"`

	// Format is the default output format for listings
	Format string `yaml:"format"`

	// Catalog contains listing catalog configuration
	Catalog CatalogConfig `yaml:"catalog"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		BasePath: DefaultBasePath,
		Timeout:  5 * time.Minute,
		LogLevel: "info",
		LogDir:   "",
		Format:   "table",
		Catalog: CatalogConfig{
			Enabled:   true,
			DBPath:    "",
			KeepScans: 20,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are strings in YAML
	type yamlConfig struct {
		BasePath string        `yaml:"base_path"`
		Timeout  string        `yaml:"timeout"`
		LogLevel string        `yaml:"log_level"`
		LogDir   string        `yaml:"log_dir"`
		Format   string        `yaml:"format"`
		Catalog  CatalogConfig `yaml:"catalog"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.BasePath != "" {
		cfg.BasePath = yamlCfg.BasePath
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.Format != "" {
		cfg.Format = yamlCfg.Format
	}

	// Catalog fields are merged only when present, so "enabled: false" is honored
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if catalogSection, exists := rawMap["catalog"]; exists && catalogSection != nil {
			catalog := yamlCfg.Catalog
			catalogMap, _ := catalogSection.(map[string]interface{})

			if _, exists := catalogMap["enabled"]; exists {
				cfg.Catalog.Enabled = catalog.Enabled
			}
			if _, exists := catalogMap["db_path"]; exists {
				cfg.Catalog.DBPath = catalog.DBPath
			}
			if _, exists := catalogMap["keep_scans"]; exists {
				cfg.Catalog.KeepScans = catalog.KeepScans
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .bfswalk/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".bfswalk", "config.yaml"))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(basePath *string, timeout *time.Duration, logLevel *string, logDir *string, format *string) {
	if basePath != nil {
		c.BasePath = *basePath
	}
	if timeout != nil {
		c.Timeout = *timeout
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if format != nil {
		c.Format = *format
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	if !IsValidFormat(c.Format) {
		return fmt.Errorf("invalid format %q, must be one of: table, json, csv, yaml", c.Format)
	}

	if c.Catalog.KeepScans < 0 {
		return fmt.Errorf("catalog.keep_scans must be >= 0, got %d", c.Catalog.KeepScans)
	}

	return nil
}

// IsValidFormat reports whether format is one of OutputFormats, ignoring case
func IsValidFormat(format string) bool {
	format = strings.TrimSpace(format)
	for _, f := range OutputFormats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}
