// Package config loads and validates the gantry.json project
// configuration, with environment overrides layered on top.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/nebulus-dev/gantry/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "gantry.json"

	// DefaultAddr is the default server listen address.
	DefaultAddr = "localhost:8090"

	// DefaultDebounceMS is the default search debounce window in
	// milliseconds.
	DefaultDebounceMS = 300

	// DefaultMinQueryLength is the minimum query length that triggers
	// a search.
	DefaultMinQueryLength = 2

	// DefaultVaultDir is the default disk vault directory.
	DefaultVaultDir = "vault"

	// DefaultVaultMaxSize is the default per-document size limit.
	DefaultVaultMaxSize = 10 << 20
)

// Config represents the complete gantry.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Addr is the server listen address (host:port).
	Addr string `json:"addr,omitempty"`

	// Search configures the search box and endpoint.
	Search SearchConfig `json:"search,omitempty"`

	// Vault configures document storage.
	Vault VaultConfig `json:"vault,omitempty"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `json:"log_level,omitempty"`

	// configPath stores the path the config was loaded from.
	configPath string
}

// SearchConfig configures the search subsystem.
type SearchConfig struct {
	// DebounceMS is the quiet window before a query is issued.
	DebounceMS int `json:"debounce_ms,omitempty"`

	// MinQueryLength is the minimum query length that triggers a
	// search.
	MinQueryLength int `json:"min_query_length,omitempty"`
}

// Debounce returns the debounce window as a duration.
func (s SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// VaultConfig configures document storage.
type VaultConfig struct {
	// Backend is "disk" or "s3".
	Backend string `json:"backend,omitempty"`

	// Dir is the storage directory for the disk backend.
	Dir string `json:"dir,omitempty"`

	// Bucket and Prefix locate documents for the s3 backend.
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty"`

	// MaxSizeBytes is the per-document size limit (0 = no limit).
	MaxSizeBytes int64 `json:"max_size_bytes,omitempty"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Name:     "gantry",
		Addr:     DefaultAddr,
		LogLevel: "info",
		Search: SearchConfig{
			DebounceMS:     DefaultDebounceMS,
			MinQueryLength: DefaultMinQueryLength,
		},
		Vault: VaultConfig{
			Backend:      "disk",
			Dir:          DefaultVaultDir,
			MaxSizeBytes: DefaultVaultMaxSize,
		},
	}
}

// Load reads gantry.json from dir, applies defaults and environment
// overrides, and validates the result. A missing file is not an error;
// defaults plus environment apply.
func Load(dir string) (*Config, error) {
	// .env files are a local-development convenience; a missing file
	// is fine.
	godotenv.Load(filepath.Join(dir, ".env"))

	cfg := Default()

	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, errors.FromError(err, errors.CodeConfigNotFound)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New(errors.CodeConfigInvalid).
				WithDetail("parsing %s: %v", path, err).
				Wrap(err)
		}
		cfg.configPath = path
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers GANTRY_* environment variables over the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("GANTRY_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("GANTRY_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("GANTRY_SEARCH_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.DebounceMS = n
		}
	}
	if v := os.Getenv("GANTRY_VAULT_BACKEND"); v != "" {
		c.Vault.Backend = v
	}
	if v := os.Getenv("GANTRY_VAULT_DIR"); v != "" {
		c.Vault.Dir = v
	}
	if v := os.Getenv("GANTRY_VAULT_BUCKET"); v != "" {
		c.Vault.Bucket = v
	}
}

// applyDefaults fills zero-valued fields a partial file left unset.
func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Search.DebounceMS == 0 {
		c.Search.DebounceMS = DefaultDebounceMS
	}
	if c.Search.MinQueryLength == 0 {
		c.Search.MinQueryLength = DefaultMinQueryLength
	}
	if c.Vault.Backend == "" {
		c.Vault.Backend = "disk"
	}
	if c.Vault.Backend == "disk" && c.Vault.Dir == "" {
		c.Vault.Dir = DefaultVaultDir
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	if c.Search.DebounceMS < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("search.debounce_ms must not be negative, got %d", c.Search.DebounceMS)
	}
	if c.Search.MinQueryLength < 1 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("search.min_query_length must be at least 1, got %d", c.Search.MinQueryLength)
	}

	switch c.Vault.Backend {
	case "disk":
		if c.Vault.Dir == "" {
			return errors.New(errors.CodeConfigInvalid).
				WithDetail("vault.dir is required for the disk backend")
		}
	case "s3":
		if c.Vault.Bucket == "" {
			return errors.New(errors.CodeConfigInvalid).
				WithDetail("vault.bucket is required for the s3 backend")
		}
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("vault.backend %q is not one of disk, s3", c.Vault.Backend)
	}

	if c.Vault.MaxSizeBytes < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("vault.max_size_bytes must not be negative, got %d", c.Vault.MaxSizeBytes)
	}
	return nil
}

// Path returns the file the configuration was loaded from, or empty
// when defaults applied.
func (c *Config) Path() string {
	return c.configPath
}
