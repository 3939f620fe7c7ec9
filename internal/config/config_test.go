package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nebulus-dev/gantry/internal/errors"
)

func writeConfig(t *testing.T, dir, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(contents), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != DefaultAddr {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.Search.DebounceMS != DefaultDebounceMS || cfg.Search.MinQueryLength != DefaultMinQueryLength {
		t.Errorf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Vault.Backend != "disk" || cfg.Vault.Dir != DefaultVaultDir {
		t.Errorf("unexpected vault defaults: %+v", cfg.Vault)
	}
	if cfg.Path() != "" {
		t.Errorf("Path should be empty for defaults, got %q", cfg.Path())
	}
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"name": "nebulus", "search": {"debounce_ms": 150}}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Name != "nebulus" {
		t.Errorf("expected name from file, got %q", cfg.Name)
	}
	if cfg.Search.Debounce() != 150*time.Millisecond {
		t.Errorf("expected 150ms debounce, got %v", cfg.Search.Debounce())
	}
	if cfg.Search.MinQueryLength != DefaultMinQueryLength {
		t.Errorf("unset field should default, got %d", cfg.Search.MinQueryLength)
	}
	if cfg.Path() == "" {
		t.Error("Path should record the loaded file")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{not json`)

	_, err := Load(dir)
	var ge *errors.Error
	if !stderrors.As(err, &ge) || ge.Code != errors.CodeConfigInvalid {
		t.Fatalf("expected coded config error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"addr": "localhost:1111"}`)
	t.Setenv("GANTRY_ADDR", "localhost:2222")
	t.Setenv("GANTRY_SEARCH_DEBOUNCE_MS", "50")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != "localhost:2222" {
		t.Errorf("env should win over file, got %q", cfg.Addr)
	}
	if cfg.Search.DebounceMS != 50 {
		t.Errorf("expected env debounce 50, got %d", cfg.Search.DebounceMS)
	}
}

func TestDotEnvLoaded(t *testing.T) {
	dir := t.TempDir()
	os.Unsetenv("GANTRY_VAULT_DIR")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GANTRY_VAULT_DIR=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("GANTRY_VAULT_DIR") })

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Vault.Dir != "from-dotenv" {
		t.Errorf("expected .env override, got %q", cfg.Vault.Dir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"negative debounce", func(c *Config) { c.Search.DebounceMS = -1 }},
		{"zero min query length", func(c *Config) { c.Search.MinQueryLength = 0 }},
		{"unknown vault backend", func(c *Config) { c.Vault.Backend = "floppy" }},
		{"s3 without bucket", func(c *Config) { c.Vault.Backend = "s3"; c.Vault.Bucket = "" }},
		{"disk without dir", func(c *Config) { c.Vault.Dir = "" }},
		{"negative max size", func(c *Config) { c.Vault.MaxSizeBytes = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var ge *errors.Error
			if !stderrors.As(err, &ge) || ge.Code != errors.CodeConfigInvalid {
				t.Errorf("expected coded validation error, got %v", err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}
