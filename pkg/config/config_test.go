package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	APIKey     string        `envconfig:"API_KEY" required:"true"`
	Timeout    time.Duration `split_words:"true" default:"10s"`
	Recipients []string      `envconfig:"RECIPIENTS"`
}

func TestNewReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("SAMPLE_API_KEY", "secret")
	t.Setenv("SAMPLE_RECIPIENTS", "a@example.com,b@example.com")

	cfg, err := New[sampleConfig]("SAMPLE")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.APIKey != "secret" {
		t.Fatalf("APIKey = %q, want %q", cfg.APIKey, "secret")
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if len(cfg.Recipients) != 2 || cfg.Recipients[1] != "b@example.com" {
		t.Fatalf("Recipients = %#v", cfg.Recipients)
	}
}

func TestNewMissingRequiredIsConfigurationError(t *testing.T) {
	t.Setenv("MISSING_API_KEY", "")
	os.Unsetenv("MISSING_API_KEY")

	_, err := New[sampleConfig]("MISSING")
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("New() error = %v, want ErrInvalid", err)
	}
}

func TestExportEnvironmentKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "FILECFG_API_KEY=from-file\nFILECFG_TIMEOUT=3s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("FILECFG_API_KEY", "from-env")
	t.Setenv("FILECFG_TIMEOUT", "")
	os.Unsetenv("FILECFG_TIMEOUT")

	if err := exportEnvironment(path); err != nil {
		t.Fatalf("exportEnvironment() error = %v", err)
	}

	cfg, err := New[sampleConfig]("FILECFG")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Fatalf("APIKey = %q, want env value to win", cfg.APIKey)
	}
	if cfg.Timeout != 3*time.Second {
		t.Fatalf("Timeout = %v, want 3s from file", cfg.Timeout)
	}
}
