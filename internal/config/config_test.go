package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
anthropic:
  api_key: test-key
  use_bedrock: true
  aws_region: us-west-2
models:
  default: claude-sonnet-4-20250514
  fast: claude-3-5-haiku-20241022
run:
  max_repairs: 4
journal:
  enabled: true
  path: /tmp/journal.db
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("APIKey = %q", cfg.Anthropic.APIKey)
	}
	if !cfg.Anthropic.UseBedrock || cfg.Anthropic.AWSRegion != "us-west-2" {
		t.Errorf("Anthropic = %+v", cfg.Anthropic)
	}
	if cfg.Models.Fast != "claude-3-5-haiku-20241022" {
		t.Errorf("Models.Fast = %q", cfg.Models.Fast)
	}
	if cfg.Run.MaxRepairs != 4 {
		t.Errorf("Run.MaxRepairs = %d", cfg.Run.MaxRepairs)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path != "/tmp/journal.db" {
		t.Errorf("Journal = %+v", cfg.Journal)
	}
}

func TestLoadFromPathDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("anthropic:\n  api_key: k\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Run.MaxRepairs != 2 {
		t.Errorf("Run.MaxRepairs = %d, want default 2", cfg.Run.MaxRepairs)
	}
	if cfg.Journal.Enabled {
		t.Error("Journal.Enabled should default to false")
	}
}

func TestLoadFromPathExpandsEnv(t *testing.T) {
	t.Setenv("TW_TEST_KEY", "expanded-key")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("anthropic:\n  api_key: ${TW_TEST_KEY}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Anthropic.APIKey != "expanded-key" {
		t.Errorf("APIKey = %q, want expanded-key", cfg.Anthropic.APIKey)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Run.MaxRepairs != 2 {
		t.Errorf("MaxRepairs = %d, want 2", cfg.Run.MaxRepairs)
	}
}
