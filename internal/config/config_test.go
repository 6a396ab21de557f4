package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PIVOT_LANGUAGE", "")
	t.Setenv("SEARCH_TOP_K", "")
	t.Setenv("GEN_MAX_TOKENS", "")
	t.Setenv("GEN_TEMPERATURE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PivotLanguage != "en" {
		t.Fatalf("expected default pivot language en, got %q", cfg.PivotLanguage)
	}
	if cfg.SearchTopK != 3 {
		t.Fatalf("expected default top k 3, got %d", cfg.SearchTopK)
	}
	if cfg.GenMaxTokens != 300 || cfg.GenTemperature != 0.7 {
		t.Fatalf("expected generation defaults 300/0.7, got %d/%f", cfg.GenMaxTokens, cfg.GenTemperature)
	}
	if cfg.NATSSubject != "documents.index" {
		t.Fatalf("expected default subject documents.index, got %q", cfg.NATSSubject)
	}
}

func TestLoadParsesEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PIVOT_LANGUAGE", "de")
	t.Setenv("SEARCH_TOP_K", "5")
	t.Setenv("GEN_TEMPERATURE", "0.2")
	t.Setenv("SEARCH_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PivotLanguage != "de" {
		t.Fatalf("expected pivot language override, got %q", cfg.PivotLanguage)
	}
	if cfg.SearchTopK != 5 {
		t.Fatalf("expected top k 5, got %d", cfg.SearchTopK)
	}
	if cfg.GenTemperature != 0.2 {
		t.Fatalf("expected temperature 0.2, got %f", cfg.GenTemperature)
	}
	if cfg.SearchTimeout != 3*time.Second {
		t.Fatalf("expected 3s search timeout, got %s", cfg.SearchTimeout)
	}
}

func TestLoadYAMLOverlayThenEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("pivot_language: fr\nsearch_top_k: 7\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PIVOT_LANGUAGE", "es")
	t.Setenv("SEARCH_TOP_K", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SearchTopK != 7 {
		t.Fatalf("expected yaml top k 7, got %d", cfg.SearchTopK)
	}
	if cfg.PivotLanguage != "es" {
		t.Fatalf("env must win over yaml, got %q", cfg.PivotLanguage)
	}
}

func TestLoadMissingConfigFileIsError(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
