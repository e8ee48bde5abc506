package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "app:\n  name: focustube-ml\n")
	t.Setenv("APP_ENV", "unit")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Curation.SemanticThreshold != 0.6 {
		t.Errorf("SemanticThreshold = %v, want 0.6", cfg.Curation.SemanticThreshold)
	}
	if cfg.Embedding.Model != "sentence-transformers/all-MiniLM-L6-v2" {
		t.Errorf("Model = %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d, want 4", cfg.Embedding.MaxConcurrency)
	}
	if cfg.Embedding.Dimension != 384 {
		t.Errorf("Dimension = %d, want 384", cfg.Embedding.Dimension)
	}
	if len(cfg.Ranking.Markers) != 4 {
		t.Fatalf("len(Markers) = %d, want 4", len(cfg.Ranking.Markers))
	}
	if m := cfg.Ranking.Markers[0]; m.Term != "tutorial" || m.Weight != 10 {
		t.Errorf("Markers[0] = %+v", m)
	}
}

func TestLoadFromEnvironmentOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "curation:\n  semantic_threshold: 0.6\n")
	writeConfig(t, dir, "config.staging.yaml", "curation:\n  semantic_threshold: 0.7\n")
	t.Setenv("APP_ENV", "staging")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Curation.SemanticThreshold != 0.7 {
		t.Errorf("SemanticThreshold = %v, want 0.7", cfg.Curation.SemanticThreshold)
	}
}

func TestLoadFromRejectsInvalidThreshold(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "curation:\n  semantic_threshold: 1.5\n")
	t.Setenv("APP_ENV", "unit")

	_, err := LoadFrom(dir)
	if err == nil {
		t.Fatal("expected error for threshold outside [0,1]")
	}
	if !strings.Contains(err.Error(), "semantic_threshold") {
		t.Errorf("error = %v", err)
	}
}

func TestLoadFromMissingBaseFile(t *testing.T) {
	if _, err := LoadFrom(t.TempDir()); err == nil {
		t.Fatal("expected error when config.yaml is missing")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("FT_SET", "value")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "a: ${FT_SET}", "a: value"},
		{"set variable ignores default", "a: ${FT_SET:other}", "a: value"},
		{"unset with default", "a: ${FT_UNSET_VAR:fallback}", "a: fallback"},
		{"unset with empty default", "a: ${FT_UNSET_VAR:}", "a: "},
		{"unset without default", "a: ${FT_UNSET_VAR}", "a: ${FT_UNSET_VAR}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnv(tt.in); got != tt.want {
				t.Errorf("expandEnv(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Embedding: EmbeddingConfig{Provider: "http", MaxConcurrency: 4},
			Curation:  CurationConfig{SemanticThreshold: 0.6, MaxCandidates: 10, MaxDisinterests: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"threshold zero", func(c *Config) { c.Curation.SemanticThreshold = 0 }, false},
		{"threshold one", func(c *Config) { c.Curation.SemanticThreshold = 1 }, false},
		{"negative threshold", func(c *Config) { c.Curation.SemanticThreshold = -0.1 }, true},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "onnx" }, true},
		{"no concurrency", func(c *Config) { c.Embedding.MaxConcurrency = 0 }, true},
		{"negative dimension", func(c *Config) { c.Embedding.Dimension = -1 }, true},
		{"jwt without secret", func(c *Config) { c.Security.JWT.Enabled = true }, true},
		{"embedding cache without redis", func(c *Config) { c.Cache.Embedding.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
