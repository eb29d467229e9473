package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte(`
pipeline:
  lookbackDays: 7
  scoreThreshold: 7
  maxCandidates: 10
judge:
  model: gpt-4o
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SIGNALSCANNER_LOG_LEVEL", "debug")
	t.Setenv("SIGNALSCANNER_JUDGE_MODEL", "gpt-4o-mini")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Pipeline.LookbackDays != 7 {
		t.Fatalf("expected file lookbackDays, got %d", cfg.Pipeline.LookbackDays)
	}
	if cfg.Pipeline.ScoreThreshold != 7 {
		t.Fatalf("expected file threshold, got %d", cfg.Pipeline.ScoreThreshold)
	}
	// Environment wins over the file.
	if cfg.Judge.Model != "gpt-4o-mini" {
		t.Fatalf("expected env model override, got %s", cfg.Judge.Model)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected env log level, got %s", cfg.Logging.Level)
	}
	// Untouched sections keep defaults.
	if cfg.OpenAlex.Endpoint == "" || cfg.OSF.Endpoint == "" {
		t.Fatal("expected default endpoints to survive partial config")
	}
}

func TestLoadFailsOnMissingExplicitPath(t *testing.T) {
	// A typoed --config path must not silently spend the default budget.
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for unreadable explicit config path")
	}
}

func TestLoadFailsOnMalformedExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("pipeline: [not: a map"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed explicit config file")
	}
}

func TestLoadWithoutPathUsesDefaults(t *testing.T) {
	t.Setenv("SIGNALSCANNER_CONFIG", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidateRejectsMissingCostKnobs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero maxCandidates", func(c *Config) { c.Pipeline.MaxCandidates = 0 }},
		{"zero perFeedCap", func(c *Config) { c.Feeds.PerFeedCap = 0 }},
		{"zero perQueryCap", func(c *Config) { c.OpenAlex.PerQueryCap = 0 }},
		{"negative lookback", func(c *Config) { c.Pipeline.LookbackDays = -1 }},
		{"threshold above range", func(c *Config) { c.Pipeline.ScoreThreshold = 11 }},
		{"empty judge model", func(c *Config) { c.Judge.Model = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("default configuration must validate: %v", err)
	}
}

func TestBoundary(t *testing.T) {
	p := PipelineConfig{LookbackDays: 14}
	now := time.Date(2026, time.September, 1, 15, 30, 0, 0, time.UTC)

	got := p.Boundary(now)
	want := time.Date(2026, time.August, 18, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected boundary %v, got %v", want, got)
	}
}
