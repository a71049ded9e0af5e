package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tick != 10*time.Second || cfg.Duration != 10*time.Minute {
		t.Fatalf("tick/duration = %s/%s, want 10s/10m", cfg.Tick, cfg.Duration)
	}
	if cfg.Strategy != StrategyGrid || !cfg.Accelerated {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Tracing.Enabled || cfg.Tracing.SampleRatio != 1 {
		t.Fatalf("unexpected tracing defaults %+v", cfg.Tracing)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.toml")
	body := `
scenario = "walker.toml"
tick = "1s"
strategy = "range"
max_range = 4000000.0
contact_horizon = "1h"

[log]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("SIM_TICK", "2s")
	t.Setenv("SIM_LOG_FORMAT", "text")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ScenarioPath != "walker.toml" || cfg.Strategy != StrategyRange || cfg.MaxRange != 4e6 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.ContactHorizon != time.Hour {
		t.Fatalf("ContactHorizon = %s, want 1h", cfg.ContactHorizon)
	}
	if cfg.Tick != 2*time.Second {
		t.Fatalf("Tick = %s, want env override 2s", cfg.Tick)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Fatalf("Log = %+v, want debug/text", cfg.Log)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := Config{Tick: time.Second, Strategy: StrategyGrid}
	if err := base.Validate(); err != nil {
		t.Fatalf("Validate(base): %v", err)
	}

	tests := map[string]func(*Config){
		"zero tick":        func(c *Config) { c.Tick = 0 },
		"unknown strategy": func(c *Config) { c.Strategy = "mesh" },
		"range no limit":   func(c *Config) { c.Strategy = StrategyRange; c.MaxRange = 0 },
		"bad sample ratio": func(c *Config) { c.Tracing.SampleRatio = 2 },
		"bad log level":    func(c *Config) { c.Log.Level = "verbose" },
		"negative horizon": func(c *Config) { c.ContactHorizon = -time.Second },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
