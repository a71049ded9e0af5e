// Package config loads the simulator's runtime configuration from an
// optional file and SIM_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/signalsfoundry/orbit-kinematics/internal/logging"
	"github.com/signalsfoundry/orbit-kinematics/internal/observability"
)

// EnvPrefix is prepended to every environment override, e.g.
// SIM_TICK=5s or SIM_LOG_LEVEL=debug.
const EnvPrefix = "SIM"

// Strategy names accepted in Config.Strategy.
const (
	StrategyGrid  = "grid"
	StrategyRange = "range"
)

// Config is the simulator runtime configuration.
type Config struct {
	ScenarioPath string

	Duration          time.Duration // simulation time; <= 0 runs until cancelled
	Tick              time.Duration
	Accelerated       bool
	MaxTicksPerSecond float64 // accelerated mode only; <= 0 is uncapped

	Strategy       string
	MaxRange       float64 // metres, range strategy
	BlockingRadius float64 // metres, range strategy
	Workers        int

	ContactHorizon time.Duration // contact plan look-ahead at startup; 0 disables

	MetricsAddr string // empty disables the /metrics endpoint

	Log     logging.Config
	Tracing observability.TracingConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scenario", "configs/scenario.toml")
	v.SetDefault("duration", "10m")
	v.SetDefault("tick", "10s")
	v.SetDefault("accelerated", true)
	v.SetDefault("max_ticks_per_second", 0.0)
	v.SetDefault("strategy", StrategyGrid)
	v.SetDefault("max_range", 5_000_000.0)
	v.SetDefault("blocking_radius", 0.0)
	v.SetDefault("workers", 0)
	v.SetDefault("contact_horizon", "0s")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "constellation-simulator")
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// Load reads configuration from path (skipped when empty) with SIM_*
// environment variables taking precedence over the file.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := Config{
		ScenarioPath:      v.GetString("scenario"),
		Duration:          v.GetDuration("duration"),
		Tick:              v.GetDuration("tick"),
		Accelerated:       v.GetBool("accelerated"),
		MaxTicksPerSecond: v.GetFloat64("max_ticks_per_second"),
		Strategy:          strings.ToLower(v.GetString("strategy")),
		MaxRange:          v.GetFloat64("max_range"),
		BlockingRadius:    v.GetFloat64("blocking_radius"),
		Workers:           v.GetInt("workers"),
		ContactHorizon:    v.GetDuration("contact_horizon"),
		MetricsAddr:       v.GetString("metrics_addr"),
		Log: logging.Config{
			Level:     v.GetString("log.level"),
			Format:    v.GetString("log.format"),
			AddSource: v.GetBool("log.add_source"),
		},
		Tracing: observability.TracingConfig{
			Enabled:     v.GetBool("tracing.enabled"),
			ServiceName: v.GetString("tracing.service_name"),
			Exporter:    v.GetString("tracing.exporter"),
			Endpoint:    v.GetString("tracing.endpoint"),
			SampleRatio: v.GetFloat64("tracing.sample_ratio"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that viper cannot express.
func (c Config) Validate() error {
	if c.Tick <= 0 {
		return fmt.Errorf("config: tick must be positive, got %s", c.Tick)
	}
	switch c.Strategy {
	case StrategyGrid:
	case StrategyRange:
		if c.MaxRange <= 0 {
			return fmt.Errorf("config: max_range must be positive for the range strategy")
		}
	default:
		return fmt.Errorf("config: unknown strategy %q", c.Strategy)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.ContactHorizon < 0 {
		return fmt.Errorf("config: contact_horizon must not be negative, got %s", c.ContactHorizon)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("config: tracing.sample_ratio must be within [0, 1], got %g", c.Tracing.SampleRatio)
	}
	return nil
}
