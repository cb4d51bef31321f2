// Package config loads the simscope configuration file.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/simscope/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvLogLevel overrides log_level when set.
const EnvLogLevel = "SIMSCOPE_LOG"

const (
	UnownedDrop = "drop"
	UnownedKeep = "keep"
)

// Breakpoint presets one breakpoint.
type Breakpoint struct {
	Entity string `mapstructure:"entity"`
	Field  string `mapstructure:"field"`
	Kind   string `mapstructure:"kind"`
}

// Trace presets one value trace.
type Trace struct {
	Entity string `mapstructure:"entity"`
	Field  string `mapstructure:"field"`
}

// Redis configures the Redis log archive. An empty Addr disables it.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Export configures where log streams go on export.
type Export struct {
	Dir    string   `mapstructure:"dir"`
	Redact []string `mapstructure:"redact"`
	// Key is a base64 AES-256 key. When set, exported fields are sealed.
	Key          string   `mapstructure:"key"`
	FallbackKeys []string `mapstructure:"fallback_keys"`
	Redis        Redis    `mapstructure:"redis"`
}

// HTTP configures the serve command.
type HTTP struct {
	Addr string `mapstructure:"addr"`
}

// Demo sizes the built-in ping/pong simulation.
type Demo struct {
	Requests int `mapstructure:"requests"`
}

// Config is the decoded configuration file.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	PerTick  int    `mapstructure:"per_tick"`
	// Limit is the initial event budget; nil runs free, 0 starts paused.
	Limit            *int          `mapstructure:"limit"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	HaltOnBreakpoint bool          `mapstructure:"halt_on_breakpoint"`
	UnownedLogs      string        `mapstructure:"unowned_logs"`

	Inspect     []string     `mapstructure:"inspect"`
	Breakpoints []Breakpoint `mapstructure:"breakpoints"`
	Traces      []Trace      `mapstructure:"traces"`

	Export Export `mapstructure:"export"`
	HTTP   HTTP   `mapstructure:"http"`
	Demo   Demo   `mapstructure:"demo"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:     "info",
		PerTick:      1,
		TickInterval: 100 * time.Millisecond,
		UnownedLogs:  UnownedDrop,
		Export: Export{
			Dir: ".simscope/logs",
			Redis: Redis{
				Prefix: "simscope:logs:",
			},
		},
		HTTP: HTTP{Addr: ":8080"},
		Demo: Demo{Requests: 5},
	}
}

// Load reads path over the defaults and applies the environment override.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		applyEnv(cfg)
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		ErrorUnused: true,
		Result:      cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}
}

// Validate checks value ranges and that presets name parseable entities and
// kinds.
func (c *Config) Validate() error {
	var errs []error
	if c.PerTick < 1 {
		errs = append(errs, fmt.Errorf("per_tick must be at least 1, got %d", c.PerTick))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if c.UnownedLogs != UnownedDrop && c.UnownedLogs != UnownedKeep {
		errs = append(errs, fmt.Errorf("unowned_logs must be %q or %q, got %q", UnownedDrop, UnownedKeep, c.UnownedLogs))
	}
	for _, e := range c.Inspect {
		if _, err := domain.ParseEntityPath(e); err != nil {
			errs = append(errs, fmt.Errorf("inspect: %w", err))
		}
	}
	for i, bp := range c.Breakpoints {
		if _, err := domain.ParseEntityPath(bp.Entity); err != nil {
			errs = append(errs, fmt.Errorf("breakpoints[%d]: %w", i, err))
		}
		if bp.Kind != "" {
			if _, err := domain.ParseBreakpointKind(bp.Kind); err != nil {
				errs = append(errs, fmt.Errorf("breakpoints[%d]: %w", i, err))
			}
		}
	}
	for i, tr := range c.Traces {
		if _, err := domain.ParseEntityPath(tr.Entity); err != nil {
			errs = append(errs, fmt.Errorf("traces[%d]: %w", i, err))
		}
	}
	if c.Export.Key != "" {
		if _, err := c.Export.Keys(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Keys decodes the active and fallback keys.
func (e Export) Keys() (active []byte, err error) {
	active, err = decodeKey(e.Key)
	if err != nil {
		return nil, fmt.Errorf("export.key: %w", err)
	}
	for i, k := range e.FallbackKeys {
		if _, err := decodeKey(k); err != nil {
			return nil, fmt.Errorf("export.fallback_keys[%d]: %w", i, err)
		}
	}
	return active, nil
}

// Fallbacks decodes the fallback keys. Call Keys first to validate them.
func (e Export) Fallbacks() [][]byte {
	out := make([][]byte, 0, len(e.FallbackKeys))
	for _, k := range e.FallbackKeys {
		if key, err := decodeKey(k); err == nil {
			out = append(out, key)
		}
	}
	return out
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
