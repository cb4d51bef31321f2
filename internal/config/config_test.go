package config

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Nil(t, cfg.Limit)
	assert.Equal(t, UnownedDrop, cfg.UnownedLogs)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	cfg, err := Parse([]byte(`
log_level: debug
per_tick: 4
limit: 0
tick_interval: 250ms
halt_on_breakpoint: true
unowned_logs: keep
inspect: [ping, net/pong]
breakpoints:
  - entity: ping
    field: counter
    kind: appeared
traces:
  - entity: pong
    field: counter
export:
  redact: "key,peer"
  redis:
    addr: localhost:6379
    ttl: 1h
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.PerTick)
	require.NotNil(t, cfg.Limit)
	assert.Equal(t, 0, *cfg.Limit)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.True(t, cfg.HaltOnBreakpoint)
	assert.Equal(t, UnownedKeep, cfg.UnownedLogs)
	assert.Equal(t, []string{"ping", "net/pong"}, cfg.Inspect)
	assert.Equal(t, []Breakpoint{{Entity: "ping", Field: "counter", Kind: "appeared"}}, cfg.Breakpoints)
	assert.Equal(t, []Trace{{Entity: "pong", Field: "counter"}}, cfg.Traces)
	assert.Equal(t, []string{"key", "peer"}, cfg.Export.Redact)
	assert.Equal(t, time.Hour, cfg.Export.Redis.TTL)

	// untouched keys keep their defaults
	assert.Equal(t, ".simscope/logs", cfg.Export.Dir)
	assert.Equal(t, "simscope:logs:", cfg.Export.Redis.Prefix)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestParse_EnvOverridesLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "trace")
	cfg, err := Parse([]byte("log_level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.LogLevel)
}

func TestParse_Rejects(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "colour: red\n", "colour"},
		{"per tick", "per_tick: 0\n", "per_tick"},
		{"unowned policy", "unowned_logs: maybe\n", "unowned_logs"},
		{"breakpoint kind", "breakpoints: [{entity: ping, field: x, kind: often}]\n", "unknown breakpoint kind"},
		{"breakpoint entity", "breakpoints: [{entity: '', field: x}]\n", "invalid entity path"},
		{"short key", "export: {key: " + base64.StdEncoding.EncodeToString([]byte("short")) + "}\n", "32 bytes"},
		{"bad yaml", "per_tick: [\n", "parse yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExportKeys(t *testing.T) {
	active := strings.Repeat("a", 32)
	old := strings.Repeat("b", 32)
	e := Export{
		Key:          base64.StdEncoding.EncodeToString([]byte(active)),
		FallbackKeys: []string{base64.StdEncoding.EncodeToString([]byte(old))},
	}
	key, err := e.Keys()
	require.NoError(t, err)
	assert.Equal(t, []byte(active), key)
	assert.Equal(t, [][]byte{[]byte(old)}, e.Fallbacks())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReloader(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "simscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))

	var last atomic.Pointer[Config]
	r, err := NewReloader(path, func(cfg *Config) { last.Store(cfg) })
	require.NoError(t, err)
	r.Debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// invalid revisions are skipped
	require.NoError(t, os.WriteFile(path, []byte("per_tick: -1\n"), 0o644))
	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, last.Load())

	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))
	require.Eventually(t, func() bool {
		cfg := last.Load()
		return cfg != nil && cfg.LogLevel == "debug"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
