package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/simscope"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/logcapture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "simscope version "+simscope.Version+"\n", out)
}

func TestLogsCommand_FiltersFile(t *testing.T) {
	events := []domain.LogEvent{
		{Entity: "ping", Metadata: domain.Metadata{Level: slog.LevelInfo, Target: "demo"}, Fields: "PONG id=0"},
		{Entity: "ping", Metadata: domain.Metadata{Level: slog.LevelWarn, Target: "demo"}, Fields: "late id=1"},
	}
	var buf bytes.Buffer
	require.NoError(t, logcapture.WriteJSONL(&buf, events))
	file := filepath.Join(t.TempDir(), "ping.jsonl")
	require.NoError(t, os.WriteFile(file, buf.Bytes(), 0o644))

	out, err := execute(t, "logs", file, "--field", "metadata.level=WARN")
	require.NoError(t, err)
	assert.Contains(t, out, "late id=1")
	assert.NotContains(t, out, "PONG")
}

func TestRunCommand_ExportsToConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "simscope.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_level: error\ndemo:\n  requests: 1\nexport:\n  dir: "+filepath.Join(dir, "logs")+"\n"), 0o644))

	_, err := execute(t, "run", "--config", cfgPath, "--quiet", "--export")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "logs", "pong.jsonl"))
	assert.NoError(t, err)
}
