package demo_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/simscope"
	"github.com/aretw0/simscope/internal/demo"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/runner"
	"github.com/aretw0/simscope/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemo_EndToEnd(t *testing.T) {
	d := demo.Build(3)
	insp := simscope.New(d)
	d.Logger = slog.New(insp.Capture())

	require.NoError(t, insp.Open(demo.Pong))
	tree, ok := insp.State(demo.Pong)
	require.True(t, ok)
	assert.Equal(t, []string{"inet"}, tree.Keys(), "empty solicitations pruned")

	added, err := insp.ToggleBreakpoint(demo.Ping, "counter")
	require.NoError(t, err)
	require.True(t, added)
	require.NoError(t, insp.SetBreakpointKind(demo.Ping, "counter", domain.BreakpointOnValueAppeared))

	ctrl := runner.NewController(d, runner.WithObserver(insp), runner.WithHaltOnBreakpoint(true), runner.WithPerTick(100))
	ctrl.Start()

	res, err := ctrl.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Halted, "counter appears on ping's first reply")
	assert.Equal(t, 2, res.Dispatched)

	ctrl.Start()
	status, err := ctrl.RunToCompletion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(6), status.Steps)

	counter, ok := insp.Field(demo.Ping, "counter")
	require.True(t, ok)
	assert.True(t, value.Equal(value.Int(3), counter))

	pongs := insp.Logs(demo.Ping, "PONG")
	require.Len(t, pongs, 3)
	assert.Equal(t, "pinger{state=3}", pongs[2].Span)
	assert.Empty(t, insp.Logs(demo.Ping, "xyz"))
	assert.Len(t, insp.Logs(demo.Pong, "PING"), 3)
}
