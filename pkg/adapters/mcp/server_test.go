package mcp

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/simscope"
	"github.com/aretw0/simscope/pkg/adapters/memory"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/runner"
	"github.com/aretw0/simscope/pkg/value"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	sim := memory.NewSim()
	insp := simscope.New(sim)
	logger := slog.New(insp.Capture())

	_, err := sim.AddNode("tank", func(ctx context.Context, n *memory.Node, msg memory.Message) {
		n.SetProp("level", msg.Payload)
		logger.InfoContext(ctx, "filled", "level", msg.Payload)
	})
	require.NoError(t, err)
	for i := range 3 {
		sim.Schedule("tank", memory.Message{Kind: "set", Payload: i + 1}, time.Duration(i)*time.Second)
	}

	return NewServer(insp, runner.NewController(sim, runner.WithObserver(insp)))
}

func TestGetState(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleGetState(ctx, mcp.CallToolRequest{}, map[string]interface{}{"entity": "ghost"})
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	_, err = s.handleGetState(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	assert.ErrorIs(t, err, domain.ErrInvalidEntityPath)

	resp, err := s.handleGetState(ctx, mcp.CallToolRequest{}, map[string]interface{}{"entity": "tank", "field": "level"})
	require.NoError(t, err)
	assert.False(t, resp.Found, "nothing dispatched yet")

	_, err = s.handleStep(ctx, mcp.CallToolRequest{}, map[string]interface{}{"count": float64(2)})
	require.NoError(t, err)

	resp, err = s.handleGetState(ctx, mcp.CallToolRequest{}, map[string]interface{}{"entity": "tank", "field": "level"})
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.True(t, value.Equal(value.Int(2), resp.Value))
	assert.Equal(t, "2\n", resp.YAML)
}

func TestToggleBreakpointAndStep(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	s.controller.SetHaltOnBreakpoint(true)

	_, err := s.handleToggleBreakpoint(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"entity": "tank", "field": "level", "kind": "sometimes",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownBreakpointKind)
	assert.Empty(t, s.inspector.Breakpoints(), "a rejected kind leaves no breakpoint")

	bp, err := s.handleToggleBreakpoint(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"entity": "tank", "field": "level", "kind": "appeared",
	})
	require.NoError(t, err)
	assert.True(t, bp.Active)
	assert.Equal(t, "OnValueAppeared", bp.Kind)

	step, err := s.handleStep(ctx, mcp.CallToolRequest{}, map[string]interface{}{"count": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, 1, step.Dispatched, "halts on the first appearance")
	require.Len(t, step.Hits, 1)
	assert.Equal(t, domain.EntityPath("tank"), step.Hits[0].Entity)
	assert.Equal(t, 2, step.Status.Remaining)

	bp, err = s.handleToggleBreakpoint(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"entity": "tank", "field": "level",
	})
	require.NoError(t, err)
	assert.False(t, bp.Active)

	step, err = s.handleStep(ctx, mcp.CallToolRequest{}, map[string]interface{}{"count": float64(10)})
	require.NoError(t, err)
	assert.Equal(t, 2, step.Dispatched)
	assert.True(t, step.Status.Done)
	assert.Empty(t, step.Hits)
}

func TestQueryLogs(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleStep(ctx, mcp.CallToolRequest{}, map[string]interface{}{"count": float64(3)})
	require.NoError(t, err)

	resp, err := s.handleQueryLogs(ctx, mcp.CallToolRequest{}, map[string]interface{}{"entity": "tank"})
	require.NoError(t, err)
	assert.Len(t, resp.Events, 3)

	resp, err = s.handleQueryLogs(ctx, mcp.CallToolRequest{}, map[string]interface{}{"entity": "tank", "query": "level=3"})
	require.NoError(t, err)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "filled level=3", resp.Events[0].Fields)

	resp, err = s.handleQueryLogs(ctx, mcp.CallToolRequest{}, map[string]interface{}{"entity": "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Events)
	assert.Empty(t, resp.Events)
}
