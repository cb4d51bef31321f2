package breakpoint_test

import (
	"testing"

	"github.com/aretw0/simscope/pkg/adapters/memory"
	"github.com/aretw0/simscope/pkg/breakpoint"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/observability"
	"github.com/aretw0/simscope/pkg/observe"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*memory.Node, *observe.Store, *breakpoint.Set, *observability.Metrics) {
	t.Helper()
	sim := memory.NewSim()
	n, err := sim.AddNode("ping", nil)
	require.NoError(t, err)
	n.SetProp("counter", 1)

	metrics := observability.NewMetrics(nil)
	store := observe.New(sim)
	return n, store, breakpoint.NewSet(store, breakpoint.WithMetrics(metrics)), metrics
}

func TestSet_ToggleIdentity(t *testing.T) {
	_, store, set, _ := setup(t)

	added, err := set.Toggle("ping", "counter")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 1, store.Refs("ping"), "breakpoint watches its entity")

	bp, ok := set.Get("ping", "counter")
	require.True(t, ok)
	assert.Equal(t, domain.BreakpointOnValueChanged, bp.Kind)
	require.NotNil(t, bp.Last, "seeded with the current value")

	added, err = set.Toggle("ping", "counter")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 0, set.Len())
	assert.Equal(t, 0, store.Refs("ping"))
}

func TestSet_ToggleUnknownEntity(t *testing.T) {
	_, _, set, _ := setup(t)

	_, err := set.Toggle("ghost", "counter")
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
	assert.Equal(t, 0, set.Len())
}

func TestSet_SetKind(t *testing.T) {
	_, _, set, _ := setup(t)

	err := set.SetKind("ping", "counter", domain.BreakpointDisabled)
	assert.ErrorIs(t, err, domain.ErrBreakpointNotFound)

	_, err = set.Toggle("ping", "counter")
	require.NoError(t, err)
	require.NoError(t, set.SetKind("ping", "counter", domain.BreakpointOnValueDisappeared))

	list := set.List()
	require.Len(t, list, 1)
	assert.Equal(t, domain.BreakpointOnValueDisappeared, list[0].Kind)
}

func TestSet_Evaluate(t *testing.T) {
	n, store, set, metrics := setup(t)

	_, err := set.Toggle("ping", "counter")
	require.NoError(t, err)
	_, err = set.Toggle("ping", "key")
	require.NoError(t, err)
	require.NoError(t, set.SetKind("ping", "key", domain.BreakpointOnValueAppeared))

	require.NoError(t, store.Refresh())
	assert.Empty(t, set.Evaluate(1), "nothing changed since toggle")

	n.SetProp("counter", 2)
	n.SetProp("key", "abc")
	require.NoError(t, store.Refresh())

	hits := set.Evaluate(2)
	require.Len(t, hits, 2)
	assert.Equal(t, domain.BreakpointHit{Time: 2, Entity: "ping", Field: "counter", Kind: domain.BreakpointOnValueChanged}, hits[0])
	assert.Equal(t, "key", hits[1].Field)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BreakpointTriggers.WithLabelValues("OnValueChanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BreakpointTriggers.WithLabelValues("OnValueAppeared")))

	require.NoError(t, store.Refresh())
	assert.Empty(t, set.Evaluate(3))

	assert.True(t, set.Remove("ping", "key"))
	assert.False(t, set.Remove("ping", "key"))
	assert.Equal(t, 1, store.Refs("ping"))
}
