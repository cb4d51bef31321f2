package observe_test

import (
	"testing"

	"github.com/aretw0/simscope/pkg/adapters/memory"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/observability"
	"github.com/aretw0/simscope/pkg/observe"
	"github.com/aretw0/simscope/pkg/value"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSim(t *testing.T) (*memory.Sim, *memory.Node) {
	t.Helper()
	sim := memory.NewSim()
	n, err := sim.AddNode("net/ping", nil)
	require.NoError(t, err)
	n.SetProp("counter", 1)
	n.SetProp("inet@v6.addr", "::1")
	n.SetProp("inet@v6.solicitations", []string{})
	return sim, n
}

func TestStore_WatchLoadsImmediately(t *testing.T) {
	sim, _ := newSim(t)
	store := observe.New(sim)

	_, ok := store.Get("net/ping")
	assert.False(t, ok, "unwatched entity has no snapshot")

	require.NoError(t, store.Watch("net/ping"))

	tree, ok := store.Get("net/ping")
	require.True(t, ok)
	assert.Equal(t, []string{"counter", "inet"}, tree.Keys())
	inet, _ := tree.Get("inet")
	assert.Equal(t, []string{"v6.addr"}, inet.Keys(), "empty sequences are pruned")

	addr, ok := store.Field("net/ping", "inet.v6.addr")
	require.True(t, ok)
	assert.True(t, value.Equal(value.String("::1"), addr))
}

func TestStore_RefCounting(t *testing.T) {
	sim, _ := newSim(t)
	metrics := observability.NewMetrics(nil)
	store := observe.New(sim, observe.WithMetrics(metrics))
	path := domain.EntityPath("net/ping")

	require.NoError(t, store.Watch(path)) // inspector
	require.NoError(t, store.Watch(path)) // breakpoint
	assert.Equal(t, 2, store.Refs(path))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WatchedEntities))

	assert.True(t, store.Unwatch(path))
	_, ok := store.Get(path)
	assert.True(t, ok, "still referenced")

	assert.True(t, store.Unwatch(path))
	_, ok = store.Get(path)
	assert.False(t, ok, "released with the last reference")
	assert.Empty(t, store.Watched())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WatchedEntities))

	assert.False(t, store.Unwatch(path))
}

func TestStore_WatchUnknownEntity(t *testing.T) {
	sim, _ := newSim(t)
	store := observe.New(sim)

	err := store.Watch("nowhere")
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
	assert.Empty(t, store.Watched())
}

func TestStore_Refresh(t *testing.T) {
	sim, n := newSim(t)
	store := observe.New(sim)
	require.NoError(t, store.Watch("net/ping"))

	n.SetProp("counter", 2)
	before, _ := store.Field("net/ping", "counter")
	assert.True(t, value.Equal(value.Int(1), before), "snapshot is stale until refresh")

	require.NoError(t, store.Refresh())

	after, _ := store.Field("net/ping", "counter")
	assert.True(t, value.Equal(value.Int(2), after))

	snap := store.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, []domain.EntityPath{"net/ping"}, store.Watched())
}
