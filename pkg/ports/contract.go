package ports

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/simscope/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLogArchiveContract runs a suite of tests to verify that a LogArchive
// implementation round-trips exported streams.
func RunLogArchiveContract(t *testing.T, archive LogArchive) {
	ctx := context.Background()
	entity := domain.NewEntityPath("net", "ping")

	events := []domain.LogEvent{
		{
			Time:     domain.SimTime(time.Second),
			Entity:   entity,
			Metadata: domain.Metadata{Level: slog.LevelInfo, Target: "demo", File: "demo.go", Line: 12},
			Span:     "pinger{state=1}",
			Fields:   "PONG",
		},
		{
			Time:     domain.SimTime(2 * time.Second),
			Entity:   entity,
			Metadata: domain.Metadata{Level: slog.LevelWarn, Target: "demo"},
			Fields:   `queue full depth=3 peer="pong"`,
		},
	}

	t.Run("Export and Load", func(t *testing.T) {
		require.NoError(t, archive.Export(ctx, entity, events), "Export should not return error")

		loaded, err := archive.Load(ctx, entity)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, events, loaded)
	})

	t.Run("Export replaces previous export", func(t *testing.T) {
		require.NoError(t, archive.Export(ctx, entity, events[:1]))

		loaded, err := archive.Load(ctx, entity)
		require.NoError(t, err)
		assert.Equal(t, events[:1], loaded)
	})

	t.Run("Load never exported", func(t *testing.T) {
		loaded, err := archive.Load(ctx, domain.NewEntityPath("nobody"))
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("Export empty stream", func(t *testing.T) {
		other := domain.NewEntityPath("quiet")
		require.NoError(t, archive.Export(ctx, other, nil))

		loaded, err := archive.Load(ctx, other)
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})
}
