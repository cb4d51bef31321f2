package logcapture

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/simscope/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock domain.SimTime

func (c fixedClock) Now() domain.SimTime { return domain.SimTime(c) }

func TestCapture_PanicWhileAppendingReleasesStreams(t *testing.T) {
	capture := New(fixedClock(time.Second))
	ctx := WithEntity(context.Background(), "ping")

	// a nil stream map makes the append panic while the lock is held
	capture.core.streams = nil
	assert.NotPanics(t, func() {
		slog.New(capture).InfoContext(ctx, "lost")
	})
	require.True(t, capture.Degraded())

	done := make(chan []domain.EntityPath, 1)
	go func() { done <- capture.Entities() }()
	select {
	case entities := <-done:
		assert.Empty(t, entities)
	case <-time.After(time.Second):
		t.Fatal("readers blocked after a failed append")
	}
}
