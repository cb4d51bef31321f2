package logcapture_test

import (
	"log/slog"
	"testing"

	"github.com/aretw0/simscope/pkg/logcapture"
	"github.com/stretchr/testify/assert"
)

func TestInstall_OnlyOnce(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	clock := &testClock{}
	ctx := clock.enter("ping", 0)
	first := logcapture.New(clock)
	second := logcapture.New(clock)

	assert.True(t, logcapture.Install(first))
	assert.False(t, logcapture.Install(second))

	slog.InfoContext(ctx, "via default")
	assert.Equal(t, 1, first.Len("ping"))
	assert.Equal(t, 0, second.Len("ping"))
}
