package logcapture_test

import (
	"context"
	"testing"

	"github.com/aretw0/simscope/pkg/logcapture"
	"github.com/stretchr/testify/assert"
)

func TestSpanChain(t *testing.T) {
	root := context.Background()
	assert.Equal(t, "", logcapture.SpanChain(root))

	outer := logcapture.StartSpan(root, "pinger", "state", 2, "peer", "pong")
	inner := logcapture.StartSpan(outer, "reply")
	sibling := logcapture.StartSpan(outer, "timer", "armed", true)

	assert.Equal(t, `pinger{state=2 peer="pong"}`, logcapture.SpanChain(outer))
	assert.Equal(t, `pinger{state=2 peer="pong"}:reply`, logcapture.SpanChain(inner))
	assert.Equal(t, `pinger{state=2 peer="pong"}:timer{armed=true}`, logcapture.SpanChain(sibling))
}
