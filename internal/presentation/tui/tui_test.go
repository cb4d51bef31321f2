package tui

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/simscope/internal/logging"
	"github.com/aretw0/simscope/pkg/breakpoint"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/trace"
	"github.com/aretw0/simscope/pkg/value"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelName(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{logging.LevelTrace, "TRACE"},
		{slog.LevelDebug, "DEBUG"},
		{slog.LevelInfo, "INFO"},
		{slog.LevelWarn, "WARN"},
		{slog.LevelError, "ERROR"},
		{slog.LevelError + 4, "ERROR"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelName(tt.level), "level %d", tt.level)
	}
}

func TestLevelColor(t *testing.T) {
	assert.Equal(t, "#008000", LevelColor("TRACE"))
	assert.Equal(t, "#ff0000", LevelColor("ERROR"))
	assert.Equal(t, "#ffffff", LevelColor("FATAL"))
}

func TestFormatEvent_Ascii(t *testing.T) {
	e := domain.LogEvent{
		Time:     domain.SimTime(1500 * time.Millisecond),
		Entity:   "ping",
		Metadata: domain.Metadata{Level: slog.LevelWarn, Target: "demo"},
		Span:     "pinger{state=1}",
		Fields:   "PONG id=3",
	}
	assert.Equal(t, "      1.5s WARN  demo pinger{state=1} PONG id=3", FormatEvent(termenv.Ascii, e))

	e.Span = ""
	assert.Equal(t, "      1.5s WARN  demo PONG id=3", FormatEvent(termenv.Ascii, e))
}

func TestFormatEvent_Colored(t *testing.T) {
	e := domain.LogEvent{Metadata: domain.Metadata{Level: slog.LevelError}, Fields: "boom"}
	out := FormatEvent(termenv.TrueColor, e)
	assert.Contains(t, out, "\x1b[")
	assert.True(t, strings.HasSuffix(out, "boom"))
}

func TestWriteLogs(t *testing.T) {
	var buf bytes.Buffer
	events := []domain.LogEvent{{Fields: "a"}, {Fields: "b"}}
	require.NoError(t, WriteLogs(&buf, termenv.Ascii, events))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.Ascii)
	assert.Contains(t, buf.String(), "|_|")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestReport_Markdown(t *testing.T) {
	last := value.Int(3)
	r := Report{
		Now:   domain.SimTime(2 * time.Second),
		Steps: 6,
		States: []EntityState{{
			Entity: "ping",
			State:  value.Mapping(value.E("counter", value.Int(3))),
		}},
		Breakpoints: []breakpoint.Breakpoint{{
			Entity: "ping", Field: "counter", Kind: domain.BreakpointOnValueAppeared, Last: &last,
		}},
		Hits: []domain.BreakpointHit{{
			Time: domain.SimTime(time.Second), Entity: "ping", Field: "counter", Kind: domain.BreakpointOnValueAppeared,
		}},
		Traces: []trace.Trace{{
			Entity: "pong", Field: "counter", Points: []trace.Point{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}},
		}},
		Degraded: errors.New("observability degraded"),
	}

	md := r.Markdown()
	assert.Contains(t, md, "Simulated time **2s** after **6** events.")
	assert.Contains(t, md, "> Log capture degraded: observability degraded")
	assert.Contains(t, md, "### ping\n\n```yaml\ncounter: 3\n```")
	assert.Contains(t, md, "| ping | `counter` | OnValueAppeared | 3 | false |")
	assert.Contains(t, md, "- `1s` ping `counter` OnValueAppeared")
	assert.Contains(t, md, "| pong | `counter` | 3 | 2 @ 1s |")
}

func TestReport_OmitsEmptySections(t *testing.T) {
	md := Report{}.Markdown()
	assert.NotContains(t, md, "## ")
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(60)
	out, err := render("# Title\n\nbody")
	require.NoError(t, err)
	assert.Contains(t, out, "body")
}
