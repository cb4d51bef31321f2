package tui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/simscope/internal/logging"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/muesli/termenv"
)

// LevelName returns the upper-case name used in log tables. Levels below
// debug are reported as TRACE.
func LevelName(level slog.Level) string {
	switch {
	case level <= logging.LevelTrace:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	}
	return "ERROR"
}

var levelColors = map[string]string{
	"TRACE": "#008000",
	"DEBUG": "#0000ff",
	"INFO":  "#00ff00",
	"WARN":  "#ffff00",
	"ERROR": "#ff0000",
}

// LevelColor returns the hex colour of a level name, white when unknown.
func LevelColor(name string) string {
	if hex, ok := levelColors[name]; ok {
		return hex
	}
	return "#ffffff"
}

// FormatEvent renders one captured event as a log table row: time coloured
// by level, italic target, span chain and fields.
func FormatEvent(p termenv.Profile, e domain.LogEvent) string {
	name := LevelName(e.Metadata.Level)
	var b strings.Builder
	b.WriteString(p.String(fmt.Sprintf("%10s", e.Time)).Foreground(p.Color(LevelColor(name))).String())
	b.WriteByte(' ')
	b.WriteString(fmt.Sprintf("%-5s", name))
	b.WriteByte(' ')
	b.WriteString(p.String(e.Metadata.Target).Italic().String())
	if e.Span != "" {
		b.WriteByte(' ')
		b.WriteString(p.String(e.Span).Faint().String())
	}
	b.WriteByte(' ')
	b.WriteString(e.Fields)
	return b.String()
}

// WriteLogs writes one FormatEvent line per event.
func WriteLogs(w io.Writer, p termenv.Profile, events []domain.LogEvent) error {
	for _, e := range events {
		if _, err := fmt.Fprintln(w, FormatEvent(p, e)); err != nil {
			return err
		}
	}
	return nil
}
