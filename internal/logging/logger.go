package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout reports and JSON-RPC).
// Passing a *slog.LevelVar lets config reloads change the level live.
func New(level slog.Leveler) *slog.Logger {
	return slog.New(NewHandler(os.Stderr, level))
}

// NewHandler builds the text handler behind New.
// It standardizes common keys (e.g., "error" -> "err").
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	})
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LevelTrace sits below slog.LevelDebug for per-event chatter.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a level name (trace, debug, info, warn, error) to a
// slog.Level. Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	if strings.EqualFold(strings.TrimSpace(name), "trace") {
		return LevelTrace
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
