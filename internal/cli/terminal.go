package cli

import (
	"io"
	"os"

	"github.com/aretw0/simscope/internal/presentation/tui"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Profile returns the colour profile to use on w. Non-terminals get plain
// ASCII.
func Profile(w io.Writer) termenv.Profile {
	if !IsTerminal(w) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).Profile
}

// RenderMarkdown styles md with glamour on a terminal and returns it
// unchanged otherwise.
func RenderMarkdown(w io.Writer, md string) string {
	if !IsTerminal(w) {
		return md
	}
	width := 0
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = cols
		}
	}
	out, err := tui.NewRenderer(width)(md)
	if err != nil {
		return md
	}
	return out
}
