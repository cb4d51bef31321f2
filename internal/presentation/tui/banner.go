package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the simscope banner to w.
func PrintBanner(w io.Writer, p termenv.Profile) {
	lines := []struct {
		text, hex string
	}{
		{"      _                                    ", "#34d399"},
		{"  ___(_)_ __ ___  ___  ___ ___  _ __   ___ ", "#2dd4bf"},
		{" / __| | '_ ` _ \\/ __|/ __/ _ \\| '_ \\ / _ \\", "#22d3ee"},
		{" \\__ \\ | | | | | \\__ \\ (_| (_) | |_) |  __/", "#38bdf8"},
		{" |___/_|_| |_| |_|___/\\___\\___/| .__/ \\___|", "#60a5fa"},
		{"                               |_|         ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.hex)))
	}
	fmt.Fprintln(w)
}
