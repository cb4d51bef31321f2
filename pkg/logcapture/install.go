package logcapture

import (
	"log/slog"
	"sync"
)

var installOnce sync.Once

// Install makes c the process-wide default slog handler. Only the first call
// has an effect; it reports whether this call installed c.
func Install(c *Capture) bool {
	installed := false
	installOnce.Do(func() {
		slog.SetDefault(slog.New(c))
		installed = true
	})
	return installed
}
