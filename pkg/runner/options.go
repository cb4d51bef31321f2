package runner

import (
	"log/slog"
)

// DefaultPerTick is the default number of events dispatched per tick.
const DefaultPerTick = 1

// Option defines a functional option for configuring the Controller.
type Option func(*Controller)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithObserver runs o after every dispatched event.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

// WithPerTick sets the number of events dispatched per tick. Values below 1
// are ignored.
func WithPerTick(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.perTick = n
		}
	}
}

// WithLimit sets the initial stepping budget. A negative n runs free.
func WithLimit(n int) Option {
	return func(c *Controller) {
		if n < 0 {
			c.limit = nil
			return
		}
		c.limit = &n
	}
}

// WithHaltOnBreakpoint stops stepping as soon as a breakpoint fires.
func WithHaltOnBreakpoint(halt bool) Option {
	return func(c *Controller) {
		c.haltOnBreakpoint = halt
	}
}
