package domain

import (
	"context"
)

// BreakpointHit reports one breakpoint that fired after a dispatched event.
type BreakpointHit struct {
	Time   SimTime        `json:"time"`
	Entity EntityPath     `json:"entity"`
	Field  string         `json:"field"`
	Kind   BreakpointKind `json:"kind"`
}

// Hooks are optional callbacks for inspection observability.
type Hooks struct {
	// OnBreakpoint runs on the stepping goroutine for every breakpoint that fired.
	OnBreakpoint func(context.Context, BreakpointHit)
	// OnDegraded runs once when log capture stops recording after a failure.
	OnDegraded func(error)
}
