// Package breakpoint evaluates value-transition breakpoints against the
// observation snapshot after every dispatched event.
package breakpoint

import (
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/value"
)

// Breakpoint fires when the value at Field of Entity makes the transition
// selected by Kind. Entity and Field form its identity.
type Breakpoint struct {
	Entity domain.EntityPath     `json:"entity"`
	Field  string                `json:"field"`
	Kind   domain.BreakpointKind `json:"kind"`

	// Last is the value observed by the previous Update, nil when absent.
	Last      *value.Value `json:"last,omitempty"`
	Triggered bool         `json:"triggered"`
}

// Update compares the current observation with Last, records the result in
// Triggered and then remembers the observation. present is false when the
// field did not resolve.
func (b *Breakpoint) Update(current value.Value, present bool) bool {
	var triggered bool
	switch b.Kind {
	case domain.BreakpointOnValueChanged:
		switch {
		case b.Last == nil:
			triggered = present
		case !present:
			triggered = true
		default:
			triggered = !value.Equal(*b.Last, current)
		}
	case domain.BreakpointOnValueAppeared:
		triggered = b.Last == nil && present
	case domain.BreakpointOnValueDisappeared:
		triggered = b.Last != nil && !present
	}

	b.Triggered = triggered
	if present {
		b.Last = &current
	} else {
		b.Last = nil
	}
	return triggered
}

func (b *Breakpoint) matches(entity domain.EntityPath, field string) bool {
	return b.Entity == entity && b.Field == field
}
