package breakpoint

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/simscope/internal/logging"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/observability"
	"github.com/aretw0/simscope/pkg/value"
)

// Source is the snapshot a Set watches entities in and reads fields from.
type Source interface {
	Watch(path domain.EntityPath) error
	Unwatch(path domain.EntityPath) bool
	Field(path domain.EntityPath, field string) (value.Value, bool)
}

// Set holds the declared breakpoints in declaration order.
// Safe for concurrent use.
type Set struct {
	src Source

	mu    sync.Mutex
	items []*Breakpoint

	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option configures the Set.
type Option func(*Set)

// WithLogger configures a logger for the Set.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Set) {
		s.logger = logger
	}
}

// WithMetrics counts fired breakpoints per kind.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Set) {
		s.metrics = m
	}
}

// NewSet creates an empty Set over src.
func NewSet(src Source, opts ...Option) *Set {
	s := &Set{
		src:    src,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Toggle removes the breakpoint (entity, field) if it exists, otherwise adds
// it as OnValueChanged seeded with the current value so it does not fire on
// its first evaluation. It reports whether a breakpoint now exists.
func (s *Set) Toggle(entity domain.EntityPath, field string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(entity, field); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
		s.src.Unwatch(entity)
		s.logger.Debug("Breakpoint removed", "entity", entity, "field", field)
		return false, nil
	}

	if err := s.src.Watch(entity); err != nil {
		return false, fmt.Errorf("add breakpoint on %s %q: %w", entity, field, err)
	}
	bp := &Breakpoint{Entity: entity, Field: field, Kind: domain.BreakpointOnValueChanged}
	if current, ok := s.src.Field(entity, field); ok {
		bp.Last = &current
	}
	s.items = append(s.items, bp)
	s.logger.Debug("Breakpoint added", "entity", entity, "field", field)
	return true, nil
}

// SetKind changes the kind of an existing breakpoint.
func (s *Set) SetKind(entity domain.EntityPath, field string, kind domain.BreakpointKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(entity, field)
	if i < 0 {
		return fmt.Errorf("%s %q: %w", entity, field, domain.ErrBreakpointNotFound)
	}
	s.items[i].Kind = kind
	return nil
}

// Remove deletes a breakpoint, reporting whether it existed.
func (s *Set) Remove(entity domain.EntityPath, field string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(entity, field)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	s.src.Unwatch(entity)
	return true
}

// Get returns a copy of one breakpoint.
func (s *Set) Get(entity domain.EntityPath, field string) (Breakpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(entity, field)
	if i < 0 {
		return Breakpoint{}, false
	}
	return *s.items[i], true
}

// List returns copies of all breakpoints in declaration order.
func (s *Set) List() []Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Breakpoint, len(s.items))
	for i, bp := range s.items {
		out[i] = *bp
	}
	return out
}

// Evaluate updates every breakpoint from the snapshot and returns the ones
// that fired, stamped with now.
func (s *Set) Evaluate(now domain.SimTime) []domain.BreakpointHit {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hits []domain.BreakpointHit
	for _, bp := range s.items {
		current, ok := s.src.Field(bp.Entity, bp.Field)
		if !bp.Update(current, ok) {
			continue
		}
		s.metrics.Triggered(bp.Kind.String())
		s.logger.Info("Breakpoint triggered",
			"entity", bp.Entity,
			"field", bp.Field,
			"kind", bp.Kind,
			"time", now,
		)
		hits = append(hits, domain.BreakpointHit{
			Time:   now,
			Entity: bp.Entity,
			Field:  bp.Field,
			Kind:   bp.Kind,
		})
	}
	return hits
}

// Len returns the number of breakpoints.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Set) index(entity domain.EntityPath, field string) int {
	return slices.IndexFunc(s.items, func(bp *Breakpoint) bool {
		return bp.matches(entity, field)
	})
}
