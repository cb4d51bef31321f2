// Package trace records numeric fields of watched entities over simulated
// time as step-shaped plot series.
package trace

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/aretw0/simscope/internal/logging"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/value"
	"github.com/google/uuid"
)

// Point is one plot point: X in simulated seconds.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Trace is the series of one (entity, field) pair.
type Trace struct {
	ID     uuid.UUID         `json:"id"`
	Entity domain.EntityPath `json:"entity"`
	Field  string            `json:"field"`
	Points []Point           `json:"points"`
}

// Sample appends the observation at x. Non-numeric, non-finite or absent
// samples are skipped, so a series always encodes as JSON. Changes are drawn as steps: the previous level is repeated at x
// before the new one.
func (t *Trace) Sample(x float64, v value.Value, present bool) bool {
	if !present {
		return false
	}
	y, ok := v.Float()
	if !ok || math.IsNaN(y) || math.IsInf(y, 0) {
		return false
	}
	if len(t.Points) == 0 {
		t.Points = append(t.Points, Point{X: x, Y: y})
		return true
	}
	last := t.Points[len(t.Points)-1].Y
	if last == y {
		return false
	}
	t.Points = append(t.Points, Point{X: x, Y: last}, Point{X: x, Y: y})
	return true
}

// Source is the snapshot traces read from.
type Source interface {
	Watch(path domain.EntityPath) error
	Unwatch(path domain.EntityPath) bool
	Field(path domain.EntityPath, field string) (value.Value, bool)
}

// Set holds the active traces. Safe for concurrent use.
type Set struct {
	src Source

	mu     sync.Mutex
	traces []*Trace

	logger *slog.Logger
}

// Option configures the Set.
type Option func(*Set)

// WithLogger configures a logger for the Set.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Set) {
		s.logger = logger
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

// Add starts tracing field of entity. The same pair may be traced twice;
// each trace has its own id.
func (s *Set) Add(entity domain.EntityPath, field string) (uuid.UUID, error) {
	if err := s.src.Watch(entity); err != nil {
		return uuid.Nil, fmt.Errorf("trace %s %q: %w", entity, field, err)
	}

	t := &Trace{ID: uuid.New(), Entity: entity, Field: field}

	s.mu.Lock()
	s.traces = append(s.traces, t)
	s.mu.Unlock()

	s.logger.Debug("Trace added", "id", t.ID, "entity", entity, "field", field)
	return t.ID, nil
}

// Remove stops a trace and releases its entity.
func (s *Set) Remove(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.traces, func(t *Trace) bool { return t.ID == id })
	if i < 0 {
		return fmt.Errorf("%s: %w", id, domain.ErrTraceNotFound)
	}
	s.src.Unwatch(s.traces[i].Entity)
	s.traces = slices.Delete(s.traces, i, i+1)
	return nil
}

// Update samples every trace at now.
func (s *Set) Update(now domain.SimTime) {
	s.mu.Lock()
	defer s.mu.Unlock()

	x := now.Seconds()
	for _, t := range s.traces {
		v, ok := s.src.Field(t.Entity, t.Field)
		t.Sample(x, v, ok)
	}
}

// Get returns a copy of one trace.
func (s *Set) Get(id uuid.UUID) (Trace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.traces {
		if t.ID == id {
			return t.clone(), nil
		}
	}
	return Trace{}, fmt.Errorf("%s: %w", id, domain.ErrTraceNotFound)
}

// List returns copies of every trace in creation order.
func (s *Set) List() []Trace {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Trace, len(s.traces))
	for i, t := range s.traces {
		out[i] = t.clone()
	}
	return out
}

func (t *Trace) clone() Trace {
	c := *t
	c.Points = slices.Clone(t.Points)
	return c
}
