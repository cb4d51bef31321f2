// Package observe keeps the observation snapshot: the unified state tree of
// every entity that some consumer (an inspector panel, a breakpoint or a
// trace) is watching.
package observe

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/simscope/internal/logging"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/observability"
	"github.com/aretw0/simscope/pkg/ports"
	"github.com/aretw0/simscope/pkg/unify"
	"github.com/aretw0/simscope/pkg/value"
)

// entry holds the latest tree and the number of consumers watching it.
type entry struct {
	refs int
	tree value.Value
}

// Store maps watched entities to their latest unified state tree.
// It uses reference counting so an entry lives exactly as long as
// at least one consumer needs it.
type Store struct {
	sim ports.Simulation

	mu      sync.RWMutex
	entries map[domain.EntityPath]*entry

	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics records refreshes and the watched entity count.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New creates an empty Store reading from sim.
func New(sim ports.Simulation, opts ...Option) *Store {
	s := &Store{
		sim:     sim,
		entries: make(map[domain.EntityPath]*entry),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Watch adds one consumer reference to path. The first reference loads the
// tree immediately, so a freshly opened panel never shows an empty state.
// It returns domain.ErrEntityNotFound if the simulation does not know path.
func (s *Store) Watch(path domain.EntityPath) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[path]; ok {
		e.refs++
		return nil
	}

	tree, err := s.load(path)
	if err != nil {
		return err
	}
	s.entries[path] = &entry{refs: 1, tree: tree}
	s.metrics.Watching(len(s.entries))
	s.logger.Debug("Entity watched", "entity", path)
	return nil
}

// Unwatch releases one consumer reference. The entry is dropped when the last
// reference goes away. It reports whether path was watched at all.
func (s *Store) Unwatch(path domain.EntityPath) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[path]
	if !ok {
		return false
	}
	e.refs--
	if e.refs <= 0 {
		delete(s.entries, path)
		s.metrics.Watching(len(s.entries))
		s.logger.Debug("Entity released", "entity", path)
	}
	return true
}

// Refresh rebuilds every watched tree from fresh attributes.
// An entity that disappeared from the simulation keeps its last tree and is
// reported in the returned error.
func (s *Store) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	refreshed := 0
	for path, e := range s.entries {
		tree, err := s.load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		e.tree = tree
		refreshed++
	}
	s.metrics.Refreshed(refreshed)
	return errors.Join(errs...)
}

func (s *Store) load(path domain.EntityPath) (value.Value, error) {
	attrs, err := s.sim.Attributes(path)
	if err != nil {
		return value.Value{}, fmt.Errorf("load attributes of %s: %w", path, err)
	}
	return unify.Tree(attrs), nil
}

// Get returns the snapshot of path, or false when nobody watches it.
func (s *Store) Get(path domain.EntityPath) (value.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[path]
	if !ok {
		return value.Value{}, false
	}
	return e.tree, true
}

// Field resolves a dotted field path inside the snapshot of path.
func (s *Store) Field(path domain.EntityPath, field string) (value.Value, bool) {
	tree, ok := s.Get(path)
	if !ok {
		return value.Value{}, false
	}
	return value.Resolve(tree, field)
}

// Snapshot returns a copy of the current mapping. Trees are immutable and
// shared.
func (s *Store) Snapshot() map[domain.EntityPath]value.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.EntityPath]value.Value, len(s.entries))
	for path, e := range s.entries {
		out[path] = e.tree
	}
	return out
}

// Watched lists the watched entities in path order.
func (s *Store) Watched() []domain.EntityPath {
	s.mu.RLock()
	out := make([]domain.EntityPath, 0, len(s.entries))
	for path := range s.entries {
		out = append(out, path)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, domain.EntityPath.Compare)
	return out
}

// Refs returns the number of consumers watching path.
func (s *Store) Refs(path domain.EntityPath) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[path]; ok {
		return e.refs
	}
	return 0
}
