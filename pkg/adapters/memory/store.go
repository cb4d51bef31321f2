package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/simscope/pkg/domain"
)

// Archive implements ports.LogArchive in memory.
// Safe for concurrent use.
type Archive struct {
	data map[domain.EntityPath][]domain.LogEvent
	mu   sync.RWMutex
}

// NewArchive creates a new in-memory log archive.
func NewArchive() *Archive {
	return &Archive{
		data: make(map[domain.EntityPath][]domain.LogEvent),
	}
}

// Export stores a copy of the stream, replacing any previous export.
func (a *Archive) Export(ctx context.Context, entity domain.EntityPath, events []domain.LogEvent) error {
	// Copy so later appends by the caller don't leak in
	copied := slices.Clone(events)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.data[entity] = copied
	return nil
}

// Load returns a copy of the exported stream, empty if never exported.
func (a *Archive) Load(ctx context.Context, entity domain.EntityPath) ([]domain.LogEvent, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return slices.Clone(a.data[entity]), nil
}

// Entities lists exported streams in path order.
func (a *Archive) Entities() []domain.EntityPath {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]domain.EntityPath, 0, len(a.data))
	for path := range a.data {
		out = append(out, path)
	}
	slices.SortFunc(out, domain.EntityPath.Compare)
	return out
}
