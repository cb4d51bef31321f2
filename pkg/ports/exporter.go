package ports

import (
	"context"

	"github.com/aretw0/simscope/pkg/domain"
)

// LogExporter writes the full log stream of one entity to a durable sink.
// Export replaces any previous export of the same entity.
type LogExporter interface {
	Export(ctx context.Context, entity domain.EntityPath, events []domain.LogEvent) error
}

// LogLoader re-reads an exported stream for offline analysis.
// A stream that was never exported loads as empty, not as an error.
type LogLoader interface {
	Load(ctx context.Context, entity domain.EntityPath) ([]domain.LogEvent, error)
}

// LogArchive is a sink that can both export and re-load streams.
type LogArchive interface {
	LogExporter
	LogLoader
}
