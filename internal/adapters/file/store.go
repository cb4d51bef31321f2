package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/logcapture"
)

const (
	ext = ".jsonl"
	// unownedName stores the stream of events logged outside entity logic.
	unownedName = "_unowned"
)

// Archive implements ports.LogArchive using the local filesystem.
// It stores one JSONL file per entity in a configured directory.
type Archive struct {
	BasePath string
}

// New creates a new Archive with the given base path.
// If basePath is empty, it defaults to ".simscope/logs".
func New(basePath string) *Archive {
	if basePath == "" {
		basePath = filepath.Join(".simscope", "logs")
	}
	return &Archive{BasePath: basePath}
}

// Path returns the file a stream is exported to.
func (a *Archive) Path(entity domain.EntityPath) string {
	return filepath.Join(a.BasePath, fileName(entity))
}

func fileName(entity domain.EntityPath) string {
	if entity.IsZero() {
		return unownedName + ext
	}
	return url.PathEscape(entity.String()) + ext
}

// Export writes the stream to a JSONL file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (a *Archive) Export(ctx context.Context, entity domain.EntityPath, events []domain.LogEvent) error {
	if err := os.MkdirAll(a.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure export directory: %w", err)
	}

	var buf bytes.Buffer
	if err := logcapture.WriteJSONL(&buf, events); err != nil {
		return fmt.Errorf("failed to encode stream: %w", err)
	}

	destPath := a.Path(entity)

	// 1. Create Temp File
	// Same directory keeps us on the same filesystem (required for atomic rename)
	tmpFile, err := os.CreateTemp(a.BasePath, "tmp-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	// 2. Write Data
	if _, err := tmpFile.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	// 3. Fsync to ensure durability
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// 4. Close File (cannot rename open file on Windows)
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// 5. Atomic Rename
	// On Windows, os.Rename fails if dest exists. We must remove it first.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove previous export for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to export: %w", err)
	}
	return nil
}

// Load reads an exported stream back. A stream never exported is empty.
func (a *Archive) Load(ctx context.Context, entity domain.EntityPath) ([]domain.LogEvent, error) {
	f, err := os.Open(a.Path(entity))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	events, err := logcapture.ReadJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read export of %s: %w", entity, err)
	}
	return events, nil
}

// Entities lists exported streams in path order.
func (a *Archive) Entities(ctx context.Context) ([]domain.EntityPath, error) {
	entries, err := os.ReadDir(a.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.EntityPath{}, nil
		}
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	var out []domain.EntityPath
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		base := strings.TrimSuffix(name, ext)
		if base == unownedName {
			out = append(out, "")
			continue
		}
		decoded, err := url.PathUnescape(base)
		if err != nil {
			continue
		}
		out = append(out, domain.EntityPath(decoded))
	}
	slices.SortFunc(out, domain.EntityPath.Compare)
	return out, nil
}
