package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/logcapture"
	"github.com/aretw0/simscope/pkg/ports"
	"github.com/tidwall/gjson"
)

// FieldFilter matches a JSON path of the exported record against a value,
// e.g. metadata.level=WARN or module=ping.
type FieldFilter struct {
	Path  string
	Value string
}

// ParseFieldFilters parses k=v pairs.
func ParseFieldFilters(raw []string) ([]FieldFilter, error) {
	out := make([]FieldFilter, 0, len(raw))
	for _, r := range raw {
		path, val, ok := strings.Cut(r, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid field filter %q, want path=value", r)
		}
		out = append(out, FieldFilter{Path: path, Value: val})
	}
	return out, nil
}

// FilterLogs keeps the events matching query (see domain.LogEvent.Matches)
// and every field filter.
func FilterLogs(events []domain.LogEvent, query string, filters []FieldFilter) ([]domain.LogEvent, error) {
	out := make([]domain.LogEvent, 0, len(events))
	for _, e := range events {
		if query != "" && !e.Matches(query) {
			continue
		}
		if len(filters) > 0 {
			record, err := json.Marshal(e)
			if err != nil {
				return nil, fmt.Errorf("encode event: %w", err)
			}
			if !matchFields(record, filters) {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func matchFields(record []byte, filters []FieldFilter) bool {
	for _, f := range filters {
		if gjson.GetBytes(record, f.Path).String() != f.Value {
			return false
		}
	}
	return true
}

// ReadLogs loads a stream for offline analysis. A source naming an existing
// file is read as JSON lines; anything else is taken as an entity path and
// loaded from archive, which undoes any export sealing.
func ReadLogs(ctx context.Context, archive ports.LogLoader, source string) ([]domain.LogEvent, error) {
	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return logcapture.ReadJSONL(f)
	}

	path, err := domain.ParseEntityPath(source)
	if err != nil {
		return nil, err
	}
	events, err := archive.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return events, nil
}
