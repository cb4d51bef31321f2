package logcapture

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/simscope/pkg/domain"
)

// WriteJSONL writes one JSON record per event.
func WriteJSONL(w io.Writer, events []domain.LogEvent) error {
	enc := json.NewEncoder(w)
	for i, e := range events {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encode event %d: %w", i, err)
		}
	}
	return nil
}

// ReadJSONL reads records written by WriteJSONL. Blank lines are skipped and
// records have no size limit. On a malformed record the events decoded so far
// are returned with the error.
func ReadJSONL(r io.Reader) ([]domain.LogEvent, error) {
	dec := json.NewDecoder(r)

	var events []domain.LogEvent
	for dec.More() {
		var e domain.LogEvent
		if err := dec.Decode(&e); err != nil {
			return events, fmt.Errorf("decode record %d: %w", len(events)+1, err)
		}
		events = append(events, e)
	}
	return events, nil
}
