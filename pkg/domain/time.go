package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// SimTime is simulated time since the start of the run.
// It is monotonic within a run and encodes as a Go duration string
// ("1.5s"), which round-trips exactly.
type SimTime time.Duration

// Seconds returns the time as floating point seconds, the plot x axis.
func (t SimTime) Seconds() float64 { return time.Duration(t).Seconds() }

// String formats the time as a duration.
func (t SimTime) String() string { return time.Duration(t).String() }

// MarshalJSON implements json.Marshaler.
func (t SimTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler. It also accepts a bare number
// of seconds.
func (t *SimTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid sim time %q: %w", s, err)
		}
		*t = SimTime(d)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("invalid sim time %s", data)
	}
	*t = SimTime(secs * float64(time.Second))
	return nil
}
