package domain

import (
	"log/slog"
	"strings"
)

// Metadata is the static call-site information of a log event.
type Metadata struct {
	Level  slog.Level `json:"level"`
	Target string     `json:"target"`
	File   string     `json:"file,omitempty"`
	Line   int        `json:"line,omitempty"`
}

// LogEvent is one captured log record.
//
// Span is the chain of spans active at emission, root first, each rendered as
// name{fields} and joined by ':'. Fields holds the message followed by the
// event's key=value pairs.
type LogEvent struct {
	Time     SimTime    `json:"time"`
	Entity   EntityPath `json:"module,omitempty"`
	Metadata Metadata   `json:"metadata"`
	Span     string     `json:"span"`
	Fields   string     `json:"fields"`
}

// Matches reports whether query is a case-sensitive substring of the
// formatted fields, the span chain or the entity path.
func (e LogEvent) Matches(query string) bool {
	return strings.Contains(e.Fields, query) ||
		strings.Contains(e.Span, query) ||
		strings.Contains(string(e.Entity), query)
}

// ModuleLog is the append-only stream of events for one entity.
// It is not safe for concurrent use; the capture layer guards it.
type ModuleLog struct {
	events []LogEvent
}

// Push appends an event.
func (l *ModuleLog) Push(e LogEvent) {
	l.events = append(l.events, e)
}

// Output returns the events in append order. The returned slice aliases the
// log; callers that outlive the guarding lock must copy it.
func (l *ModuleLog) Output() []LogEvent {
	return l.events
}

// Len returns the number of events.
func (l *ModuleLog) Len() int {
	return len(l.events)
}

// Filter returns a copy of the events matching query, in append order.
// An empty query matches every event.
func (l *ModuleLog) Filter(query string) []LogEvent {
	out := make([]LogEvent, 0, len(l.events))
	for _, e := range l.events {
		if e.Matches(query) {
			out = append(out, e)
		}
	}
	return out
}
