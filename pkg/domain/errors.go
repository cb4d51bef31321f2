package domain

import "errors"

// ErrEntityNotFound is returned when a caller names an entity the simulation does not know.
// It signals a broken caller contract rather than a recoverable runtime condition.
var ErrEntityNotFound = errors.New("entity not found")

// ErrInvalidEntityPath is returned when an entity path string has no segments.
var ErrInvalidEntityPath = errors.New("invalid entity path")

// ErrUnknownBreakpointKind is returned when a breakpoint kind name cannot be parsed.
var ErrUnknownBreakpointKind = errors.New("unknown breakpoint kind")

// ErrBreakpointNotFound is returned when no breakpoint exists for an (entity, field) pair.
var ErrBreakpointNotFound = errors.New("breakpoint not found")

// ErrTraceNotFound is returned when a trace ID is unknown.
var ErrTraceNotFound = errors.New("trace not found")

// ErrObservabilityDegraded is returned once log capture has failed and stopped recording.
// The simulation itself keeps running.
var ErrObservabilityDegraded = errors.New("observability degraded")
