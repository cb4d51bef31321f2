package simscope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/simscope/internal/logging"
	"github.com/aretw0/simscope/pkg/breakpoint"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/logcapture"
	"github.com/aretw0/simscope/pkg/observability"
	"github.com/aretw0/simscope/pkg/observe"
	"github.com/aretw0/simscope/pkg/ports"
	"github.com/aretw0/simscope/pkg/trace"
	"github.com/aretw0/simscope/pkg/value"
	"github.com/google/uuid"
)

// ErrNoExporter is returned by ExportLogs when no exporter is configured.
var ErrNoExporter = errors.New("no log exporter configured")

// Inspector is the high-level entry point of the inspection layer.
// It ties the observation snapshot, breakpoints, traces and log capture to one
// running simulation.
type Inspector struct {
	sim ports.Simulation

	store       *observe.Store
	breakpoints *breakpoint.Set
	traces      *trace.Set
	capture     *logcapture.Capture
	exporter    ports.LogExporter

	mu   sync.Mutex
	open map[domain.EntityPath]bool

	captureOpts []logcapture.Option
	metrics     *observability.Metrics
	hooks       domain.Hooks
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Inspector.
type Option func(*Inspector)

// WithLogger sets the logger for the inspector's own diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		i.logger = logger
	}
}

// WithMetrics records inspection metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(i *Inspector) {
		i.metrics = m
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(i *Inspector) {
		i.hooks = hooks
	}
}

// WithCapture uses an existing log capture instead of creating one.
func WithCapture(c *logcapture.Capture) Option {
	return func(i *Inspector) {
		i.capture = c
	}
}

// WithCaptureOptions configures the log capture the inspector creates.
// Ignored when WithCapture is used.
func WithCaptureOptions(opts ...logcapture.Option) Option {
	return func(i *Inspector) {
		i.captureOpts = append(i.captureOpts, opts...)
	}
}

// WithExporter sets the sink ExportLogs writes to.
func WithExporter(e ports.LogExporter) Option {
	return func(i *Inspector) {
		i.exporter = e
	}
}

// New creates an Inspector over sim.
func New(sim ports.Simulation, opts ...Option) *Inspector {
	i := &Inspector{
		sim:    sim,
		open:   make(map[domain.EntityPath]bool),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}

	i.store = observe.New(sim,
		observe.WithLogger(i.logger),
		observe.WithMetrics(i.metrics),
	)
	i.breakpoints = breakpoint.NewSet(i.store,
		breakpoint.WithLogger(i.logger),
		breakpoint.WithMetrics(i.metrics),
	)
	i.traces = trace.NewSet(i.store, trace.WithLogger(i.logger))

	if i.capture == nil {
		captureOpts := append([]logcapture.Option{
			logcapture.WithMetrics(i.metrics),
			logcapture.WithHooks(i.hooks),
		}, i.captureOpts...)
		i.capture = logcapture.New(sim, captureOpts...)
	}
	return i
}

// Capture returns the slog handler recording entity logs.
func (i *Inspector) Capture() *logcapture.Capture {
	return i.capture
}

// Entities lists the entities of the simulation.
func (i *Inspector) Entities() []domain.EntityPath {
	return i.sim.Entities()
}

// Open starts inspecting path, as an inspector panel would.
// Opening an already open entity is a no-op.
func (i *Inspector) Open(path domain.EntityPath) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.open[path] {
		return nil
	}
	if err := i.store.Watch(path); err != nil {
		return fmt.Errorf("open inspector: %w", err)
	}
	i.open[path] = true
	return nil
}

// Close stops inspecting path. It reports whether path was open.
func (i *Inspector) Close(path domain.EntityPath) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.open[path] {
		return false
	}
	delete(i.open, path)
	i.store.Unwatch(path)
	return true
}

// Inspected lists the open inspectors in path order.
func (i *Inspector) Inspected() []domain.EntityPath {
	i.mu.Lock()
	out := make([]domain.EntityPath, 0, len(i.open))
	for path := range i.open {
		out = append(out, path)
	}
	i.mu.Unlock()

	slices.SortFunc(out, domain.EntityPath.Compare)
	return out
}

// Watched lists every entity held in the snapshot, whoever watches it.
func (i *Inspector) Watched() []domain.EntityPath {
	return i.store.Watched()
}

// State returns the unified state tree of a watched entity.
func (i *Inspector) State(path domain.EntityPath) (value.Value, bool) {
	return i.store.Get(path)
}

// Field resolves a dotted field inside the state of a watched entity.
func (i *Inspector) Field(path domain.EntityPath, field string) (value.Value, bool) {
	return i.store.Field(path, field)
}

// ToggleBreakpoint adds or removes the breakpoint on (path, field) and
// reports whether it now exists.
func (i *Inspector) ToggleBreakpoint(path domain.EntityPath, field string) (bool, error) {
	return i.breakpoints.Toggle(path, field)
}

// SetBreakpointKind changes the transition a breakpoint reacts to.
func (i *Inspector) SetBreakpointKind(path domain.EntityPath, field string, kind domain.BreakpointKind) error {
	return i.breakpoints.SetKind(path, field, kind)
}

// Breakpoints lists the breakpoints in declaration order.
func (i *Inspector) Breakpoints() []breakpoint.Breakpoint {
	return i.breakpoints.List()
}

// AddTrace starts plotting a numeric field over simulated time.
func (i *Inspector) AddTrace(path domain.EntityPath, field string) (uuid.UUID, error) {
	return i.traces.Add(path, field)
}

// RemoveTrace stops a trace.
func (i *Inspector) RemoveTrace(id uuid.UUID) error {
	return i.traces.Remove(id)
}

// Trace returns one trace.
func (i *Inspector) Trace(id uuid.UUID) (trace.Trace, error) {
	return i.traces.Get(id)
}

// Traces lists the traces in creation order.
func (i *Inspector) Traces() []trace.Trace {
	return i.traces.List()
}

// AfterEvent refreshes every watched snapshot, evaluates breakpoints and
// samples traces. Call it once per dispatched event, on the stepping
// goroutine. A watched entity missing from the simulation is an error.
func (i *Inspector) AfterEvent(ctx context.Context) ([]domain.BreakpointHit, error) {
	if err := i.store.Refresh(); err != nil {
		return nil, fmt.Errorf("refresh snapshot: %w", err)
	}

	now := i.sim.Now()
	hits := i.breakpoints.Evaluate(now)
	i.traces.Update(now)

	if i.hooks.OnBreakpoint != nil {
		for _, hit := range hits {
			i.hooks.OnBreakpoint(ctx, hit)
		}
	}
	return hits, nil
}

// Logs returns the captured events of path matching query.
// An empty query returns the whole stream.
func (i *Inspector) Logs(path domain.EntityPath, query string) []domain.LogEvent {
	if query == "" {
		return i.capture.Output(path)
	}
	return i.capture.Filter(path, query)
}

// LogEntities lists the entities that logged something.
func (i *Inspector) LogEntities() []domain.EntityPath {
	return i.capture.Entities()
}

// ExportLogs writes the full stream of path to the configured exporter.
func (i *Inspector) ExportLogs(ctx context.Context, path domain.EntityPath) error {
	if i.exporter == nil {
		return ErrNoExporter
	}
	events := i.capture.Output(path)
	if err := i.exporter.Export(ctx, path, events); err != nil {
		return fmt.Errorf("export logs of %s: %w", path, err)
	}
	i.logger.Info("Logs exported", "entity", path, "events", len(events))
	return nil
}

// Degraded returns the failure that stopped log capture, or nil.
func (i *Inspector) Degraded() error {
	return i.capture.Err()
}
