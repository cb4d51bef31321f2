package logcapture

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/observability"
)

// Clock is the part of the simulation capture reads from. ports.Simulation
// satisfies it.
type Clock interface {
	Now() domain.SimTime
}

// core is shared by a Capture and every handler derived from it.
type core struct {
	clock Clock

	mu      sync.Mutex
	streams map[domain.EntityPath]*domain.ModuleLog

	level       slog.Leveler
	keepUnowned bool
	metrics     *observability.Metrics
	hooks       domain.Hooks

	degraded atomic.Bool
	err      atomic.Pointer[error]
}

// Option configures a Capture.
type Option func(*Capture)

// WithNext forwards every record to h after capture.
func WithNext(h slog.Handler) Option {
	return func(c *Capture) {
		c.next = h
	}
}

// WithLevel sets the minimum level recorded into streams. Defaults to Debug.
func WithLevel(level slog.Leveler) Option {
	return func(c *Capture) {
		c.core.level = level
	}
}

// KeepUnowned stores records emitted outside entity logic under the zero
// EntityPath instead of dropping them.
func KeepUnowned(keep bool) Option {
	return func(c *Capture) {
		c.core.keepUnowned = keep
	}
}

// WithMetrics counts captured and dropped events.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Capture) {
		c.core.metrics = m
	}
}

// WithHooks registers the degraded callback.
func WithHooks(h domain.Hooks) Option {
	return func(c *Capture) {
		c.core.hooks = h
	}
}

// Capture is a slog.Handler appending records to per-entity streams.
type Capture struct {
	core *core
	next slog.Handler

	// state derived through WithAttrs and WithGroup
	attrs  string
	group  string
	target string
}

var _ slog.Handler = (*Capture)(nil)

// New creates a Capture reading simulated time from clock.
func New(clock Clock, opts ...Option) *Capture {
	c := &Capture{
		core: &core{
			clock:   clock,
			streams: make(map[domain.EntityPath]*domain.ModuleLog),
			level:   slog.LevelDebug,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled implements slog.Handler.
func (c *Capture) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= c.core.level.Level() && !c.core.degraded.Load() {
		return true
	}
	return c.next != nil && c.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (c *Capture) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= c.core.level.Level() && !c.core.degraded.Load() {
		c.capture(ctx, r)
	}
	if c.next != nil && c.next.Enabled(ctx, r.Level) {
		return c.next.Handle(ctx, r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (c *Capture) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return c
	}
	d := c.clone()
	var b strings.Builder
	b.WriteString(d.attrs)
	for _, a := range attrs {
		if d.group == "" && a.Key == targetKey && a.Value.Kind() == slog.KindString {
			d.target = a.Value.String()
			continue
		}
		appendAttr(&b, d.group, a)
	}
	d.attrs = b.String()
	if d.next != nil {
		d.next = d.next.WithAttrs(attrs)
	}
	return d
}

// WithGroup implements slog.Handler.
func (c *Capture) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}
	d := c.clone()
	d.group += name + "."
	if d.next != nil {
		d.next = d.next.WithGroup(name)
	}
	return d
}

func (c *Capture) clone() *Capture {
	d := *c
	return &d
}

func (c *Capture) capture(ctx context.Context, r slog.Record) {
	defer func() {
		if p := recover(); p != nil {
			c.core.degrade(fmt.Errorf("%w: capture panicked: %v", domain.ErrObservabilityDegraded, p))
		}
	}()

	// Ownership comes from the context only: the simulation's current entity
	// says nothing about records logged from other goroutines.
	entity, owned := EntityFromContext(ctx)
	if !owned && !c.core.keepUnowned {
		c.core.metrics.Dropped()
		return
	}

	pkg, file, line := source(r.PC)
	target := c.target
	var b strings.Builder
	b.WriteString(r.Message)
	if c.attrs != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.attrs)
	}
	r.Attrs(func(a slog.Attr) bool {
		if c.group == "" && a.Key == targetKey && a.Value.Kind() == slog.KindString {
			target = a.Value.String()
			return true
		}
		appendAttr(&b, c.group, a)
		return true
	})
	if target == "" {
		target = pkg
	}

	c.core.push(domain.LogEvent{
		Time:   c.core.clock.Now(),
		Entity: entity,
		Metadata: domain.Metadata{
			Level:  r.Level,
			Target: target,
			File:   file,
			Line:   line,
		},
		Span:   SpanChain(ctx),
		Fields: b.String(),
	})
}

func (c *core) push(e domain.LogEvent) {
	func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		stream, ok := c.streams[e.Entity]
		if !ok {
			stream = &domain.ModuleLog{}
			c.streams[e.Entity] = stream
		}
		stream.Push(e)
	}()

	c.metrics.Captured(e.Metadata.Level)
}

func (c *core) degrade(err error) {
	if !c.degraded.CompareAndSwap(false, true) {
		return
	}
	c.err.Store(&err)
	c.metrics.Degraded()
	if c.hooks.OnDegraded != nil {
		c.hooks.OnDegraded(err)
	}
}

// Degraded reports whether capture stopped recording after a failure.
func (c *Capture) Degraded() bool {
	return c.core.degraded.Load()
}

// Err returns the failure that degraded capture, or nil.
func (c *Capture) Err() error {
	if p := c.core.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Output returns a copy of the stream of entity, empty if it never logged.
func (c *Capture) Output(entity domain.EntityPath) []domain.LogEvent {
	c.core.mu.Lock()
	defer c.core.mu.Unlock()

	stream, ok := c.core.streams[entity]
	if !ok {
		return nil
	}
	return slices.Clone(stream.Output())
}

// Filter returns the events of entity matching query, in order.
func (c *Capture) Filter(entity domain.EntityPath, query string) []domain.LogEvent {
	c.core.mu.Lock()
	defer c.core.mu.Unlock()

	stream, ok := c.core.streams[entity]
	if !ok {
		return nil
	}
	return stream.Filter(query)
}

// Len returns the number of events of entity.
func (c *Capture) Len(entity domain.EntityPath) int {
	c.core.mu.Lock()
	defer c.core.mu.Unlock()

	if stream, ok := c.core.streams[entity]; ok {
		return stream.Len()
	}
	return 0
}

// Entities lists the entities that have a stream, in path order.
func (c *Capture) Entities() []domain.EntityPath {
	c.core.mu.Lock()
	out := make([]domain.EntityPath, 0, len(c.core.streams))
	for path := range c.core.streams {
		out = append(out, path)
	}
	c.core.mu.Unlock()

	slices.SortFunc(out, domain.EntityPath.Compare)
	return out
}
