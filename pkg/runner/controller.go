package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/simscope/internal/logging"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/ports"
)

// Observer is notified after every dispatched event. The inspection facade
// refreshes snapshots and evaluates breakpoints here.
type Observer interface {
	AfterEvent(ctx context.Context) ([]domain.BreakpointHit, error)
}

// Status is a point-in-time view of the controller.
type Status struct {
	Running   bool   `json:"running"`
	Limit     *int   `json:"limit,omitempty"`
	PerTick   int    `json:"per_tick"`
	Steps     uint64 `json:"steps"`
	Remaining int    `json:"remaining"`
	Done      bool   `json:"done"`
}

// TickResult summarizes one Tick.
type TickResult struct {
	Dispatched int
	Hits       []domain.BreakpointHit
	Halted     bool
	Done       bool
}

// Controller dispatches simulation events under a stepping budget.
// Commands are safe from any goroutine; Tick and Run must be driven by one.
type Controller struct {
	stepper  ports.Stepper
	observer Observer

	mu               sync.Mutex
	limit            *int
	perTick          int
	haltOnBreakpoint bool
	steps            uint64
	done             bool

	logger *slog.Logger
}

// NewController creates a stopped controller over stepper.
func NewController(stepper ports.Stepper, opts ...Option) *Controller {
	zero := 0
	c := &Controller{
		stepper: stepper,
		limit:   &zero,
		perTick: DefaultPerTick,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start lets the simulation run free.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limit = nil
}

// Stop pauses the simulation after the event in flight.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	zero := 0
	c.limit = &zero
}

// Step allows n more events, replacing the current budget.
func (c *Controller) Step(n int) {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limit = &n
}

// SetPerTick changes the number of events dispatched per tick.
func (c *Controller) SetPerTick(n int) {
	if n < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.perTick = n
}

// SetHaltOnBreakpoint toggles the halt policy.
func (c *Controller) SetHaltOnBreakpoint(halt bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.haltOnBreakpoint = halt
}

// Status returns the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		Running:   c.limit == nil || *c.limit > 0,
		PerTick:   c.perTick,
		Steps:     c.steps,
		Remaining: c.stepper.Remaining(),
		Done:      c.done,
	}
	if c.limit != nil {
		limit := *c.limit
		s.Limit = &limit
	}
	return s
}

// Tick dispatches up to PerTick events within the budget. The observer runs
// after each event, so breakpoints see every intermediate state.
func (c *Controller) Tick(ctx context.Context) (TickResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res TickResult
	budget := c.perTick
	if c.limit != nil && *c.limit < budget {
		budget = *c.limit
	}

	for range budget {
		ok, err := c.stepper.Step(ctx)
		if err != nil {
			return res, fmt.Errorf("dispatch event %d: %w", c.steps+1, err)
		}
		if !ok {
			c.done = true
			res.Done = true
			break
		}
		c.done = false
		c.steps++
		res.Dispatched++
		if c.limit != nil {
			*c.limit--
		}

		if c.observer == nil {
			continue
		}
		hits, err := c.observer.AfterEvent(ctx)
		if err != nil {
			return res, fmt.Errorf("observe event %d: %w", c.steps, err)
		}
		res.Hits = append(res.Hits, hits...)
		if len(hits) > 0 && c.haltOnBreakpoint {
			zero := 0
			c.limit = &zero
			res.Halted = true
			c.logger.Info("Halted on breakpoint", "step", c.steps, "hits", len(hits))
			break
		}
	}
	return res, nil
}

// Run ticks every interval until ctx is cancelled or a tick fails.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := c.Tick(ctx); err != nil {
				return err
			}
		}
	}
}

// RunToCompletion ticks back to back until the queue drains, the budget
// runs out or ctx is cancelled.
func (c *Controller) RunToCompletion(ctx context.Context) (Status, error) {
	for ctx.Err() == nil {
		res, err := c.Tick(ctx)
		if err != nil {
			return c.Status(), err
		}
		if res.Done || res.Dispatched == 0 {
			break
		}
	}
	return c.Status(), nil
}
