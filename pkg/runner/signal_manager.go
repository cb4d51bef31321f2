package runner

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// SignalManager re-arms an interrupt-aware context so one process can react
// to several Ctrl+C presses.
type SignalManager struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalManager creates a new manager and immediately starts listening for signals.
func NewSignalManager() *SignalManager {
	sm := &SignalManager{}
	sm.Reset()
	return sm
}

// Context returns the current signal context.
func (sm *SignalManager) Context() context.Context {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.ctx
}

// Reset re-arms the signal listener.
// Call it after a signal has been handled to capture the next one.
func (sm *SignalManager) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.cancel != nil {
		sm.cancel()
	}
	// We capture SIGINT (Ctrl+C) and SIGTERM
	sm.ctx, sm.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Stop permanently stops the signal listener.
func (sm *SignalManager) Stop() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.cancel != nil {
		sm.cancel()
	}
}

// Supervise runs c until parent is done. An interrupt while the simulation
// runs pauses it; an interrupt while it is paused returns.
func (sm *SignalManager) Supervise(parent context.Context, c *Controller, interval time.Duration) error {
	for {
		ctx, cancel := context.WithCancel(parent)
		stop := context.AfterFunc(sm.Context(), cancel)
		err := c.Run(ctx, interval)
		stop()
		cancel()

		if err != nil || parent.Err() != nil {
			return err
		}
		if !c.Status().Running {
			return nil
		}
		c.Stop()
		c.logger.Info("Simulation paused, interrupt again to quit")
		sm.Reset()
	}
}
