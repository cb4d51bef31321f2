// Package cli wires configuration into the inspection stack used by the
// simscope commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/simscope"
	"github.com/aretw0/simscope/internal/config"
	"github.com/aretw0/simscope/internal/demo"
	"github.com/aretw0/simscope/internal/logging"
	"github.com/aretw0/simscope/internal/presentation/tui"
	httpadapter "github.com/aretw0/simscope/pkg/adapters/http"
	"github.com/aretw0/simscope/pkg/breakpoint"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/logcapture"
	"github.com/aretw0/simscope/pkg/observability"
	"github.com/aretw0/simscope/pkg/ports"
	"github.com/aretw0/simscope/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
)

// Session is the inspection stack of one command invocation: the demo
// simulation, its inspector and stepping controller, and the export archive.
type Session struct {
	Config     *config.Config
	Level      *slog.LevelVar
	Logger     *slog.Logger
	Demo       *demo.Demo
	Inspector  *simscope.Inspector
	Controller *runner.Controller
	Streams    *httpadapter.StreamManager
	Registry   *prometheus.Registry
	Archive    ports.LogArchive

	closeArchive func() error

	mu   sync.Mutex
	hits []domain.BreakpointHit
}

// NewSession builds the stack described by cfg. Application logs go to
// stderr at cfg.LogLevel; entity logs are captured at every level and also
// forwarded to stderr.
func NewSession(cfg *config.Config, stderr io.Writer) (*Session, error) {
	s := &Session{
		Config:   cfg,
		Level:    new(slog.LevelVar),
		Registry: prometheus.NewRegistry(),
	}
	s.Level.Set(logging.ParseLevel(cfg.LogLevel))
	stderrHandler := logging.NewHandler(stderr, s.Level)
	s.Logger = slog.New(stderrHandler)
	s.Streams = httpadapter.NewStreamManager(httpadapter.WithStreamLogger(s.Logger))

	archive, closeArchive, err := BuildArchive(cfg.Export)
	if err != nil {
		return nil, err
	}
	s.Archive = archive
	s.closeArchive = closeArchive

	metrics := observability.NewMetrics(s.Registry)
	s.Demo = demo.Build(cfg.Demo.Requests)
	s.Inspector = simscope.New(s.Demo,
		simscope.WithLogger(s.Logger),
		simscope.WithMetrics(metrics),
		simscope.WithExporter(archive),
		simscope.WithHooks(domain.Hooks{
			OnBreakpoint: s.onBreakpoint,
			OnDegraded: func(err error) {
				s.Logger.Error("Log capture degraded", "error", err)
			},
		}),
		simscope.WithCaptureOptions(
			logcapture.WithNext(stderrHandler),
			logcapture.WithLevel(logging.LevelTrace),
			logcapture.KeepUnowned(cfg.UnownedLogs == config.UnownedKeep),
		),
	)
	s.Demo.Logger = slog.New(s.Inspector.Capture())

	opts := []runner.Option{
		runner.WithLogger(s.Logger),
		runner.WithObserver(s.Inspector),
	}
	if cfg.Limit != nil {
		opts = append(opts, runner.WithLimit(*cfg.Limit))
	} else {
		opts = append(opts, runner.WithLimit(-1))
	}
	s.Controller = runner.NewController(s.Demo, opts...)

	if err := s.ApplyConfig(cfg); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Install makes the capture handler the process-wide slog default so that
// code logging through slog.Default is correlated too.
func (s *Session) Install() {
	if logcapture.Install(s.Inspector.Capture()) {
		s.Logger.Debug("Log capture installed as default handler")
	}
}

// ApplyConfig applies the live-tunable settings of cfg: log level, stepping
// policy and the inspect, breakpoint and trace presets. Presets are additive;
// existing breakpoints and traces are never removed.
func (s *Session) ApplyConfig(cfg *config.Config) error {
	s.Level.Set(logging.ParseLevel(cfg.LogLevel))
	s.Controller.SetPerTick(cfg.PerTick)
	s.Controller.SetHaltOnBreakpoint(cfg.HaltOnBreakpoint)

	var errs []error
	for _, raw := range cfg.Inspect {
		path, err := domain.ParseEntityPath(raw)
		if err == nil {
			err = s.Inspector.Open(path)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("inspect %q: %w", raw, err))
		}
	}
	for _, bp := range cfg.Breakpoints {
		if err := s.presetBreakpoint(bp); err != nil {
			errs = append(errs, fmt.Errorf("breakpoint %s %q: %w", bp.Entity, bp.Field, err))
		}
	}
	for _, tr := range cfg.Traces {
		if err := s.presetTrace(tr); err != nil {
			errs = append(errs, fmt.Errorf("trace %s %q: %w", tr.Entity, tr.Field, err))
		}
	}
	s.Config = cfg
	return errors.Join(errs...)
}

func (s *Session) presetBreakpoint(bp config.Breakpoint) error {
	path, err := domain.ParseEntityPath(bp.Entity)
	if err != nil {
		return err
	}
	exists := slices.ContainsFunc(s.Inspector.Breakpoints(), func(b breakpoint.Breakpoint) bool {
		return b.Entity == path && b.Field == bp.Field
	})
	if !exists {
		if _, err := s.Inspector.ToggleBreakpoint(path, bp.Field); err != nil {
			return err
		}
	}
	if bp.Kind == "" {
		return nil
	}
	kind, err := domain.ParseBreakpointKind(bp.Kind)
	if err != nil {
		return err
	}
	return s.Inspector.SetBreakpointKind(path, bp.Field, kind)
}

func (s *Session) presetTrace(tr config.Trace) error {
	path, err := domain.ParseEntityPath(tr.Entity)
	if err != nil {
		return err
	}
	for _, t := range s.Inspector.Traces() {
		if t.Entity == path && t.Field == tr.Field {
			return nil
		}
	}
	_, err = s.Inspector.AddTrace(path, tr.Field)
	return err
}

func (s *Session) onBreakpoint(ctx context.Context, hit domain.BreakpointHit) {
	s.mu.Lock()
	s.hits = append(s.hits, hit)
	s.mu.Unlock()
	s.Streams.PublishHit(ctx, hit)
}

// Hits returns every breakpoint hit so far.
func (s *Session) Hits() []domain.BreakpointHit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.hits)
}

// ExportAll exports the stream of every entity that logged something.
func (s *Session) ExportAll(ctx context.Context) error {
	var errs []error
	for _, path := range s.Inspector.LogEntities() {
		if err := s.Inspector.ExportLogs(ctx, path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Report snapshots the session for presentation.
func (s *Session) Report() tui.Report {
	r := tui.Report{
		Now:         s.Demo.Now(),
		Steps:       s.Controller.Status().Steps,
		Breakpoints: s.Inspector.Breakpoints(),
		Hits:        s.Hits(),
		Traces:      s.Inspector.Traces(),
		Degraded:    s.Inspector.Degraded(),
	}
	for _, path := range s.Inspector.Watched() {
		if state, ok := s.Inspector.State(path); ok {
			r.States = append(r.States, tui.EntityState{Entity: path, State: state})
		}
	}
	return r
}

// Close releases the archive connection.
func (s *Session) Close() error {
	if s.closeArchive == nil {
		return nil
	}
	return s.closeArchive()
}
