package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/simscope/internal/config"
	httpadapter "github.com/aretw0/simscope/pkg/adapters/http"
	"github.com/aretw0/simscope/pkg/runner"
)

// NewHandler builds the HTTP API of s.
func NewHandler(s *Session) http.Handler {
	return httpadapter.NewHandler(s.Inspector,
		httpadapter.WithController(s.Controller),
		httpadapter.WithStreams(s.Streams),
		httpadapter.WithLogger(s.Logger),
		httpadapter.WithGatherer(s.Registry),
	)
}

// Serve exposes s over HTTP while the controller ticks. The first interrupt
// pauses a running simulation, the next one shuts down. When configPath is
// set, edits to it are applied live.
func Serve(ctx context.Context, s *Session, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if configPath != "" {
		reloader, err := config.NewReloader(configPath, func(cfg *config.Config) {
			if err := s.ApplyConfig(cfg); err != nil {
				s.Logger.Warn("Config applied with errors", "error", err)
			}
		})
		if err != nil {
			return err
		}
		reloader.Logger = s.Logger
		go reloader.Run(ctx)
	}

	srv := &http.Server{
		Addr:              s.Config.HTTP.Addr,
		Handler:           NewHandler(s),
		ReadHeaderTimeout: 5 * time.Second,
		// Event streams end with ctx.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	serverErrors := make(chan error, 1)
	go func() {
		s.Logger.Info("HTTP Server listening", "address", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	sm := runner.NewSignalManager()
	defer sm.Stop()
	superviseErr := make(chan error, 1)
	go func() {
		superviseErr <- sm.Supervise(ctx, s.Controller, s.Config.TickInterval)
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
		cancel()
		<-superviseErr
	case runErr = <-superviseErr:
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	s.Logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Join(runErr, fmt.Errorf("could not stop server gracefully: %w", err))
	}
	return runErr
}
