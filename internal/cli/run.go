package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/simscope"
	"github.com/aretw0/simscope/internal/presentation/tui"
	"github.com/aretw0/simscope/pkg/domain"
)

// RunOptions contains the configuration for the run command.
type RunOptions struct {
	// Logs lists entities whose captured streams are printed after the report.
	Logs []string
	// Query filters the printed streams.
	Query string
	// Export writes every captured stream to the configured archive.
	Export bool
	Quiet  bool
}

// Run drives the simulation until its queue drains, the configured budget
// runs out or a halting breakpoint fires, then prints the report.
func Run(ctx context.Context, s *Session, w io.Writer, opts RunOptions) error {
	p := Profile(w)
	if !opts.Quiet && IsTerminal(w) {
		tui.PrintBanner(w, p)
	}

	status, err := s.Controller.RunToCompletion(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	s.Logger.Info("Simulation stopped",
		"steps", status.Steps,
		"remaining", status.Remaining,
		"done", status.Done,
		"version", simscope.Version,
	)

	if !opts.Quiet {
		fmt.Fprint(w, RenderMarkdown(w, s.Report().Markdown()))
	}

	for _, raw := range opts.Logs {
		path, err := domain.ParseEntityPath(raw)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%s\n", p.String(path.String()).Bold())
		if err := tui.WriteLogs(w, p, s.Inspector.Logs(path, opts.Query)); err != nil {
			return err
		}
	}

	if opts.Export {
		if err := s.ExportAll(ctx); err != nil {
			return err
		}
		if !opts.Quiet {
			fmt.Fprintf(w, ">>> Exported %d log streams.\n", len(s.Inspector.LogEntities()))
		}
	}
	return nil
}
