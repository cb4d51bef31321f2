package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/simscope/pkg/breakpoint"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/trace"
	"github.com/aretw0/simscope/pkg/value"
)

// EntityState is the snapshot of one inspected entity.
type EntityState struct {
	Entity domain.EntityPath
	State  value.Value
}

// Report summarises an inspection session as markdown.
type Report struct {
	Now         domain.SimTime
	Steps       uint64
	States      []EntityState
	Breakpoints []breakpoint.Breakpoint
	Hits        []domain.BreakpointHit
	Traces      []trace.Trace
	Degraded    error
}

// Markdown renders the report. Sections with nothing to show are omitted.
func (r Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# simscope report\n\n")
	fmt.Fprintf(&b, "Simulated time **%s** after **%d** events.\n\n", r.Now, r.Steps)
	if r.Degraded != nil {
		fmt.Fprintf(&b, "> Log capture degraded: %v\n\n", r.Degraded)
	}

	if len(r.States) > 0 {
		b.WriteString("## State\n\n")
		for _, s := range r.States {
			fmt.Fprintf(&b, "### %s\n\n", s.Entity)
			out, err := s.State.YAML()
			if err != nil {
				out = s.State.String() + "\n"
			}
			b.WriteString("```yaml\n")
			b.WriteString(out)
			b.WriteString("```\n\n")
		}
	}

	if len(r.Breakpoints) > 0 {
		b.WriteString("## Breakpoints\n\n")
		b.WriteString("| Entity | Field | Kind | Last | Triggered |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, bp := range r.Breakpoints {
			last := "∅"
			if bp.Last != nil {
				last = bp.Last.String()
			}
			fmt.Fprintf(&b, "| %s | `%s` | %s | %s | %t |\n", bp.Entity, bp.Field, bp.Kind, cell(last), bp.Triggered)
		}
		b.WriteString("\n")
	}

	if len(r.Hits) > 0 {
		b.WriteString("## Hits\n\n")
		for _, h := range r.Hits {
			fmt.Fprintf(&b, "- `%s` %s `%s` %s\n", h.Time, h.Entity, h.Field, h.Kind)
		}
		b.WriteString("\n")
	}

	if len(r.Traces) > 0 {
		b.WriteString("## Traces\n\n")
		b.WriteString("| Entity | Field | Points | Last |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, t := range r.Traces {
			last := "∅"
			if n := len(t.Points); n > 0 {
				p := t.Points[n-1]
				last = fmt.Sprintf("%g @ %gs", p.Y, p.X)
			}
			fmt.Fprintf(&b, "| %s | `%s` | %d | %s |\n", t.Entity, t.Field, len(t.Points), last)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
