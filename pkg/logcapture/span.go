package logcapture

import (
	"context"
	"slices"
	"strings"
)

type spanKey struct{}

// span is one level of the span stack. Stacks are immutable linked lists so
// derived contexts never affect their parents.
type span struct {
	parent *span
	name   string
	fields string
}

// StartSpan returns a context carrying a new innermost span. args are
// key-value pairs in the slog style.
func StartSpan(ctx context.Context, name string, args ...any) context.Context {
	parent, _ := ctx.Value(spanKey{}).(*span)
	return context.WithValue(ctx, spanKey{}, &span{
		parent: parent,
		name:   name,
		fields: formatArgs(args),
	})
}

// SpanChain renders the spans of ctx from root to innermost as
// "outer{k=v}:inner". It is empty when ctx carries no span.
func SpanChain(ctx context.Context) string {
	var chain []*span
	for s, _ := ctx.Value(spanKey{}).(*span); s != nil; s = s.parent {
		chain = append(chain, s)
	}
	slices.Reverse(chain)

	var b strings.Builder
	for i, s := range chain {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(s.name)
		if s.fields != "" {
			b.WriteByte('{')
			b.WriteString(s.fields)
			b.WriteByte('}')
		}
	}
	return b.String()
}
