package middleware

import (
	"context"
	"regexp"
	"slices"

	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/ports"
)

// Mask replaces redacted field values.
const Mask = "***"

// fieldPair matches key=value in formatted fields and span chains. Values are
// either quoted strings or bare tokens.
var fieldPair = regexp.MustCompile(`([A-Za-z0-9_.\-]+)=("(?:[^"\\]|\\.)*"|[^\s{}]+)`)

type piiMiddleware struct {
	next     ports.LogArchive
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of field keys
// matching the patterns before export. The message text is left untouched.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.LogArchive) ports.LogArchive {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Export(ctx context.Context, entity domain.EntityPath, events []domain.LogEvent) error {
	// Clone to avoid side effects on the captured streams.
	masked := slices.Clone(events)
	for i := range masked {
		masked[i].Fields = m.mask(masked[i].Fields)
		masked[i].Span = m.mask(masked[i].Span)
	}
	return m.next.Export(ctx, entity, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, entity domain.EntityPath) ([]domain.LogEvent, error) {
	return m.next.Load(ctx, entity)
}

// Helpers

func (m *piiMiddleware) mask(s string) string {
	return fieldPair.ReplaceAllStringFunc(s, func(pair string) string {
		sub := fieldPair.FindStringSubmatch(pair)
		for _, p := range m.patterns {
			if p.MatchString(sub[1]) {
				return sub[1] + "=" + Mask
			}
		}
		return pair
	})
}
