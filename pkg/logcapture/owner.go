package logcapture

import (
	"context"

	"github.com/aretw0/simscope/pkg/domain"
)

type entityKey struct{}

// WithEntity returns a context marking path as the entity whose logic runs
// under it. Simulations stamp the context they hand to entity logic; records
// logged with a derived context are attributed to path.
func WithEntity(ctx context.Context, path domain.EntityPath) context.Context {
	return context.WithValue(ctx, entityKey{}, path)
}

// EntityFromContext returns the entity stamped by WithEntity.
func EntityFromContext(ctx context.Context) (domain.EntityPath, bool) {
	if ctx == nil {
		return "", false
	}
	path, ok := ctx.Value(entityKey{}).(domain.EntityPath)
	return path, ok && !path.IsZero()
}
