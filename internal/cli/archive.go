package cli

import (
	"github.com/aretw0/simscope/internal/adapters/file"
	"github.com/aretw0/simscope/internal/adapters/redis"
	"github.com/aretw0/simscope/internal/config"
	"github.com/aretw0/simscope/pkg/persistence/middleware"
	"github.com/aretw0/simscope/pkg/ports"
)

// BuildArchive selects the export backend (Redis when an address is
// configured, the JSONL directory otherwise) and wraps it with redaction and
// sealing. Redaction runs before sealing so masked values are never
// encrypted. The returned func releases the backend.
func BuildArchive(cfg config.Export) (ports.LogArchive, func() error, error) {
	var (
		archive ports.LogArchive
		closeFn = func() error { return nil }
	)
	if cfg.Redis.Addr != "" {
		r := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		archive, closeFn = r, r.Close
	} else {
		archive = file.New(cfg.Dir)
	}

	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.Redact))
	}
	if cfg.Key != "" {
		active, err := cfg.Keys()
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: cfg.Fallbacks(),
		}))
	}
	return middleware.Chain(archive, mws...), closeFn, nil
}
