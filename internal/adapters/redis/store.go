package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/simscope/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "simscope:logs:"

// Archive implements ports.LogArchive using Redis lists, one per entity.
// Each list element is one JSON record.
type Archive struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Archive)

// WithTTL sets the expiration for exported streams.
func WithTTL(ttl time.Duration) Option {
	return func(a *Archive) {
		a.ttl = ttl
	}
}

// WithPrefix sets the key prefix for exported streams.
func WithPrefix(prefix string) Option {
	return func(a *Archive) {
		a.prefix = prefix
	}
}

// New creates a new Redis archive with options.
func New(address, password string, db int, opts ...Option) *Archive {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis archive from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Archive {
	archive := &Archive{
		client: client,
		prefix: defaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(archive)
	}

	return archive
}

func (a *Archive) key(entity domain.EntityPath) string {
	return a.prefix + entity.String()
}

func (a *Archive) indexKey() string {
	return a.prefix + "index"
}

// Export replaces the stream of entity in one MULTI/EXEC transaction.
func (a *Archive) Export(ctx context.Context, entity domain.EntityPath, events []domain.LogEvent) error {
	records := make([]any, len(events))
	for i, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal event %d: %w", i, err)
		}
		records[i] = data
	}

	pipe := a.client.TxPipeline()

	// 1. Replace the list
	pipe.Del(ctx, a.key(entity))
	if len(records) > 0 {
		pipe.RPush(ctx, a.key(entity), records...)
		if a.ttl > 0 {
			pipe.Expire(ctx, a.key(entity), a.ttl)
		}
	}

	// 2. Add to Index (ZSET)
	// Score = Now + TTL. If TTL = 0, Score = +Inf (approx).
	score := float64(time.Now().Add(a.ttl).Unix())
	if a.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, a.indexKey(), backend.Z{
		Score:  score,
		Member: entity.String(),
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to export to redis: %w", err)
	}
	return nil
}

// Load reads the stream of entity. A missing list loads as empty.
func (a *Archive) Load(ctx context.Context, entity domain.EntityPath) ([]domain.LogEvent, error) {
	records, err := a.client.LRange(ctx, a.key(entity), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}

	events := make([]domain.LogEvent, 0, len(records))
	for i, r := range records {
		var e domain.LogEvent
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event %d: %w", i, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// Entities lists exported streams, pruning expired index entries first.
func (a *Archive) Entities(ctx context.Context) ([]domain.EntityPath, error) {
	now := float64(time.Now().Unix())
	err := a.client.ZRemRangeByScore(ctx, a.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired streams: %w", err)
	}

	members, err := a.client.ZRange(ctx, a.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list streams: %w", err)
	}

	out := make([]domain.EntityPath, len(members))
	for i, m := range members {
		out[i] = domain.EntityPath(m)
	}
	slices.SortFunc(out, domain.EntityPath.Compare)
	return out, nil
}

// Close closes the redis client.
func (a *Archive) Close() error {
	return a.client.Close()
}
