// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"imi_backend/internal/feature/signals/domain/entity"
	"imi_backend/internal/feature/signals/usecase"
)

// SignalStore is the persistence surface the signal feed and the realization job share.
type SignalStore interface {
	usecase.SignalRepository
	usecase.RealizationStore
}

// CachingSignalRepository decorates a SignalStore with Redis caching.
// Only List and FindByID are cached; every write invalidates the affected keys.
type CachingSignalRepository struct {
	inner     SignalStore
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ SignalStore = (*CachingSignalRepository)(nil)

// NewCachingSignalRepository decorates a SignalStore with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "signals".
// A nil rdb disables caching entirely.
func NewCachingSignalRepository(rdb *redis.Client, ttl time.Duration, inner SignalStore, namespace string) *CachingSignalRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "signals"
	}
	return &CachingSignalRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// List returns the feed from cache, falling back to the inner repository.
func (c *CachingSignalRepository) List(ctx context.Context) ([]entity.Signal, error) {
	if c.rdb == nil {
		return c.inner.List(ctx)
	}
	key := c.listKey()

	var out []entity.Signal
	if c.get(ctx, key, &out) {
		return out, nil
	}

	out, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, out)
	return out, nil
}

// FindByID returns one signal from cache, falling back to the inner repository.
// Misses are not cached.
func (c *CachingSignalRepository) FindByID(ctx context.Context, id string) (*entity.Signal, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}
	key := c.idKey(id)

	var cached entity.Signal
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	s, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, s)
	return s, nil
}

// Upsert writes through and invalidates the feed and the signal's own key.
func (c *CachingSignalRepository) Upsert(ctx context.Context, s *entity.Signal) error {
	if err := c.inner.Upsert(ctx, s); err != nil {
		return err
	}
	c.invalidate(ctx, s.ID)
	return nil
}

// CreateBatch writes through and drops every key in the namespace.
func (c *CachingSignalRepository) CreateBatch(ctx context.Context, signals []entity.Signal) error {
	if err := c.inner.CreateBatch(ctx, signals); err != nil {
		return err
	}
	if c.rdb == nil || len(signals) == 0 {
		return nil
	}
	if err := c.deleteByPattern(ctx, c.namespace+":*"); err != nil {
		slog.Warn("cache invalidation failed", "namespace", c.namespace, "error", err)
	}
	return nil
}

func (c *CachingSignalRepository) Count(ctx context.Context) (int64, error) {
	return c.inner.Count(ctx)
}

func (c *CachingSignalRepository) ListUnrealized(ctx context.Context) ([]entity.Signal, error) {
	return c.inner.ListUnrealized(ctx)
}

// MarkRealized writes through and invalidates the feed and the signal's own key.
func (c *CachingSignalRepository) MarkRealized(ctx context.Context, id string, excess float64, at time.Time) error {
	if err := c.inner.MarkRealized(ctx, id, excess, at); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// get reports whether key held a decodable value. Corrupted entries are deleted.
func (c *CachingSignalRepository) get(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// set stores v under key (best effort).
func (c *CachingSignalRepository) set(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

func (c *CachingSignalRepository) invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.listKey(), c.idKey(id)).Err(); err != nil {
		slog.Warn("cache invalidation failed", "id", id, "error", err)
	}
}

func (c *CachingSignalRepository) listKey() string {
	return c.namespace + ":all"
}

func (c *CachingSignalRepository) idKey(id string) string {
	return c.namespace + ":id:" + keySegment(id)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingSignalRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// keySegment encodes an id for use inside a Redis key.
// The encoding is injective and leaves no ':' or glob characters in the segment.
func keySegment(s string) string {
	return url.QueryEscape(s)
}
