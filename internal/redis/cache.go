package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ViewCache is a generic JSON-backed Redis cache for serialised resources.
//
// Every key has a generation counter alongside it. Entries are stored with
// the generation that was current before the value was read from the
// record store, and Get only trusts an entry whose generation still
// matches. Invalidate bumps the counter, so a reader that loaded a row
// before a write committed can never make that row visible again.
type ViewCache[T any] struct {
	client goredis.Cmdable
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

type cacheEntry[T any] struct {
	Generation int64 `json:"generation"`
	Value      T     `json:"value"`
}

// NewViewCache creates a ViewCache backed by the provided Redis client.
// A ttl of 0 keeps entries until they are invalidated.
func NewViewCache[T any](client goredis.Cmdable, prefix string, ttl time.Duration, logger zerolog.Logger) *ViewCache[T] {
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *ViewCache[T]) viewKey(key string) string {
	return c.prefix + key
}

func (c *ViewCache[T]) generationKey(key string) string {
	return c.prefix + key + ":gen"
}

// Get returns the cached value when it was written under the key's
// current generation. Misses, stale entries and Redis errors all return
// (nil, false).
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	vals, err := c.client.MGet(ctx, c.viewKey(key), c.generationKey(key)).Result()
	if err != nil {
		c.logger.Warn().Err(err).Str("key", c.viewKey(key)).Msg("view cache read failed")
		return nil, false
	}
	if len(vals) != 2 {
		return nil, false
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, false
	}
	current, err := parseGeneration(vals[1])
	if err != nil {
		c.logger.Warn().Err(err).Str("key", c.generationKey(key)).Msg("view cache generation is corrupt")
		return nil, false
	}

	var entry cacheEntry[T]
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Warn().Err(err).Str("key", c.viewKey(key)).Msg("view cache entry is corrupt")
		return nil, false
	}
	if entry.Generation != current {
		return nil, false
	}
	return &entry.Value, true
}

// Generation reads the current generation of key. Callers take it before
// loading from the record store and hand it to Set. ok is false when Redis
// could not be read; the caller must then skip Set.
func (c *ViewCache[T]) Generation(ctx context.Context, key string) (int64, bool) {
	gen, err := c.client.Get(ctx, c.generationKey(key)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, true
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", c.generationKey(key)).Msg("view cache generation read failed")
		return 0, false
	}
	return gen, true
}

// Set stores value tagged with generation. Errors are logged rather than
// returned; a cache write miss is non-fatal.
func (c *ViewCache[T]) Set(ctx context.Context, key string, generation int64, value *T) {
	data, err := json.Marshal(cacheEntry[T]{Generation: generation, Value: *value})
	if err != nil {
		c.logger.Error().Err(err).Str("key", c.viewKey(key)).Msg("view cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, c.viewKey(key), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", c.viewKey(key)).Msg("view cache write failed")
	}
}

// Invalidate bumps the generation of key and drops its entry. Call it only
// after the write it follows has committed.
func (c *ViewCache[T]) Invalidate(ctx context.Context, key string) {
	genKey := c.generationKey(key)
	if err := c.client.Incr(ctx, genKey).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", genKey).Msg("view cache generation bump failed")
	} else if c.ttl > 0 {
		// Outlives any entry a slow reader could still write under the old
		// generation.
		if err := c.client.Expire(ctx, genKey, 2*c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("key", genKey).Msg("view cache generation expiry failed")
		}
	}
	if err := c.client.Del(ctx, c.viewKey(key)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", c.viewKey(key)).Msg("view cache delete failed")
	}
}

func parseGeneration(v any) (int64, error) {
	switch g := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(g, 10, 64)
	default:
		return 0, errors.New("unexpected generation type")
	}
}
