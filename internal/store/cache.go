package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Cache is an optional read-through cache for form definitions. Every method
// is safe on a nil receiver, so callers without Redis configured just pass
// nil. Cache failures are logged and ignored; the database stays the source
// of truth.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client. A nil client yields a nil cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(formID string) string {
	return "formbridge:definition:" + formID
}

// Get returns the cached schema document for a form, if present.
func (c *Cache) Get(ctx context.Context, formID string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, cacheKey(formID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).Debug("store: definition cache get failed")
		}
		return nil, false
	}
	return payload, true
}

// Set stores the schema document for a form.
func (c *Cache) Set(ctx context.Context, formID string, payload []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(formID), payload, c.ttl).Err(); err != nil {
		log.WithError(err).Debug("store: definition cache set failed")
	}
}

// Delete drops the cached document after a save, publish, or delete.
func (c *Cache) Delete(ctx context.Context, formID string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKey(formID)).Err(); err != nil {
		log.WithError(err).Debug("store: definition cache delete failed")
	}
}
