package gateway

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"business-assistant/internal/common/logger"
)

const cacheKeyPrefix = "business:gateway:"

// Cache is a Redis read-through cache for primary answers. Failures are
// logged and treated as misses.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(client redis.Cmdable, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger.Component(log, "gateway-cache"),
	}
}

// cacheKey derives a stable key from the entity and its resolved query.
func cacheKey(entity string, query interface{}) string {
	raw, _ := json.Marshal(query)
	sum := sha1.Sum(raw)
	return fmt.Sprintf("%s%s:%s", cacheKeyPrefix, entity, hex.EncodeToString(sum[:]))
}

func (c *Cache) get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("cache entry unreadable", map[string]interface{}{"key": key, "error": err})
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}
