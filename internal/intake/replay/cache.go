// Package replay answers NLU redeliveries from Redis so a retried webhook call
// returns the identical reply without touching the session again.
package replay

import (
	"context"
	"encoding/json"
	"time"

	"claim-intake/internal/common/logger"
	"claim-intake/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "intake:reply:"

// Cache is safe to use as a nil pointer; a nil cache never hits.
type Cache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func New(rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *Cache {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Cache{rdb: rdb, ttl: ttl, logger: log}
}

func key(responseID string) string {
	return keyPrefix + responseID
}

// Get returns a previously stored reply. Redis errors count as a miss.
func (c *Cache) Get(ctx context.Context, responseID string) (models.Reply, bool) {
	if c == nil || c.rdb == nil || responseID == "" {
		return models.Reply{}, false
	}

	raw, err := c.rdb.Get(ctx, key(responseID)).Bytes()
	if err == redis.Nil {
		return models.Reply{}, false
	}
	if err != nil {
		c.logger.Warn("Reply cache read failed", map[string]interface{}{
			"responseId": responseID,
			"error":      err.Error(),
		})
		return models.Reply{}, false
	}

	var reply models.Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		c.logger.Warn("Discarding undecodable cached reply", map[string]interface{}{
			"responseId": responseID,
			"error":      err.Error(),
		})
		return models.Reply{}, false
	}
	return reply, true
}

// Put stores the reply for responseID. Failures are logged and dropped.
func (c *Cache) Put(ctx context.Context, responseID string, reply models.Reply) {
	if c == nil || c.rdb == nil || responseID == "" {
		return
	}

	raw, err := json.Marshal(reply)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(responseID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Reply cache write failed", map[string]interface{}{
			"responseId": responseID,
			"error":      err.Error(),
		})
	}
}
