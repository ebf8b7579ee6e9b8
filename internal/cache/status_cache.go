package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"plaza/api/internal/models"
)

// StatusCache keeps each user's current status hot in redis. Every failure
// is swallowed after a log line; the database stays authoritative.
type StatusCache struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewStatusCache(client *redis.Client, log zerolog.Logger) *StatusCache {
	return &StatusCache{client: client, log: log}
}

func statusKey(userID string) string {
	return fmt.Sprintf("status:current:%s", userID)
}

func (c *StatusCache) GetCurrent(ctx context.Context, userID string) (models.Status, bool) {
	raw, err := c.client.Get(ctx, statusKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug().Err(err).Str("user_id", userID).Msg("status cache read failed")
		}
		return models.Status{}, false
	}

	var status models.Status
	if err := json.Unmarshal(raw, &status); err != nil {
		c.log.Debug().Err(err).Str("user_id", userID).Msg("status cache decode failed")
		return models.Status{}, false
	}
	return status, true
}

func (c *StatusCache) SetCurrent(ctx context.Context, userID string, status models.Status) {
	ttl := time.Until(status.EndTime)
	if ttl <= 0 {
		return
	}

	raw, err := json.Marshal(status)
	if err != nil {
		c.log.Debug().Err(err).Str("user_id", userID).Msg("status cache encode failed")
		return
	}
	if err := c.client.Set(ctx, statusKey(userID), raw, ttl).Err(); err != nil {
		c.log.Debug().Err(err).Str("user_id", userID).Msg("status cache write failed")
	}
}

func (c *StatusCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, statusKey(userID)).Err(); err != nil {
		c.log.Debug().Err(err).Str("user_id", userID).Msg("status cache invalidate failed")
	}
}
