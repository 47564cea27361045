package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"advisor-engine/internal/config"
	"advisor-engine/internal/logging"
	"advisor-engine/internal/types"
)

// RedisRecencyCache implements RecencyCache on Redis lists so multiple
// engine instances share one recency view per user. All operations are
// best-effort: failures are logged and treated as a cold cache.
type RedisRecencyCache struct {
	client *redis.Client
	cfg    config.CacheConfig
	logger logging.Logger
}

// NewRedisRecencyCache connects to Redis and verifies the connection
func NewRedisRecencyCache(ctx context.Context, cfg config.CacheConfig, logger logging.Logger) (*RedisRecencyCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisRecencyCache{client: client, cfg: cfg, logger: logger}, nil
}

func (c *RedisRecencyCache) key(userID string) string {
	return "advisor:recent:" + userID
}

// Append pushes the record onto the user's list, trimming to the bound
func (c *RedisRecencyCache) Append(ctx context.Context, userID string, record *types.QuestionRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		c.logger.Error("Failed to marshal record for cache", "record_id", record.ID, "error", err)
		return
	}

	key := c.key(userID)
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(c.cfg.MaxRecent-1))
	pipe.Expire(ctx, key, c.cfg.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("Recency cache append failed", "user_id", userID, "error", err)
	}
}

// Recent returns cached records newest-first, or nil on a cold cache
func (c *RedisRecencyCache) Recent(ctx context.Context, userID string) []*types.QuestionRecord {
	items, err := c.client.LRange(ctx, c.key(userID), 0, int64(c.cfg.MaxRecent-1)).Result()
	if err != nil || len(items) == 0 {
		if err != nil && err != redis.Nil {
			c.logger.Warn("Recency cache read failed", "user_id", userID, "error", err)
		}
		return nil
	}

	records := make([]*types.QuestionRecord, 0, len(items))
	for _, item := range items {
		var record types.QuestionRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			c.logger.Error("Failed to unmarshal cached record", "user_id", userID, "error", err)
			continue
		}
		records = append(records, &record)
	}
	return records
}

// Invalidate drops the user's cached list
func (c *RedisRecencyCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		c.logger.Warn("Recency cache invalidate failed", "user_id", userID, "error", err)
	}
}

// Close releases the Redis connection
func (c *RedisRecencyCache) Close() error {
	return c.client.Close()
}
