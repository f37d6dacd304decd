package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chirp/backend/internal/social"
	apperrors "chirp/backend/pkg/errors"
)

const keyPrefix = "chirp:trending"

// TrendingCache keeps computed trending rankings in Redis for a short TTL
type TrendingCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ social.TrendingCache = (*TrendingCache)(nil)

func NewTrendingCache(client *redis.Client, ttl time.Duration) *TrendingCache {
	return &TrendingCache{client: client, ttl: ttl}
}

// Dial connects to Redis and checks the connection with PING
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.NewCacheFailed("ping", err)
	}
	return client, nil
}

// Get returns the cached ranking. A miss is reported with ok=false and no error.
func (c *TrendingCache) Get(ctx context.Context, window string, limit int) ([]social.TagCount, bool, error) {
	payload, err := c.client.Get(ctx, trendingKey(window, limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.NewCacheFailed("get", err)
	}

	var tags []social.TagCount
	if err := json.Unmarshal(payload, &tags); err != nil {
		return nil, false, apperrors.NewCacheFailed("decode", err)
	}
	return tags, true, nil
}

// Set stores the ranking with the configured TTL
func (c *TrendingCache) Set(ctx context.Context, window string, limit int, tags []social.TagCount) error {
	payload, err := json.Marshal(tags)
	if err != nil {
		return apperrors.NewCacheFailed("encode", err)
	}
	if err := c.client.Set(ctx, trendingKey(window, limit), payload, c.ttl).Err(); err != nil {
		return apperrors.NewCacheFailed("set", err)
	}
	return nil
}

// Invalidate deletes every cached ranking under the trending prefix
func (c *TrendingCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return apperrors.NewCacheFailed("invalidate", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.NewCacheFailed("invalidate", err)
	}
	return nil
}

func trendingKey(window string, limit int) string {
	return fmt.Sprintf("%s:%s:%d", keyPrefix, window, limit)
}
