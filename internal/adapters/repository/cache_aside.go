package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// readThrough serves key from Redis, or calls load once per concurrent miss
// and caches the result. Redis failures degrade to calling load directly.
func readThrough[T any](ctx context.Context, rdb *redis.Client, group *singleflight.Group, logger *zap.Logger, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	val, err := rdb.Get(ctx, key).Bytes()
	if err == nil {
		var cached T
		if err := json.Unmarshal(val, &cached); err == nil {
			return cached, nil
		}
		logger.Warn("Corrupted cache entry, cleaning up key", zap.String("key", key))
		rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn("Redis read error", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := group.Do(key, func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(loaded); err == nil {
			if setErr := rdb.Set(ctx, key, data, ttl).Err(); setErr != nil {
				logger.Warn("Redis set error", zap.String("key", key), zap.Error(setErr))
			}
		}
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
