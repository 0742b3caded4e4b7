package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "superlist:"

func NewRedisClient(ctx context.Context, addr, password string, dbIndex int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           dbIndex,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return rdb, nil
}

// Key joins parts under KeyPrefix: Key("lists", "all") -> "superlist:lists:all".
func Key(parts ...string) string {
	return KeyPrefix + strings.Join(parts, ":")
}

// DeletePattern removes every key matching pattern using SCAN, so it never
// blocks the server the way KEYS would.
func DeletePattern(ctx context.Context, rdb *redis.Client, pattern string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("delete keys: %w", err)
			}
			deleted += int(n)
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

// Invalidate deletes keys, logging rather than failing: a stale entry only
// lives until its TTL.
func Invalidate(ctx context.Context, rdb *redis.Client, logger *zap.Logger, keys ...string) {
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("Failed to invalidate cache", zap.Strings("keys", keys), zap.Error(err))
	}
}
