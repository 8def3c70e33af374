package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/errors"
)

var defaultClient *redis.Client

// InitRedis connects the shared Redis client used by both the cache and the
// auto-record queue.
func InitRedis(addr, password string, db int) error {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     20,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return errors.NewError().
			WithCode(errors.CodeInitializeError).
			WithMessagef("redis ping failed for %s", addr).
			WithError(err)
	}
	defaultClient = client
	return nil
}

// GetRedisClient returns the shared client. Nil before InitRedis.
func GetRedisClient() *redis.Client {
	return defaultClient
}

// SetRedisClient replaces the shared client. Used by tests with miniredis.
func SetRedisClient(client *redis.Client) {
	defaultClient = client
}
