package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/errors"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
)

// Store is a thin JSON cache over Redis. Lookups are advisory: callers fall
// back to the database when the cache errors, so a Redis outage degrades
// latency but never correctness.
type Store struct {
	client *redis.Client
}

// NewStore wraps an explicit client, for tests.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// DefaultStore uses the shared client initialized by InitRedis.
func DefaultStore() *Store {
	return &Store{}
}

func (s *Store) redis() *redis.Client {
	if s.client != nil {
		return s.client
	}
	return defaultClient
}

// GetJSON loads key into dest. The second return is true on a hit.
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := s.redis().Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, errors.NewError().
			WithCode(errors.CodeCacheError).
			WithMessagef("cache get %s failed", key).
			WithError(err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		log.Warnf("dropping undecodable cache entry %s: %v", key, err)
		s.redis().Del(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON stores value under key with the given TTL.
func (s *Store) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.NewError().
			WithCode(errors.CodeCacheError).
			WithMessagef("cache marshal for %s failed", key).
			WithError(err)
	}
	if err := s.redis().Set(ctx, key, raw, ttl).Err(); err != nil {
		return errors.NewError().
			WithCode(errors.CodeCacheError).
			WithMessagef("cache set %s failed", key).
			WithError(err)
	}
	return nil
}

// Delete removes the given keys.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.redis().Del(ctx, keys...).Err(); err != nil {
		return errors.NewError().
			WithCode(errors.CodeCacheError).
			WithMessage("cache delete failed").
			WithError(err)
	}
	return nil
}

// DeletePattern removes every key matching pattern via SCAN, so it stays
// safe on instances shared with other keyspaces.
func (s *Store) DeletePattern(ctx context.Context, pattern string) error {
	client := s.redis()
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := client.Del(ctx, keys...).Err(); err != nil {
				return errors.NewError().
					WithCode(errors.CodeCacheError).
					WithMessagef("cache delete pattern %s failed", pattern).
					WithError(err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return errors.NewError().
			WithCode(errors.CodeCacheError).
			WithMessagef("cache scan %s failed", pattern).
			WithError(err)
	}
	if len(keys) > 0 {
		if err := client.Del(ctx, keys...).Err(); err != nil {
			return errors.NewError().
				WithCode(errors.CodeCacheError).
				WithMessagef("cache delete pattern %s failed", pattern).
				WithError(err)
		}
	}
	return nil
}

// Ping checks cache liveness for the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.redis().Ping(ctx).Err()
}
