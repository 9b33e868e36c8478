package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// Redis delegates TTL bookkeeping to Redis key expiry. A missing or
// expired key is a miss; the fresh payload is stored with the given
// ttl. When Redis itself is unreachable the cache degrades to a plain
// fetch so market data keeps flowing.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects a Redis-backed cache.
func NewRedis(addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, prefix: "pairsentinel:"}, nil
}

var _ Cache = (*Redis)(nil)

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	fullKey := r.prefix + key

	data, err := r.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.WithFields(log.Fields{"component": "cache", "key": key}).
			Warningf("redis read failed, fetching directly: [%v]", err)
	}

	data, err = fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.client.Set(ctx, fullKey, data, ttl).Err(); err != nil {
		log.WithFields(log.Fields{"component": "cache", "key": key}).
			Warningf("redis write failed: [%v]", err)
	}
	return data, nil
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
