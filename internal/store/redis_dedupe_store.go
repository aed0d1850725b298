package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDedupeStore claims dedupe keys with SET NX.
type RedisDedupeStore struct {
	client redis.UniversalClient
}

func NewRedisDedupeStore(addr string) *RedisDedupeStore {
	return &RedisDedupeStore{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewRedisDedupeStoreWithClient builds a store over an existing client.
func NewRedisDedupeStoreWithClient(client redis.UniversalClient) *RedisDedupeStore {
	return &RedisDedupeStore{client: client}
}

// SetNX returns true when the key was newly claimed.
func (s *RedisDedupeStore) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *RedisDedupeStore) Close() error {
	return s.client.Close()
}
