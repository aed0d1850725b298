package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/t-fbd/loc-api/internal/models"
)

// RedisStatusStore stores harvest status in Redis.
type RedisStatusStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStatusStore initializes a Redis-backed StatusStore.
func NewRedisStatusStore(addr, prefix string, ttl time.Duration) *RedisStatusStore {
	return NewRedisStatusStoreWithClient(redis.NewClient(&redis.Options{Addr: addr}), prefix, ttl)
}

// NewRedisStatusStoreWithClient builds a store over an existing client (tests, shared pools).
func NewRedisStatusStoreWithClient(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStatusStore {
	return &RedisStatusStore{client: client, prefix: prefix, ttl: ttl}
}

// Close closes the Redis client.
func (s *RedisStatusStore) Close() error {
	return s.client.Close()
}

// SetStatus writes the status record to Redis.
func (s *RedisStatusStore) SetStatus(ctx context.Context, status models.HarvestStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return errors.Wrap(err, "marshal status")
	}
	key := s.prefix + status.SessionID
	return errors.Wrapf(s.client.Set(ctx, key, payload, s.ttl).Err(), "set %s", key)
}

// GetStatus reads the status record from Redis.
func (s *RedisStatusStore) GetStatus(ctx context.Context, sessionID string) (models.HarvestStatus, bool, error) {
	key := s.prefix + sessionID
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.HarvestStatus{}, false, nil
		}
		return models.HarvestStatus{}, false, errors.Wrapf(err, "get %s", key)
	}

	var status models.HarvestStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return models.HarvestStatus{}, false, errors.Wrapf(err, "decode %s", key)
	}

	return status, true, nil
}
