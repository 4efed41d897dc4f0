package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a shared second-level cache consulted before the upstream source.
type Store interface {
	Load(ctx context.Context, currency string) (Entry, bool, error)
	Save(ctx context.Context, e Entry, ttl time.Duration) error
}

const redisKeyPrefix = "chaingate:price:"

// RedisStore keeps entries as JSON values that expire after the cache TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewRedisStore(client), nil
}

func (s *RedisStore) Load(ctx context.Context, currency string) (Entry, bool, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+currency).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read price: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(val, &e); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode price: %w", err)
	}
	return e, true, nil
}

func (s *RedisStore) Save(ctx context.Context, e Entry, ttl time.Duration) error {
	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode price: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+e.Currency, val, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write price: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
