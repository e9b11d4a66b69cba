package usage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps counters as Redis integers updated with INCRBY.
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the key namespace. Default "usage".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithRetention expires counters this long after their first increment.
// Zero keeps them forever. The retention must outlive the period.
func WithRetention(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.retention = d
	}
}

// NewRedisStore returns a Store backed by client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "usage"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(k Key) string {
	return s.prefix + ":" + k.String()
}

// Read implements Store.
func (s *RedisStore) Read(ctx context.Context, key Key) (int64, error) {
	n, err := s.client.Get(ctx, s.key(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return n, nil
}

// Increment implements Store. The expiry is set only when the key has none,
// so later increments do not extend it.
func (s *RedisStore) Increment(ctx context.Context, key Key, amount int64) (int64, error) {
	k := s.key(key)
	if s.retention <= 0 {
		n, err := s.client.IncrBy(ctx, k, amount).Result()
		if err != nil {
			return 0, errors.Join(ErrStoreFailure, err)
		}
		return n, nil
	}

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.IncrBy(ctx, k, amount)
		pipe.ExpireNX(ctx, k, s.retention)
		return nil
	})
	if err != nil {
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return incr.Val(), nil
}
