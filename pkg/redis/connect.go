package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect establishes a connection to the Redis server that backs usage
// counters and the subscription cache. It pings the server until it answers,
// retrying up to cfg.RetryAttempts times with cfg.RetryInterval between tries.
// The whole attempt is bounded by cfg.ConnectTimeout.
//
// Parameters:
//   - ctx: Context for cancelling the connection attempt
//   - cfg: Connection URL, timeout and retry settings
//
// Returns:
//   - *redis.Client: A client that has answered a ping
//   - error: ErrFailedToParseRedisConnString if the URL is invalid,
//     ErrRedisNotReady if every attempt fails or the timeout elapses
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	var lastErr error
	for range max(cfg.RetryAttempts, 1) {
		client := redis.NewClient(opts)

		// A client is lazy; only a ping proves the server is reachable.
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		// Stop early when the caller or the connect timeout gives up.
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrRedisNotReady, lastErr)
}

// Healthcheck returns a ping probe for readiness endpoints.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
