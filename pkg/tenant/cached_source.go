package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/recruitly/entitlements/pkg/logger"
)

const (
	cacheKeyFormat     = "entitlements:subscription:%s"
	defaultLoadTimeout = 5 * time.Second
)

// CachedSource is a read-through Redis cache in front of another Source.
// Concurrent misses for the same tenant share one upstream load.
// Cache failures are logged and bypassed; only upstream errors are returned.
//
// The shared load runs detached from the caller that started it. Each
// caller stops waiting when its own context ends.
type CachedSource struct {
	next        Source
	client      redis.UniversalClient
	ttl         time.Duration
	loadTimeout time.Duration
	group       singleflight.Group
	log         *slog.Logger
}

// CachedSourceOption configures a CachedSource.
type CachedSourceOption func(*CachedSource)

// WithCacheLogger sets the logger used for cache failures.
func WithCacheLogger(l *slog.Logger) CachedSourceOption {
	return func(c *CachedSource) {
		if l != nil {
			c.log = l
		}
	}
}

// WithLoadTimeout bounds a shared upstream load. Defaults to 5s.
func WithLoadTimeout(d time.Duration) CachedSourceOption {
	return func(c *CachedSource) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

// NewCachedSource wraps next with a Redis cache. ttl <= 0 defaults to one minute.
func NewCachedSource(next Source, client redis.UniversalClient, ttl time.Duration, opts ...CachedSourceOption) *CachedSource {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c := &CachedSource{
		next:        next,
		client:      client,
		ttl:         ttl,
		loadTimeout: defaultLoadTimeout,
		log:         logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadSubscription implements Source.
func (c *CachedSource) LoadSubscription(ctx context.Context, tenantID uuid.UUID) (*Subscription, error) {
	key := fmt.Sprintf(cacheKeyFormat, tenantID)

	if sub, ok := c.get(ctx, key); ok {
		return sub, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		sub, err := c.next.LoadSubscription(loadCtx, tenantID)
		if err != nil {
			return nil, err
		}
		c.set(loadCtx, key, sub)
		return sub, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// singleflight hands the same pointer to every waiter.
		return res.Val.(*Subscription).Clone(), nil
	}
}

// Invalidate drops the cached subscription, e.g. after a billing change.
func (c *CachedSource) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	return c.client.Del(ctx, fmt.Sprintf(cacheKeyFormat, tenantID)).Err()
}

func (c *CachedSource) get(ctx context.Context, key string) (*Subscription, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "subscription cache read failed", logger.Error(err))
		}
		return nil, false
	}

	var sub Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		c.log.WarnContext(ctx, "subscription cache entry is corrupted", logger.Error(err))
		return nil, false
	}
	return &sub, true
}

func (c *CachedSource) set(ctx context.Context, key string, sub *Subscription) {
	data, err := json.Marshal(sub)
	if err != nil {
		c.log.WarnContext(ctx, "subscription cache encode failed", logger.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "subscription cache write failed", logger.Error(err))
	}
}
