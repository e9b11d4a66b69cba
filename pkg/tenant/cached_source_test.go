package tenant_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruitly/entitlements/pkg/catalog"
	"github.com/recruitly/entitlements/pkg/tenant"
)

type countingSource struct {
	next  tenant.Source
	calls atomic.Int64
	delay time.Duration
}

func (s *countingSource) LoadSubscription(ctx context.Context, id uuid.UUID) (*tenant.Subscription, error) {
	s.calls.Add(1)
	time.Sleep(s.delay)
	return s.next.LoadSubscription(ctx, id)
}

// blockingSource holds every load until release is closed and records
// whether the load context was cancelled underneath it.
type blockingSource struct {
	next      tenant.Source
	started   chan struct{}
	release   chan struct{}
	once      sync.Once
	cancelled atomic.Bool
}

func (s *blockingSource) LoadSubscription(ctx context.Context, id uuid.UUID) (*tenant.Subscription, error) {
	s.once.Do(func() { close(s.started) })
	<-s.release
	if ctx.Err() != nil {
		s.cancelled.Store(true)
		return nil, ctx.Err()
	}
	return s.next.LoadSubscription(ctx, id)
}

func unreachableRedis(t *testing.T) redis.UniversalClient {
	t.Helper()

	// Nothing listens on this port; every cache call fails fast.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func redisClient(t *testing.T) redis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCachedSource(t *testing.T) {
	t.Parallel()

	client := redisClient(t)
	ctx := context.Background()
	id := uuid.New()

	mem := tenant.NewMemorySource(&tenant.Subscription{
		TenantID: id,
		Tier:     catalog.TierPro,
		Overrides: map[catalog.FeatureID]tenant.Override{
			catalog.FeatureSSO: tenant.Enable(true),
		},
	})
	upstream := &countingSource{next: mem, delay: 20 * time.Millisecond}
	cached := tenant.NewCachedSource(upstream, client, time.Minute)
	t.Cleanup(func() { _ = cached.Invalidate(context.Background(), id) })

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub, err := cached.LoadSubscription(ctx, id)
			assert.NoError(t, err)
			assert.Equal(t, catalog.TierPro, sub.Tier)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), upstream.calls.Load(), "concurrent misses share one load")

	sub, err := cached.LoadSubscription(ctx, id)
	require.NoError(t, err)
	o, ok := sub.Override(catalog.FeatureSSO)
	require.True(t, ok)
	assert.True(t, *o.Enabled)
	assert.Equal(t, int64(1), upstream.calls.Load(), "served from cache")

	require.NoError(t, mem.Put(&tenant.Subscription{TenantID: id, Tier: catalog.TierFree}))
	require.NoError(t, cached.Invalidate(ctx, id))

	sub, err = cached.LoadSubscription(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, catalog.TierFree, sub.Tier)
	assert.Equal(t, int64(2), upstream.calls.Load())
}

func TestCachedSource_NotFoundIsNotCached(t *testing.T) {
	t.Parallel()

	client := redisClient(t)
	upstream := &countingSource{next: tenant.NewMemorySource()}
	cached := tenant.NewCachedSource(upstream, client, time.Minute)

	id := uuid.New()
	for range 2 {
		_, err := cached.LoadSubscription(context.Background(), id)
		assert.ErrorIs(t, err, tenant.ErrNotFound)
	}
	assert.Equal(t, int64(2), upstream.calls.Load())
}

func TestCachedSource_RedisDownFallsThrough(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	mem := tenant.NewMemorySource(&tenant.Subscription{TenantID: id, Tier: catalog.TierEnterprise})
	cached := tenant.NewCachedSource(mem, unreachableRedis(t), time.Minute)

	sub, err := cached.LoadSubscription(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, catalog.TierEnterprise, sub.Tier)
}

func TestCachedSource_CancelledCallerDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	upstream := &blockingSource{
		next:    tenant.NewMemorySource(&tenant.Subscription{TenantID: id, Tier: catalog.TierPro}),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	cached := tenant.NewCachedSource(upstream, unreachableRedis(t), time.Minute)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cached.LoadSubscription(firstCtx, id)
		firstErr <- err
	}()

	select {
	case <-upstream.started:
	case <-time.After(time.Second):
		t.Fatal("upstream load did not start")
	}

	type result struct {
		sub *tenant.Subscription
		err error
	}
	second := make(chan result, 1)
	go func() {
		sub, err := cached.LoadSubscription(context.Background(), id)
		second <- result{sub, err}
	}()

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(upstream.release)
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Equal(t, catalog.TierPro, res.sub.Tier)
	case <-time.After(time.Second):
		t.Fatal("second caller did not get a result")
	}
	assert.False(t, upstream.cancelled.Load(), "shared load must outlive the caller that started it")
}

func TestCachedSource_LoadTimeout(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	upstream := &slowSource{delay: time.Second}
	cached := tenant.NewCachedSource(upstream, unreachableRedis(t), time.Minute,
		tenant.WithLoadTimeout(50*time.Millisecond),
	)

	_, err := cached.LoadSubscription(context.Background(), id)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type slowSource struct {
	delay time.Duration
}

func (s *slowSource) LoadSubscription(ctx context.Context, _ uuid.UUID) (*tenant.Subscription, error) {
	select {
	case <-time.After(s.delay):
		return nil, tenant.ErrNotFound
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
