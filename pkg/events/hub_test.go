package events_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruitly/entitlements/pkg/events"
)

func receive[T any](t *testing.T, sub *events.Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	var zero T
	return zero
}

func TestHub_PublishSubscribe(t *testing.T) {
	t.Parallel()

	hub := events.NewHub[events.UsageRecorded]()
	t.Cleanup(func() { _ = hub.Close() })

	tenantA, tenantB := uuid.New(), uuid.New()

	all, err := hub.Subscribe(context.Background(), events.AllTopics)
	require.NoError(t, err)
	onlyA, err := hub.Subscribe(context.Background(), events.TenantTopic(tenantA))
	require.NoError(t, err)
	assert.Equal(t, 2, hub.Subscribers())

	ctx := context.Background()
	require.NoError(t, hub.Publish(ctx, events.TenantTopic(tenantB), events.UsageRecorded{TenantID: tenantB, Total: 1}))
	require.NoError(t, hub.Publish(ctx, events.TenantTopic(tenantA), events.UsageRecorded{TenantID: tenantA, Total: 2}))

	assert.Equal(t, tenantB, receive(t, all).TenantID)
	assert.Equal(t, tenantA, receive(t, all).TenantID)

	got := receive(t, onlyA)
	assert.Equal(t, tenantA, got.TenantID)
	assert.Equal(t, int64(2), got.Total)
	assert.Empty(t, onlyA.C())
}

func TestHub_SlowSubscriberDropsMessages(t *testing.T) {
	t.Parallel()

	var dropped atomic.Int64
	hub := events.NewHub[int](
		events.WithBufferSize(2),
		events.WithDropHandler(func(string) { dropped.Add(1) }),
	)
	t.Cleanup(func() { _ = hub.Close() })

	sub, err := hub.Subscribe(context.Background(), events.AllTopics)
	require.NoError(t, err)

	for i := range 5 {
		require.NoError(t, hub.Publish(context.Background(), "t", i))
	}

	assert.Equal(t, int64(3), dropped.Load())
	assert.Equal(t, 0, receive(t, sub))
	assert.Equal(t, 1, receive(t, sub))
	assert.Equal(t, 1, hub.Subscribers(), "slow subscribers stay registered")
}

func TestHub_ContextCancellationUnsubscribes(t *testing.T) {
	t.Parallel()

	hub := events.NewHub[int]()
	t.Cleanup(func() { _ = hub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := hub.Subscribe(ctx, events.AllTopics)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-sub.C():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed on cancel")
	}
	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_Close(t *testing.T) {
	t.Parallel()

	hub := events.NewHub[int]()
	sub, err := hub.Subscribe(context.Background(), events.AllTopics)
	require.NoError(t, err)

	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close())

	_, ok := <-sub.C()
	assert.False(t, ok)
	assert.NoError(t, sub.Close())

	assert.ErrorIs(t, hub.Publish(context.Background(), "t", 1), events.ErrHubClosed)
	_, err = hub.Subscribe(context.Background(), events.AllTopics)
	assert.ErrorIs(t, err, events.ErrHubClosed)
}

func TestHub_PublishCancelledContext(t *testing.T) {
	t.Parallel()

	hub := events.NewHub[int]()
	t.Cleanup(func() { _ = hub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, hub.Publish(ctx, "t", 1), context.Canceled)
}
