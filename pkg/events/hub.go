package events

import (
	"context"
	"sync"
)

// AllTopics subscribes to every topic published on a hub.
const AllTopics = ""

// Hub delivers values of type T to subscribers of a topic.
// All methods are safe for concurrent use.
type Hub[T any] struct {
	mu     sync.RWMutex
	subs   map[*Subscription[T]]struct{}
	buffer int
	closed bool
	onDrop func(topic string)
	wg     sync.WaitGroup
}

// Option configures a Hub.
type Option func(*hubOptions)

type hubOptions struct {
	buffer int
	onDrop func(topic string)
}

// WithBufferSize sets the per-subscriber buffer. Minimum 1, default 16.
func WithBufferSize(n int) Option {
	return func(o *hubOptions) {
		o.buffer = n
	}
}

// WithDropHandler is called whenever a message is dropped for a slow subscriber.
func WithDropHandler(fn func(topic string)) Option {
	return func(o *hubOptions) {
		o.onDrop = fn
	}
}

// NewHub returns an open hub.
func NewHub[T any](opts ...Option) *Hub[T] {
	o := hubOptions{buffer: 16}
	for _, opt := range opts {
		opt(&o)
	}
	return &Hub[T]{
		subs:   make(map[*Subscription[T]]struct{}),
		buffer: max(o.buffer, 1),
		onDrop: o.onDrop,
	}
}

// Subscribe registers a subscriber for topic, or for every topic when topic
// is AllTopics. The subscription ends when ctx is cancelled, Close is called
// on it, or the hub is closed.
func (h *Hub[T]) Subscribe(ctx context.Context, topic string) (*Subscription[T], error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	sub := &Subscription[T]{
		hub:   h,
		topic: topic,
		ch:    make(chan T, h.buffer),
		done:  make(chan struct{}),
	}
	h.subs[sub] = struct{}{}

	if ctx.Done() != nil {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			select {
			case <-ctx.Done():
				_ = sub.Close()
			case <-sub.done:
			}
		}()
	}

	return sub, nil
}

// Publish delivers v to every subscriber of topic without blocking.
func (h *Hub[T]) Publish(ctx context.Context, topic string, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrHubClosed
	}

	for sub := range h.subs {
		if sub.topic != AllTopics && sub.topic != topic {
			continue
		}
		if sub.send(v) == dropped && h.onDrop != nil {
			h.onDrop(topic)
		}
	}
	return nil
}

// Close closes every subscription and rejects further use. Idempotent.
func (h *Hub[T]) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	subs := h.subs
	h.subs = make(map[*Subscription[T]]struct{})
	h.mu.Unlock()

	for sub := range subs {
		sub.closeChannel()
	}
	h.wg.Wait()
	return nil
}

// Subscribers returns the number of active subscriptions.
func (h *Hub[T]) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub[T]) remove(sub *Subscription[T]) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}
