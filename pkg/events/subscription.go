package events

import "sync"

// Subscription is a single consumer registered on a Hub.
type Subscription[T any] struct {
	hub   *Hub[T]
	topic string
	ch    chan T
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// C returns the delivery channel. It is closed when the subscription ends.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Topic returns the subscribed topic.
func (s *Subscription[T]) Topic() string {
	return s.topic
}

// Close unregisters the subscription. Idempotent.
func (s *Subscription[T]) Close() error {
	s.hub.remove(s)
	s.closeChannel()
	return nil
}

func (s *Subscription[T]) closeChannel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
	close(s.done)
}

type sendResult int

const (
	sent sendResult = iota
	dropped
	gone
)

// send never blocks. A full buffer drops the value; a closed subscription
// reports gone so it is not counted as a drop.
func (s *Subscription[T]) send(v T) sendResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return gone
	}
	select {
	case s.ch <- v:
		return sent
	default:
		return dropped
	}
}
