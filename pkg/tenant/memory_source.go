package tenant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemorySource keeps subscriptions in process memory.
// It is safe for concurrent use and copies values in and out.
type MemorySource struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscription
}

// NewMemorySource returns a MemorySource seeded with subs.
func NewMemorySource(subs ...*Subscription) *MemorySource {
	s := &MemorySource{subs: make(map[uuid.UUID]*Subscription, len(subs))}
	for _, sub := range subs {
		if sub != nil {
			s.subs[sub.TenantID] = sub.Clone()
		}
	}
	return s
}

// LoadSubscription returns a copy of the tenant's subscription.
func (s *MemorySource) LoadSubscription(ctx context.Context, tenantID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[tenantID]
	if !ok {
		return nil, ErrNotFound
	}
	return sub.Clone(), nil
}

// Put stores or replaces a subscription.
func (s *MemorySource) Put(sub *Subscription) error {
	if sub == nil || sub.TenantID == uuid.Nil || sub.Tier == "" {
		return ErrInvalidSubscription
	}

	c := sub.Clone()
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.subs[c.TenantID] = c
	s.mu.Unlock()
	return nil
}

// Delete removes a subscription. Missing tenants are ignored.
func (s *MemorySource) Delete(tenantID uuid.UUID) {
	s.mu.Lock()
	delete(s.subs, tenantID)
	s.mu.Unlock()
}
