package usage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/recruitly/entitlements/pkg/catalog"
	"github.com/recruitly/entitlements/pkg/events"
	"github.com/recruitly/entitlements/pkg/logger"
	"github.com/recruitly/entitlements/pkg/metrics"
)

// Publisher receives an event after every persisted increment.
// *events.Hub[events.UsageRecorded] satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, ev events.UsageRecorded) error
}

// Counter records and reads consumption for the current period.
// It does not know about quotas; callers check entitlement first.
type Counter struct {
	store     Store
	period    Period
	now       func() time.Time
	publisher Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger
}

// CounterOption configures a Counter.
type CounterOption func(*Counter)

// WithPeriod sets the quota window. Default Monthly.
func WithPeriod(p Period) CounterOption {
	return func(c *Counter) {
		c.period = p
	}
}

// WithClock overrides the wall clock used to derive the period key.
func WithClock(now func() time.Time) CounterOption {
	return func(c *Counter) {
		if now != nil {
			c.now = now
		}
	}
}

// WithPublisher publishes UsageRecorded events.
func WithPublisher(p Publisher) CounterOption {
	return func(c *Counter) {
		c.publisher = p
	}
}

// WithMetrics records store latency and increments.
func WithMetrics(m *metrics.Metrics) CounterOption {
	return func(c *Counter) {
		c.metrics = m
	}
}

// WithLogger sets the counter logger.
func WithLogger(l *slog.Logger) CounterOption {
	return func(c *Counter) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCounter returns a Counter over store.
func NewCounter(store Store, opts ...CounterOption) *Counter {
	c := &Counter{
		store:  store,
		period: Monthly,
		now:    time.Now,
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Period returns the configured window.
func (c *Counter) Period() Period {
	return c.period
}

// PeriodKey returns the key of the window in effect now.
func (c *Counter) PeriodKey() string {
	return c.period.KeyAt(c.now())
}

// ResetAt returns when the current window ends.
func (c *Counter) ResetAt() time.Time {
	return c.period.ResetAt(c.now())
}

// Increment adds amount to the tenant's usage of the feature in the current
// period and returns the new total. amount must be positive.
func (c *Counter) Increment(ctx context.Context, tenantID uuid.UUID, featureID catalog.FeatureID, amount int64) (int64, error) {
	if amount < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	at := c.now()
	key := Key{TenantID: tenantID, FeatureID: featureID, PeriodKey: c.period.KeyAt(at)}
	if err := key.Validate(); err != nil {
		return 0, err
	}

	started := time.Now()
	total, err := c.store.Increment(ctx, key, amount)
	c.metrics.ObserveStore("increment", started, err)
	if err != nil {
		return 0, storeError(err)
	}
	c.metrics.UsageIncremented(string(featureID), amount)

	c.publish(ctx, events.UsageRecorded{
		TenantID:  tenantID,
		FeatureID: string(featureID),
		PeriodKey: key.PeriodKey,
		Amount:    amount,
		Total:     total,
		At:        at.UTC(),
	})

	return total, nil
}

// GetCurrent returns the tenant's usage of the feature in the current period,
// 0 when nothing was recorded yet.
func (c *Counter) GetCurrent(ctx context.Context, tenantID uuid.UUID, featureID catalog.FeatureID) (int64, error) {
	key := Key{TenantID: tenantID, FeatureID: featureID, PeriodKey: c.PeriodKey()}
	if err := key.Validate(); err != nil {
		return 0, err
	}

	started := time.Now()
	n, err := c.store.Read(ctx, key)
	c.metrics.ObserveStore("read", started, err)
	if err != nil {
		return 0, storeError(err)
	}
	return n, nil
}

func (c *Counter) publish(ctx context.Context, ev events.UsageRecorded) {
	if c.publisher == nil {
		return
	}
	// The increment is already durable; a cancelled request must not hide it.
	err := c.publisher.Publish(context.WithoutCancel(ctx), events.TenantTopic(ev.TenantID), ev)
	if err != nil && !errors.Is(err, events.ErrHubClosed) {
		c.log.WarnContext(ctx, "failed to publish usage event",
			logger.TenantID(ev.TenantID),
			logger.FeatureID(ev.FeatureID),
			logger.Error(err),
		)
	}
}

func storeError(err error) error {
	if errors.Is(err, ErrStoreFailure) {
		return err
	}
	return errors.Join(ErrStoreFailure, err)
}
