package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/recruitly/entitlements/pkg/catalog"
	"github.com/recruitly/entitlements/pkg/events"
	"github.com/recruitly/entitlements/pkg/logger"
	"github.com/recruitly/entitlements/pkg/metrics"
	"github.com/recruitly/entitlements/pkg/tenant"
	"github.com/recruitly/entitlements/pkg/usage"
)

// UsageCounter is the part of *usage.Counter the service depends on.
type UsageCounter interface {
	GetCurrent(ctx context.Context, tenantID uuid.UUID, featureID catalog.FeatureID) (int64, error)
	Increment(ctx context.Context, tenantID uuid.UUID, featureID catalog.FeatureID, amount int64) (int64, error)
	PeriodKey() string
}

// ThresholdPublisher receives QuotaThreshold events.
// *events.Hub[events.QuotaThreshold] satisfies it.
type ThresholdPublisher interface {
	Publish(ctx context.Context, topic string, ev events.QuotaThreshold) error
}

// Check outcomes recorded in metrics.
const (
	resultAllowed     = "allowed"
	resultDenied      = "denied"
	resultUnavailable = "unavailable"
)

// Service answers entitlement questions for tenants.
//
// Lookups that fail or time out never open a feature: the status is closed
// with Unavailable set and the error wraps ErrEntitlementUnavailable.
// Unknown feature ids and invalid usage keys (such as uuid.Nil tenants) are
// programming errors and are returned as is.
// Tenants without a subscription get the catalog's default tier.
type Service struct {
	catalog     *catalog.Catalog
	subs        tenant.Source
	counter     UsageCounter
	timeout     time.Duration
	concurrency int
	thresholds  []int
	publisher   ThresholdPublisher
	metrics     *metrics.Metrics
	log         *slog.Logger
	now         func() time.Time
}

// NewService panics when a required dependency is nil.
func NewService(cat *catalog.Catalog, subs tenant.Source, counter UsageCounter, opts ...ServiceOption) *Service {
	if cat == nil {
		panic("entitlement: catalog is required")
	}
	if subs == nil {
		panic("entitlement: subscription source is required")
	}
	if counter == nil {
		panic("entitlement: usage counter is required")
	}

	s := &Service{
		catalog:     cat,
		subs:        subs,
		counter:     counter,
		timeout:     2 * time.Second,
		concurrency: 8,
		thresholds:  []int{80, 100},
		log:         logger.Discard(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the service resolves against.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// IsEnabled reports whether the feature is switched on for the tenant,
// regardless of remaining quota. Usage is not read.
func (s *Service) IsEnabled(ctx context.Context, tenantID uuid.UUID, featureID catalog.FeatureID) (bool, error) {
	def, err := s.catalog.GetDefinition(featureID)
	if err != nil {
		return false, err
	}
	sub, err := s.subscription(ctx, tenantID)
	if err != nil {
		s.check(def.ID, resultUnavailable)
		return false, err
	}
	return Resolve(s.inputs(def, sub)).Enabled, nil
}

// CanUse reports whether the tenant may use the feature now.
func (s *Service) CanUse(ctx context.Context, tenantID uuid.UUID, featureID catalog.FeatureID) (bool, error) {
	st, err := s.GetStatus(ctx, tenantID, featureID)
	return st.CanUse, err
}

// GetStatus resolves the full status of one feature.
// On ErrEntitlementUnavailable the returned status is still valid and closed.
func (s *Service) GetStatus(ctx context.Context, tenantID uuid.UUID, featureID catalog.FeatureID) (FeatureStatus, error) {
	def, err := s.catalog.GetDefinition(featureID)
	if err != nil {
		return FeatureStatus{}, err
	}
	sub, err := s.subscription(ctx, tenantID)
	if err != nil {
		s.check(def.ID, resultUnavailable)
		return closed(def), err
	}
	st, err := s.resolve(ctx, tenantID, def, sub)
	s.check(def.ID, outcome(st, err))
	return st, err
}

// ListStatuses resolves every catalog feature in catalog order.
// Usage reads run concurrently. Features whose lookup failed are closed and
// their errors are joined in the returned error; the slice is always complete.
func (s *Service) ListStatuses(ctx context.Context, tenantID uuid.UUID) ([]FeatureStatus, error) {
	defs := s.catalog.ListDefinitions()
	out := make([]FeatureStatus, len(defs))

	sub, err := s.subscription(ctx, tenantID)
	if err != nil {
		for i, def := range defs {
			out[i] = closed(def)
		}
		return out, err
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(s.concurrency)
	for i, def := range defs {
		g.Go(func() error {
			st, err := s.resolve(ctx, tenantID, def, sub)
			out[i] = st
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return out, errors.Join(errs...)
}

// Consume checks that the tenant can use a usage-limited feature and then
// records amount of usage. The returned status reflects the new total.
//
// The check and the increment are separate steps, so concurrent callers
// can overshoot a quota by the number of requests in flight. The quota is
// a soft limit.
func (s *Service) Consume(ctx context.Context, tenantID uuid.UUID, featureID catalog.FeatureID, amount int64) (FeatureStatus, error) {
	if amount < 1 {
		return FeatureStatus{}, fmt.Errorf("%w: %d", usage.ErrInvalidAmount, amount)
	}

	st, err := s.GetStatus(ctx, tenantID, featureID)
	if err != nil {
		return st, err
	}
	switch {
	case !st.UsageLimited:
		return st, fmt.Errorf("%w: %s", ErrNotUsageLimited, featureID)
	case !st.Enabled:
		return st, fmt.Errorf("%w: %s", ErrFeatureDisabled, featureID)
	case !st.CanUse:
		return st, fmt.Errorf("%w: %s", ErrQuotaExceeded, featureID)
	}

	total, err := s.increment(ctx, tenantID, featureID, amount)
	if errors.Is(err, usage.ErrInvalidKey) {
		return st, err
	}
	if err != nil {
		s.log.ErrorContext(ctx, "failed to record usage",
			logger.TenantID(tenantID),
			logger.FeatureID(featureID),
			logger.Error(err),
		)
		s.metrics.Unavailable("usage")
		return st, errors.Join(ErrEntitlementUnavailable, err)
	}

	st.Used = catalog.Quota(total)
	if st.Limit != nil {
		st.Remaining = catalog.Quota(max(*st.Limit-total, 0))
		st.CanUse = total < *st.Limit
		s.notifyThresholds(ctx, tenantID, featureID, total-amount, total, *st.Limit)
	}
	return st, nil
}

// subscription loads the tenant's subscription, substituting the default
// tier for unknown tenants and for tiers the catalog does not declare.
func (s *Service) subscription(ctx context.Context, tenantID uuid.UUID) (*tenant.Subscription, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sub, err := s.subs.LoadSubscription(ctx, tenantID)
	switch {
	case errors.Is(err, tenant.ErrNotFound):
		return &tenant.Subscription{TenantID: tenantID, Tier: s.catalog.DefaultTier()}, nil
	case err != nil:
		s.log.WarnContext(ctx, "subscription lookup failed",
			logger.TenantID(tenantID),
			logger.Error(err),
		)
		s.metrics.Unavailable("subscription")
		return nil, errors.Join(ErrEntitlementUnavailable, err)
	}

	if !s.catalog.HasTier(sub.Tier) {
		s.log.WarnContext(ctx, "subscription references undeclared tier, using default",
			logger.TenantID(tenantID),
			slog.String("tier", string(sub.Tier)),
		)
		sub.Tier = s.catalog.DefaultTier()
	}
	return sub, nil
}

func (s *Service) inputs(def catalog.Definition, sub *tenant.Subscription) Inputs {
	grant, _ := s.catalog.Grant(sub.Tier, def.ID)
	in := Inputs{Definition: def, Grant: grant}
	if o, ok := sub.Override(def.ID); ok {
		in.Override = &o
	}
	return in
}

func (s *Service) resolve(ctx context.Context, tenantID uuid.UUID, def catalog.Definition, sub *tenant.Subscription) (FeatureStatus, error) {
	in := s.inputs(def, sub)
	if !def.UsageLimited() {
		return Resolve(in), nil
	}

	used, err := s.usage(ctx, tenantID, def.ID)
	if err != nil {
		st := closed(def)
		st.Unavailable = errors.Is(err, ErrEntitlementUnavailable)
		return st, err
	}
	in.Used = used
	return Resolve(in), nil
}

func (s *Service) usage(ctx context.Context, tenantID uuid.UUID, featureID catalog.FeatureID) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	used, err := s.counter.GetCurrent(ctx, tenantID, featureID)
	if errors.Is(err, usage.ErrInvalidKey) {
		return 0, err
	}
	if err != nil {
		s.log.WarnContext(ctx, "usage lookup failed",
			logger.TenantID(tenantID),
			logger.FeatureID(featureID),
			logger.Error(err),
		)
		s.metrics.Unavailable("usage")
		return 0, errors.Join(ErrEntitlementUnavailable, err)
	}

	if used < 0 {
		s.log.ErrorContext(ctx, "negative usage count, treating as zero",
			logger.TenantID(tenantID),
			logger.FeatureID(featureID),
			slog.Int64("used", used),
			logger.Error(ErrCounterIntegrity),
		)
		s.metrics.CounterIntegrity(string(featureID))
		return 0, nil
	}
	return used, nil
}

// notifyThresholds publishes one event per threshold crossed by moving
// usage from prev to total.
func (s *Service) notifyThresholds(ctx context.Context, tenantID uuid.UUID, featureID catalog.FeatureID, prev, total, limit int64) {
	if limit <= 0 {
		return
	}
	for _, p := range s.thresholds {
		// ceil(limit * p / 100)
		bound := (limit*int64(p) + 99) / 100
		if prev >= bound || total < bound {
			continue
		}

		s.metrics.ThresholdCrossed(string(featureID), p)
		s.log.InfoContext(ctx, "quota threshold crossed",
			logger.TenantID(tenantID),
			logger.FeatureID(featureID),
			slog.Int("percent", p),
			slog.Int64("used", total),
			slog.Int64("limit", limit),
		)
		if s.publisher == nil {
			continue
		}

		ev := events.QuotaThreshold{
			TenantID:  tenantID,
			FeatureID: string(featureID),
			PeriodKey: s.counter.PeriodKey(),
			Used:      total,
			Limit:     limit,
			Percent:   p,
			At:        s.now().UTC(),
		}
		err := s.publisher.Publish(context.WithoutCancel(ctx), events.TenantTopic(tenantID), ev)
		if err != nil && !errors.Is(err, events.ErrHubClosed) {
			s.log.WarnContext(ctx, "failed to publish quota threshold",
				logger.TenantID(tenantID),
				logger.FeatureID(featureID),
				logger.Error(err),
			)
		}
	}
}

func (s *Service) increment(ctx context.Context, tenantID uuid.UUID, featureID catalog.FeatureID, amount int64) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.counter.Increment(ctx, tenantID, featureID, amount)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) check(featureID catalog.FeatureID, result string) {
	s.metrics.Check(string(featureID), result)
}

func outcome(st FeatureStatus, err error) string {
	switch {
	case errors.Is(err, ErrEntitlementUnavailable):
		return resultUnavailable
	case err != nil:
		return resultDenied
	case st.CanUse:
		return resultAllowed
	default:
		return resultDenied
	}
}
