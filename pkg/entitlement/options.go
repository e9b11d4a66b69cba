package entitlement

import (
	"log/slog"
	"time"

	"github.com/recruitly/entitlements/pkg/metrics"
)

// Config tunes the Service from the environment.
type Config struct {
	LookupTimeout   time.Duration `env:"ENTITLEMENT_LOOKUP_TIMEOUT" envDefault:"2s"`
	ListConcurrency int           `env:"ENTITLEMENT_LIST_CONCURRENCY" envDefault:"8"`
	QuotaThresholds []int         `env:"ENTITLEMENT_QUOTA_THRESHOLDS" envDefault:"80,100"`
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithConfig applies a Config loaded from the environment.
func WithConfig(cfg Config) ServiceOption {
	return func(s *Service) {
		WithLookupTimeout(cfg.LookupTimeout)(s)
		WithConcurrency(cfg.ListConcurrency)(s)
		if len(cfg.QuotaThresholds) > 0 {
			WithThresholds(cfg.QuotaThresholds...)(s)
		}
	}
}

// WithLookupTimeout bounds each subscription and usage lookup.
// The caller's deadline still applies when it is shorter. Zero disables the bound.
func WithLookupTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.timeout = max(d, 0)
	}
}

// WithConcurrency bounds parallel usage reads in ListStatuses. Minimum 1.
func WithConcurrency(n int) ServiceOption {
	return func(s *Service) {
		s.concurrency = max(n, 1)
	}
}

// WithThresholds sets the quota percentages that trigger QuotaThreshold
// events after Consume. Values outside 1..100 are ignored.
func WithThresholds(percents ...int) ServiceOption {
	return func(s *Service) {
		s.thresholds = s.thresholds[:0]
		for _, p := range percents {
			if p > 0 && p <= 100 {
				s.thresholds = append(s.thresholds, p)
			}
		}
	}
}

// WithThresholdPublisher publishes QuotaThreshold events.
func WithThresholdPublisher(p ThresholdPublisher) ServiceOption {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithMetrics records check outcomes and failures.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the clock stamped on published events.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
