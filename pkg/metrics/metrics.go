package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "entitlements"

// Metrics holds the collectors of the entitlement core.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	usageIncrements   *prometheus.CounterVec
	usageAmount       *prometheus.CounterVec
	storeErrors       *prometheus.CounterVec
	storeLatency      *prometheus.HistogramVec
	checks            *prometheus.CounterVec
	unavailable       *prometheus.CounterVec
	integrityErrors   *prometheus.CounterVec
	thresholds        *prometheus.CounterVec
	eventsDropped     *prometheus.CounterVec
	notificationsSent *prometheus.CounterVec
	gateDenials       *prometheus.CounterVec
}

// New registers all collectors on reg.
// Registering twice on the same registry panics, as with promauto.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		usageIncrements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "increments_total",
			Help:      "Successful usage counter increments by feature.",
		}, []string{"feature"}),
		usageAmount: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "amount_total",
			Help:      "Sum of recorded usage amounts by feature.",
		}, []string{"feature"}),
		storeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "store_errors_total",
			Help:      "Usage store failures by operation.",
		}, []string{"op"}), // "read", "increment"
		storeLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "store_latency_seconds",
			Help:      "Usage store round-trip latency.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"op"}),
		checks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entitlement",
			Name:      "checks_total",
			Help:      "Entitlement checks by feature and outcome.",
		}, []string{"feature", "result"}), // "allowed", "denied", "unavailable"
		unavailable: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entitlement",
			Name:      "unavailable_total",
			Help:      "Checks that failed closed because a dependency was unavailable.",
		}, []string{"source"}), // "subscription", "usage"
		integrityErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entitlement",
			Name:      "counter_integrity_errors_total",
			Help:      "Negative usage counts observed by feature.",
		}, []string{"feature"}),
		thresholds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entitlement",
			Name:      "quota_thresholds_total",
			Help:      "Quota thresholds crossed by feature and percent.",
		}, []string{"feature", "percent"}),
		eventsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Events dropped for slow subscribers by hub.",
		}, []string{"hub"}),
		notificationsSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Quota notification emails by outcome.",
		}, []string{"result"}), // "sent", "failed", "skipped"
		gateDenials: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "denials_total",
			Help:      "Requests rejected by HTTP guards by reason.",
		}, []string{"reason"}),
	}
}

// UsageIncremented records a persisted increment.
func (m *Metrics) UsageIncremented(feature string, amount int64) {
	if m == nil {
		return
	}
	m.usageIncrements.WithLabelValues(feature).Inc()
	m.usageAmount.WithLabelValues(feature).Add(float64(amount))
}

// ObserveStore records the latency and, when err is non-nil, the failure of a store call.
func (m *Metrics) ObserveStore(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.storeLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
	if err != nil {
		m.storeErrors.WithLabelValues(op).Inc()
	}
}

// Check records the outcome of an entitlement check.
func (m *Metrics) Check(feature, result string) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(feature, result).Inc()
}

// Unavailable records a fail-closed resolution.
func (m *Metrics) Unavailable(source string) {
	if m == nil {
		return
	}
	m.unavailable.WithLabelValues(source).Inc()
}

// CounterIntegrity records a negative usage count.
func (m *Metrics) CounterIntegrity(feature string) {
	if m == nil {
		return
	}
	m.integrityErrors.WithLabelValues(feature).Inc()
}

// ThresholdCrossed records a quota threshold crossing.
func (m *Metrics) ThresholdCrossed(feature string, percent int) {
	if m == nil {
		return
	}
	m.thresholds.WithLabelValues(feature, strconv.Itoa(percent)).Inc()
}

// DropHandler returns a callback for events.WithDropHandler labelled with hub.
func (m *Metrics) DropHandler(hub string) func(topic string) {
	return func(string) {
		if m == nil {
			return
		}
		m.eventsDropped.WithLabelValues(hub).Inc()
	}
}

// Notification records the outcome of a quota notification email.
func (m *Metrics) Notification(result string) {
	if m == nil {
		return
	}
	m.notificationsSent.WithLabelValues(result).Inc()
}

// GateDenied records a request rejected by an HTTP guard.
func (m *Metrics) GateDenied(reason string) {
	if m == nil {
		return
	}
	m.gateDenials.WithLabelValues(reason).Inc()
}
