package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/recruitly/entitlements/pkg/catalog"
	"github.com/recruitly/entitlements/pkg/email"
	"github.com/recruitly/entitlements/pkg/events"
	"github.com/recruitly/entitlements/pkg/logger"
	"github.com/recruitly/entitlements/pkg/metrics"
	"github.com/recruitly/entitlements/pkg/tenant"
)

// ContactResolver returns the billing contact address of a tenant.
// An empty address means the tenant has none and the notice is skipped.
type ContactResolver func(ctx context.Context, tenantID uuid.UUID) (string, error)

// StaticContact resolves every tenant to the same address.
func StaticContact(addr string) ContactResolver {
	return func(context.Context, uuid.UUID) (string, error) {
		return addr, nil
	}
}

// QuotaNotifier emails tenants when their usage crosses a quota threshold.
type QuotaNotifier struct {
	hub         *events.Hub[events.QuotaThreshold]
	sender      email.Sender
	contacts    ContactResolver
	catalog     *catalog.Catalog
	upgradeURL  string
	sendTimeout time.Duration
	metrics     *metrics.Metrics
	log         *slog.Logger
}

// Option configures a QuotaNotifier.
type Option func(*QuotaNotifier)

// WithCatalog uses feature display names from c in messages.
func WithCatalog(c *catalog.Catalog) Option {
	return func(n *QuotaNotifier) {
		n.catalog = c
	}
}

// WithUpgradeURL adds a plan link to every message.
func WithUpgradeURL(u string) Option {
	return func(n *QuotaNotifier) {
		n.upgradeURL = u
	}
}

// WithSendTimeout bounds each delivery. Default 10s.
func WithSendTimeout(d time.Duration) Option {
	return func(n *QuotaNotifier) {
		if d > 0 {
			n.sendTimeout = d
		}
	}
}

// WithMetrics records delivery outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(n *QuotaNotifier) {
		n.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *QuotaNotifier) {
		if l != nil {
			n.log = l
		}
	}
}

// NewQuotaNotifier panics if any dependency is nil.
func NewQuotaNotifier(hub *events.Hub[events.QuotaThreshold], sender email.Sender, contacts ContactResolver, opts ...Option) *QuotaNotifier {
	if hub == nil {
		panic("notify: hub is required")
	}
	if sender == nil {
		panic("notify: email sender is required")
	}
	if contacts == nil {
		panic("notify: contact resolver is required")
	}

	n := &QuotaNotifier{
		hub:         hub,
		sender:      sender,
		contacts:    contacts,
		sendTimeout: 10 * time.Second,
		log:         logger.Discard(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.log = n.log.With(logger.Component("quota_notifier"))
	return n
}

// Run consumes threshold events for all tenants until ctx is cancelled or
// the hub is closed. Delivery failures are logged and do not stop the loop.
func (n *QuotaNotifier) Run(ctx context.Context) error {
	sub, err := n.hub.Subscribe(ctx, events.AllTopics)
	if err != nil {
		if errors.Is(err, events.ErrHubClosed) {
			return nil
		}
		return err
	}
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := n.Notify(ctx, ev); err != nil {
				n.log.WarnContext(ctx, "quota notification not delivered",
					logger.TenantID(ev.TenantID),
					logger.FeatureID(ev.FeatureID),
					slog.Int("percent", ev.Percent),
					logger.Error(err),
				)
			}
		}
	}
}

// Notify delivers a single threshold notice.
func (n *QuotaNotifier) Notify(ctx context.Context, ev events.QuotaThreshold) error {
	to, err := n.contacts(ctx, ev.TenantID)
	if err != nil {
		n.metrics.Notification("failed")
		return errors.Join(ErrFailedToResolve, err)
	}
	if to == "" {
		n.metrics.Notification("skipped")
		return ErrNoContact
	}

	view := quotaView{
		Feature:    n.featureName(ev.FeatureID),
		Used:       ev.Used,
		Limit:      ev.Limit,
		Percent:    ev.Percent,
		Period:     ev.PeriodKey,
		Exhausted:  ev.Exhausted(),
		UpgradeURL: n.upgradeURL,
	}
	body, err := renderQuota(view)
	if err != nil {
		n.metrics.Notification("failed")
		return errors.Join(ErrFailedToRender, err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.sendTimeout)
	defer cancel()

	err = n.sender.Send(sendCtx, email.Message{
		To:      to,
		Subject: view.subject(),
		HTML:    body,
		Tag:     fmt.Sprintf("quota-%d", ev.Percent),
	})
	if err != nil {
		n.metrics.Notification("failed")
		return errors.Join(ErrFailedToSendNotice, err)
	}

	n.metrics.Notification("sent")
	n.log.InfoContext(ctx, "quota notification sent",
		logger.TenantID(ev.TenantID),
		logger.FeatureID(ev.FeatureID),
		slog.Int("percent", ev.Percent),
	)
	return nil
}

func (n *QuotaNotifier) featureName(id string) string {
	if n.catalog != nil {
		if def, err := n.catalog.GetDefinition(catalog.FeatureID(id)); err == nil && def.Name != "" {
			return def.Name
		}
	}
	return id
}

// SubscriptionContacts resolves the billing email stored on the tenant's
// subscription, using fallback when the tenant has none.
func SubscriptionContacts(src tenant.Source, fallback string) ContactResolver {
	return func(ctx context.Context, tenantID uuid.UUID) (string, error) {
		sub, err := src.LoadSubscription(ctx, tenantID)
		switch {
		case errors.Is(err, tenant.ErrNotFound):
			return fallback, nil
		case err != nil:
			return "", err
		case sub.BillingEmail != "":
			return sub.BillingEmail, nil
		default:
			return fallback, nil
		}
	}
}
