// Command entitlementsd serves feature entitlements and usage quotas for
// recruiting tenants over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/recruitly/entitlements/pkg/catalog"
	"github.com/recruitly/entitlements/pkg/config"
	"github.com/recruitly/entitlements/pkg/email"
	"github.com/recruitly/entitlements/pkg/entitlement"
	"github.com/recruitly/entitlements/pkg/events"
	"github.com/recruitly/entitlements/pkg/gate"
	"github.com/recruitly/entitlements/pkg/httpserver"
	"github.com/recruitly/entitlements/pkg/logger"
	"github.com/recruitly/entitlements/pkg/metrics"
	"github.com/recruitly/entitlements/pkg/notify"
	"github.com/recruitly/entitlements/pkg/rbac"
	"github.com/recruitly/entitlements/pkg/tenant"
	"github.com/recruitly/entitlements/pkg/usage"
)

// Build info, set by ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		slog.Error("failed to load config", logger.Error(err))
		os.Exit(1)
	}

	log := logger.New(
		logger.WithConfig(cfg.Logger),
		logger.WithContextExtractors(tenant.LoggerExtractor(), gate.RequestIDExtractor()),
	)
	log.InfoContext(ctx, "starting entitlementsd", slog.String("version", Version), slog.String("commit", Commit))

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "entitlementsd stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	if err := cat.Require(catalog.KnownFeatures()...); err != nil {
		return err
	}
	period, err := usage.ParsePeriod(cfg.Usage.Period)
	if err != nil {
		return err
	}

	b, err := connectBackends(ctx, cfg, log)
	defer b.close(context.WithoutCancel(ctx), log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	usageHub := events.NewHub[events.UsageRecorded](
		events.WithBufferSize(cfg.EventBufferSize),
		events.WithDropHandler(m.DropHandler("usage")),
	)
	defer func() { _ = usageHub.Close() }()
	quotaHub := events.NewHub[events.QuotaThreshold](
		events.WithBufferSize(cfg.EventBufferSize),
		events.WithDropHandler(m.DropHandler("quota")),
	)
	defer func() { _ = quotaHub.Close() }()

	store, err := b.usageStore(ctx, cfg.Usage)
	if err != nil {
		return err
	}
	counter := usage.NewCounter(store,
		usage.WithPeriod(period),
		usage.WithPublisher(usageHub),
		usage.WithMetrics(m),
		usage.WithLogger(log),
	)

	subs, err := b.subscriptionSource(cfg, log)
	if err != nil {
		return err
	}

	svc := entitlement.NewService(cat, subs, counter,
		entitlement.WithConfig(cfg.Entitlement),
		entitlement.WithThresholdPublisher(quotaHub),
		entitlement.WithMetrics(m),
		entitlement.WithLogger(log),
	)

	router := gate.NewRouter(svc, rbac.Default(),
		gate.WithGuard(gate.WithGuardMetrics(m), gate.WithGuardLogger(log)),
		gate.WithRouterLogger(log),
		gate.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
		gate.WithHealthHandler(httpserver.HealthHandler(log, cfg.HealthTimeout, b.checks)),
	)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.NotifyEnabled {
		sender, err := email.New(cfg.Email, log)
		if err != nil {
			return err
		}
		notifier := notify.NewQuotaNotifier(quotaHub, sender,
			notify.SubscriptionContacts(subs, cfg.NotifyFallbackContact),
			notify.WithCatalog(cat),
			notify.WithUpgradeURL(cfg.NotifyUpgradeURL),
			notify.WithMetrics(m),
			notify.WithLogger(log),
		)
		g.Go(func() error { return notifier.Run(ctx) })
	}

	g.Go(func() error { return logUsage(ctx, usageHub, log) })
	g.Go(func() error {
		return httpserver.New(cfg.HTTP, router, log).Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

// logUsage writes every recorded increment to the debug log.
func logUsage(ctx context.Context, hub *events.Hub[events.UsageRecorded], log *slog.Logger) error {
	sub, err := hub.Subscribe(ctx, events.AllTopics)
	if err != nil {
		return err
	}
	defer func() { _ = sub.Close() }()

	for ev := range sub.C() {
		log.DebugContext(ctx, "usage recorded",
			logger.TenantID(ev.TenantID),
			logger.FeatureID(ev.FeatureID),
			logger.Period(ev.PeriodKey),
			slog.Int64("amount", ev.Amount),
			slog.Int64("total", ev.Total),
		)
	}
	return nil
}
