package main

import (
	"time"

	"github.com/recruitly/entitlements/pkg/email"
	"github.com/recruitly/entitlements/pkg/entitlement"
	"github.com/recruitly/entitlements/pkg/httpserver"
	"github.com/recruitly/entitlements/pkg/logger"
	"github.com/recruitly/entitlements/pkg/usage"
)

// Subscription sources selectable with SUBSCRIPTION_SOURCE.
const (
	sourceMemory   = "memory"
	sourcePostgres = "postgres"
)

type appConfig struct {
	Logger      logger.Config
	HTTP        httpserver.Config
	Usage       usage.Config
	Entitlement entitlement.Config
	Email       email.Config

	// CatalogPath points at a YAML catalog; empty uses the built-in one.
	CatalogPath string `env:"CATALOG_PATH"`

	SubscriptionSource string `env:"SUBSCRIPTION_SOURCE" envDefault:"memory"`
	// SubscriptionCacheTTL > 0 puts a Redis cache in front of the source.
	SubscriptionCacheTTL time.Duration `env:"SUBSCRIPTION_CACHE_TTL" envDefault:"0s"`

	EventBufferSize int `env:"EVENT_BUFFER_SIZE" envDefault:"64"`

	NotifyEnabled         bool   `env:"NOTIFY_ENABLED" envDefault:"true"`
	NotifyFallbackContact string `env:"NOTIFY_FALLBACK_CONTACT"`
	NotifyUpgradeURL      string `env:"NOTIFY_UPGRADE_URL"`

	HealthTimeout time.Duration `env:"HEALTH_CHECK_TIMEOUT" envDefault:"2s"`
}

func (c appConfig) needsPostgres() bool {
	return c.Usage.Store == usage.StorePostgres || c.SubscriptionSource == sourcePostgres
}

func (c appConfig) needsRedis() bool {
	return c.Usage.Store == usage.StoreRedis || c.SubscriptionCacheTTL > 0
}

func (c appConfig) needsMongo() bool {
	return c.Usage.Store == usage.StoreMongo
}
