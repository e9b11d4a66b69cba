package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/recruitly/entitlements/pkg/config"
	"github.com/recruitly/entitlements/pkg/httpserver"
	mongodb "github.com/recruitly/entitlements/pkg/mongo"
	"github.com/recruitly/entitlements/pkg/pg"
	"github.com/recruitly/entitlements/pkg/redis"
	"github.com/recruitly/entitlements/pkg/tenant"
	"github.com/recruitly/entitlements/pkg/usage"
)

// backends holds the storage clients the configuration asked for.
type backends struct {
	pool     *pgxpool.Pool
	redis    *goredis.Client
	mongo    *mongo.Client
	mongoCfg mongodb.Config
	checks   map[string]httpserver.Check
}

func connectBackends(ctx context.Context, cfg appConfig, log *slog.Logger) (*backends, error) {
	b := &backends{checks: make(map[string]httpserver.Check)}

	if cfg.needsPostgres() {
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return b, err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return b, err
		}
		b.pool = pool
		b.checks["postgres"] = pg.Healthcheck(pool)

		if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
			return b, err
		}
	}

	if cfg.needsRedis() {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return b, err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return b, err
		}
		b.redis = client
		b.checks["redis"] = redis.Healthcheck(client)
	}

	if cfg.needsMongo() {
		if err := config.Load(&b.mongoCfg); err != nil {
			return b, err
		}
		client, err := mongodb.Connect(ctx, b.mongoCfg)
		if err != nil {
			return b, err
		}
		b.mongo = client
		b.checks["mongo"] = mongodb.Healthcheck(client)
	}

	return b, nil
}

func (b *backends) close(ctx context.Context, log *slog.Logger) {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.WarnContext(ctx, "failed to close redis client", "error", err)
		}
	}
	if b.mongo != nil {
		if err := b.mongo.Disconnect(ctx); err != nil {
			log.WarnContext(ctx, "failed to disconnect mongo client", "error", err)
		}
	}
}

func (b *backends) usageStore(ctx context.Context, cfg usage.Config) (usage.Store, error) {
	switch cfg.Store {
	case usage.StoreMemory:
		return usage.NewMemoryStore(), nil
	case usage.StoreRedis:
		return usage.NewRedisStore(b.redis,
			usage.WithKeyPrefix(cfg.RedisKeyPrefix),
			usage.WithRetention(cfg.RedisRetention),
		), nil
	case usage.StorePostgres:
		return usage.NewPostgresStore(b.pool), nil
	case usage.StoreMongo:
		store := usage.NewMongoStore(mongodb.UsageCollection(b.mongo, b.mongoCfg))
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", usage.ErrUnknownStore, cfg.Store)
	}
}

func (b *backends) subscriptionSource(cfg appConfig, log *slog.Logger) (tenant.Source, error) {
	var src tenant.Source
	switch cfg.SubscriptionSource {
	case sourceMemory:
		src = tenant.NewMemorySource()
	case sourcePostgres:
		src = tenant.NewPostgresSource(b.pool)
	default:
		return nil, fmt.Errorf("unknown subscription source %q", cfg.SubscriptionSource)
	}

	if cfg.SubscriptionCacheTTL > 0 {
		src = tenant.NewCachedSource(src, b.redis, cfg.SubscriptionCacheTTL,
			tenant.WithCacheLogger(log),
			tenant.WithLoadTimeout(cfg.Entitlement.LookupTimeout),
		)
	}
	return src, nil
}
