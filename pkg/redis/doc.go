// Package redis opens go-redis clients with startup retries and exposes a
// health probe. The clients back usage.RedisStore and tenant.CachedSource.
package redis
