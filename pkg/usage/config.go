package usage

import "time"

// Store backends selectable with USAGE_STORE.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Config selects and tunes the usage backend.
type Config struct {
	Store          string        `env:"USAGE_STORE" envDefault:"memory"`
	Period         string        `env:"USAGE_PERIOD" envDefault:"monthly"`
	RedisKeyPrefix string        `env:"USAGE_REDIS_PREFIX" envDefault:"usage"`
	RedisRetention time.Duration `env:"USAGE_REDIS_RETENTION" envDefault:"2232h"`
}
