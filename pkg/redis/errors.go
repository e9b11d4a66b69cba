package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("redis.errors.invalid_connection_url")
	ErrRedisNotReady                = errors.New("redis.errors.not_ready")
	ErrHealthcheckFailed            = errors.New("redis.errors.healthcheck_failed")
)
