package usage

import "errors"

var (
	ErrInvalidAmount = errors.New("usage.errors.invalid_amount")
	ErrInvalidPeriod = errors.New("usage.errors.invalid_period")
	ErrInvalidKey    = errors.New("usage.errors.invalid_key")
	ErrStoreFailure  = errors.New("usage.errors.store_failure")
	ErrUnknownStore  = errors.New("usage.errors.unknown_store")
)
