package tenant

import "errors"

var (
	// ErrNotFound is returned by a Source when the tenant has no subscription record.
	ErrNotFound = errors.New("tenant.errors.subscription_not_found")

	// ErrFailedToLoadSubscription wraps storage failures while loading a subscription.
	ErrFailedToLoadSubscription = errors.New("tenant.errors.failed_to_load_subscription")

	// ErrInvalidSubscription is returned when a subscription cannot be stored.
	ErrInvalidSubscription = errors.New("tenant.errors.invalid_subscription")
)
