package usage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/recruitly/entitlements/pkg/catalog"
)

// Key addresses one usage record.
type Key struct {
	TenantID  uuid.UUID
	FeatureID catalog.FeatureID
	PeriodKey string
}

// String renders the key as tenant:feature:period.
func (k Key) String() string {
	return k.TenantID.String() + ":" + string(k.FeatureID) + ":" + k.PeriodKey
}

// Validate rejects keys that would collide or be unaddressable in a store.
func (k Key) Validate() error {
	switch {
	case k.TenantID == uuid.Nil:
		return fmt.Errorf("%w: empty tenant id", ErrInvalidKey)
	case k.FeatureID == "" || strings.Contains(string(k.FeatureID), ":"):
		return fmt.Errorf("%w: feature id %q", ErrInvalidKey, k.FeatureID)
	case k.PeriodKey == "":
		return fmt.Errorf("%w: empty period", ErrInvalidKey)
	}
	return nil
}

// Store is the persistence primitive behind Counter.
//
// Increment must be atomic per key: concurrent calls for the same key are
// all applied, and the returned value reflects this call's addition.
// Read returns 0 for a key that was never incremented.
type Store interface {
	Read(ctx context.Context, key Key) (int64, error)
	Increment(ctx context.Context, key Key, amount int64) (int64, error)
}
