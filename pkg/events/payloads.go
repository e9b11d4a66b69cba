package events

import (
	"time"

	"github.com/google/uuid"
)

// TenantTopic is the topic publishers use for events about one tenant.
// Subscribers pass it to follow a single tenant or AllTopics for everyone.
func TenantTopic(tenantID uuid.UUID) string {
	return tenantID.String()
}

// UsageRecorded is published after a counter increment is persisted.
type UsageRecorded struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	FeatureID string    `json:"feature_id"`
	PeriodKey string    `json:"period_key"`
	Amount    int64     `json:"amount"`
	Total     int64     `json:"total"`
	At        time.Time `json:"at"`
}

// QuotaThreshold is published when usage crosses a fraction of a finite quota.
type QuotaThreshold struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	FeatureID string    `json:"feature_id"`
	PeriodKey string    `json:"period_key"`
	Used      int64     `json:"used"`
	Limit     int64     `json:"limit"`
	// Percent is the crossed threshold, e.g. 80 or 100.
	Percent int       `json:"percent"`
	At      time.Time `json:"at"`
}

// Exhausted reports whether the quota is fully consumed.
func (q QuotaThreshold) Exhausted() bool {
	return q.Used >= q.Limit
}
