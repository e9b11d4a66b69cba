package logger

import (
	"log/slog"
)

// Error records err under the key "error". Nil errors produce an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// TenantID records the tenant identifier under the key "tenant_id".
func TenantID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("tenant_id", id)
}

// FeatureID records the feature identifier under the key "feature_id".
func FeatureID[T ~string](id T) slog.Attr {
	return slog.String("feature_id", string(id))
}

// Period records a usage period key.
func Period(key string) slog.Attr {
	return slog.String("period", key)
}

// Role records a role name under the key "role".
func Role[T ~string](role T) slog.Attr {
	return slog.String("role", string(role))
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
