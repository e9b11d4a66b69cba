// Package metrics defines the Prometheus collectors of the entitlement core.
//
// Collectors are registered on an injected prometheus.Registerer so tests can
// use a private registry and the service binary can expose the default one
// with promhttp. Every recording method is safe on a nil *Metrics.
package metrics
