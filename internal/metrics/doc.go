// Package metrics defines the Prometheus collectors used across
// pdf-workbench. Collectors are registered with the default registry at
// package load via promauto, so importing a package that records metrics is
// enough to make them visible on /metrics.
package metrics
