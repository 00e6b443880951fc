// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics
