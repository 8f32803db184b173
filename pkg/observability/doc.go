// Package observability exposes Prometheus metrics for generation runs
// and a small HTTP status surface used by watch mode.
package observability
