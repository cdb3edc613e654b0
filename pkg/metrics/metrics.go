// Package metrics exposes placement counters over Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the service's Prometheus collectors.
type Registry struct {
	reg                *prometheus.Registry
	OrdersPlaced       prometheus.Counter
	PlacementRejected  *prometheus.CounterVec
	PlacementLatency   prometheus.Histogram
	SnapshotWrites     prometheus.Counter
	SnapshotWriteFails prometheus.Counter
}

// NewRegistry creates and registers all collectors.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	placed := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_orders_placed_total"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pos_placements_rejected_total"}, []string{"reason"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_placement_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})
	snapWrites := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_snapshot_writes_total"})
	snapFails := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_snapshot_write_failures_total"})

	r.MustRegister(placed, rejected, latency, snapWrites, snapFails)
	return &Registry{
		reg:                r,
		OrdersPlaced:       placed,
		PlacementRejected:  rejected,
		PlacementLatency:   latency,
		SnapshotWrites:     snapWrites,
		SnapshotWriteFails: snapFails,
	}
}

// Handler serves the registry over HTTP.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
