// Package metrics exposes sync counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the collectors. A nil *Registry is valid and records nothing.
type Registry struct {
	reg            *prometheus.Registry
	PagesFetched   *prometheus.CounterVec
	OrdersFetched  *prometheus.CounterVec
	OrdersRejected *prometheus.CounterVec
	OrdersAdded    *prometheus.CounterVec
	SyncRuns       *prometheus.CounterVec
	SyncDuration   *prometheus.HistogramVec
	LastSync       *prometheus.GaugeVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	pages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodtracker_pages_fetched_total",
		Help: "History pages fetched from a platform.",
	}, []string{"platform"})
	fetched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodtracker_orders_fetched_total",
		Help: "Orders kept by the sync engine after classification and dedupe.",
	}, []string{"platform"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodtracker_orders_rejected_total",
		Help: "Orders dropped by the status classifier.",
	}, []string{"platform"})
	added := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodtracker_orders_added_total",
		Help: "Orders newly written to the store.",
	}, []string{"platform"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodtracker_sync_runs_total",
		Help: "Sync sessions by terminal state.",
	}, []string{"platform", "state"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodtracker_sync_duration_seconds",
		Help:    "Wall time of a sync session.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"platform"})
	lastSync := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "foodtracker_last_sync_timestamp_seconds",
		Help: "Unix time of the last successful sync.",
	}, []string{"platform"})

	r.MustRegister(pages, fetched, rejected, added, runs, duration, lastSync)
	return &Registry{
		reg:            r,
		PagesFetched:   pages,
		OrdersFetched:  fetched,
		OrdersRejected: rejected,
		OrdersAdded:    added,
		SyncRuns:       runs,
		SyncDuration:   duration,
		LastSync:       lastSync,
	}
}

func (r *Registry) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// RecordPage counts one fetched page and the orders it contributed.
func (r *Registry) RecordPage(platform string, kept, rejected int) {
	if r == nil {
		return
	}
	r.PagesFetched.WithLabelValues(platform).Inc()
	r.OrdersFetched.WithLabelValues(platform).Add(float64(kept))
	r.OrdersRejected.WithLabelValues(platform).Add(float64(rejected))
}

// RecordRun counts a finished session.
func (r *Registry) RecordRun(platform, state string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.SyncRuns.WithLabelValues(platform, state).Inc()
	r.SyncDuration.WithLabelValues(platform).Observe(elapsed.Seconds())
}

// RecordStored counts orders merged into the store and the sync time.
func (r *Registry) RecordStored(platform string, added int, at time.Time) {
	if r == nil {
		return
	}
	r.OrdersAdded.WithLabelValues(platform).Add(float64(added))
	r.LastSync.WithLabelValues(platform).Set(float64(at.Unix()))
}
