package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the report service.
type Metrics struct {
	DraftsActive   prometheus.Gauge
	PhotosAttached prometheus.Counter
	PhotosDropped  prometheus.Counter

	// Export pipeline metrics.
	Exports        *prometheus.CounterVec // labels: outcome={success,failed,rejected}
	ExportDuration prometheus.Histogram
	ExportInFlight prometheus.Gauge
	ExportStage    *prometheus.HistogramVec // labels: stage={rendering,capturing,packaging}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty,stale}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DraftsActive,
		m.PhotosAttached,
		m.PhotosDropped,
		m.Exports,
		m.ExportDuration,
		m.ExportInFlight,
		m.ExportStage,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DraftsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "laudo",
			Name:      "drafts_active",
			Help:      "Report drafts currently held in memory.",
		}),
		PhotosAttached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "laudo",
			Name:      "photos_attached_total",
			Help:      "Photos encoded and attached to a damage entry.",
		}),
		PhotosDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "laudo",
			Name:      "photos_dropped_total",
			Help:      "Encoded photos discarded because their damage category was deselected during upload.",
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laudo",
			Name:      "exports_total",
			Help:      "Finalize attempts by outcome.",
		}, []string{"outcome"}),
		ExportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "laudo",
			Name:      "export_duration_seconds",
			Help:      "Duration of a complete render-capture-package cycle.",
			Buckets:   []float64{0.5, 1, 1.5, 2, 3, 5, 10, 20},
		}),
		ExportInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "laudo",
			Name:      "export_in_flight",
			Help:      "1 while an export is running, 0 otherwise.",
		}),
		ExportStage: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "laudo",
			Name:      "export_stage_duration_seconds",
			Help:      "Duration of each export stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"stage"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laudo",
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding lookups by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laudo",
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "laudo",
			Name:      "geocode_api_duration_seconds",
			Help:      "Nominatim API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "laudo",
			Name:      "geocode_enabled",
			Help:      "1 when reverse geocoding is enabled, 0 otherwise.",
		}),
	}
}
