package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "planner"

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	freeSlotsFound     prometheus.Counter
	suggestionsRanked  *prometheus.CounterVec
	overlapPatches     prometheus.Counter
	overlapResolutions *prometheus.CounterVec
	patternCache       *prometheus.CounterVec
}

// NewMetrics registers collectors on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "http",
			Name: "requests_total", Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Subsystem: "http",
			Name: "request_duration_seconds", Help: "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		freeSlotsFound: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "schedule",
			Name: "free_slots_total", Help: "Free slots returned.",
		}),
		suggestionsRanked: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "schedule",
			Name: "suggestions_total", Help: "Ranked suggestions by whether pattern data was available.",
		}, []string{"pattern"}),
		overlapPatches: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "schedule",
			Name: "overlap_patches_total", Help: "Events displaced by overlap resolution.",
		}),
		overlapResolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "schedule",
			Name: "overlap_resolutions_total", Help: "Overlap resolution runs by outcome.",
		}, []string{"outcome"}),
		patternCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "schedule",
			Name: "pattern_cache_total", Help: "Pattern cache lookups by result.",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) observeResolution(patches int, conflicts int) {
	m.overlapPatches.Add(float64(patches))
	switch {
	case conflicts > 0:
		m.overlapResolutions.WithLabelValues("residual").Inc()
	case patches > 0:
		m.overlapResolutions.WithLabelValues("adjusted").Inc()
	default:
		m.overlapResolutions.WithLabelValues("clean").Inc()
	}
}

func (m *Metrics) observeSuggestions(n int, withPattern bool) {
	label := "absent"
	if withPattern {
		label = "present"
	}
	m.suggestionsRanked.WithLabelValues(label).Add(float64(n))
}
