// Package metrics exposes Prometheus instrumentation for the engine.
// All recorder methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leadhunt"

type Metrics struct {
	reg *prometheus.Registry

	// HTTP
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Pipeline
	LeadsProcessed *prometheus.CounterVec
	Detections     *prometheus.CounterVec
	ProbeOutcomes  *prometheus.CounterVec
	ContactsFound  prometheus.Counter
	ProcessSeconds prometheus.Histogram

	// Discovery
	DiscoverRuns    *prometheus.CounterVec
	DiscoverOrigins prometheus.Histogram
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"method", "path", "code"}),

		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "path"}),

		LeadsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_processed_total",
			Help:      "Pipeline runs by outcome (enriched, unreachable, invalid, cancelled, error)",
		}, []string{"outcome"}),

		Detections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Platform detections by verdict",
		}, []string{"platform"}),

		ProbeOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wpjson_probe_total",
			Help:      "REST index probe outcomes",
		}, []string{"outcome"}),

		ContactsFound: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contacts_found_total",
			Help:      "Leads for which a contact email was found",
		}),

		ProcessSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "process_duration_seconds",
			Help:      "Time to enrich one origin",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		}),

		DiscoverRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discover_runs_total",
			Help:      "Discovery runs by result (ok, bad_request, no_credential, upstream_error)",
		}, []string{"result"}),

		DiscoverOrigins: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "discover_origins",
			Help:      "Unique origins processed per discovery run",
			Buckets:   []float64{0, 1, 2, 5, 10, 15, 20},
		}),
	}
}

// Handler serves this registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) ObserveHTTP(method, path string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *Metrics) LeadProcessed(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.LeadsProcessed.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.ProcessSeconds.Observe(d.Seconds())
	}
}

func (m *Metrics) Detection(isPlatform bool, probe string) {
	if m == nil {
		return
	}
	m.Detections.WithLabelValues(strconv.FormatBool(isPlatform)).Inc()
	m.ProbeOutcomes.WithLabelValues(probe).Inc()
}

func (m *Metrics) ContactFound() {
	if m == nil {
		return
	}
	m.ContactsFound.Inc()
}

func (m *Metrics) DiscoverRun(result string, origins int) {
	if m == nil {
		return
	}
	m.DiscoverRuns.WithLabelValues(result).Inc()
	if result == "ok" {
		m.DiscoverOrigins.Observe(float64(origins))
	}
}
