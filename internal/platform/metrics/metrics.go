package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for timeline processing and
// the frame query server.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     prometheus.Counter
	errorsTotal       prometheus.Counter
	channelsTotal     *prometheus.CounterVec
	sectionsTotal     *prometheus.CounterVec
	channelDuration   prometheus.Histogram
	frameQueriesTotal prometheus.Counter
	storedTimelines   prometheus.Gauge
}

// New creates and registers the metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yvg_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yvg_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	channelsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "yvg_channels_processed_total",
		Help: "Language channels processed, by result",
	}, []string{"result"})
	sectionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "yvg_sections_resolved_total",
		Help: "Sections resolved, by fallback stage",
	}, []string{"resolution"})
	channelDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "yvg_channel_processing_seconds",
		Help:    "Wall time to build one channel timeline",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	})
	frameQueriesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yvg_frame_queries_total",
		Help: "Total number of per-frame descriptor queries served",
	})
	storedTimelines := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "yvg_stored_timelines",
		Help: "Number of channel timelines held by the server",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		channelsTotal,
		sectionsTotal,
		channelDuration,
		frameQueriesTotal,
		storedTimelines,
	)

	return &Metrics{
		registry:          registry,
		requestsTotal:     requestsTotal,
		errorsTotal:       errorsTotal,
		channelsTotal:     channelsTotal,
		sectionsTotal:     sectionsTotal,
		channelDuration:   channelDuration,
		frameQueriesTotal: frameQueriesTotal,
		storedTimelines:   storedTimelines,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// ObserveChannel records one finished channel run.
func (m *Metrics) ObserveChannel(ok bool, seconds float64) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.channelsTotal.WithLabelValues(result).Inc()
	m.channelDuration.Observe(seconds)
}

// AddSections adds n sections resolved by the named stage.
func (m *Metrics) AddSections(resolution string, n int) {
	m.sectionsTotal.WithLabelValues(resolution).Add(float64(n))
}

// IncFrameQueries increments the frame query counter.
func (m *Metrics) IncFrameQueries() {
	m.frameQueriesTotal.Inc()
}

// SetStoredTimelines sets the stored timelines gauge.
func (m *Metrics) SetStoredTimelines(n int) {
	m.storedTimelines.Set(float64(n))
}

// WriteTextfile writes the current metrics to path in the Prometheus text
// format, for batch runs that have no scrape endpoint.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
