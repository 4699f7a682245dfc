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

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeEmpty   = "empty"
)

// Manager owns the service's Prometheus collectors. A nil *Manager is valid and records nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	sourceRequests        *prometheus.CounterVec
	sourceRequestDuration *prometheus.HistogramVec
	listingsParsed        prometheus.Counter
	blocksSkipped         prometheus.Counter

	recommendations       *prometheus.CounterVec
	recommendationResults prometheus.Histogram
	clusteringRequests    *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a metrics manager. Without WithRegistry a private registry is used.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hiremind",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.sourceRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "source_requests_total",
		Help:      "Listing source requests by operation and outcome",
	}, []string{"operation", "outcome"})

	m.sourceRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "source_request_duration_seconds",
		Help:      "Listing source request latency",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.listingsParsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "source_listings_parsed_total",
		Help:      "Listings parsed from search result pages",
	})

	m.blocksSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "source_blocks_skipped_total",
		Help:      "Malformed listing blocks dropped during parsing",
	})

	m.recommendations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_total",
		Help:      "Recommendation runs by outcome",
	}, []string{"outcome"})

	m.recommendationResults = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendation_listings",
		Help:      "Distinct listings aggregated per recommendation run",
		Buckets:   []float64{0, 5, 10, 25, 50, 100, 200, 400},
	})

	m.clusteringRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "clustering_requests_total",
		Help:      "Skill clustering calls by outcome",
	}, []string{"outcome"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})
}

// Registry exposes the underlying registry.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveSourceRequest records one listing source call.
func (m *Manager) ObserveSourceRequest(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.sourceRequests.WithLabelValues(operation, outcome).Inc()
	m.sourceRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// AddListingsParsed counts parsed and dropped listing blocks.
func (m *Manager) AddListingsParsed(parsed, skipped int) {
	if m == nil {
		return
	}
	m.listingsParsed.Add(float64(parsed))
	m.blocksSkipped.Add(float64(skipped))
}

// ObserveRecommendation records a finished recommendation run.
func (m *Manager) ObserveRecommendation(outcome string, total int) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.recommendationResults.Observe(float64(total))
	}
}

// ObserveClustering records a skill clustering call.
func (m *Manager) ObserveClustering(err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.clusteringRequests.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest records a served HTTP request.
func (m *Manager) ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
