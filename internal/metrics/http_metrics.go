package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics holds the collectors for one service and the registry they live in.
type HTTPMetrics struct {
	ServiceName string

	registry *prometheus.Registry

	// RequestCounter counts all HTTP requests with labels
	RequestCounter *prometheus.CounterVec
	// RequestDurationHistogram records request duration in seconds
	RequestDurationHistogram *prometheus.HistogramVec
	// StatusCodeCategoryCounter counts responses by 2xx/4xx/5xx
	StatusCodeCategoryCounter *prometheus.CounterVec

	// SearchCounter counts inventory searches by mode and outcome
	SearchCounter *prometheus.CounterVec
	// SearchResultsHistogram records how many rows a search returned
	SearchResultsHistogram *prometheus.HistogramVec
	// RateLookupCounter counts retail rate lookups by outcome
	RateLookupCounter *prometheus.CounterVec
}

// NewHTTPMetrics creates a collector set for serviceName on its own registry.
func NewHTTPMetrics(serviceName string) *HTTPMetrics {
	m := &HTTPMetrics{
		ServiceName: serviceName,
		registry:    prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"service", "method", "path", "status"},
		),
		RequestDurationHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path", "status"},
		),
		StatusCodeCategoryCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_status_category_total",
				Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
			},
			[]string{"service", "category", "method", "path"},
		),
		SearchCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_search_total",
				Help: "Total number of inventory searches by mode and outcome",
			},
			[]string{"service", "by", "outcome"},
		),
		SearchResultsHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inventory_search_results",
				Help:    "Number of rows returned per inventory search",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
			},
			[]string{"service", "by"},
		),
		RateLookupCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retail_rate_lookups_total",
				Help: "Total number of retail rate lookups by outcome",
			},
			[]string{"service", "outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestDurationHistogram,
		m.StatusCodeCategoryCounter,
		m.SearchCounter,
		m.SearchResultsHistogram,
		m.RateLookupCounter,
	)
	return m
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}

// Middleware records request count, duration and status category.
// Unmatched routes are labelled by a fixed path to keep cardinality bounded.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusStr := strconv.Itoa(status)

		m.RequestCounter.WithLabelValues(m.ServiceName, method, path, statusStr).Inc()
		if category := statusCategory(status); category != "" {
			m.StatusCodeCategoryCounter.WithLabelValues(m.ServiceName, category, method, path).Inc()
		}
		m.RequestDurationHistogram.WithLabelValues(m.ServiceName, method, path, statusStr).
			Observe(time.Since(start).Seconds())
	}
}

// ObserveSearch records one finished search. outcome is "ok" or an error code.
func (m *HTTPMetrics) ObserveSearch(by, outcome string, count int) {
	m.SearchCounter.WithLabelValues(m.ServiceName, by, outcome).Inc()
	if outcome == "ok" {
		m.SearchResultsHistogram.WithLabelValues(m.ServiceName, by).Observe(float64(count))
	}
}

func (m *HTTPMetrics) ObserveRateLookup(outcome string) {
	m.RateLookupCounter.WithLabelValues(m.ServiceName, outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *HTTPMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, used by tests to gather values.
func (m *HTTPMetrics) Registry() *prometheus.Registry {
	return m.registry
}
