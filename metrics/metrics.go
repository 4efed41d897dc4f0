// Package metrics exposes Prometheus collectors for gateway operations,
// price cache lookups, broadcasts and HTTP requests.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/price"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chaingate"

// Metrics holds every collector. Create it once per registry.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PriceLookups    *prometheus.CounterVec
	Broadcasts      *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Gateway operations by currency and outcome.",
		}, []string{"operation", "currency", "outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Gateway operation latency.",
			Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10},
		}, []string{"operation", "currency"}),
		PriceLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_lookups_total",
			Help:      "Price cache lookups by result.",
		}, []string{"currency", "result"}),
		Broadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Signed transactions handed to a backend.",
		}, []string{"currency", "outcome"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distributions.",
			Buckets:   []float64{0.1, 0.3, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "path"}),
	}
}

// ObservePriceLookup implements price.Observer.
func (m *Metrics) ObservePriceLookup(currency, result string) {
	m.PriceLookups.WithLabelValues(currency, result).Inc()
}

// ObserveRequest records one gateway operation.
func (m *Metrics) ObserveRequest(operation, currency string, elapsed time.Duration, err error) {
	m.Requests.WithLabelValues(operation, currency, Outcome(err)).Inc()
	m.RequestDuration.WithLabelValues(operation, currency).Observe(elapsed.Seconds())
}

// ObserveBroadcast records one broadcast attempt.
func (m *Metrics) ObserveBroadcast(currency string, err error) {
	m.Broadcasts.WithLabelValues(currency, Outcome(err)).Inc()
}

// Outcome maps an error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, chain.ErrUnsupportedCurrency):
		return "unsupported_currency"
	case errors.Is(err, chain.ErrNotSupported):
		return "not_supported"
	case errors.Is(err, chain.ErrBackendUnavailable):
		return "backend_unavailable"
	case errors.Is(err, chain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, chain.ErrBroadcastRejected):
		return "rejected"
	case errors.Is(err, price.ErrPriceUnavailable):
		return "price_unavailable"
	case errors.Is(err, chain.ErrNetwork):
		return "network_error"
	default:
		return "error"
	}
}

// Middleware records HTTP request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		// unmatched routes would explode label cardinality
		if path == "" {
			return
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
