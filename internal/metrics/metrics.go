package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-quoteform/pkg/postal"
	"github.com/goliatone/go-quoteform/pkg/quote"
)

// QuoteMetrics exposes counters/histograms for the quote flow. It satisfies
// quote.Observer and postal.Observer.
type QuoteMetrics struct {
	lookupsTotal   *prometheus.CounterVec
	lookupDuration prometheus.Histogram
	transitions    *prometheus.CounterVec
	dispatchTotal  *prometheus.CounterVec
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

var (
	_ quote.Observer  = (*QuoteMetrics)(nil)
	_ postal.Observer = (*QuoteMetrics)(nil)
)

// NewQuoteMetrics registers the collectors on reg, or on the default
// registerer when reg is nil.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	m := &QuoteMetrics{
		lookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quoteform",
			Subsystem: "postal",
			Name:      "lookups_total",
			Help:      "Total postal code lookups by outcome",
		}, []string{"outcome"}),
		lookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quoteform",
			Subsystem: "postal",
			Name:      "lookup_duration_seconds",
			Help:      "Latency of postal code lookups",
			Buckets:   prometheus.DefBuckets,
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quoteform",
			Subsystem: "form",
			Name:      "transitions_total",
			Help:      "Step transitions by action and result",
		}, []string{"action", "result"}),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quoteform",
			Subsystem: "form",
			Name:      "dispatch_total",
			Help:      "Message links dispatched by kind",
		}, []string{"kind"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quoteform",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quoteform",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.lookupsTotal, m.lookupDuration, m.transitions, m.dispatchTotal, m.requestsTotal, m.requestLatency)
	return m
}

func (m *QuoteMetrics) ObserveLookup(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(outcome).Inc()
	m.lookupDuration.Observe(elapsed.Seconds())
}

func (m *QuoteMetrics) ObserveTransition(action string, moved bool) {
	if m == nil {
		return
	}
	result := "blocked"
	if moved {
		result = "moved"
	}
	m.transitions.WithLabelValues(action, result).Inc()
}

func (m *QuoteMetrics) ObserveDispatch(kind string) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(kind).Inc()
}

func (m *QuoteMetrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, statusClass(status)).Inc()
	m.requestLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
