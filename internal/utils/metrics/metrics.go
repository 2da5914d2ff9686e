package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics. A nil *Metrics is a no-op.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	RateLimitedTotal     *prometheus.CounterVec

	// Engine metrics
	AccountsRegisteredTotal prometheus.Counter
	UsageSecondsTotal       *prometheus.CounterVec
	UsageEventsTotal        *prometheus.CounterVec
	QuotaRejectionsTotal    prometheus.Counter
	OrdersTotal             *prometheus.CounterVec
	PremiumChangesTotal     *prometheus.CounterVec

	// Completion metrics
	AIRequestsTotal   *prometheus.CounterVec
	AIRequestDuration *prometheus.HistogramVec
	AIBreakerState    *prometheus.GaugeVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// New registers the collectors on the default registry.
func New(namespace string) *Metrics {
	return NewWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

var (
	httpBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	aiBuckets   = []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120}
)

// factory stamps the namespace on every collector it creates.
type factory struct {
	auto promauto.Factory
	ns   string
}

func (f factory) counter(sub, name, help string) prometheus.Counter {
	return f.auto.NewCounter(prometheus.CounterOpts{Namespace: f.ns, Subsystem: sub, Name: name, Help: help})
}

func (f factory) counterVec(sub, name, help string, labels ...string) *prometheus.CounterVec {
	return f.auto.NewCounterVec(prometheus.CounterOpts{Namespace: f.ns, Subsystem: sub, Name: name, Help: help}, labels)
}

func (f factory) histogramVec(sub, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return f.auto.NewHistogramVec(prometheus.HistogramOpts{Namespace: f.ns, Subsystem: sub, Name: name, Help: help, Buckets: buckets}, labels)
}

func (f factory) gaugeVec(sub, name, help string, labels ...string) *prometheus.GaugeVec {
	return f.auto.NewGaugeVec(prometheus.GaugeOpts{Namespace: f.ns, Subsystem: sub, Name: name, Help: help}, labels)
}

// NewWithRegisterer registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry so repeated construction does not collide.
func NewWithRegisterer(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "aria"
	}
	f := factory{auto: promauto.With(reg), ns: namespace}

	return &Metrics{
		HTTPRequestsTotal:   f.counterVec("http", "requests_total", "HTTP requests by method, route and status class.", "method", "path", "status"),
		HTTPRequestDuration: f.histogramVec("http", "request_duration_seconds", "HTTP request latency.", httpBuckets, "method", "path"),
		HTTPRequestsInFlight: f.auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_in_flight", Help: "HTTP requests currently being served.",
		}),
		RateLimitedTotal: f.counterVec("http", "rate_limited_total", "Requests refused by the rate limiter.", "path"),

		AccountsRegisteredTotal: f.counter("engine", "accounts_registered_total", "Accounts registered."),
		UsageSecondsTotal:       f.counterVec("engine", "usage_seconds_total", "Metered seconds by plan (free or premium).", "plan"),
		UsageEventsTotal:        f.counterVec("engine", "usage_events_total", "Usage events by plan.", "plan"),
		QuotaRejectionsTotal:    f.counter("engine", "quota_rejections_total", "Admissions refused because the daily quota was spent."),
		OrdersTotal:             f.counterVec("engine", "orders_total", "Order state changes by provider and resulting status.", "provider", "status"),
		PremiumChangesTotal:     f.counterVec("engine", "premium_changes_total", "Premium grants, expirations and revocations.", "change", "source"),

		AIRequestsTotal:   f.counterVec("ai", "requests_total", "Completion calls by provider and outcome.", "provider", "status"),
		AIRequestDuration: f.histogramVec("ai", "request_duration_seconds", "Completion call latency.", aiBuckets, "provider"),
		AIBreakerState:    f.gaugeVec("ai", "breaker_state", "Breaker state per provider: 0 closed, 1 half-open, 2 open.", "provider"),

		CacheHitsTotal:   f.counterVec("cache", "hits_total", "Cache hits by cache name.", "cache"),
		CacheMissesTotal: f.counterVec("cache", "misses_total", "Cache misses by cache name.", "cache"),
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusClass(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRateLimited records a request rejected by the rate limiter.
func (m *Metrics) RecordRateLimited(path string) {
	if m == nil {
		return
	}
	m.RateLimitedTotal.WithLabelValues(path).Inc()
}

// RecordAccountRegistered records a new account.
func (m *Metrics) RecordAccountRegistered() {
	if m == nil {
		return
	}
	m.AccountsRegisteredTotal.Inc()
}

// RecordUsage records a usage event.
func (m *Metrics) RecordUsage(seconds int64, premium bool) {
	if m == nil {
		return
	}
	plan := "free"
	if premium {
		plan = "premium"
	}
	m.UsageEventsTotal.WithLabelValues(plan).Inc()
	m.UsageSecondsTotal.WithLabelValues(plan).Add(float64(seconds))
}

// RecordQuotaRejection records a refused admission.
func (m *Metrics) RecordQuotaRejection() {
	if m == nil {
		return
	}
	m.QuotaRejectionsTotal.Inc()
}

// RecordOrder records an order state change.
func (m *Metrics) RecordOrder(provider, status string) {
	if m == nil {
		return
	}
	m.OrdersTotal.WithLabelValues(provider, status).Inc()
}

// RecordPremiumChange records a grant, expiry or revocation.
func (m *Metrics) RecordPremiumChange(change, source string) {
	if m == nil {
		return
	}
	m.PremiumChangesTotal.WithLabelValues(change, source).Inc()
}

// RecordAIRequest records a completion request.
func (m *Metrics) RecordAIRequest(provider, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.AIRequestsTotal.WithLabelValues(provider, status).Inc()
	m.AIRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// SetBreakerState sets the circuit breaker state of a provider.
func (m *Metrics) SetBreakerState(provider string, state int) {
	if m == nil {
		return
	}
	m.AIBreakerState.WithLabelValues(provider).Set(float64(state))
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit(cache string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// statusClass collapses a status code to its class, "2xx" through "5xx".
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
