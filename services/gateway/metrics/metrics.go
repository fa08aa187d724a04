// Package metrics exposes the Prometheus collectors of the API gateway.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kursor"

// Metrics groups the gateway collectors. A nil *Metrics is valid and records
// nothing, so components can be built without instrumentation in tests.
type Metrics struct {
	proxyRequests *prometheus.CounterVec
	proxyDuration *prometheus.HistogramVec
	proxyFailures *prometheus.CounterVec
	authResults   *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
}

// New registers the gateway collectors with reg
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		proxyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "proxy_requests_total",
			Help:      "Requests relayed to downstream services, by service and downstream status code.",
		}, []string{"service", "code"}),
		proxyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "proxy_request_duration_seconds",
			Help:      "Time spent waiting on downstream services for proxied requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		proxyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "proxy_failures_total",
			Help:      "Proxied requests that failed to reach the downstream service.",
		}, []string{"service"}),
		authResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "auth_results_total",
			Help:      "Auth gate outcomes: missing, rejected, unavailable or accepted.",
		}, []string{"result"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "probe_duration_seconds",
			Help:      "Duration of health and info probes against downstream services.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"service", "kind", "result"}),
	}

	collectors := []prometheus.Collector{
		m.proxyRequests, m.proxyDuration, m.proxyFailures, m.authResults, m.probeDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is New that panics on registration errors
func MustNew(reg prometheus.Registerer) *Metrics {
	m, err := New(reg)
	if err != nil {
		panic(err)
	}
	return m
}

// ObserveProxy records a relayed downstream response
func (m *Metrics) ObserveProxy(service string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.proxyRequests.WithLabelValues(service, strconv.Itoa(code)).Inc()
	m.proxyDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

// ProxyFailure records a request that never got a downstream response
func (m *Metrics) ProxyFailure(service string) {
	if m == nil {
		return
	}
	m.proxyFailures.WithLabelValues(service).Inc()
}

// AuthResult records one auth gate decision
func (m *Metrics) AuthResult(result string) {
	if m == nil {
		return
	}
	m.authResults.WithLabelValues(result).Inc()
}

// ObserveProbe records one health or info probe
func (m *Metrics) ObserveProbe(service, kind, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.probeDuration.WithLabelValues(service, kind, result).Observe(elapsed.Seconds())
}
