// Package metrics exposes optional Prometheus instrumentation for the
// fleet: restart counters, health-check latency, and a per-subordinate
// status gauge. This is ambient observability, not a wire protocol or CLI
// owned by the core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

// Collector groups the fleet's Prometheus metrics. A Collector with a nil
// registry is a safe no-op so instrumentation is always optional.
type Collector struct {
	restarts         *prometheus.CounterVec
	restartFailures  *prometheus.CounterVec
	healthLatency    *prometheus.HistogramVec
	status           *prometheus.GaugeVec
}

// NewCollector builds a Collector and registers its metrics with reg. A nil
// reg disables registration; the returned Collector still functions, it
// just reports nowhere.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		restarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleet",
			Subsystem: "subordinate",
			Name:      "restarts_total",
			Help:      "Total restart attempts per subordinate, labeled by outcome.",
		}, []string{"server", "reason", "outcome"}),
		restartFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleet",
			Subsystem: "subordinate",
			Name:      "restart_exhausted_total",
			Help:      "Total times a subordinate exhausted its restart attempts.",
		}, []string{"server"}),
		healthLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fleet",
			Subsystem: "subordinate",
			Name:      "health_check_latency_seconds",
			Help:      "Health check round-trip latency per subordinate.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"server"}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fleet",
			Subsystem: "subordinate",
			Name:      "status",
			Help:      "Current status of each subordinate, one gauge set per status value.",
		}, []string{"server", "status"}),
	}

	if reg != nil {
		reg.MustRegister(c.restarts, c.restartFailures, c.healthLatency, c.status)
	}
	return c
}

// ObserveRestartAttempt records one restart attempt outcome.
func (c *Collector) ObserveRestartAttempt(server, reason string, succeeded bool) {
	outcome := "failure"
	if succeeded {
		outcome = "success"
	}
	c.restarts.WithLabelValues(server, reason, outcome).Inc()
}

// ObserveRestartExhausted records that a subordinate ran out of attempts.
func (c *Collector) ObserveRestartExhausted(server string) {
	c.restartFailures.WithLabelValues(server).Inc()
}

// ObserveHealthCheck records a health-check latency sample in seconds.
func (c *Collector) ObserveHealthCheck(server string, latencyMs int64) {
	c.healthLatency.WithLabelValues(server).Observe(float64(latencyMs) / 1000.0)
}

// SetStatus records the current status for server, zeroing every other
// status gauge for that server so exactly one reads 1 at a time.
func (c *Collector) SetStatus(server string, current subordinate.Status) {
	for _, s := range []subordinate.Status{
		subordinate.Disconnected, subordinate.Connecting, subordinate.Connected,
		subordinate.Unhealthy, subordinate.Restarting, subordinate.Failed, subordinate.Stopped,
	} {
		value := 0.0
		if s == current {
			value = 1.0
		}
		c.status.WithLabelValues(server, s.String()).Set(value)
	}
}
