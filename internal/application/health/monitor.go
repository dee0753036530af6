// Package health implements the Health Monitor: periodic liveness
// inspection of one Session Handle, driven by ping under a deadline, with
// consecutive-failure threshold crossing.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/toolmesh/fleet/internal/application/session"
	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

// Callbacks are the three hooks the lifecycle registers at construction; no
// retain cycle exists because the Monitor only invokes them, it never holds
// a reference back to its owner beyond these function values.
type Callbacks struct {
	OnCheck     func(result subordinate.HealthCheckResult)
	OnUnhealthy func(failures int, lastResult subordinate.HealthCheckResult)
	OnRecovered func(result subordinate.HealthCheckResult)
}

// Monitor probes a Session Handle on a fixed interval and reports liveness
// transitions via Callbacks.
type Monitor struct {
	interval  time.Duration
	timeout   time.Duration
	threshold int
	callbacks Callbacks

	mu               sync.Mutex
	handle           session.Handle
	failures         int
	aboveThreshold   bool
	stopCh           chan struct{}
	stopped          chan struct{}
	running          bool
}

// New creates a Monitor with the given interval/timeout/threshold and
// callback set. threshold <= 0 is treated as 1 (a single failure trips it).
func New(interval, timeout time.Duration, threshold int, callbacks Callbacks) *Monitor {
	if threshold <= 0 {
		threshold = 1
	}
	return &Monitor{
		interval:  interval,
		timeout:   timeout,
		threshold: threshold,
		callbacks: callbacks,
	}
}

// SetSession attaches or detaches the Session Handle to probe. Passing nil
// detaches it; ProbeNow then fails immediately.
func (m *Monitor) SetSession(h session.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handle = h
}

// Start performs one check immediately, then schedules a periodic check
// every interval. Checks never overlap: if a check is still running when
// the next tick fires, the tick is deferred until the previous check
// resolves.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.stopped = make(chan struct{})
	m.mu.Unlock()

	go m.loop()
}

func (m *Monitor) loop() {
	defer close(m.stopped)

	m.runCheck()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			select {
			case <-m.stopCh:
				return
			default:
			}
			m.runCheck()
		}
	}
}

func (m *Monitor) runCheck() {
	result := m.ProbeNow()

	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if m.callbacks.OnCheck != nil {
		m.callbacks.OnCheck(result)
	}

	m.mu.Lock()
	if result.Healthy {
		wasAbove := m.aboveThreshold
		m.failures = 0
		m.aboveThreshold = false
		m.mu.Unlock()
		if wasAbove && m.callbacks.OnRecovered != nil {
			m.callbacks.OnRecovered(result)
		}
		return
	}

	m.failures++
	crossedNow := m.failures == m.threshold && !m.aboveThreshold
	if m.failures >= m.threshold {
		m.aboveThreshold = true
	}
	failures := m.failures
	m.mu.Unlock()

	if crossedNow && m.callbacks.OnUnhealthy != nil {
		m.callbacks.OnUnhealthy(failures, result)
	}
}

// ProbeNow runs a single ping under the configured timeout and returns the
// result, independent of the periodic schedule.
func (m *Monitor) ProbeNow() subordinate.HealthCheckResult {
	m.mu.Lock()
	handle := m.handle
	timeout := m.timeout
	m.mu.Unlock()

	start := time.Now()

	if handle == nil {
		return subordinate.HealthCheckResult{
			Healthy:   false,
			Error:     "health: no session attached",
			Timestamp: start,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := handle.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return subordinate.HealthCheckResult{
			Healthy:   false,
			LatencyMs: latency.Milliseconds(),
			Error:     err.Error(),
			Timestamp: start,
		}
	}
	return subordinate.HealthCheckResult{
		Healthy:   true,
		LatencyMs: latency.Milliseconds(),
		Timestamp: start,
	}
}

// ResetFailureCount zeroes the consecutive-failure counter and the
// above-threshold flag.
func (m *Monitor) ResetFailureCount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = 0
	m.aboveThreshold = false
}

// Stop cancels the schedule and returns once the check loop has exited. An
// in-flight ping is not interrupted, but if it completes after Stop was
// called its result is discarded and no callback fires for it.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	stopped := m.stopped
	m.mu.Unlock()

	<-stopped
}
