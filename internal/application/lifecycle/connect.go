package lifecycle

import (
	"context"

	"github.com/toolmesh/fleet/internal/application/health"
	"github.com/toolmesh/fleet/internal/application/httpendpoint"
	"github.com/toolmesh/fleet/internal/application/runner"
	"github.com/toolmesh/fleet/internal/application/session"
	"github.com/toolmesh/fleet/internal/domain/event"
	domainlogging "github.com/toolmesh/fleet/internal/domain/logging"
	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

// connectPath materialises the transport, performs the handshake, and
// leaves the subordinate in either connected or failed. It returns the
// resulting status so the restart loop can decide whether to retry.
func (l *Lifecycle) connectPath(ctx context.Context) subordinate.Status {
	l.mu.Lock()
	prev := l.status
	if !l.transitionLocked(subordinate.Connecting) {
		l.mu.Unlock()
		return prev
	}
	l.mu.Unlock()

	l.publish(l.emit(event.TypeConnecting))
	l.emitStatusChanged(prev, subordinate.Connecting)

	handle, pid, hasPID, err := l.materializeTransport(ctx)
	if err != nil {
		return l.failConnect(err)
	}

	if err := handle.Handshake(ctx); err != nil {
		_ = handle.Close()
		l.mu.Lock()
		l.handle = nil
		l.runner = nil
		l.endpoint = nil
		l.mu.Unlock()
		return l.failConnect(err)
	}

	l.mu.Lock()
	prevConnecting := l.status
	if !l.transitionLocked(subordinate.Connected) {
		current := l.status
		l.mu.Unlock()
		_ = handle.Close()
		return current
	}
	l.handle = handle
	l.pid = pid
	l.hasPID = hasPID
	l.mu.Unlock()

	connectedEvt := l.emit(event.TypeConnected)
	if hasPID {
		connectedEvt = connectedEvt.WithData("pid", pid)
	}
	l.publish(connectedEvt)
	l.emitStatusChanged(prevConnecting, subordinate.Connected)

	if l.cfg.Lifecycle.HealthCheckEnabled {
		l.armHealthMonitor(handle)
	}

	return subordinate.Connected
}

// materializeTransport constructs and starts the transport for this
// subordinate's configured connection kind, returning a bound Session
// Handle.
func (l *Lifecycle) materializeTransport(ctx context.Context) (session.Handle, int, bool, error) {
	switch l.cfg.Connection.Kind {
	case subordinate.ConnectionStdio:
		r := runner.New(*l.cfg.Connection.Stdio)
		pid, exitCh, err := r.Start(ctx)
		if err != nil {
			return nil, 0, false, err
		}
		l.mu.Lock()
		l.runner = r
		l.mu.Unlock()
		go l.watchCrash(exitCh)
		return session.NewStdio(r), pid, true, nil

	case subordinate.ConnectionHTTP:
		ep := httpendpoint.New(*l.cfg.Connection.HTTP, nil)
		if err := ep.Validate(); err != nil {
			return nil, 0, false, err
		}
		l.mu.Lock()
		l.endpoint = ep
		l.mu.Unlock()
		return session.NewHTTP(ep), 0, false, nil

	default:
		return nil, 0, false, subordinate.ErrMissingConnection
	}
}

// failConnect records the terminal error and transitions to failed from
// whatever status connectPath left the subordinate in.
func (l *Lifecycle) failConnect(cause error) subordinate.Status {
	l.mu.Lock()
	l.lastErrMsg = cause.Error()
	prev := l.status
	ok := l.transitionLocked(subordinate.Failed)
	newStatus := l.status
	l.mu.Unlock()

	l.publish(l.emit(event.TypeConnectionFailed).WithData("error", cause.Error()))
	l.logger.Warn("connection failed", domainlogging.F("server", l.cfg.Name), domainlogging.F("error", cause.Error()))
	if ok {
		l.emitStatusChanged(prev, newStatus)
	}
	return newStatus
}

// armHealthMonitor starts a Health Monitor over handle, wiring its
// callbacks back into this Lifecycle's own state machine. No retain cycle
// exists: the Monitor holds only these function values, never a pointer to
// the Lifecycle.
func (l *Lifecycle) armHealthMonitor(handle session.Handle) {
	policy := l.cfg.Lifecycle
	mon := health.New(policy.HealthCheckInterval, policy.HealthCheckTimeout, policy.UnhealthyThreshold, health.Callbacks{
		OnCheck:     l.onHealthCheck,
		OnUnhealthy: l.onUnhealthy,
		OnRecovered: l.onRecovered,
	})
	mon.SetSession(handle)

	l.mu.Lock()
	l.monitor = mon
	l.mu.Unlock()

	mon.Start()
}

func (l *Lifecycle) onHealthCheck(result subordinate.HealthCheckResult) {
	l.mu.Lock()
	l.lastCheck = result
	l.mu.Unlock()
	l.recorder.ObserveHealthCheck(l.cfg.Name, result.LatencyMs)
}

// onUnhealthy is only acted upon if the current status is connected.
func (l *Lifecycle) onUnhealthy(failures int, lastResult subordinate.HealthCheckResult) {
	l.mu.Lock()
	if l.status != subordinate.Connected {
		l.mu.Unlock()
		return
	}
	prev := l.status
	l.transitionLocked(subordinate.Unhealthy)
	autoRestart := l.cfg.Lifecycle.AutoRestartEnabled
	l.mu.Unlock()

	l.publish(l.emit(event.TypeUnhealthy).WithData("consecutiveFailures", failures).WithData("lastHealthCheck", lastResult))
	l.emitStatusChanged(prev, subordinate.Unhealthy)

	if autoRestart {
		_ = l.performRestart(context.Background(), ReasonUnhealthy)
	}
}

// onRecovered is only acted upon if the current status is unhealthy.
func (l *Lifecycle) onRecovered(result subordinate.HealthCheckResult) {
	l.mu.Lock()
	if l.status != subordinate.Unhealthy {
		l.mu.Unlock()
		return
	}
	prev := l.status
	l.transitionLocked(subordinate.Connected)
	l.mu.Unlock()

	l.publish(l.emit(event.TypeHealthy).WithData("healthCheck", result))
	l.emitStatusChanged(prev, subordinate.Connected)
}
