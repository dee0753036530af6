package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/toolmesh/fleet/internal/domain/event"
	domainlogging "github.com/toolmesh/fleet/internal/domain/logging"
	"github.com/toolmesh/fleet/internal/domain/shared"
	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

// performRestart is the bounded-backoff restart loop. It is guarded by a
// single-in-flight flag; a concurrent invocation is rejected rather than
// queued.
func (l *Lifecycle) performRestart(ctx context.Context, reason RestartReason) error {
	l.mu.Lock()
	if l.restartInFlight {
		l.mu.Unlock()
		return shared.ErrRestartInProgress
	}
	if l.stopRequested {
		l.mu.Unlock()
		return nil
	}
	l.restartInFlight = true
	stopCh := l.stopCh
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.restartInFlight = false
		l.mu.Unlock()
	}()

	l.mu.Lock()
	mon := l.monitor
	l.monitor = nil
	handle := l.handle
	l.handle = nil
	l.mu.Unlock()
	if mon != nil {
		mon.Stop()
	}
	if handle != nil {
		_ = handle.Close()
	}

	l.mu.Lock()
	prev := l.status
	transitioned := l.transitionLocked(subordinate.Restarting)
	newStatus := l.status
	l.mu.Unlock()

	// The status-changed event for entering restarting follows the first
	// restarting event, or is published alone when no attempt is made.
	statusPending := transitioned
	flushStatus := func() {
		if statusPending {
			statusPending = false
			l.emitStatusChanged(prev, newStatus)
		}
	}

	for {
		l.mu.Lock()
		stop := l.stopRequested
		exhausted := l.tracker.Exhausted()
		l.mu.Unlock()
		if stop {
			flushStatus()
			return nil
		}
		if exhausted {
			break
		}

		l.mu.Lock()
		attempt := l.tracker.RecordAttempt()
		delay := l.tracker.NextDelay()
		l.mu.Unlock()

		l.publish(l.emit(event.TypeRestarting).
			WithData("attempt", attempt).
			WithData("maxAttempts", l.cfg.Lifecycle.MaxRestartAttempts).
			WithData("reason", string(reason)))
		flushStatus()

		if !l.sleepCancellable(delay, stopCh) {
			return nil
		}

		result := l.connectPath(ctx)
		if result == subordinate.Connected {
			l.mu.Lock()
			l.tracker.Reset()
			pid, hasPID := l.pid, l.hasPID
			l.mu.Unlock()

			l.recorder.ObserveRestartAttempt(l.cfg.Name, string(reason), true)
			evt := l.emit(event.TypeRestartSucceeded).WithData("attempts", attempt)
			if hasPID {
				evt = evt.WithData("pid", pid)
			}
			l.publish(evt)
			return nil
		}
		l.recorder.ObserveRestartAttempt(l.cfg.Name, string(reason), false)
	}
	flushStatus()

	l.mu.Lock()
	attempts := l.tracker.Attempts()
	msg := fmt.Sprintf("Failed to restart after %d attempts", attempts)
	l.lastErrMsg = msg
	prev = l.status
	failed := l.transitionLocked(subordinate.Failed)
	newStatus = l.status
	l.mu.Unlock()

	l.recorder.ObserveRestartExhausted(l.cfg.Name)
	l.publish(l.emit(event.TypeRestartFailed).WithData("attempts", attempts).WithData("error", msg))
	l.logger.Error("restart attempts exhausted", domainlogging.F("server", l.cfg.Name), domainlogging.F("attempts", attempts))
	if failed {
		l.emitStatusChanged(prev, newStatus)
	}
	return nil
}

// sleepCancellable blocks for d or until stopCh closes, whichever comes
// first. It returns false if the sleep was interrupted by a stop request.
func (l *Lifecycle) sleepCancellable(d time.Duration, stopCh <-chan struct{}) bool {
	if d <= 0 {
		select {
		case <-stopCh:
			return false
		default:
			return true
		}
	}
	timer := l.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C():
		return true
	case <-stopCh:
		return false
	}
}
