package lifecycle

import (
	"context"
	"fmt"

	"github.com/toolmesh/fleet/internal/application/runner"
	"github.com/toolmesh/fleet/internal/domain/event"
	domainlogging "github.com/toolmesh/fleet/internal/domain/logging"
	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

// watchCrash waits for the Process Runner's single exit report and, unless
// the stop flag is set, routes it into the crash-handling algorithm. It is
// the sole reader of exitCh and never touches the child's streams itself.
func (l *Lifecycle) watchCrash(exitCh <-chan runner.ExitResult) {
	result, ok := <-exitCh
	if !ok {
		return
	}

	l.mu.Lock()
	stopped := l.stopRequested
	l.mu.Unlock()

	if stopped {
		return
	}

	l.handleCrash(result)
}

func (l *Lifecycle) handleCrash(result runner.ExitResult) {
	l.mu.Lock()
	attempts := l.tracker.Attempts()
	maxAttempts := l.cfg.Lifecycle.MaxRestartAttempts
	autoRestart := l.cfg.Lifecycle.AutoRestartEnabled
	willRestart := autoRestart && attempts < maxAttempts
	mon := l.monitor
	l.monitor = nil
	handle := l.handle
	l.handle = nil
	l.runner = nil
	l.mu.Unlock()

	if mon != nil {
		mon.Stop()
	}
	if handle != nil {
		_ = handle.Close()
	}

	crashEvt := l.emit(event.TypeCrashed).WithData("willRestart", willRestart)
	if result.Code != nil {
		crashEvt = crashEvt.WithData("exitCode", *result.Code)
	}
	if result.Signal != nil {
		crashEvt = crashEvt.WithData("signal", *result.Signal)
	}
	l.publish(crashEvt)
	l.logger.Warn("subordinate crashed",
		domainlogging.F("server", l.cfg.Name),
		domainlogging.F("willRestart", willRestart),
	)

	if willRestart {
		_ = l.performRestart(context.Background(), ReasonCrashed)
		return
	}

	l.mu.Lock()
	l.lastErrMsg = fmt.Sprintf("process exited unexpectedly: %s", describeExit(result))
	prev := l.status
	ok := l.transitionLocked(subordinate.Failed)
	newStatus := l.status
	l.mu.Unlock()

	if !ok {
		l.logger.Warn("illegal transition rejected",
			domainlogging.F("server", l.cfg.Name),
			domainlogging.F("from", prev.String()),
			domainlogging.F("to", subordinate.Failed.String()),
		)
		return
	}
	l.emitStatusChanged(prev, newStatus)
}

func describeExit(result runner.ExitResult) string {
	switch {
	case result.Signal != nil:
		return fmt.Sprintf("signal %s", *result.Signal)
	case result.Code != nil:
		return fmt.Sprintf("exit code %d", *result.Code)
	default:
		return "unknown cause"
	}
}
