// Package lifecycle implements the Subordinate Lifecycle: the central state
// machine for one subordinate, owning its transport, Session Handle, Health
// Monitor, restart loop, and event emission.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/toolmesh/fleet/internal/application/health"
	"github.com/toolmesh/fleet/internal/application/httpendpoint"
	"github.com/toolmesh/fleet/internal/application/runner"
	"github.com/toolmesh/fleet/internal/application/session"
	"github.com/toolmesh/fleet/internal/domain/event"
	domainlogging "github.com/toolmesh/fleet/internal/domain/logging"
	"github.com/toolmesh/fleet/internal/domain/shared"
	"github.com/toolmesh/fleet/internal/domain/subordinate"
	"github.com/toolmesh/fleet/internal/domain/telemetry"
)

// RestartReason names why performRestart was entered.
type RestartReason string

// The three restart triggers an emitted "restarting" event may carry.
const (
	ReasonCrashed RestartReason = "crashed"
	ReasonUnhealthy RestartReason = "unhealthy"
	ReasonManual  RestartReason = "manual"
)

// Lifecycle drives one subordinate's state machine. All mutations to its
// state are serialised under mu; restart-loop iterations, connects, and
// stops all acquire it for their bookkeeping, releasing it around blocking
// I/O so the lock is never held across a spawn, handshake, or sleep.
type Lifecycle struct {
	cfg       subordinate.Config
	publisher event.Publisher
	clock     shared.Clock

	mu              sync.Mutex
	status          subordinate.Status
	statusChangedAt time.Time
	pid             int
	hasPID          bool
	lastCheck       subordinate.HealthCheckResult
	tracker         *subordinate.RestartTracker
	lastErrMsg      string
	stopRequested   bool
	stopCh          chan struct{}
	restartInFlight bool

	runner   *runner.Runner
	endpoint *httpendpoint.Endpoint
	handle   session.Handle
	monitor  *health.Monitor

	logger   domainlogging.Logger
	recorder telemetry.Recorder
}

// Option configures optional Lifecycle dependencies.
type Option func(*Lifecycle)

// WithLogger attaches a structured logger. Omitted, the Lifecycle logs
// nowhere.
func WithLogger(logger domainlogging.Logger) Option {
	return func(l *Lifecycle) { l.logger = logger }
}

// WithRecorder attaches a telemetry recorder. Omitted, the Lifecycle
// records nowhere.
func WithRecorder(recorder telemetry.Recorder) Option {
	return func(l *Lifecycle) { l.recorder = recorder }
}

// New creates a Lifecycle bound to cfg, publishing events onto publisher.
// A nil clock uses shared.DefaultClock.
func New(cfg subordinate.Config, publisher event.Publisher, clock shared.Clock, opts ...Option) *Lifecycle {
	if clock == nil {
		clock = shared.DefaultClock
	}
	l := &Lifecycle{
		cfg:             cfg,
		publisher:       publisher,
		clock:           clock,
		status:          subordinate.Disconnected,
		statusChangedAt: clock.Now(),
		tracker:         subordinate.NewRestartTracker(cfg.Lifecycle),
		stopCh:          make(chan struct{}),
		logger:          domainlogging.Nop{},
		recorder:        telemetry.Nop{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the subordinate's configured name.
func (l *Lifecycle) Name() string {
	return l.cfg.Name
}

// AutoStart reports the subordinate's configured auto-start flag.
func (l *Lifecycle) AutoStart() bool {
	return l.cfg.AutoStart
}

// Status returns the current status.
func (l *Lifecycle) Status() subordinate.Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// SessionHandle returns the live Session Handle, or nil unless connected or
// unhealthy.
func (l *Lifecycle) SessionHandle() session.Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.status != subordinate.Connected && l.status != subordinate.Unhealthy {
		return nil
	}
	return l.handle
}

// Snapshot returns a point-in-time consistent view of this subordinate.
func (l *Lifecycle) Snapshot() subordinate.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := subordinate.Snapshot{
		Name:            l.cfg.Name,
		Status:          l.status,
		Healthy:         l.lastCheck.Healthy,
		TimeInStatus:    l.clock.Now().Sub(l.statusChangedAt),
		RestartAttempts: l.tracker.Attempts(),
		Error:           l.lastErrMsg,
	}
	if l.hasPID {
		snap.PID = l.pid
		snap.HasPID = true
	}
	if !l.lastCheck.Timestamp.IsZero() {
		snap.LastLatencyMs = l.lastCheck.LatencyMs
		snap.HasLatency = true
	}
	return snap
}

// emit publishes an event tagged with this subordinate's name.
func (l *Lifecycle) emit(t event.Type) event.Event {
	return event.New(t, l.cfg.Name)
}

func (l *Lifecycle) publish(e event.Event) {
	if l.publisher != nil {
		l.publisher.Publish(e)
	}
}

// transitionLocked moves status to next if legal, recording the change
// time. Callers must hold mu. Returns false and logs nothing itself when
// the transition is illegal, per invariant 4; callers then skip the
// status-changed event for it.
func (l *Lifecycle) transitionLocked(next subordinate.Status) bool {
	if !l.status.CanTransition(next) {
		return false
	}
	l.status = next
	l.statusChangedAt = l.clock.Now()
	return true
}

// emitStatusChanged publishes the status-changed event for a transition
// already applied. The domain event for the same transition is always
// published first by callers, per the fixed ordering this repo commits to.
func (l *Lifecycle) emitStatusChanged(prev, next subordinate.Status) {
	l.publish(l.emit(event.TypeStatusChanged).WithData("previousStatus", prev.String()).WithData("newStatus", next.String()))
	l.recorder.SetStatus(l.cfg.Name, next)
	l.logger.Info("status changed",
		domainlogging.F("server", l.cfg.Name),
		domainlogging.F("from", prev.String()),
		domainlogging.F("to", next.String()),
	)
}

// Start begins the connect path. Legal from disconnected, failed, or
// stopped; idempotent (logged and ignored) from any other status.
func (l *Lifecycle) Start(ctx context.Context) error {
	l.mu.Lock()
	switch l.status {
	case subordinate.Disconnected, subordinate.Failed, subordinate.Stopped:
	default:
		current := l.status
		l.mu.Unlock()
		l.logger.Info("start ignored", domainlogging.F("server", l.cfg.Name), domainlogging.F("status", current.String()))
		return nil
	}
	l.stopRequested = false
	l.stopCh = make(chan struct{})
	l.mu.Unlock()

	l.connectPath(ctx)
	return nil
}

// Restart performs a manual restart, behaving like performRestart(manual)
// regardless of current status except stopped, from which the caller must
// call Start instead.
func (l *Lifecycle) Restart(ctx context.Context) error {
	if l.Status() == subordinate.Stopped {
		return fmt.Errorf("lifecycle %q: %w: call Start instead", l.cfg.Name, shared.ErrInvalidTransition)
	}
	return l.performRestart(ctx, ReasonManual)
}

// Stop is always legal. It sets the stop flag, arrests the Health Monitor,
// closes the Session Handle and transport, stops the Process Runner under
// the configured shutdown timeout, transitions to stopped, and emits
// stopped with a boolean graceful flag.
func (l *Lifecycle) Stop(ctx context.Context) {
	l.mu.Lock()
	prev := l.status
	wasActive := prev == subordinate.Connected || prev == subordinate.Unhealthy
	l.stopRequested = true
	close(l.stopCh)
	l.stopCh = make(chan struct{})
	r := l.runner
	ep := l.endpoint
	h := l.handle
	mon := l.monitor
	timeout := l.cfg.Lifecycle.ShutdownTimeout
	l.mu.Unlock()

	if mon != nil {
		mon.Stop()
	}
	if h != nil {
		_ = h.Close()
	}
	if r != nil {
		_ = r.Stop(timeout)
	}
	if ep != nil {
		ep.MarkDisconnected()
	}

	l.mu.Lock()
	l.monitor = nil
	l.handle = nil
	l.runner = nil
	l.endpoint = nil
	ok := l.transitionLocked(subordinate.Stopped)
	newStatus := l.status
	l.mu.Unlock()

	if !ok {
		return
	}
	l.publish(l.emit(event.TypeStopped).WithData("graceful", wasActive))
	l.emitStatusChanged(prev, newStatus)
}
