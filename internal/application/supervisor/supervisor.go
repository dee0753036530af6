// Package supervisor implements the Fleet Supervisor: the collection of
// subordinates keyed by name, fanning out their events and coordinating
// parallel start/shutdown.
package supervisor

import (
	"context"
	"fmt"
	"sync"

	"github.com/toolmesh/fleet/internal/application/lifecycle"
	"github.com/toolmesh/fleet/internal/application/session"
	"github.com/toolmesh/fleet/internal/domain/event"
	domainlogging "github.com/toolmesh/fleet/internal/domain/logging"
	"github.com/toolmesh/fleet/internal/domain/shared"
	"github.com/toolmesh/fleet/internal/domain/subordinate"
	"github.com/toolmesh/fleet/internal/domain/telemetry"
)

// Supervisor holds every subordinate in a fleet and coordinates them in
// parallel. The subordinate map is guarded by its own lock; iteration for
// snapshot/start/shutdown takes a consistent view but does not block
// per-subordinate execution.
type Supervisor struct {
	publisher event.Publisher
	clock     shared.Clock
	logger    domainlogging.Logger
	recorder  telemetry.Recorder

	mu      sync.RWMutex
	members map[string]*lifecycle.Lifecycle
}

// Option configures optional Supervisor dependencies.
type Option func(*Supervisor)

// WithLogger attaches a structured logger, propagated to every Lifecycle
// this Supervisor constructs.
func WithLogger(logger domainlogging.Logger) Option {
	return func(s *Supervisor) { s.logger = logger }
}

// WithRecorder attaches a telemetry recorder, propagated to every Lifecycle
// this Supervisor constructs.
func WithRecorder(recorder telemetry.Recorder) Option {
	return func(s *Supervisor) { s.recorder = recorder }
}

// New creates a Supervisor whose subordinates publish every event onto
// publisher. Each Lifecycle is handed the shared publisher at construction
// and never holds a pointer back to the Supervisor.
func New(publisher event.Publisher, clock shared.Clock, opts ...Option) *Supervisor {
	s := &Supervisor{
		publisher: publisher,
		clock:     clock,
		logger:    domainlogging.Nop{},
		recorder:  telemetry.Nop{},
		members:   make(map[string]*lifecycle.Lifecycle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddServer constructs a Lifecycle bound to the Supervisor's event bus and
// registers it under cfg.Name. Rejects duplicate names.
func (s *Supervisor) AddServer(cfg subordinate.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.members[cfg.Name]; exists {
		return fmt.Errorf("supervisor: add %q: %w", cfg.Name, shared.ErrDuplicateServer)
	}

	lc := lifecycle.New(cfg, s.publisher, s.clock,
		lifecycle.WithLogger(s.logger),
		lifecycle.WithRecorder(s.recorder),
	)
	s.members[cfg.Name] = lc
	s.logger.Info("server added", domainlogging.F("server", cfg.Name))
	return nil
}

// RemoveServer stops the subordinate if it is not already stopped or
// disconnected, then drops it from the fleet.
func (s *Supervisor) RemoveServer(ctx context.Context, name string) error {
	s.mu.Lock()
	lc, ok := s.members[name]
	if ok {
		delete(s.members, name)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("supervisor: remove %q: %w", name, shared.ErrUnknownServer)
	}

	switch lc.Status() {
	case subordinate.Stopped, subordinate.Disconnected:
	default:
		lc.Stop(ctx)
	}
	return nil
}

func (s *Supervisor) lookup(name string) (*lifecycle.Lifecycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lc, ok := s.members[name]
	if !ok {
		return nil, fmt.Errorf("supervisor: %q: %w", name, shared.ErrUnknownServer)
	}
	return lc, nil
}

// StartServer delegates to the named subordinate's Start.
func (s *Supervisor) StartServer(ctx context.Context, name string) error {
	lc, err := s.lookup(name)
	if err != nil {
		return err
	}
	return lc.Start(ctx)
}

// StopServer delegates to the named subordinate's Stop.
func (s *Supervisor) StopServer(ctx context.Context, name string) error {
	lc, err := s.lookup(name)
	if err != nil {
		return err
	}
	lc.Stop(ctx)
	return nil
}

// RestartServer delegates to the named subordinate's Restart.
func (s *Supervisor) RestartServer(ctx context.Context, name string) error {
	lc, err := s.lookup(name)
	if err != nil {
		return err
	}
	return lc.Restart(ctx)
}

// snapshotMembers returns a consistent point-in-time slice of every current
// Lifecycle without holding the map lock during each Start/Stop call.
func (s *Supervisor) snapshotMembers() []*lifecycle.Lifecycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*lifecycle.Lifecycle, 0, len(s.members))
	for _, lc := range s.members {
		out = append(out, lc)
	}
	return out
}

// Start is idempotent; it starts every subordinate with AutoStart in
// parallel. Individual subordinate failures do not abort the others — their
// own events surface the failure. Emits manager:ready once every fan-out
// has settled.
func (s *Supervisor) Start(ctx context.Context) {
	members := s.snapshotMembers()

	var wg sync.WaitGroup
	for _, lc := range members {
		if !lc.AutoStart() {
			continue
		}
		wg.Add(1)
		go func(lc *lifecycle.Lifecycle) {
			defer wg.Done()
			_ = lc.Start(ctx)
		}(lc)
	}
	wg.Wait()

	s.logger.Info("fleet ready", domainlogging.F("serverCount", len(members)))
	s.publish(event.New(event.TypeManagerReady, "").WithData("serverCount", len(members)))
}

// Shutdown is idempotent; it stops all subordinates in parallel and emits
// manager:shutdown on completion.
func (s *Supervisor) Shutdown(ctx context.Context) {
	members := s.snapshotMembers()

	var wg sync.WaitGroup
	for _, lc := range members {
		wg.Add(1)
		go func(lc *lifecycle.Lifecycle) {
			defer wg.Done()
			lc.Stop(ctx)
		}(lc)
	}
	wg.Wait()

	s.logger.Info("fleet shutdown complete")
	s.publish(event.New(event.TypeManagerShutdown, "").WithData("graceful", true))
}

// State returns a snapshot array of per-subordinate summaries.
func (s *Supervisor) State() []subordinate.Snapshot {
	members := s.snapshotMembers()
	out := make([]subordinate.Snapshot, 0, len(members))
	for _, lc := range members {
		out = append(out, lc.Snapshot())
	}
	return out
}

// Snapshot emits a manager:state-snapshot event carrying the full fleet
// snapshot and also returns it directly.
func (s *Supervisor) Snapshot() []subordinate.Snapshot {
	snap := s.State()
	s.publish(event.New(event.TypeManagerStateSnapshot, "").WithData("servers", snap))
	return snap
}

// SessionHandles returns a map of name to Session Handle for every
// subordinate currently connected; all other states are excluded.
func (s *Supervisor) SessionHandles() map[string]session.Handle {
	members := s.snapshotMembers()
	out := make(map[string]session.Handle)
	for _, lc := range members {
		if lc.Status() != subordinate.Connected {
			continue
		}
		if h := lc.SessionHandle(); h != nil {
			out[lc.Name()] = h
		}
	}
	return out
}

func (s *Supervisor) publish(e event.Event) {
	if s.publisher != nil {
		s.publisher.Publish(e)
	}
}
