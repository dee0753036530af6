// Package telemetry defines the port through which the application layer
// reports restart and health metrics, without depending on a concrete
// metrics backend.
package telemetry

import "github.com/toolmesh/fleet/internal/domain/subordinate"

// Recorder receives fleet telemetry. Implementations must be safe for
// concurrent use.
type Recorder interface {
	// ObserveRestartAttempt records one restart attempt's outcome for server.
	ObserveRestartAttempt(server, reason string, succeeded bool)
	// ObserveRestartExhausted records that server ran out of restart attempts.
	ObserveRestartExhausted(server string)
	// ObserveHealthCheck records a health-check latency sample in milliseconds.
	ObserveHealthCheck(server string, latencyMs int64)
	// SetStatus records server's current status.
	SetStatus(server string, current subordinate.Status)
}

// Nop is a Recorder that discards everything.
type Nop struct{}

func (Nop) ObserveRestartAttempt(string, string, bool) {}
func (Nop) ObserveRestartExhausted(string)             {}
func (Nop) ObserveHealthCheck(string, int64)           {}
func (Nop) SetStatus(string, subordinate.Status)       {}
