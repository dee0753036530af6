// Package subordinate holds the pure domain model for one managed
// subordinate: its configuration, status enum, legal transitions, and
// restart bookkeeping. Nothing in this package performs I/O.
package subordinate

// Status is the observable state of a subordinate's lifecycle.
type Status int

// The seven legal statuses, per the lifecycle state machine.
const (
	Disconnected Status = iota
	Connecting
	Connected
	Unhealthy
	Restarting
	Failed
	Stopped
)

var statusNames = map[Status]string{
	Disconnected: "disconnected",
	Connecting:   "connecting",
	Connected:    "connected",
	Unhealthy:    "unhealthy",
	Restarting:   "restarting",
	Failed:       "failed",
	Stopped:      "stopped",
}

// String returns the lowercase wire name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// transitions enumerates every legal (from, to) pair per the lifecycle state
// machine. Anything absent from this table is rejected.
//
// Four pairs are broader than the letter of the table this was grounded
// on: Connected->Restarting (the crash path restarts a connected
// subordinate without passing through an intermediate status),
// Connected->Failed and Unhealthy->Failed (a crash with no restart — either
// maxRestartAttempts=0 or autoRestartEnabled=false — goes directly to
// failed, with no restarting event, regardless of whether the crash was
// caught while connected or while already unhealthy), and
// Failed->Restarting (a manual restart of a failed subordinate re-enters
// the backoff loop directly). All four are documented resolutions of an
// ambiguity between the narrative restart algorithm and the transition
// table; see DESIGN.md.
var transitions = map[Status]map[Status]struct{}{
	Disconnected: {Connecting: {}, Stopped: {}},
	Connecting:   {Connected: {}, Failed: {}, Stopped: {}},
	Connected:    {Unhealthy: {}, Disconnected: {}, Stopped: {}, Restarting: {}, Failed: {}},
	Unhealthy:    {Connected: {}, Restarting: {}, Stopped: {}, Failed: {}},
	Restarting:   {Connecting: {}, Failed: {}, Stopped: {}},
	Failed:       {Connecting: {}, Stopped: {}, Restarting: {}},
	Stopped:      {Connecting: {}},
}

// CanTransition reports whether moving from s to next is legal.
func (s Status) CanTransition(next Status) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}
