package subordinate

import "time"

// HealthCheckResult is the most recent liveness observation for a
// subordinate's session handle.
type HealthCheckResult struct {
	Healthy   bool
	LatencyMs int64
	Error     string
	Timestamp time.Time
}

// RestartStats tracks the current restart loop's attempt counter and the
// outcome of the most recent attempt.
type RestartStats struct {
	Attempts    int
	LastAttempt time.Time
	LastSuccess bool
}

// Snapshot is a point-in-time, consistent view of one subordinate's state,
// suitable for external observation.
type Snapshot struct {
	Name            string
	Status          Status
	Healthy         bool
	TimeInStatus    time.Duration
	PID             int
	HasPID          bool
	LastLatencyMs   int64
	HasLatency      bool
	RestartAttempts int
	Error           string
}
