package shared

import "errors"

// Sentinel errors shared across the domain and application layers.
var (
	// ErrUnknownServer is returned when a fleet operation names a subordinate
	// that is not registered.
	ErrUnknownServer = errors.New("shared: unknown server")
	// ErrDuplicateServer is returned when addServer is called with a name
	// already present in the fleet.
	ErrDuplicateServer = errors.New("shared: duplicate server name")
	// ErrInvalidTransition is returned when a caller requests a status
	// transition not present in the lifecycle's transition table.
	ErrInvalidTransition = errors.New("shared: invalid state transition")
	// ErrRestartInProgress is returned when performRestart is invoked while
	// another restart attempt for the same subordinate is already in flight.
	ErrRestartInProgress = errors.New("shared: restart already in progress")
	// ErrNotConnected is returned by operations that require an active
	// session handle when none is attached.
	ErrNotConnected = errors.New("shared: subordinate not connected")
)
