// Package session defines the Session Handle contract the lifecycle
// consumes — handshake, ping, close over an opaque transport — and ships
// two concrete transports: stdio and HTTP.
package session

import "context"

// Handle is the polymorphic capability the lifecycle treats as opaque. It
// knows nothing about the underlying transport beyond these three
// operations.
type Handle interface {
	// Handshake performs the tool-protocol handshake. On success the
	// session is usable; on failure it must be safe to discard without
	// further action.
	Handshake(ctx context.Context) error
	// Ping is a low-cost liveness probe, safe to call concurrently with the
	// session's ordinary traffic, and must honour ctx's deadline.
	Ping(ctx context.Context) error
	// Close releases all session resources. Idempotent.
	Close() error
}
