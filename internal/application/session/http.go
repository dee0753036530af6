package session

import (
	"context"

	"github.com/toolmesh/fleet/internal/application/httpendpoint"
)

// HTTP is the Handle implementation bound to an HTTP Endpoint. HTTP has no
// persistent session to release, so Close only marks the endpoint
// disconnected, and handshake/ping are both expressed as reachability
// probes.
type HTTP struct {
	endpoint *httpendpoint.Endpoint
}

// NewHTTP binds a Handle to endpoint.
func NewHTTP(endpoint *httpendpoint.Endpoint) *HTTP {
	return &HTTP{endpoint: endpoint}
}

// Handshake validates the endpoint's URL and confirms it is reachable.
func (h *HTTP) Handshake(ctx context.Context) error {
	if err := h.endpoint.Validate(); err != nil {
		return err
	}
	if !h.endpoint.Reachable(ctx) {
		return errUnreachable
	}
	h.endpoint.MarkConnected()
	return nil
}

// Ping re-probes reachability.
func (h *HTTP) Ping(ctx context.Context) error {
	if !h.endpoint.Reachable(ctx) {
		return errUnreachable
	}
	return nil
}

// Close marks the endpoint disconnected. HTTP carries no session resources
// to release.
func (h *HTTP) Close() error {
	h.endpoint.MarkDisconnected()
	return nil
}

var errUnreachable = httpUnreachableError{}

type httpUnreachableError struct{}

func (httpUnreachableError) Error() string { return "session: http endpoint unreachable" }
