// Package httpendpoint implements the HTTP Endpoint: it validates a URL,
// carries headers, and provides a best-effort reachability probe.
package httpendpoint

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

// Endpoint holds the configuration and connection bookkeeping for a remote
// HTTP transport.
type Endpoint struct {
	spec subordinate.HTTPSpec

	client *http.Client

	mu        sync.Mutex
	connected bool
}

// New creates an Endpoint bound to spec, using client for probes. A nil
// client falls back to http.DefaultClient.
func New(spec subordinate.HTTPSpec, client *http.Client) *Endpoint {
	if client == nil {
		client = http.DefaultClient
	}
	return &Endpoint{spec: spec, client: client}
}

// Validate rejects URLs whose scheme is not http or https, or that fail URL
// parsing.
func (e *Endpoint) Validate() error {
	if e.spec.URL == "" {
		return subordinate.ErrMissingURL
	}
	u, err := url.Parse(e.spec.URL)
	if err != nil {
		return subordinate.ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return subordinate.ErrInvalidURLScheme
	}
	return nil
}

// Reachable performs a best-effort HEAD probe against the endpoint. Any
// response, including 4xx/5xx, counts as reachable; only a transport-level
// failure (including context deadline) counts as unreachable.
func (e *Endpoint) Reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, e.spec.URL, nil)
	if err != nil {
		return false
	}
	for k, v := range e.spec.Headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return true
}

// MarkConnected records that the endpoint is believed connected. Bookkeeping
// only; it does not drive protocol state.
func (e *Endpoint) MarkConnected() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connected = true
}

// MarkDisconnected records that the endpoint is no longer believed
// connected.
func (e *Endpoint) MarkDisconnected() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connected = false
}

// Connected reports the last value set via MarkConnected/MarkDisconnected.
func (e *Endpoint) Connected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connected
}

// Headers returns a copy of the configured request headers.
func (e *Endpoint) Headers() map[string]string {
	out := make(map[string]string, len(e.spec.Headers))
	for k, v := range e.spec.Headers {
		out[k] = v
	}
	return out
}

// URL returns the configured URL string.
func (e *Endpoint) URL() string {
	return e.spec.URL
}
