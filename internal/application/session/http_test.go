package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/toolmesh/fleet/internal/application/httpendpoint"
	"github.com/toolmesh/fleet/internal/application/session"
	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

func TestHTTPHandshakeAndPing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ep := httpendpoint.New(subordinate.HTTPSpec{URL: srv.URL}, srv.Client())
	h := session.NewHTTP(ep)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, h.Handshake(ctx))
	assert.True(t, ep.Connected())
	assert.NoError(t, h.Ping(ctx))
	assert.NoError(t, h.Close())
	assert.False(t, ep.Connected())
}

func TestHTTPHandshakeUnreachable(t *testing.T) {
	t.Parallel()

	ep := httpendpoint.New(subordinate.HTTPSpec{URL: "http://127.0.0.1:1"}, &http.Client{Timeout: 200 * time.Millisecond})
	h := session.NewHTTP(ep)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	assert.Error(t, h.Handshake(ctx))
}
