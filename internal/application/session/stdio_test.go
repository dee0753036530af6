package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolmesh/fleet/internal/application/runner"
	"github.com/toolmesh/fleet/internal/application/session"
	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

// echoScript reads one JSON line per loop iteration and writes back an ok
// frame, standing in for a cooperative tool-protocol subordinate.
const echoScript = `while read -r line; do printf '{"kind":"reply","ok":true}\n'; done`

func TestStdioHandshakeAndPing(t *testing.T) {
	t.Parallel()

	r := runner.New(subordinate.StdioSpec{Command: "/bin/sh", Args: []string{"-c", echoScript}})
	_, exitCh, err := r.Start(context.Background())
	require.NoError(t, err)
	defer func() { _ = r.Stop(time.Second) }()

	h := session.NewStdio(r)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, h.Handshake(ctx))
	assert.NoError(t, h.Ping(ctx))
	assert.NoError(t, h.Close())

	select {
	case <-exitCh:
	default:
	}
}

func TestStdioHandshakeRejected(t *testing.T) {
	t.Parallel()

	r := runner.New(subordinate.StdioSpec{Command: "/bin/sh", Args: []string{"-c", `while read -r line; do printf '{"kind":"reply","ok":false,"error":"nope"}\n'; done`}})
	_, _, err := r.Start(context.Background())
	require.NoError(t, err)
	defer func() { _ = r.Stop(time.Second) }()

	h := session.NewStdio(r)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, h.Handshake(ctx))
}

func TestStdioCloseIdempotent(t *testing.T) {
	t.Parallel()

	r := runner.New(subordinate.StdioSpec{Command: "/bin/sh", Args: []string{"-c", echoScript}})
	_, _, err := r.Start(context.Background())
	require.NoError(t, err)
	defer func() { _ = r.Stop(time.Second) }()

	h := session.NewStdio(r)
	assert.NoError(t, h.Close())
	assert.NoError(t, h.Close())
}
