package runner_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolmesh/fleet/internal/application/runner"
	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

func TestRunnerStartReportsExitCode(t *testing.T) {
	t.Parallel()

	r := runner.New(subordinate.StdioSpec{Command: "/bin/sh", Args: []string{"-c", "exit 7"}})

	pid, exitCh, err := r.Start(context.Background())
	require.NoError(t, err)
	assert.Greater(t, pid, 0)

	select {
	case result := <-exitCh:
		require.NotNil(t, result.Code)
		assert.Equal(t, 7, *result.Code)
		assert.Nil(t, result.Signal)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for exit")
	}
}

func TestRunnerStopGraceful(t *testing.T) {
	t.Parallel()

	r := runner.New(subordinate.StdioSpec{Command: "/bin/sh", Args: []string{"-c", "trap exit TERM; sleep 30"}})

	_, exitCh, err := r.Start(context.Background())
	require.NoError(t, err)

	assert.NoError(t, r.Stop(2*time.Second))

	select {
	case <-exitCh:
	case <-time.After(3 * time.Second):
		t.Fatal("process did not exit after Stop")
	}
	assert.False(t, r.Running())
}

func TestRunnerStopForcesKillOnTimeout(t *testing.T) {
	t.Parallel()

	r := runner.New(subordinate.StdioSpec{Command: "/bin/sh", Args: []string{"-c", `trap "" TERM; sleep 30`}})

	_, exitCh, err := r.Start(context.Background())
	require.NoError(t, err)

	assert.NoError(t, r.Stop(200*time.Millisecond))

	select {
	case <-exitCh:
	case <-time.After(2 * time.Second):
		t.Fatal("process survived forced kill")
	}
}

func TestRunnerStartFailureDoesNotPanic(t *testing.T) {
	t.Parallel()

	r := runner.New(subordinate.StdioSpec{Command: "/nonexistent/binary-xyz"})
	_, _, err := r.Start(context.Background())
	assert.Error(t, err)
}
