package supervisor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolmesh/fleet/internal/application/supervisor"
	"github.com/toolmesh/fleet/internal/domain/event"
	"github.com/toolmesh/fleet/internal/domain/shared"
	"github.com/toolmesh/fleet/internal/domain/subordinate"
	"github.com/toolmesh/fleet/internal/infrastructure/eventbus"
)

const alwaysOkScript = `while read -r line; do printf '{"kind":"reply","ok":true}\n'; done`

// unhealthyScript handshakes successfully once, then rejects every ping, so
// a subordinate using it goes connected -> unhealthy and stays there.
const unhealthyScript = `read -r line; printf '{"kind":"reply","ok":true}\n'; while read -r line; do printf '{"kind":"reply","ok":false,"error":"down"}\n'; done`

func echoConfig(name string, autoStart bool) subordinate.Config {
	policy := subordinate.DefaultPolicy()
	policy.HealthCheckEnabled = false
	return subordinate.Config{
		Name: name,
		Connection: subordinate.Connection{
			Kind:  subordinate.ConnectionStdio,
			Stdio: &subordinate.StdioSpec{Command: "/bin/sh", Args: []string{"-c", alwaysOkScript}},
		},
		Lifecycle: policy,
		AutoStart: autoStart,
	}
}

func unhealthyConfig(name string) subordinate.Config {
	policy := subordinate.DefaultPolicy()
	policy.HealthCheckEnabled = true
	policy.HealthCheckInterval = 20 * time.Millisecond
	policy.HealthCheckTimeout = 50 * time.Millisecond
	policy.UnhealthyThreshold = 1
	policy.AutoRestartEnabled = false
	return subordinate.Config{
		Name: name,
		Connection: subordinate.Connection{
			Kind:  subordinate.ConnectionStdio,
			Stdio: &subordinate.StdioSpec{Command: "/bin/sh", Args: []string{"-c", unhealthyScript}},
		},
		Lifecycle: policy,
		AutoStart: true,
	}
}

func TestSupervisorAddDuplicateRejected(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	sup := supervisor.New(bus, shared.DefaultClock)

	require.NoError(t, sup.AddServer(echoConfig("a", false)))
	err := sup.AddServer(echoConfig("a", false))
	assert.ErrorIs(t, err, shared.ErrDuplicateServer)
}

func TestSupervisorUnknownServerOperationsFail(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	sup := supervisor.New(bus, shared.DefaultClock)

	assert.ErrorIs(t, sup.StartServer(context.Background(), "ghost"), shared.ErrUnknownServer)
	assert.ErrorIs(t, sup.StopServer(context.Background(), "ghost"), shared.ErrUnknownServer)
	assert.ErrorIs(t, sup.RestartServer(context.Background(), "ghost"), shared.ErrUnknownServer)
	assert.ErrorIs(t, sup.RemoveServer(context.Background(), "ghost"), shared.ErrUnknownServer)
}

func TestSupervisorStartAutoStartsInParallel(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	sup := supervisor.New(bus, shared.DefaultClock)

	require.NoError(t, sup.AddServer(echoConfig("auto-a", true)))
	require.NoError(t, sup.AddServer(echoConfig("auto-b", true)))
	require.NoError(t, sup.AddServer(echoConfig("manual", false)))

	sub := bus.Subscribe(event.FilterFleet())

	sup.Start(context.Background())
	defer sup.Shutdown(context.Background())

	select {
	case e := <-sub:
		assert.Equal(t, event.TypeManagerReady, e.Type)
		assert.Equal(t, 3, e.Data["serverCount"])
	case <-time.After(2 * time.Second):
		t.Fatal("manager:ready not emitted")
	}

	states := sup.State()
	byName := map[string]subordinate.Snapshot{}
	for _, s := range states {
		byName[s.Name] = s
	}
	assert.Equal(t, subordinate.Connected, byName["auto-a"].Status)
	assert.Equal(t, subordinate.Connected, byName["auto-b"].Status)
	assert.Equal(t, subordinate.Disconnected, byName["manual"].Status)
}

func TestSupervisorShutdownStopsEveryone(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	sup := supervisor.New(bus, shared.DefaultClock)
	require.NoError(t, sup.AddServer(echoConfig("a", true)))
	require.NoError(t, sup.AddServer(echoConfig("b", true)))

	sup.Start(context.Background())
	sup.Shutdown(context.Background())

	for _, s := range sup.State() {
		assert.Equal(t, subordinate.Stopped, s.Status)
	}
}

func TestSupervisorSessionHandlesOnlyIncludesConnected(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	sup := supervisor.New(bus, shared.DefaultClock)
	require.NoError(t, sup.AddServer(echoConfig("a", true)))
	require.NoError(t, sup.AddServer(echoConfig("b", false)))

	sup.Start(context.Background())
	defer sup.Shutdown(context.Background())

	handles := sup.SessionHandles()
	assert.Contains(t, handles, "a")
	assert.NotContains(t, handles, "b")
}

func TestSupervisorSessionHandlesExcludesUnhealthy(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	sup := supervisor.New(bus, shared.DefaultClock)
	require.NoError(t, sup.AddServer(unhealthyConfig("flaky")))

	sup.Start(context.Background())
	defer sup.Shutdown(context.Background())

	require.Eventually(t, func() bool {
		for _, snap := range sup.State() {
			if snap.Name == "flaky" {
				return snap.Status == subordinate.Unhealthy
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond, "flaky never went unhealthy")

	handles := sup.SessionHandles()
	assert.NotContains(t, handles, "flaky")
}

func TestSupervisorRemoveServerStopsIfRunning(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	sup := supervisor.New(bus, shared.DefaultClock)
	require.NoError(t, sup.AddServer(echoConfig("a", true)))

	sup.Start(context.Background())
	require.NoError(t, sup.RemoveServer(context.Background(), "a"))

	assert.ErrorIs(t, sup.StartServer(context.Background(), "a"), shared.ErrUnknownServer)
}
