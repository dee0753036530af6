package health_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/toolmesh/fleet/internal/application/health"
	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

// fakeHandle is a minimal session.Handle whose Ping outcome can be toggled
// by the test.
type fakeHandle struct {
	fail atomic.Bool
}

func (f *fakeHandle) Handshake(context.Context) error { return nil }

func (f *fakeHandle) Ping(context.Context) error {
	if f.fail.Load() {
		return assertErr
	}
	return nil
}

func (f *fakeHandle) Close() error { return nil }

type sentinelErr struct{}

func (sentinelErr) Error() string { return "ping failed" }

var assertErr error = sentinelErr{}

func TestMonitorUnhealthyAndRecoveredFireOnce(t *testing.T) {
	t.Parallel()

	handle := &fakeHandle{}
	handle.fail.Store(true)

	var mu sync.Mutex
	var unhealthyCount, recoveredCount int
	var lastFailures int

	m := health.New(10*time.Millisecond, 50*time.Millisecond, 3, health.Callbacks{
		OnUnhealthy: func(failures int, _ subordinate.HealthCheckResult) {
			mu.Lock()
			defer mu.Unlock()
			unhealthyCount++
			lastFailures = failures
		},
		OnRecovered: func(_ subordinate.HealthCheckResult) {
			mu.Lock()
			defer mu.Unlock()
			recoveredCount++
		},
	})
	m.SetSession(handle)
	m.Start()
	defer m.Stop()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return unhealthyCount == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, 3, lastFailures)
	assert.Equal(t, 0, recoveredCount)
	mu.Unlock()

	handle.fail.Store(false)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return recoveredCount == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, 1, unhealthyCount, "no re-emission before another crossing")
	mu.Unlock()
}

func TestMonitorProbeNowWithoutSession(t *testing.T) {
	t.Parallel()

	m := health.New(time.Second, time.Second, 3, health.Callbacks{})
	result := m.ProbeNow()
	assert.False(t, result.Healthy)
	assert.NotEmpty(t, result.Error)
}

func TestMonitorResetFailureCount(t *testing.T) {
	t.Parallel()

	handle := &fakeHandle{}
	handle.fail.Store(true)

	m := health.New(5*time.Millisecond, 50*time.Millisecond, 2, health.Callbacks{})
	m.SetSession(handle)
	m.Start()
	time.Sleep(30 * time.Millisecond)
	m.ResetFailureCount()
	m.Stop()
}
