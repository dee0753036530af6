package subordinate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

func TestStatusString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "connected", subordinate.Connected.String())
	assert.Equal(t, "unknown", subordinate.Status(99).String())
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from subordinate.Status
		to   subordinate.Status
		want bool
	}{
		{"disconnected to connecting", subordinate.Disconnected, subordinate.Connecting, true},
		{"disconnected to connected rejected", subordinate.Disconnected, subordinate.Connected, false},
		{"connecting to connected", subordinate.Connecting, subordinate.Connected, true},
		{"connecting to failed", subordinate.Connecting, subordinate.Failed, true},
		{"connected to unhealthy", subordinate.Connected, subordinate.Unhealthy, true},
		{"connected to failed", subordinate.Connected, subordinate.Failed, true},
		{"unhealthy to restarting", subordinate.Unhealthy, subordinate.Restarting, true},
		{"unhealthy to failed", subordinate.Unhealthy, subordinate.Failed, true},
		{"failed to restarting", subordinate.Failed, subordinate.Restarting, true},
		{"restarting to connecting", subordinate.Restarting, subordinate.Connecting, true},
		{"restarting to failed", subordinate.Restarting, subordinate.Failed, true},
		{"failed to connecting", subordinate.Failed, subordinate.Connecting, true},
		{"stopped to connecting", subordinate.Stopped, subordinate.Connecting, true},
		{"stopped to connected rejected", subordinate.Stopped, subordinate.Connected, false},
		{"failed to unhealthy rejected", subordinate.Failed, subordinate.Unhealthy, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}
