package subordinate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     subordinate.Config
		wantErr error
	}{
		{
			name: "valid stdio",
			cfg: subordinate.Config{
				Name: "echo",
				Connection: subordinate.Connection{
					Kind:  subordinate.ConnectionStdio,
					Stdio: &subordinate.StdioSpec{Command: "/bin/echo"},
				},
				Lifecycle: subordinate.DefaultPolicy(),
			},
			wantErr: nil,
		},
		{
			name: "valid http",
			cfg: subordinate.Config{
				Name: "api",
				Connection: subordinate.Connection{
					Kind: subordinate.ConnectionHTTP,
					HTTP: &subordinate.HTTPSpec{URL: "https://example.test/mcp"},
				},
				Lifecycle: subordinate.DefaultPolicy(),
			},
			wantErr: nil,
		},
		{
			name: "empty name",
			cfg: subordinate.Config{
				Connection: subordinate.Connection{
					Kind:  subordinate.ConnectionStdio,
					Stdio: &subordinate.StdioSpec{Command: "/bin/echo"},
				},
			},
			wantErr: subordinate.ErrEmptyName,
		},
		{
			name: "empty command",
			cfg: subordinate.Config{
				Name: "echo",
				Connection: subordinate.Connection{
					Kind:  subordinate.ConnectionStdio,
					Stdio: &subordinate.StdioSpec{},
				},
			},
			wantErr: subordinate.ErrEmptyCommand,
		},
		{
			name: "bad scheme",
			cfg: subordinate.Config{
				Name: "api",
				Connection: subordinate.Connection{
					Kind: subordinate.ConnectionHTTP,
					HTTP: &subordinate.HTTPSpec{URL: "ftp://example.test"},
				},
			},
			wantErr: subordinate.ErrInvalidURLScheme,
		},
		{
			name: "ambiguous connection",
			cfg: subordinate.Config{
				Name: "api",
				Connection: subordinate.Connection{
					Kind:  subordinate.ConnectionStdio,
					Stdio: &subordinate.StdioSpec{Command: "x"},
					HTTP:  &subordinate.HTTPSpec{URL: "https://example.test"},
				},
			},
			wantErr: subordinate.ErrAmbiguousConnection,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPolicyValidateRejectsNegatives(t *testing.T) {
	t.Parallel()

	p := subordinate.DefaultPolicy()
	p.UnhealthyThreshold = -1
	assert.ErrorIs(t, p.Validate(), subordinate.ErrNegativeCount)
}
