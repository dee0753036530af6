package config

import (
	"fmt"
	"time"

	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

// toDomain converts a fully defaulted ConfigDTO into a slice of
// subordinate.Config, rejecting the first field-path violation it finds.
func toDomain(dto ConfigDTO) ([]subordinate.Config, error) {
	names := make(map[string]struct{}, len(dto.Servers))
	out := make([]subordinate.Config, 0, len(dto.Servers))

	for i, serverDTO := range dto.Servers {
		path := fmt.Sprintf("servers[%d]", i)

		if serverDTO.Name == "" {
			return nil, fmt.Errorf("%s.name: %w", path, subordinate.ErrEmptyName)
		}
		if _, dup := names[serverDTO.Name]; dup {
			return nil, fmt.Errorf("%s.name %q: duplicate server name", path, serverDTO.Name)
		}
		names[serverDTO.Name] = struct{}{}

		conn, err := connectionToDomain(path, serverDTO.Connection)
		if err != nil {
			return nil, err
		}

		policyDTO := serverDTO.Lifecycle
		if policyDTO == nil {
			policyDTO = &PolicyDTO{}
		}
		applyDefaults(policyDTO, dto.Defaults)

		policy := policyToDomain(policyDTO)
		if err := policy.Validate(); err != nil {
			return nil, fmt.Errorf("%s.lifecycle: %w", path, err)
		}

		cfg := subordinate.Config{
			Name:       serverDTO.Name,
			Connection: conn,
			Lifecycle:  policy,
			AutoStart:  serverDTO.AutoStart == nil || *serverDTO.AutoStart,
		}
		if err := cfg.Connection.Validate(); err != nil {
			return nil, fmt.Errorf("%s.connection: %w", path, err)
		}

		out = append(out, cfg)
	}

	return out, nil
}

func connectionToDomain(path string, dto ConnectionDTO) (subordinate.Connection, error) {
	switch {
	case dto.Stdio != nil && dto.HTTP != nil:
		return subordinate.Connection{}, fmt.Errorf("%s.connection: %w", path, subordinate.ErrAmbiguousConnection)
	case dto.Stdio != nil:
		return subordinate.Connection{
			Kind: subordinate.ConnectionStdio,
			Stdio: &subordinate.StdioSpec{
				Command: dto.Stdio.Command,
				Args:    dto.Stdio.Args,
				Env:     dto.Stdio.Env,
				Dir:     dto.Stdio.Cwd,
			},
		}, nil
	case dto.HTTP != nil:
		return subordinate.Connection{
			Kind: subordinate.ConnectionHTTP,
			HTTP: &subordinate.HTTPSpec{
				URL:     dto.HTTP.URL,
				Headers: dto.HTTP.Headers,
			},
		}, nil
	default:
		return subordinate.Connection{}, fmt.Errorf("%s.connection: %w", path, subordinate.ErrMissingConnection)
	}
}

func policyToDomain(dto *PolicyDTO) subordinate.Policy {
	return subordinate.Policy{
		HealthCheckEnabled:  derefBool(dto.HealthCheckEnabled),
		HealthCheckInterval: millis(dto.HealthCheckIntervalMs),
		HealthCheckTimeout:  millis(dto.HealthCheckTimeoutMs),
		UnhealthyThreshold:  derefInt(dto.UnhealthyThreshold),
		AutoRestartEnabled:  derefBool(dto.AutoRestartEnabled),
		MaxRestartAttempts:  derefInt(dto.MaxRestartAttempts),
		RestartBackoffBase:  millis(dto.RestartBackoffBaseMs),
		RestartBackoffMax:   millis(dto.RestartBackoffMaxMs),
		ShutdownTimeout:     millis(dto.ShutdownTimeoutMs),
	}
}

func millis(v *int64) time.Duration {
	if v == nil {
		return 0
	}
	return time.Duration(*v) * time.Millisecond
}

func derefBool(v *bool) bool {
	return v != nil && *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
