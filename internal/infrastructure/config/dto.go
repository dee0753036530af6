// Package config loads a fleet configuration from YAML into a DTO, applies
// documented defaults, converts it to the domain model, and validates the
// result — producing field-path-qualified errors for any violation.
package config

// ConfigDTO is the root shape read from YAML, before defaults and domain
// conversion are applied.
type ConfigDTO struct {
	Defaults *PolicyDTO  `yaml:"defaults"`
	Servers  []ServerDTO `yaml:"servers"`
}

// ServerDTO is one entry in the servers array.
type ServerDTO struct {
	Name       string         `yaml:"name"`
	Connection ConnectionDTO  `yaml:"connection"`
	Lifecycle  *PolicyDTO     `yaml:"lifecycle"`
	AutoStart  *bool          `yaml:"autoStart"`
}

// ConnectionDTO is the tagged connection variant as read from YAML: exactly
// one of Stdio or HTTP must be set.
type ConnectionDTO struct {
	Stdio *StdioDTO `yaml:"stdio"`
	HTTP  *HTTPDTO  `yaml:"http"`
}

// StdioDTO mirrors subordinate.StdioSpec at the wire layer.
type StdioDTO struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
	Cwd     string            `yaml:"cwd"`
}

// HTTPDTO mirrors subordinate.HTTPSpec at the wire layer.
type HTTPDTO struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

// PolicyDTO is the lifecycle policy as read from YAML: every field is a
// pointer so an absent key is distinguishable from an explicit zero value,
// and applyDefaults can fill only what was omitted.
type PolicyDTO struct {
	HealthCheckEnabled    *bool  `yaml:"healthCheckEnabled"`
	HealthCheckIntervalMs *int64 `yaml:"healthCheckIntervalMs"`
	HealthCheckTimeoutMs  *int64 `yaml:"healthCheckTimeoutMs"`
	UnhealthyThreshold    *int   `yaml:"unhealthyThreshold"`
	AutoRestartEnabled    *bool  `yaml:"autoRestartEnabled"`
	MaxRestartAttempts    *int   `yaml:"maxRestartAttempts"`
	RestartBackoffBaseMs  *int64 `yaml:"restartBackoffBaseMs"`
	RestartBackoffMaxMs   *int64 `yaml:"restartBackoffMaxMs"`
	ShutdownTimeoutMs     *int64 `yaml:"shutdownTimeoutMs"`
}
