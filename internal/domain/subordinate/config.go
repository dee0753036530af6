package subordinate

import (
	"net/url"
	"time"
)

// ConnectionKind discriminates the tagged Connection variant.
type ConnectionKind int

// The two transports a subordinate may be bound to.
const (
	ConnectionStdio ConnectionKind = iota
	ConnectionHTTP
)

// StdioSpec describes a locally spawned child process transport.
type StdioSpec struct {
	Command string
	Args    []string
	Env     map[string]string
	Dir     string
}

// HTTPSpec describes a remote HTTP transport.
type HTTPSpec struct {
	URL     string
	Headers map[string]string
}

// Connection is the tagged variant of transport configuration: exactly one
// of Stdio or HTTP is populated, selected by Kind.
type Connection struct {
	Kind  ConnectionKind
	Stdio *StdioSpec
	HTTP  *HTTPSpec
}

// Validate checks that exactly one branch is populated and internally well
// formed.
func (c Connection) Validate() error {
	switch c.Kind {
	case ConnectionStdio:
		if c.Stdio == nil {
			return ErrMissingConnection
		}
		if c.HTTP != nil {
			return ErrAmbiguousConnection
		}
		if c.Stdio.Command == "" {
			return ErrEmptyCommand
		}
		return nil
	case ConnectionHTTP:
		if c.HTTP == nil {
			return ErrMissingConnection
		}
		if c.Stdio != nil {
			return ErrAmbiguousConnection
		}
		if c.HTTP.URL == "" {
			return ErrMissingURL
		}
		u, err := url.Parse(c.HTTP.URL)
		if err != nil {
			return ErrInvalidURL
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return ErrInvalidURLScheme
		}
		return nil
	default:
		return ErrMissingConnection
	}
}

// Policy is the set of lifecycle policy knobs, each with a documented
// default returned by DefaultPolicy.
type Policy struct {
	HealthCheckEnabled    bool
	HealthCheckInterval   time.Duration
	HealthCheckTimeout    time.Duration
	UnhealthyThreshold    int
	AutoRestartEnabled    bool
	MaxRestartAttempts    int
	RestartBackoffBase    time.Duration
	RestartBackoffMax     time.Duration
	ShutdownTimeout       time.Duration
}

// Default policy values, per the data model.
const (
	DefaultHealthCheckInterval = 30 * time.Second
	DefaultHealthCheckTimeout  = 5 * time.Second
	DefaultUnhealthyThreshold  = 3
	DefaultMaxRestartAttempts  = 5
	DefaultRestartBackoffBase  = 1 * time.Second
	DefaultRestartBackoffMax   = 30 * time.Second
	DefaultShutdownTimeout     = 10 * time.Second
)

// DefaultPolicy returns the policy with every field at its documented
// default.
func DefaultPolicy() Policy {
	return Policy{
		HealthCheckEnabled:  true,
		HealthCheckInterval: DefaultHealthCheckInterval,
		HealthCheckTimeout:  DefaultHealthCheckTimeout,
		UnhealthyThreshold:  DefaultUnhealthyThreshold,
		AutoRestartEnabled:  true,
		MaxRestartAttempts:  DefaultMaxRestartAttempts,
		RestartBackoffBase:  DefaultRestartBackoffBase,
		RestartBackoffMax:   DefaultRestartBackoffMax,
		ShutdownTimeout:     DefaultShutdownTimeout,
	}
}

// Validate checks that every duration and count is non-negative.
func (p Policy) Validate() error {
	if p.HealthCheckInterval < 0 || p.HealthCheckTimeout < 0 ||
		p.RestartBackoffBase < 0 || p.RestartBackoffMax < 0 || p.ShutdownTimeout < 0 {
		return ErrNegativeDuration
	}
	if p.UnhealthyThreshold < 0 || p.MaxRestartAttempts < 0 {
		return ErrNegativeCount
	}
	return nil
}

// Config is the immutable-after-construction configuration of one
// subordinate.
type Config struct {
	Name       string
	Connection Connection
	Lifecycle  Policy
	AutoStart  bool
}

// Validate checks the name, connection, and policy.
func (c Config) Validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if err := c.Connection.Validate(); err != nil {
		return err
	}
	return c.Lifecycle.Validate()
}
