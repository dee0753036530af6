package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/toolmesh/fleet/internal/domain/subordinate"
)

// Loader reads a fleet configuration file from disk.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads path and parses it into a slice of subordinate.Config.
func (l *Loader) Load(path string) ([]subordinate.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator-supplied configuration
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	return l.Parse(data)
}

// Parse unmarshals YAML bytes into a slice of subordinate.Config, applying
// defaults and validating every field.
func (l *Loader) Parse(data []byte) ([]subordinate.Config, error) {
	var dto ConfigDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	servers, err := toDomain(dto)
	if err != nil {
		return nil, err
	}
	return servers, nil
}
