package subordinate

import "errors"

// Sentinel errors for configuration and connection validation.
var (
	ErrEmptyName       = errors.New("subordinate: name must not be empty")
	ErrEmptyCommand    = errors.New("subordinate: stdio command must not be empty")
	ErrMissingURL      = errors.New("subordinate: http url must not be empty")
	ErrInvalidURLScheme = errors.New("subordinate: http url scheme must be http or https")
	ErrInvalidURL      = errors.New("subordinate: http url failed to parse")
	ErrMissingConnection = errors.New("subordinate: connection must specify stdio or http")
	ErrAmbiguousConnection = errors.New("subordinate: connection must specify exactly one of stdio or http")
	ErrNegativeDuration = errors.New("subordinate: duration fields must be non-negative")
	ErrNegativeCount    = errors.New("subordinate: count fields must be non-negative")
)
