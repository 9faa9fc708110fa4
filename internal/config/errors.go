package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidUpstreamConfigs indicates invalid upstream platform
	// settings (for example, a missing base URL).
	ErrInvalidUpstreamConfigs = errors.New("invalid upstream configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an empty DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidSessionConfigs indicates invalid session custody settings
	// (for example, a non-positive cookie lifetime or hydration timeout).
	ErrInvalidSessionConfigs = errors.New("invalid session configuration")
	// ErrInvalidActivationConfigs indicates invalid activation lifecycle
	// settings (for example, a default TTL outside [1,720] hours).
	ErrInvalidActivationConfigs = errors.New("invalid activation configuration")
)
