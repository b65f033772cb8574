package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an empty database DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, a missing token signing key).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidRelayConfigs indicates invalid relay tuning settings
	// (for example, a non-positive session buffer or frame cap).
	ErrInvalidRelayConfigs = errors.New("invalid relay configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, a zero sync interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
)
