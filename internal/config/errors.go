package config

import "github.com/cockroachdb/errors"

// ErrInvalidConfig marks a loaded config that fails Validate; ErrLoadConfig
// marks a file or env source that could not be read or decoded.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
