package walker

import (
	"errors"
	"fmt"
)

// ErrMissingArgument is matched by errors.Is for every *ConfigError.
var ErrMissingArgument = errors.New("missing required argument")

// ConfigError reports a required argument that was absent or empty.
// It is returned before any filesystem access takes place.
type ConfigError struct {
	Argument string
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("argument '%s' not defined", e.Argument)
}

// Unwrap returns ErrMissingArgument.
func (e *ConfigError) Unwrap() error {
	return ErrMissingArgument
}

// WalkError is a filesystem failure that aborted a walk.
type WalkError struct {
	Op   string // "list" or "stat"
	Path string
	Err  error
}

// Error implements the error interface for WalkError.
func (e *WalkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *WalkError) Unwrap() error {
	return e.Err
}
