package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is the sentinel for all load-time configuration failures.
// Use errors.Is(err, ErrInvalidConfig) for classification.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError describes one invalid configuration construct.
// It wraps ErrInvalidConfig so callers can classify without string matching.
type ConfigError struct {
	// Section locates the offending construct (e.g. "asset trips check[1]").
	Section string
	// Msg describes the violation.
	Msg string
	// Err is the underlying error, if any.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Section, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Section, e.Msg)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *ConfigError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidConfig
}

// Is reports whether the error matches ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a classified configuration error.
func NewConfigError(section, msg string, err error) *ConfigError {
	return &ConfigError{Section: section, Msg: msg, Err: err}
}
