package data

import (
	"fmt"
)

// ConfigError is raised for invalid run parameters, before any
// processing starts.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// NewConfigError creates a ConfigError.
func NewConfigError(field, format string, args ...any) error {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// LoadError is raised when a store fails to produce data.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("error loading %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func loadErr(source string, err error) error {
	return &LoadError{Source: source, Err: err}
}
