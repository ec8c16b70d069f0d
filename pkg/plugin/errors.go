package plugin

import (
	"errors"
	"fmt"
)

// ErrPluginNotFound represents an error when a plugin cannot be found
type ErrPluginNotFound struct {
	Name string
}

func (e ErrPluginNotFound) Error() string {
	return fmt.Sprintf("plugin not found: %s", e.Name)
}

// ErrPluginExists represents an error when a plugin already exists
type ErrPluginExists struct {
	Kind Kind
	Name string
}

func (e ErrPluginExists) Error() string {
	return fmt.Sprintf("plugin already exists in %s: %s", e.Kind, e.Name)
}

// ErrUnknownKind is returned for a registry group that does not exist
type ErrUnknownKind struct {
	Kind string
}

func (e ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown plugin kind: %s", e.Kind)
}

// ErrSymbolNotFound is returned when a shared object lacks a required export
type ErrSymbolNotFound struct {
	Path   string
	Symbol string
}

func (e ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("plugin %s does not export '%s' symbol", e.Path, e.Symbol)
}

// ErrPluginTimeout represents an error when a plugin operation times out
type ErrPluginTimeout struct {
	Name string
}

func (e ErrPluginTimeout) Error() string {
	return fmt.Sprintf("plugin operation timed out: %s", e.Name)
}

// LoadError records why a plugin could not contribute its commands
type LoadError struct {
	Name string
	Ref  string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load plugin commands from %s (%s): %v", e.Name, e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsPluginNotFoundError checks if the error is a plugin not found error
func IsPluginNotFoundError(err error) bool {
	var target ErrPluginNotFound
	return errors.As(err, &target)
}

// IsPluginExistsError checks if the error is a duplicate registration
func IsPluginExistsError(err error) bool {
	var target ErrPluginExists
	return errors.As(err, &target)
}

// IsPluginTimeoutError checks if the error is a plugin timeout error
func IsPluginTimeoutError(err error) bool {
	var target ErrPluginTimeout
	return errors.As(err, &target)
}

// IsLoadError checks if the error is a plugin load failure
func IsLoadError(err error) bool {
	var target *LoadError
	return errors.As(err, &target)
}
