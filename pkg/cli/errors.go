package cli

import (
	"errors"
	"fmt"
	"strings"
)

// CliError is a user facing command failure. Code defaults to 1.
type CliError struct {
	Message string
	Code    int
	Err     error
}

func (e *CliError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CliError) Unwrap() error {
	return e.Err
}

// ExitError carries an explicit process exit code, e.g. from a subprocess
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// UsageError reports a malformed invocation. It exits with code 2.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// UnknownCommandError is returned when no source, eager or lazy, provides
// the requested command
type UnknownCommandError struct {
	Name string
	// Ambiguous lists the commands sharing Name as prefix, if any
	Ambiguous  []string
	Suggestion string
}

func (e *UnknownCommandError) Error() string {
	if len(e.Ambiguous) > 0 {
		return fmt.Sprintf("Too many matches for '%s': %s.%s", e.Name, strings.Join(e.Ambiguous, ", "), e.Suggestion)
	}
	return fmt.Sprintf("No such command '%s'.%s", e.Name, e.Suggestion)
}

// ConfigValidationError reports a config file key that matches no parameter
// of the target command
type ConfigValidationError struct {
	Key        string
	Command    string
	Suggestion string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("Key `%s` in provided configuration is not valid. %s", e.Key, e.Suggestion)
}

// ExitCode maps an error returned by a dispatch to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var usageErr *UsageError
	var unknownErr *UnknownCommandError
	if errors.As(err, &usageErr) || errors.As(err, &unknownErr) {
		return 2
	}

	var cliErr *CliError
	if errors.As(err, &cliErr) && cliErr.Code != 0 {
		return cliErr.Code
	}
	return 1
}

// IsUsageError reports whether err is a usage or unknown command error
func IsUsageError(err error) bool {
	var usageErr *UsageError
	var unknownErr *UnknownCommandError
	return errors.As(err, &usageErr) || errors.As(err, &unknownErr)
}

// IsConfigValidationError checks if the error is a config validation error
func IsConfigValidationError(err error) bool {
	var cfgErr *ConfigValidationError
	return errors.As(err, &cfgErr)
}
