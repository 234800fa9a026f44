package cmd

import (
	"fmt"

	"github.com/urfave/cli"
)

// Exit code reported for every failed run.
const exitFailure = -1

// ArgumentError is returned for malformed command lines.
type ArgumentError struct {
	Reason string
}

func (e *ArgumentError) Error() string {
	return "invalid arguments: " + e.Reason
}

// ConfigError is returned when an option holds a value that cannot be used.
type ConfigError struct {
	Option string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %v", e.Option, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Log err and convert it into an error that makes the cli exit with a failure code.
func exitError(err error) error {
	logger.Error(err.Error())
	return cli.NewExitError(err.Error(), exitFailure)
}
