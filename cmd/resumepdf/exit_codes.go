package main

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-resumepdf"
	"github.com/alnah/go-resumepdf/internal/config"
)

// Exit codes for resumepdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful render/publish
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Input unreadable, output or publish failed
	ExitBrowser = 4 // Browser not found or render failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, resumepdf.ErrExecutableNotFound) ||
		errors.Is(err, resumepdf.ErrRender) ||
		errors.Is(err, ErrSelfTestFailed) {
		return ExitBrowser
	}

	// Usage/config/validation errors (exit 2)
	// Checked before I/O: an invalid file name is also a publish error.
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, resumepdf.ErrEmptyHTML) ||
		errors.Is(err, resumepdf.ErrInvalidFileName) ||
		errors.Is(err, resumepdf.ErrInvalidPageFormat) ||
		errors.Is(err, resumepdf.ErrInvalidProvider) ||
		errors.Is(err, ErrNameWithBatch) ||
		errors.Is(err, ErrNothingToDo) ||
		errors.Is(err, ErrMultipleStdin) ||
		errors.Is(err, ErrUnexpectedArgs) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, resumepdf.ErrPublish) ||
		errors.Is(err, ErrReadHTML) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	return ExitGeneral
}

// parseFailureExit reports a flag parse error and maps it to an exit code.
// -h/--help has already printed the usage and is a success.
func parseFailureExit(err error, env *Environment) int {
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	fmt.Fprintln(env.Stderr, err)
	return ExitUsage
}
