package main

import (
	"errors"
	"os"

	"github.com/kapu/steam-profile-md/internal/config"
	apperrors "github.com/kapu/steam-profile-md/pkg/errors"
)

// Exit codes for steam-md.
// 0=success, 1=general, 2=usage, custom codes stay below 126.
const (
	ExitSuccess = 0 // Document written
	ExitGeneral = 1 // Unexpected error
	ExitUsage   = 2 // Invalid flags or configuration
	ExitData    = 3 // Identity unresolved or primary data unavailable
	ExitOutput  = 4 // Document could not be written
)

// exitCodeFor maps err to a process exit code. Errors must be wrapped with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Output errors (exit 4)
	var outErr *apperrors.OutputError
	if errors.As(err, &outErr) || errors.Is(err, os.ErrPermission) {
		return ExitOutput
	}

	// Identity and primary data (exit 3)
	var idErr *apperrors.IdentityError
	if errors.As(err, &idErr) || apperrors.IsPrimaryFetch(err) {
		return ExitData
	}

	// Usage/config errors (exit 2)
	var cfgErr *apperrors.ConfigError
	if errors.As(err, &cfgErr) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrMissingAPIKey) ||
		errors.Is(err, config.ErrMissingIdentity) ||
		errors.Is(err, config.ErrInvalidSteamID) ||
		errors.Is(err, config.ErrInvalidRewriter) ||
		errors.Is(err, config.ErrNegativeValue) {
		return ExitUsage
	}

	return ExitGeneral
}
