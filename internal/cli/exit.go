package cli

import (
	"errors"

	"github.com/Abraxas-365/install-peerdeps/internal/config"
	"github.com/Abraxas-365/install-peerdeps/internal/peerdeps"
	"github.com/Abraxas-365/install-peerdeps/internal/pkgspec"
	"github.com/Abraxas-365/install-peerdeps/internal/runner"
)

const (
	exitFailure   = 1
	exitUsage     = 9
	exitCancelled = 130
)

// exitCode maps an error returned by the command to a process exit code.
func exitCode(err error) int {
	var usage *usageError
	var proc *runner.ProcessError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usage),
		errors.Is(err, pkgspec.ErrInvalidSpecifier),
		errors.Is(err, config.ErrInvalidOptions):
		return exitUsage
	case errors.Is(err, peerdeps.ErrCancelled):
		return exitCancelled
	case errors.As(err, &proc):
		if proc.ExitCode > 0 {
			return proc.ExitCode
		}
		return exitFailure
	}
	return exitFailure
}
