package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Abraxas-365/install-peerdeps/internal/config"
	"github.com/Abraxas-365/install-peerdeps/internal/peerdeps"
	"github.com/Abraxas-365/install-peerdeps/internal/pkgspec"
	"github.com/Abraxas-365/install-peerdeps/internal/registry"
	"github.com/Abraxas-365/install-peerdeps/internal/runner"
	"github.com/Abraxas-365/install-peerdeps/internal/semverx"
)

func TestExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"usage", &usageError{err: errors.New("Too many arguments.")}, 9},
		{"invalid specifier", &pkgspec.InvalidSpecifierError{Value: "heyhe#@&*()"}, 9},
		{"conflict", &config.ConflictError{Option: "dev", With: "global"}, 9},
		{"not found", &registry.PackageNotFoundError{Name: "nope"}, 1},
		{"connection", &registry.RegistryConnectionError{Status: 502}, 1},
		{"version", fmt.Errorf("react: %w", &semverx.VersionNotFoundError{Requested: "99"}), 1},
		{"no peers", &peerdeps.NoPeerDependenciesError{Name: "lonely"}, 1},
		{"cancelled", &peerdeps.CancelledError{Op: "install", Err: context.Canceled}, 130},
		{"process", &runner.ProcessError{Executable: "npm", ExitCode: 3}, 3},
		{"killed process", &runner.ProcessError{Executable: "npm", ExitCode: -1}, 1},
		{"spawn", &runner.SpawnError{Executable: "pnpm", Err: errors.New("not found")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d; want %d", tt.err, got, tt.want)
			}
		})
	}
}
