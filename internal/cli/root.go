package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/Abraxas-365/install-peerdeps/internal/ui"
	"github.com/spf13/cobra"
)

var Version = "dev"

const name = "install-peerdeps"

var rootCmd = &cobra.Command{
	Use:   name + " <package>[@<version>]",
	Short: "Install a package and its peer dependencies with npm, Yarn or pnpm",
	Example: `  install-peerdeps eslint-config-airbnb
  install-peerdeps eslint-config-airbnb@19.0.4 --dev
  install-peerdeps @scope/ui --only-peers --dry-run`,
	Args:          packageArgs,
	RunE:          runInstall,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(name + " v{{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	registerInstallFlags(rootCmd)
}

// Main runs the command and returns the process exit code.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	ui.PrintError(os.Stderr, err)
	var uerr *usageError
	if errors.As(err, &uerr) {
		os.Stderr.WriteString(rootCmd.UsageString())
	}
	return exitCode(err)
}

func Execute() {
	os.Exit(Main())
}

// usageError marks bad invocations: wrong argument count or unknown flags.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func packageArgs(_ *cobra.Command, args []string) error {
	switch {
	case len(args) == 0:
		return &usageError{err: errors.New("Please specify a package to install with peerDeps.")}
	case len(args) > 1:
		return &usageError{err: errors.New("Too many arguments. Please specify ONE package at a time to install with peerDeps.")}
	}
	return nil
}
