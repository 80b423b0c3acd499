package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Abraxas-365/install-peerdeps/internal/config"
	"github.com/Abraxas-365/install-peerdeps/internal/peerdeps"
	"github.com/Abraxas-365/install-peerdeps/internal/pkgspec"
	"github.com/Abraxas-365/install-peerdeps/internal/registry"
	"github.com/Abraxas-365/install-peerdeps/internal/runner"
	"github.com/Abraxas-365/install-peerdeps/internal/ui"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	installDev        bool
	installSaveDev    bool
	installGlobal     bool
	installOnlyPeers  bool
	installSilent     bool
	installYarn       bool
	installPNPM       bool
	installNoRegistry bool
	installDryRun     bool
	installVerbose    bool
)

const yarnPrompt = "It seems as if you are using Yarn. Would you like to use Yarn for the installation? (y/n) "

func registerInstallFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVarP(&installSaveDev, "save-dev", "D", false, "Install the package and its peerDeps as devDependencies")
	f.BoolVarP(&installDev, "dev", "d", false, "Install the package and its peerDeps as devDependencies")
	f.BoolVarP(&installGlobal, "global", "g", false, "Install the package and its peerDeps globally")
	f.BoolVarP(&installOnlyPeers, "only-peers", "o", false, "Install only the peerDeps, not the package itself")
	f.BoolVarP(&installSilent, "silent", "S", false, "If using npm, don't save in package.json")
	f.BoolVarP(&installYarn, "yarn", "Y", false, "Install with Yarn")
	f.BoolVarP(&installPNPM, "pnpm", "P", false, "Install with pnpm")
	f.BoolVarP(&installNoRegistry, "no-registry", "n", false, "Use local node_modules instead of a remote registry to get the list of peerDependencies")
	f.BoolVar(&installDryRun, "dry-run", false, "Print the install command instead of running it")
	f.BoolVar(&installVerbose, "verbose", false, "Log resolution details")

	// Persistent settings: read through config.LoadSettings, which also
	// consults the rc file and PEERDEPS_* environment.
	f.StringP("extra-args", "x", "", "Extra arguments to pass to the package manager")
	f.String("registry", config.DefaultRegistry, "The registry to install from")
	f.String("auth", "", "Auth token for the registry")
	f.String("proxy", "", "HTTP(S) proxy for registry requests")
	f.String("metadata-source", string(config.SourceRegistry), "Where to read package metadata: registry or package-manager")
	f.Bool("fail-on-no-peers", false, "Fail when the package has no peer dependencies")
}

func runInstall(cmd *cobra.Command, args []string) error {
	stderr := cmd.ErrOrStderr()
	ui.PrintHeader(stderr, name, Version)

	spec, err := pkgspec.Parse(args[0])
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	settings, err := config.LoadSettings(cwd, cmd.Flags())
	if err != nil {
		return err
	}

	logger := newLogger(stderr, installVerbose)
	if settings.RCPath != "" {
		logger.Debug("loaded settings", "file", settings.RCPath)
	}

	opts := config.Options{
		Package:        spec,
		PackageManager: settings.PackageManager,
		Yarn:           installYarn,
		PNPM:           installPNPM,
		Dev:            installDev || installSaveDev,
		Global:         installGlobal,
		OnlyPeers:      installOnlyPeers,
		Silent:         installSilent,
		DryRun:         installDryRun,
		NoRegistry:     installNoRegistry,
		ExtraArgs:      settings.ExtraArgs,
		Registry:       settings.Registry,
		Auth:           settings.Auth,
		Proxy:          settings.Proxy,
		MetadataSource: settings.MetadataSource,
		FailOnNoPeers:  settings.FailOnNoPeers,
	}

	if shouldAskYarn(cwd, opts) {
		if ui.IsTerminal(os.Stdin) {
			opts.Yarn, err = askYarn(cmd.Context(), cmd.InOrStdin(), stderr)
			if err != nil {
				return err
			}
			if opts.Yarn {
				ui.StepInfo(stderr, "Using Yarn.")
			}
		} else {
			logger.Debug("yarn.lock found, stdin is not a terminal; not asking to use Yarn")
		}
	}

	cfg, err := opts.Build()
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	installer := &peerdeps.Installer{
		Fetcher: &spinningFetcher{Fetcher: fetcher, w: stderr, enabled: ui.IsTerminal(os.Stderr)},
		Local:   &registry.LocalClient{Dir: cwd},
		Runner:  &runner.Exec{Dir: cwd},
		Out:     cmd.OutOrStdout(),
		Logger:  logger,
	}

	if _, err := installer.Install(cmd.Context(), cfg); err != nil {
		return err
	}
	if !cfg.DryRun {
		ui.PrintInstallSuccess(cmd.OutOrStdout(), cfg.PackageName, cfg.OnlyPeers)
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: name,
		Level:  level,
	})
}

func newFetcher(cfg config.Install) (registry.Fetcher, error) {
	if cfg.MetadataSource == config.SourcePackageManager {
		return &registry.PackageManagerClient{PackageManager: string(cfg.PackageManager)}, nil
	}
	return registry.NewClient(registry.Options{
		Registry:  cfg.Registry,
		Auth:      cfg.Auth,
		Proxy:     cfg.Proxy,
		UserAgent: name + "/" + Version,
	})
}

// shouldAskYarn reports whether the project looks like a Yarn project while
// another package manager would be used.
func shouldAskYarn(dir string, opts config.Options) bool {
	if opts.Yarn || opts.PNPM || opts.Silent || opts.PackageManager == config.Yarn {
		return false
	}
	_, err := os.Stat(filepath.Join(dir, "yarn.lock"))
	return err == nil
}

// askYarn prompts on out and reads the answer from in. It returns a
// *peerdeps.CancelledError when ctx is done before an answer arrives.
func askYarn(ctx context.Context, in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprint(out, yarnPrompt)
	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(in).ReadString('\n')
		answer <- line
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(out)
		return false, &peerdeps.CancelledError{Op: "prompt", Err: ctx.Err()}
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

// spinningFetcher shows a spinner while metadata is fetched.
type spinningFetcher struct {
	registry.Fetcher
	w       io.Writer
	enabled bool
}

func (f *spinningFetcher) FetchPackument(ctx context.Context, pkg string) (*registry.Packument, error) {
	s := ui.NewSpinner(f.w, "Fetching "+pkg, f.enabled)
	s.Start()
	p, err := f.Fetcher.FetchPackument(ctx, pkg)
	s.Stop(err == nil)
	return p, err
}
