// Package peerdeps resolves a package and its peer dependencies and installs
// them with the configured package manager.
package peerdeps

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Abraxas-365/install-peerdeps/internal/command"
	"github.com/Abraxas-365/install-peerdeps/internal/config"
	"github.com/Abraxas-365/install-peerdeps/internal/registry"
	"github.com/Abraxas-365/install-peerdeps/internal/runner"
	"github.com/Abraxas-365/install-peerdeps/internal/semverx"
	"github.com/charmbracelet/log"
)

var (
	ErrNoPeerDependencies = errors.New("no peer dependencies")
	ErrCancelled          = errors.New("cancelled")
)

// NoPeerDependenciesError is returned when the resolved version declares no
// peer dependencies and the run is configured to treat that as a failure.
type NoPeerDependenciesError struct {
	Name    string
	Version string
}

func (e *NoPeerDependenciesError) Error() string {
	return "The package you are trying to install has no peer dependencies. Use yarn or npm to install it manually."
}

func (e *NoPeerDependenciesError) Unwrap() error { return ErrNoPeerDependencies }

// CancelledError is returned when the context is cancelled during Op.
type CancelledError struct {
	Op  string
	Err error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("%s cancelled", e.Op)
}

func (e *CancelledError) Unwrap() []error { return []error{ErrCancelled, e.Err} }

// Installer wires the metadata sources, the runner and the output streams.
type Installer struct {
	// Fetcher is the remote metadata source.
	Fetcher registry.Fetcher
	// Local is consulted first when the install runs with NoRegistry.
	Local  registry.Fetcher
	Runner runner.Runner
	// Out receives the command line and dry-run output.
	Out    io.Writer
	Logger *log.Logger
}

// Result describes what Install did.
type Result struct {
	Name    string
	Version string
	Peers   []string
	Plan    command.Plan
	// Ran is false for dry runs.
	Ran bool
}

// Install resolves cfg's package, picks an install token for each of its
// peer dependencies and runs (or, for a dry run, prints) the install command.
func (in *Installer) Install(ctx context.Context, cfg config.Install) (*Result, error) {
	logger := in.logger()

	version, manifest, err := in.lookup(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved", "package", cfg.PackageName, "requested", cfg.Version, "version", version)

	peers := make([]string, 0, len(manifest.PeerDependencies))
	for _, dep := range manifest.PeerDependencies {
		token := semverx.PickVersionToken(dep.Name, dep.Range)
		logger.Debug("peer", "name", dep.Name, "range", dep.Range, "token", token)
		peers = append(peers, token)
	}

	if len(peers) == 0 {
		if cfg.FailOnNoPeers || cfg.OnlyPeers {
			return nil, &NoPeerDependenciesError{Name: cfg.PackageName, Version: version}
		}
		logger.Warn("no peer dependencies, installing the package alone", "package", cfg.PackageName+"@"+version)
	}

	plan := command.Synthesize(cfg, version, peers)
	res := &Result{Name: cfg.PackageName, Version: version, Peers: peers, Plan: plan}

	if cfg.DryRun {
		fmt.Fprintf(in.Out, "This command would have been run to install %s@%s:\n", cfg.PackageName, version)
		fmt.Fprintln(in.Out, plan.String())
		return res, nil
	}

	fmt.Fprintf(in.Out, "Installing peerdeps for %s@%s.\n", cfg.PackageName, version)
	fmt.Fprintln(in.Out, plan.String())
	if err := in.Runner.Run(ctx, string(plan.PackageManager), plan.Args); err != nil {
		return nil, cancelled("install", err)
	}
	res.Ran = true
	return res, nil
}

func (in *Installer) lookup(ctx context.Context, cfg config.Install) (string, *registry.Manifest, error) {
	if cfg.NoRegistry && in.Local != nil {
		version, manifest, err := resolve(ctx, in.Local, cfg)
		switch {
		case err == nil:
			return version, manifest, nil
		case errors.Is(err, registry.ErrNoManifest), errors.Is(err, semverx.ErrVersionNotFound):
			in.logger().Warn("not usable from node_modules, falling back to the registry", "package", cfg.PackageName, "err", err)
		default:
			return "", nil, err
		}
	}
	return resolve(ctx, in.Fetcher, cfg)
}

func resolve(ctx context.Context, f registry.Fetcher, cfg config.Install) (string, *registry.Manifest, error) {
	packument, err := f.FetchPackument(ctx, cfg.PackageName)
	if err != nil {
		return "", nil, cancelled("fetch "+cfg.PackageName, err)
	}

	version, err := semverx.Resolve(packument.Versions, packument.DistTags, cfg.Version)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", cfg.PackageName, err)
	}

	manifest, err := f.FetchManifest(ctx, cfg.PackageName, version)
	if err != nil {
		return "", nil, cancelled("fetch "+cfg.PackageName+"@"+version, err)
	}
	return version, manifest, nil
}

func cancelled(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &CancelledError{Op: op, Err: err}
	}
	return err
}

func (in *Installer) logger() *log.Logger {
	if in.Logger == nil {
		return log.New(io.Discard)
	}
	return in.Logger
}
