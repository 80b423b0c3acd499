package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Abraxas-365/install-peerdeps/internal/pkgspec"
	"mvdan.cc/sh/v3/shell"
)

// PackageManager names a supported Node.js package manager.
type PackageManager string

const (
	NPM  PackageManager = "npm"
	Yarn PackageManager = "yarn"
	PNPM PackageManager = "pnpm"
)

// MetadataSource selects how package metadata is fetched.
type MetadataSource string

const (
	// SourceRegistry queries the registry over HTTP.
	SourceRegistry MetadataSource = "registry"
	// SourcePackageManager shells out to `<pm> view --json`.
	SourcePackageManager MetadataSource = "package-manager"
)

const DefaultRegistry = "https://registry.npmjs.org"

var ErrInvalidOptions = errors.New("invalid options")

// ConflictError reports two options that cannot be combined.
type ConflictError struct {
	Option string
	With   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Option --%s cannot be used with --%s.", e.Option, e.With)
}

func (e *ConflictError) Unwrap() error { return ErrInvalidOptions }

// InvalidOptionError reports an option whose value is not acceptable.
type InvalidOptionError struct {
	Option string
	Value  string
	Reason string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid value %q for --%s: %s", e.Value, e.Option, e.Reason)
}

func (e *InvalidOptionError) Unwrap() error { return ErrInvalidOptions }

// Install is the validated configuration of one install-peerdeps run. It is
// produced by Options.Build and passed around by value.
type Install struct {
	PackageName    string
	Version        string
	PackageManager PackageManager
	Dev            bool
	Global         bool
	OnlyPeers      bool
	Silent         bool
	DryRun         bool
	NoRegistry     bool
	ExtraArgs      []string
	Registry       string
	Auth           string
	Proxy          string
	MetadataSource MetadataSource
	FailOnNoPeers  bool
}

// Options collects raw inputs from flags, environment and rc file. Fill it in
// completely, including any interactive answers, then call Build.
type Options struct {
	Package        pkgspec.Specifier
	PackageManager PackageManager // preferred manager when neither Yarn nor PNPM is set
	Yarn           bool
	PNPM           bool
	Dev            bool
	Global         bool
	OnlyPeers      bool
	Silent         bool
	DryRun         bool
	NoRegistry     bool
	ExtraArgs      string
	Registry       string
	Auth           string
	Proxy          string
	MetadataSource MetadataSource
	FailOnNoPeers  bool
}

// Build validates the options and returns the resulting Install.
func (o Options) Build() (Install, error) {
	if o.Yarn && o.PNPM {
		return Install{}, &ConflictError{Option: "yarn", With: "pnpm"}
	}

	pm := o.PackageManager
	switch {
	case o.Yarn:
		pm = Yarn
	case o.PNPM:
		pm = PNPM
	case pm == "":
		pm = NPM
	}
	if !pm.Valid() {
		return Install{}, &InvalidOptionError{Option: "package-manager", Value: string(pm), Reason: "expected npm, yarn or pnpm"}
	}

	// Yarn does not allow silent installs; --dev means saving as a
	// devDependency, which neither silent nor global installs do.
	if pm == Yarn && o.Silent {
		return Install{}, &ConflictError{Option: "silent", With: "yarn"}
	}
	if o.Dev && o.Silent {
		return Install{}, &ConflictError{Option: "silent", With: "dev"}
	}
	if o.Dev && o.Global {
		return Install{}, &ConflictError{Option: "dev", With: "global"}
	}

	source := o.MetadataSource
	if source == "" {
		source = SourceRegistry
	}
	if source != SourceRegistry && source != SourcePackageManager {
		return Install{}, &InvalidOptionError{Option: "metadata-source", Value: string(source), Reason: "expected registry or package-manager"}
	}

	registry := strings.TrimRight(strings.TrimSpace(o.Registry), "/")
	if registry == "" {
		registry = DefaultRegistry
	}
	if err := checkURL("registry", registry); err != nil {
		return Install{}, err
	}
	if o.Proxy != "" {
		if err := checkURL("proxy", o.Proxy); err != nil {
			return Install{}, err
		}
	}

	extra, err := shell.Fields(o.ExtraArgs, nil)
	if err != nil {
		return Install{}, &InvalidOptionError{Option: "extra-args", Value: o.ExtraArgs, Reason: err.Error()}
	}

	return Install{
		PackageName:    o.Package.Name,
		Version:        o.Package.VersionOrLatest(),
		PackageManager: pm,
		Dev:            o.Dev,
		Global:         o.Global,
		OnlyPeers:      o.OnlyPeers,
		Silent:         o.Silent,
		DryRun:         o.DryRun,
		NoRegistry:     o.NoRegistry,
		ExtraArgs:      extra,
		Registry:       registry,
		Auth:           o.Auth,
		Proxy:          o.Proxy,
		MetadataSource: source,
		FailOnNoPeers:  o.FailOnNoPeers,
	}, nil
}

func (pm PackageManager) Valid() bool {
	switch pm {
	case NPM, Yarn, PNPM:
		return true
	}
	return false
}

func checkURL(option, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &InvalidOptionError{Option: option, Value: raw, Reason: err.Error()}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &InvalidOptionError{Option: option, Value: raw, Reason: "expected an http(s) URL"}
	}
	return nil
}
