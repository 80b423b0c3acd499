// Package command builds the package-manager command line that installs a
// package together with its peer dependencies.
package command

import (
	"strconv"
	"strings"

	"github.com/Abraxas-365/install-peerdeps/internal/config"
	"mvdan.cc/sh/v3/syntax"
)

// Profile describes how one package manager spells the install command.
type Profile struct {
	Subcommand string
	// GlobalToken is placed before the subcommand when GlobalFirst is set
	// (`yarn global add`), otherwise right after it (`npm install --global`).
	GlobalToken string
	GlobalFirst bool
	DevFlag     string
	// SaveFlag and NoSaveFlag are empty for managers that save by default
	// and have no explicit toggle.
	SaveFlag   string
	NoSaveFlag string
}

// Profiles is the canonical flag vocabulary per package manager.
var Profiles = map[config.PackageManager]Profile{
	config.NPM: {
		Subcommand:  "install",
		GlobalToken: "--global",
		DevFlag:     "--save-dev",
		SaveFlag:    "--save",
		NoSaveFlag:  "--no-save",
	},
	config.Yarn: {
		Subcommand:  "add",
		GlobalToken: "global",
		GlobalFirst: true,
		DevFlag:     "--dev",
	},
	config.PNPM: {
		Subcommand:  "install",
		GlobalToken: "--global",
		DevFlag:     "--save-dev",
	},
}

// Plan is a synthesized command: the package manager and its arguments.
type Plan struct {
	PackageManager config.PackageManager
	Args           []string
}

// String renders the plan as a shell command line, quoting arguments that
// contain spaces or shell metacharacters.
func (p Plan) String() string {
	words := make([]string, 0, len(p.Args)+1)
	words = append(words, string(p.PackageManager))
	for _, arg := range p.Args {
		words = append(words, quote(arg))
	}
	return strings.Join(words, " ")
}

// Synthesize builds the install plan for cfg. peers are install tokens as
// produced by semverx.PickVersionToken, in manifest order.
func Synthesize(cfg config.Install, resolvedVersion string, peers []string) Plan {
	profile, ok := Profiles[cfg.PackageManager]
	if !ok {
		profile = Profiles[config.NPM]
	}

	var args []string
	if cfg.Global && profile.GlobalFirst {
		args = append(args, profile.GlobalToken)
	}
	args = append(args, profile.Subcommand)
	if cfg.Global && !profile.GlobalFirst {
		args = append(args, profile.GlobalToken)
	}

	if !cfg.OnlyPeers {
		args = append(args, cfg.PackageName+"@"+resolvedVersion)
	}
	for _, peer := range peers {
		args = append(args, trimNameSuffix(peer))
	}

	if cfg.Dev {
		args = append(args, profile.DevFlag)
	} else if !cfg.Global {
		if cfg.Silent {
			args = append(args, profile.NoSaveFlag)
		} else {
			args = append(args, profile.SaveFlag)
		}
	}

	args = append(args, cfg.ExtraArgs...)

	// Empty arguments break some package managers (Yarn 1.0 reports a
	// malformed registry response).
	args = dropEmpty(args)

	return Plan{PackageManager: cfg.PackageManager, Args: args}
}

// trimNameSuffix strips npm's "-0" quirk from the name part of an install
// token, leaving any version range untouched.
func trimNameSuffix(token string) string {
	name, rng, ok := cutToken(token)
	name = strings.TrimSuffix(name, "-0")
	if !ok {
		return name
	}
	return name + "@" + rng
}

// cutToken splits "name@range" at the version separator, skipping the
// leading "@" of a scoped name.
func cutToken(token string) (name, rng string, ok bool) {
	i := strings.Index(strings.TrimPrefix(token, "@"), "@")
	if i < 0 {
		return token, "", false
	}
	if strings.HasPrefix(token, "@") {
		i++
	}
	return token[:i], token[i+1:], true
}

func dropEmpty(args []string) []string {
	out := args[:0]
	for _, a := range args {
		if strings.TrimSpace(a) != "" {
			out = append(out, a)
		}
	}
	return out
}

func quote(arg string) string {
	q, err := syntax.Quote(arg, syntax.LangBash)
	if err != nil {
		return strconv.Quote(arg)
	}
	return q
}
