package command

import (
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/Abraxas-365/install-peerdeps/internal/config"
)

var airbnbPeers = []string{
	"eslint@>=8.2.0 <9.0.0",
	"eslint-plugin-import@^2.25.3",
	"eslint-plugin-react-hooks@^4.3.0",
}

func newConfig(pm config.PackageManager) config.Install {
	return config.Install{
		PackageName:    "eslint-config-airbnb",
		Version:        "latest",
		PackageManager: pm,
	}
}

func TestSynthesize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*config.Install)
		pm     config.PackageManager
		want   []string
	}{
		{
			name: "npm saves by default",
			pm:   config.NPM,
			want: []string{"install", "eslint-config-airbnb@19.0.4", "eslint@>=8.2.0 <9.0.0", "eslint-plugin-import@^2.25.3", "eslint-plugin-react-hooks@^4.3.0", "--save"},
		},
		{
			name:   "npm dev",
			pm:     config.NPM,
			mutate: func(c *config.Install) { c.Dev = true },
			want:   []string{"install", "eslint-config-airbnb@19.0.4", "eslint@>=8.2.0 <9.0.0", "eslint-plugin-import@^2.25.3", "eslint-plugin-react-hooks@^4.3.0", "--save-dev"},
		},
		{
			name:   "npm silent",
			pm:     config.NPM,
			mutate: func(c *config.Install) { c.Silent = true },
			want:   []string{"install", "eslint-config-airbnb@19.0.4", "eslint@>=8.2.0 <9.0.0", "eslint-plugin-import@^2.25.3", "eslint-plugin-react-hooks@^4.3.0", "--no-save"},
		},
		{
			name:   "npm global",
			pm:     config.NPM,
			mutate: func(c *config.Install) { c.Global = true },
			want:   []string{"install", "--global", "eslint-config-airbnb@19.0.4", "eslint@>=8.2.0 <9.0.0", "eslint-plugin-import@^2.25.3", "eslint-plugin-react-hooks@^4.3.0"},
		},
		{
			name: "yarn",
			pm:   config.Yarn,
			want: []string{"add", "eslint-config-airbnb@19.0.4", "eslint@>=8.2.0 <9.0.0", "eslint-plugin-import@^2.25.3", "eslint-plugin-react-hooks@^4.3.0"},
		},
		{
			name:   "yarn dev",
			pm:     config.Yarn,
			mutate: func(c *config.Install) { c.Dev = true },
			want:   []string{"add", "eslint-config-airbnb@19.0.4", "eslint@>=8.2.0 <9.0.0", "eslint-plugin-import@^2.25.3", "eslint-plugin-react-hooks@^4.3.0", "--dev"},
		},
		{
			name:   "yarn global",
			pm:     config.Yarn,
			mutate: func(c *config.Install) { c.Global = true },
			want:   []string{"global", "add", "eslint-config-airbnb@19.0.4", "eslint@>=8.2.0 <9.0.0", "eslint-plugin-import@^2.25.3", "eslint-plugin-react-hooks@^4.3.0"},
		},
		{
			name: "pnpm has no persistence flag",
			pm:   config.PNPM,
			want: []string{"install", "eslint-config-airbnb@19.0.4", "eslint@>=8.2.0 <9.0.0", "eslint-plugin-import@^2.25.3", "eslint-plugin-react-hooks@^4.3.0"},
		},
		{
			name:   "pnpm dev",
			pm:     config.PNPM,
			mutate: func(c *config.Install) { c.Dev = true },
			want:   []string{"install", "eslint-config-airbnb@19.0.4", "eslint@>=8.2.0 <9.0.0", "eslint-plugin-import@^2.25.3", "eslint-plugin-react-hooks@^4.3.0", "--save-dev"},
		},
		{
			name:   "only peers with extra args",
			pm:     config.NPM,
			mutate: func(c *config.Install) { c.OnlyPeers = true; c.ExtraArgs = []string{"--legacy-peer-deps", ""} },
			want:   []string{"install", "eslint@>=8.2.0 <9.0.0", "eslint-plugin-import@^2.25.3", "eslint-plugin-react-hooks@^4.3.0", "--save", "--legacy-peer-deps"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig(tt.pm)
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			plan := Synthesize(cfg, "19.0.4", airbnbPeers)
			if plan.PackageManager != tt.pm {
				t.Errorf("PackageManager = %q; want %q", plan.PackageManager, tt.pm)
			}
			if !slices.Equal(plan.Args, tt.want) {
				t.Errorf("Args = %q\nwant %q", plan.Args, tt.want)
			}
			if slices.Contains(plan.Args, "") {
				t.Errorf("Args contain an empty token: %q", plan.Args)
			}
		})
	}
}

func TestSynthesize_OnlyPeersOmitsPackage(t *testing.T) {
	t.Parallel()
	cfg := newConfig(config.NPM)
	cfg.OnlyPeers = true

	plan := Synthesize(cfg, "19.0.4", airbnbPeers)
	pkg := regexp.MustCompile(`\beslint-config-airbnb\b`)
	for _, arg := range plan.Args {
		if pkg.MatchString(arg) {
			t.Errorf("Args contain %q; want only peers", arg)
		}
	}
	for _, peer := range airbnbPeers {
		if !slices.Contains(plan.Args, peer) {
			t.Errorf("Args missing peer %q", peer)
		}
	}
}

func TestSynthesize_PersistenceFlagsExclusive(t *testing.T) {
	t.Parallel()
	persistence := []string{"--save", "--save-dev", "--dev", "--no-save"}
	for _, pm := range []config.PackageManager{config.NPM, config.Yarn, config.PNPM} {
		for _, dev := range []bool{false, true} {
			for _, silent := range []bool{false, true} {
				for _, global := range []bool{false, true} {
					cfg := newConfig(pm)
					cfg.Dev, cfg.Silent, cfg.Global = dev, silent, global
					plan := Synthesize(cfg, "1.0.0", nil)

					n := 0
					for _, arg := range plan.Args {
						if slices.Contains(persistence, arg) {
							n++
						}
					}
					if n > 1 {
						t.Errorf("%s dev=%v silent=%v global=%v: %d persistence flags in %q", pm, dev, silent, global, n, plan.Args)
					}
				}
			}
		}
	}
}

func TestSynthesize_StripsZeroSuffix(t *testing.T) {
	t.Parallel()
	plan := Synthesize(newConfig(config.NPM), "1.0.0", []string{"enzyme-adapter-react-16-0"})
	if slices.Contains(plan.Args, "enzyme-adapter-react-16-0") {
		t.Errorf("Args = %q; want -0 suffix stripped", plan.Args)
	}
	if !slices.Contains(plan.Args, "enzyme-adapter-react-16") {
		t.Errorf("Args = %q; want enzyme-adapter-react-16", plan.Args)
	}
}

func TestSynthesize_KeepsPrereleaseRanges(t *testing.T) {
	t.Parallel()
	cfg := newConfig(config.NPM)
	cfg.OnlyPeers = true
	plan := Synthesize(cfg, "1.0.0", []string{
		"dep@1.0.0-beta-0",
		"@scope/ui-0@^2.0.0",
		"@scope/plain",
		"lib-0",
	})
	want := []string{"install", "dep@1.0.0-beta-0", "@scope/ui@^2.0.0", "@scope/plain", "lib", "--save"}
	if !slices.Equal(plan.Args, want) {
		t.Errorf("Args = %q; want %q", plan.Args, want)
	}
}

func TestPlanString(t *testing.T) {
	t.Parallel()
	plan := Plan{PackageManager: config.NPM, Args: []string{"install", "foo@1.0.0", "bar@2.0.0", "--save"}}
	if got, want := plan.String(), "npm install foo@1.0.0 bar@2.0.0 --save"; got != want {
		t.Errorf("String() = %q; want %q", got, want)
	}

	cfg := newConfig(config.Yarn)
	cfg.Global = true
	yarn := Synthesize(cfg, "19.0.4", nil)
	if got := yarn.String(); !strings.HasPrefix(got, "yarn global add ") {
		t.Errorf("String() = %q; want prefix %q", got, "yarn global add ")
	}

	spaced := Plan{PackageManager: config.NPM, Args: []string{"install", "eslint@>=8.2.0 <9.0.0"}}
	got := spaced.String()
	if strings.Count(got, " ") < 2 || !strings.Contains(got, "eslint@>=8.2.0 <9.0.0") {
		t.Errorf("String() = %q; want the range kept as one quoted word", got)
	}
	if strings.HasSuffix(got, "eslint@>=8.2.0 <9.0.0") {
		t.Errorf("String() = %q; want the spaced argument quoted", got)
	}
}
