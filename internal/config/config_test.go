package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/Abraxas-365/install-peerdeps/internal/pkgspec"
	"github.com/spf13/pflag"
)

func TestOptionsBuild_PackageManager(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		opts Options
		want PackageManager
	}{
		{"default", Options{}, NPM},
		{"preferred", Options{PackageManager: PNPM}, PNPM},
		{"yarn flag", Options{Yarn: true}, Yarn},
		{"pnpm flag overrides preference", Options{PackageManager: Yarn, PNPM: true}, PNPM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.opts.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if cfg.PackageManager != tt.want {
				t.Errorf("PackageManager = %q; want %q", cfg.PackageManager, tt.want)
			}
		})
	}
}

func TestOptionsBuild_Conflicts(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		opts Options
	}{
		{"yarn and pnpm", Options{Yarn: true, PNPM: true}},
		{"yarn and silent", Options{Yarn: true, Silent: true}},
		{"preferred yarn and silent", Options{PackageManager: Yarn, Silent: true}},
		{"dev and silent", Options{Dev: true, Silent: true}},
		{"dev and global", Options{Dev: true, Global: true}},
		{"unknown manager", Options{PackageManager: "bun"}},
		{"unknown source", Options{MetadataSource: "cache"}},
		{"bad registry", Options{Registry: "registry.example.com"}},
		{"bad proxy", Options{Proxy: "::"}},
		{"unterminated extra args", Options{ExtraArgs: `--foo "bar`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.Build()
			if !errors.Is(err, ErrInvalidOptions) {
				t.Fatalf("Build error = %v; want ErrInvalidOptions", err)
			}
		})
	}
}

func TestOptionsBuild_Values(t *testing.T) {
	t.Parallel()
	opts := Options{
		Package:   pkgspec.Specifier{Name: "eslint-config-airbnb"},
		Registry:  "https://registry.example.com/",
		ExtraArgs: `--legacy-peer-deps --tag "a b"`,
		Silent:    true,
	}

	cfg, err := opts.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cfg.Version != "latest" {
		t.Errorf("Version = %q; want %q", cfg.Version, "latest")
	}
	if cfg.Registry != "https://registry.example.com" {
		t.Errorf("Registry = %q; want trailing slash trimmed", cfg.Registry)
	}
	if want := []string{"--legacy-peer-deps", "--tag", "a b"}; !slices.Equal(cfg.ExtraArgs, want) {
		t.Errorf("ExtraArgs = %q; want %q", cfg.ExtraArgs, want)
	}
	if cfg.MetadataSource != SourceRegistry {
		t.Errorf("MetadataSource = %q; want %q", cfg.MetadataSource, SourceRegistry)
	}
	if !cfg.Silent {
		t.Error("expected Silent = true")
	}
}

func TestLoadRC_UnknownField(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), RCFile)
	if err := os.WriteFile(path, []byte("registy: https://typo.example.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRC(path); err == nil {
		t.Fatal("expected error for unknown rc field")
	}
}

func TestLoadRC_Empty(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), RCFile)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	rc, err := LoadRC(path)
	if err != nil {
		t.Fatalf("LoadRC: %v", err)
	}
	if len(rc.values()) != 0 {
		t.Errorf("values() = %v; want empty", rc.values())
	}
}

func TestFindRC_WalksUp(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	nested := filepath.Join(root, "packages", "web")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, RCFile)
	if err := os.WriteFile(want, []byte("package_manager: pnpm\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, ok := FindRC(nested)
	if !ok {
		t.Fatal("FindRC did not find rc file")
	}
	if got != want {
		t.Errorf("FindRC = %q; want %q", got, want)
	}
}

func TestLoadSettings_Precedence(t *testing.T) {
	dir := t.TempDir()
	rc := "package_manager: pnpm\nregistry: https://rc.example.com\nproxy: http://proxy.rc:8080\nfail_on_no_peers: true\n"
	if err := os.WriteFile(filepath.Join(dir, RCFile), []byte(rc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PEERDEPS_REGISTRY", "https://env.example.com")
	t.Setenv("PEERDEPS_PROXY", "http://proxy.env:8080")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("registry", "", "")
	flags.String("proxy", "", "")
	if err := flags.Parse([]string{"--proxy", "http://proxy.flag:8080"}); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(dir, flags)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.PackageManager != PNPM {
		t.Errorf("PackageManager = %q; want rc value %q", s.PackageManager, PNPM)
	}
	if s.Registry != "https://env.example.com" {
		t.Errorf("Registry = %q; want env value", s.Registry)
	}
	if s.Proxy != "http://proxy.flag:8080" {
		t.Errorf("Proxy = %q; want flag value", s.Proxy)
	}
	if !s.FailOnNoPeers {
		t.Error("expected FailOnNoPeers from rc file")
	}
	if s.RCPath == "" {
		t.Error("expected RCPath to be set")
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.PackageManager != NPM {
		t.Errorf("PackageManager = %q; want %q", s.PackageManager, NPM)
	}
	if s.Registry != DefaultRegistry {
		t.Errorf("Registry = %q; want %q", s.Registry, DefaultRegistry)
	}
	if s.MetadataSource != SourceRegistry {
		t.Errorf("MetadataSource = %q; want %q", s.MetadataSource, SourceRegistry)
	}
}
