package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read for settings,
// e.g. PEERDEPS_REGISTRY.
const EnvPrefix = "PEERDEPS"

const (
	keyPackageManager = "package_manager"
	keyRegistry       = "registry"
	keyAuth           = "auth"
	keyProxy          = "proxy"
	keyMetadataSource = "metadata_source"
	keyFailOnNoPeers  = "fail_on_no_peers"
	keyExtraArgs      = "extra_args"
)

// flagKeys maps command-line flag names to settings keys.
var flagKeys = map[string]string{
	"registry":         keyRegistry,
	"auth":             keyAuth,
	"proxy":            keyProxy,
	"metadata-source":  keyMetadataSource,
	"fail-on-no-peers": keyFailOnNoPeers,
	"extra-args":       keyExtraArgs,
}

// Settings are the persistent, non-per-run options. Precedence from lowest to
// highest: defaults, .peerdepsrc.yaml, PEERDEPS_* environment, flags.
type Settings struct {
	PackageManager PackageManager
	Registry       string
	Auth           string
	Proxy          string
	MetadataSource MetadataSource
	FailOnNoPeers  bool
	ExtraArgs      string

	// RCPath is the rc file that was loaded, if any.
	RCPath string
}

// LoadSettings layers the rc file found from dir, the environment and flags.
// flags may be nil.
func LoadSettings(dir string, flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	v.SetDefault(keyPackageManager, string(NPM))
	v.SetDefault(keyRegistry, DefaultRegistry)
	v.SetDefault(keyMetadataSource, string(SourceRegistry))
	v.SetDefault(keyFailOnNoPeers, false)

	var s Settings
	if path, ok := FindRC(dir); ok {
		rc, err := LoadRC(path)
		if err != nil {
			return Settings{}, err
		}
		if err := v.MergeConfigMap(rc.values()); err != nil {
			return Settings{}, fmt.Errorf("merge %s: %w", path, err)
		}
		s.RCPath = path
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Settings{}, fmt.Errorf("bind --%s: %w", name, err)
				}
			}
		}
	}

	s.PackageManager = PackageManager(strings.ToLower(v.GetString(keyPackageManager)))
	s.Registry = v.GetString(keyRegistry)
	s.Auth = v.GetString(keyAuth)
	s.Proxy = v.GetString(keyProxy)
	s.MetadataSource = MetadataSource(v.GetString(keyMetadataSource))
	s.FailOnNoPeers = v.GetBool(keyFailOnNoPeers)
	s.ExtraArgs = v.GetString(keyExtraArgs)
	return s, nil
}
