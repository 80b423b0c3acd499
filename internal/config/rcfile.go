package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const RCFile = ".peerdepsrc.yaml"

// RC holds project-level defaults read from .peerdepsrc.yaml.
type RC struct {
	PackageManager string `yaml:"package_manager,omitempty"`
	Registry       string `yaml:"registry,omitempty"`
	Auth           string `yaml:"auth,omitempty"`
	Proxy          string `yaml:"proxy,omitempty"`
	MetadataSource string `yaml:"metadata_source,omitempty"`
	FailOnNoPeers  *bool  `yaml:"fail_on_no_peers,omitempty"`
	ExtraArgs      string `yaml:"extra_args,omitempty"`
}

// FindRC walks up from dir looking for .peerdepsrc.yaml.
func FindRC(dir string) (string, bool) {
	for {
		path := filepath.Join(dir, RCFile)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func LoadRC(path string) (*RC, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var rc RC
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &rc, nil
}

// values returns the keys set in the rc file, in the shape viper merges.
func (rc *RC) values() map[string]any {
	out := make(map[string]any)
	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	set(keyPackageManager, rc.PackageManager)
	set(keyRegistry, rc.Registry)
	set(keyAuth, rc.Auth)
	set(keyProxy, rc.Proxy)
	set(keyMetadataSource, rc.MetadataSource)
	set(keyExtraArgs, rc.ExtraArgs)
	if rc.FailOnNoPeers != nil {
		out[keyFailOnNoPeers] = *rc.FailOnNoPeers
	}
	return out
}
