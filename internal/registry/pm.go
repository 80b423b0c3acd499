package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Abraxas-365/install-peerdeps/internal/runner"
)

// OutputFunc runs a command and returns its standard output.
type OutputFunc func(ctx context.Context, name string, args []string) ([]byte, error)

// PackageManagerClient asks the package manager itself for metadata
// (`npm view --json`, `yarn info --json`), so its registry, auth and proxy
// settings apply.
type PackageManagerClient struct {
	PackageManager string
	// Output defaults to runner.Output.
	Output OutputFunc
}

type viewJSON struct {
	Name     string            `json:"name"`
	Version  string            `json:"version"`
	Versions stringList        `json:"versions"`
	DistTags map[string]string `json:"dist-tags"`
}

// stringList accepts a JSON string or array of strings; npm prints a bare
// string when only one version is published.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = stringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

func (c *PackageManagerClient) FetchPackument(ctx context.Context, name string) (*Packument, error) {
	out, err := c.view(ctx, name, name)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, &PackageNotFoundError{Name: name}
	}

	var v viewJSON
	if err := json.Unmarshal(out, &v); err != nil {
		return nil, fmt.Errorf("parse %s output for %s: %w", c.PackageManager, name, err)
	}
	p := &Packument{
		Name:     v.Name,
		Versions: []string(v.Versions),
		DistTags: v.DistTags,
	}
	if p.Name == "" {
		p.Name = name
	}
	if len(p.Versions) == 0 && v.Version != "" {
		p.Versions = []string{v.Version}
	}
	sortVersions(p.Versions)
	return p, nil
}

func (c *PackageManagerClient) FetchManifest(ctx context.Context, name, version string) (*Manifest, error) {
	out, err := c.view(ctx, name, name+"@"+version)
	if err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			return nil, &NoManifestError{Name: name, Version: version}
		}
		return nil, err
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, &NoManifestError{Name: name, Version: version}
	}

	var m Manifest
	if err := json.Unmarshal(out, &m); err != nil {
		return nil, fmt.Errorf("parse %s output for %s@%s: %w", c.PackageManager, name, version, err)
	}
	if m.Name == "" {
		m.Name = name
	}
	if m.Version == "" {
		m.Version = version
	}
	return &m, nil
}

func (c *PackageManagerClient) view(ctx context.Context, name, query string) ([]byte, error) {
	subcommand := "view"
	if c.PackageManager == "yarn" {
		subcommand = "info"
	}
	output := c.Output
	if output == nil {
		output = runner.Output
	}

	out, err := output(ctx, c.PackageManager, []string{subcommand, query, "--json"})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, runner.ErrSpawn) {
			return nil, err
		}
		var procErr *runner.ProcessError
		if errors.As(err, &procErr) {
			if bytes.Contains(out, []byte("E404")) || bytes.Contains(procErr.Stderr, []byte("E404")) {
				return nil, &PackageNotFoundError{Name: name}
			}
		}
		return nil, &RegistryConnectionError{Err: err}
	}
	return unwrapYarn(out), nil
}

// unwrapYarn returns the data member of yarn's {"type":"inspect","data":...}
// line, skipping warning lines. Other output is returned unchanged.
func unwrapYarn(out []byte) []byte {
	dec := json.NewDecoder(bytes.NewReader(out))
	for {
		var envelope struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := dec.Decode(&envelope); err != nil {
			return out
		}
		if envelope.Type == "inspect" {
			return envelope.Data
		}
		if envelope.Type == "" {
			return out
		}
	}
}
