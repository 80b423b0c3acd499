// Package registry fetches package metadata: the list of published versions
// and dist-tags of a package (its packument) and the manifest of one
// concrete version.
package registry

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"
)

var (
	ErrPackageNotFound    = errors.New("package not found")
	ErrRegistryConnection = errors.New("registry connection failed")
	ErrNoManifest         = errors.New("no manifest")
)

// PackageNotFoundError is returned when the registry has no such package.
type PackageNotFoundError struct {
	Name string
}

func (e *PackageNotFoundError) Error() string {
	return "That package doesn't exist. Did you mean to specify a custom registry?"
}

func (e *PackageNotFoundError) Unwrap() error { return ErrPackageNotFound }

// RegistryConnectionError covers transport failures and unexpected status
// codes. Status is zero when no response was received.
type RegistryConnectionError struct {
	URL    string
	Status int
	Err    error
}

func (e *RegistryConnectionError) Error() string {
	return "There was a problem connecting to the registry."
}

func (e *RegistryConnectionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRegistryConnection}
	}
	return []error{ErrRegistryConnection, e.Err}
}

// NoManifestError is returned when no manifest exists for name@version.
type NoManifestError struct {
	Name    string
	Version string
	Path    string
}

func (e *NoManifestError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("no manifest for %s at %s", e.Name, e.Path)
	}
	return fmt.Sprintf("no manifest for %s@%s", e.Name, e.Version)
}

func (e *NoManifestError) Unwrap() error { return ErrNoManifest }

// Fetcher is implemented by every metadata source.
type Fetcher interface {
	FetchPackument(ctx context.Context, name string) (*Packument, error)
	FetchManifest(ctx context.Context, name, version string) (*Manifest, error)
}

// Manifest is the package.json of one published version.
type Manifest struct {
	Name             string       `json:"name"`
	Version          string       `json:"version"`
	PeerDependencies Dependencies `json:"peerDependencies,omitempty"`
}

// Packument lists the published versions and dist-tags of a package.
type Packument struct {
	Name     string
	Versions []string
	DistTags map[string]string

	manifests map[string]json.RawMessage
}

type packumentJSON struct {
	Name     string                     `json:"name"`
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]json.RawMessage `json:"versions"`
}

func (p *Packument) UnmarshalJSON(data []byte) error {
	var raw packumentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Name = raw.Name
	p.DistTags = raw.DistTags
	p.manifests = raw.Versions
	p.Versions = make([]string, 0, len(raw.Versions))
	for v := range raw.Versions {
		p.Versions = append(p.Versions, v)
	}
	sortVersions(p.Versions)
	return nil
}

// Manifest returns the embedded manifest of version, if the packument
// carried one.
func (p *Packument) Manifest(version string) (*Manifest, bool) {
	raw, ok := p.manifests[version]
	if !ok {
		return nil, false
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	if m.Name == "" {
		m.Name = p.Name
	}
	if m.Version == "" {
		m.Version = version
	}
	return &m, true
}

// sortVersions orders semver versions ascending; anything unparseable sorts
// first, lexically.
func sortVersions(versions []string) {
	slices.SortFunc(versions, func(a, b string) int {
		va, errA := semver.NewVersion(a)
		vb, errB := semver.NewVersion(b)
		switch {
		case errA != nil && errB != nil:
			return cmp.Compare(a, b)
		case errA != nil:
			return -1
		case errB != nil:
			return 1
		}
		return va.Compare(vb)
	})
}
