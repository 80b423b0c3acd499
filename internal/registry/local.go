package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalClient reads manifests of packages already installed under
// Dir/node_modules. The installed version is the only one it knows.
type LocalClient struct {
	Dir string
}

func (c *LocalClient) FetchPackument(ctx context.Context, name string) (*Packument, error) {
	m, err := c.read(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Packument{
		Name:     m.Name,
		Versions: []string{m.Version},
		DistTags: map[string]string{"latest": m.Version},
	}, nil
}

// FetchManifest ignores version: whatever is installed is returned.
func (c *LocalClient) FetchManifest(ctx context.Context, name, _ string) (*Manifest, error) {
	return c.read(ctx, name)
}

func (c *LocalClient) read(ctx context.Context, name string) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(c.Dir, "node_modules", filepath.FromSlash(name), "package.json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NoManifestError{Name: name, Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = name
	}
	return &m, nil
}
