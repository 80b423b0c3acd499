package registry

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const DefaultUserAgent = "install-peerdeps"

// Options configures a registry Client.
type Options struct {
	// Registry is the base URL, e.g. https://registry.npmjs.org.
	Registry string
	// Auth is sent as a bearer token when set.
	Auth string
	// Proxy overrides HTTP_PROXY/HTTPS_PROXY when set.
	Proxy     string
	UserAgent string
}

// Client reads packuments from an npm-compatible registry over HTTP.
// Packuments are cached for the life of the Client.
type Client struct {
	registry   string
	auth       string
	userAgent  string
	httpClient *http.Client

	mu         sync.Mutex
	packuments map[string]*Packument
}

func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.Registry, "/")
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("registry url: %w", err)
	}

	proxy := http.ProxyFromEnvironment
	if opts.Proxy != "" {
		u, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("proxy url: %w", err)
		}
		proxy = http.ProxyURL(u)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return &Client{
		registry:  base,
		auth:      opts.Auth,
		userAgent: ua,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy: proxy,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		packuments: make(map[string]*Packument),
	}, nil
}

func (c *Client) FetchPackument(ctx context.Context, name string) (*Packument, error) {
	c.mu.Lock()
	p, ok := c.packuments[name]
	c.mu.Unlock()
	if ok {
		return p, nil
	}

	p = new(Packument)
	if err := c.getJSON(ctx, name, EncodeName(name), p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = name
	}

	c.mu.Lock()
	c.packuments[name] = p
	c.mu.Unlock()
	return p, nil
}

// FetchManifest returns the manifest from the cached packument, falling back
// to the per-version document.
func (c *Client) FetchManifest(ctx context.Context, name, version string) (*Manifest, error) {
	c.mu.Lock()
	p, ok := c.packuments[name]
	c.mu.Unlock()
	if ok {
		if m, ok := p.Manifest(version); ok {
			return m, nil
		}
	}

	var m Manifest
	path := EncodeName(name) + "/" + url.PathEscape(version)
	if err := c.getJSON(ctx, name, path, &m); err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			return nil, &NoManifestError{Name: name, Version: version}
		}
		return nil, err
	}
	return &m, nil
}

func (c *Client) getJSON(ctx context.Context, name, path string, v any) error {
	u := c.registry + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request for %s: %w", u, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.auth != "" {
		req.Header.Set("Authorization", "Bearer "+c.auth)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &RegistryConnectionError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &PackageNotFoundError{Name: name}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &RegistryConnectionError{URL: u, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &RegistryConnectionError{URL: u, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// EncodeName escapes a package name for use as a registry path. The scope's
// leading "@" is kept, the separating "/" becomes %2F.
func EncodeName(name string) string {
	if strings.HasPrefix(name, "@") {
		return "@" + url.QueryEscape(name[1:])
	}
	return url.QueryEscape(name)
}
