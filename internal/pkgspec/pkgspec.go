package pkgspec

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultVersion is used when a specifier carries no version.
const DefaultVersion = "latest"

var ErrInvalidSpecifier = errors.New("invalid package specifier")

// InvalidSpecifierError is returned when a package argument cannot be
// split into a valid name and optional version.
type InvalidSpecifierError struct {
	Value  string
	Reason string
}

func (e *InvalidSpecifierError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid package specifier %q", e.Value)
	}
	return fmt.Sprintf("invalid package specifier %q: %s", e.Value, e.Reason)
}

func (e *InvalidSpecifierError) Unwrap() error { return ErrInvalidSpecifier }

var (
	namePattern = regexp.MustCompile(`^(@[A-Za-z0-9~-][A-Za-z0-9._~-]*/)?[A-Za-z0-9~-][A-Za-z0-9._~-]*$`)
	tagPattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// Specifier is a parsed `[@scope/]name[@version]` argument.
type Specifier struct {
	Name    string
	Version string
}

// Parse splits raw into a package name and optional version, range or tag.
func Parse(raw string) (Specifier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Specifier{}, &InvalidSpecifierError{Value: raw, Reason: "empty"}
	}

	name, version := raw, ""
	// The version separator is the first @ after the (optional) scope prefix.
	if idx := strings.Index(raw[1:], "@"); idx >= 0 {
		name = raw[:idx+1]
		version = raw[idx+2:]
		if version == "" {
			return Specifier{}, &InvalidSpecifierError{Value: raw, Reason: "missing version after @"}
		}
	}

	if !namePattern.MatchString(name) {
		return Specifier{}, &InvalidSpecifierError{Value: raw, Reason: "malformed package name"}
	}
	if version != "" && !validVersion(version) {
		return Specifier{}, &InvalidSpecifierError{Value: raw, Reason: "version must be a semver version, range or dist-tag"}
	}

	return Specifier{Name: name, Version: version}, nil
}

// VersionOrLatest returns the requested version, defaulting to "latest".
func (s Specifier) VersionOrLatest() string {
	if s.Version == "" {
		return DefaultVersion
	}
	return s.Version
}

func (s Specifier) String() string {
	if s.Version == "" {
		return s.Name
	}
	return s.Name + "@" + s.Version
}

func validVersion(v string) bool {
	if tagPattern.MatchString(v) {
		return true
	}
	_, err := semver.NewConstraint(v)
	return err == nil
}
