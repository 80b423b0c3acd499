// Package semverx resolves requested versions against a package's published
// versions and turns peer-dependency ranges into installable version tokens.
package semverx

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// LatestTag is the dist-tag used when no version is requested.
const LatestTag = "latest"

var ErrVersionNotFound = errors.New("version or tag not found")

// VersionNotFoundError is returned when a requested version matches neither a
// published version nor a dist-tag.
type VersionNotFoundError struct {
	Requested string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("that version or tag does not exist: %q", e.Requested)
}

func (e *VersionNotFoundError) Unwrap() error { return ErrVersionNotFound }

// Resolve returns the concrete version selected by requested.
//
// An exact published version wins outright. Otherwise requested is treated as
// a semver constraint and the highest satisfying version is chosen; if nothing
// satisfies it, requested is looked up as a dist-tag.
func Resolve(versions []string, distTags map[string]string, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		requested = LatestTag
	}

	if slices.Contains(versions, requested) {
		return requested, nil
	}

	if c, err := semver.NewConstraint(requested); err == nil {
		var best *semver.Version
		bestRaw := ""
		for _, raw := range versions {
			v, err := semver.NewVersion(raw)
			if err != nil {
				continue
			}
			if !c.Check(v) {
				continue
			}
			if best == nil || v.GreaterThan(best) {
				best, bestRaw = v, raw
			}
		}
		if best != nil {
			return bestRaw, nil
		}
	}

	if target, ok := distTags[requested]; ok && slices.Contains(versions, target) {
		return target, nil
	}

	return "", &VersionNotFoundError{Requested: requested}
}
