package semverx

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// zeroSuffix is appended by npm to some pre-release floors and package names;
// package managers reject it in install arguments.
const zeroSuffix = "-0"

// PickVersionToken returns the install argument for a peer dependency with
// the given declared range: "name@range", or the bare name when any version
// is acceptable or the range cannot be interpreted.
//
// Simple ranges are passed through verbatim. Compound ranges are flattened to
// the alternative with the highest lower bound, so "^4.0.1 || ^3" becomes
// ">=4.0.1 <5.0.0".
func PickVersionToken(name, rng string) string {
	name = strings.TrimSuffix(name, zeroSuffix)
	rng = strings.TrimSpace(rng)

	switch rng {
	case "", "*", "x", "X":
		return name
	}

	if !strings.Contains(rng, "||") && !strings.ContainsAny(rng, " \t") {
		return name + "@" + trimZeroPrerelease(rng)
	}

	if _, err := semver.NewConstraint(rng); err != nil {
		return name
	}

	best, ok := highestAlternative(rng)
	if !ok {
		return name
	}
	r := best.String()
	if r == "" {
		return name
	}
	return name + "@" + r
}

// highestAlternative picks the `||` alternative with the highest lower bound,
// breaking ties on the higher upper bound and then on declaration order.
func highestAlternative(rng string) (interval, bool) {
	var (
		best  interval
		found bool
	)
	for _, alt := range strings.Split(rng, "||") {
		in, err := parseAlternative(alt)
		if err != nil || in.empty() {
			continue
		}
		if !found {
			best, found = in, true
			continue
		}
		c := compareLower(in.lower, best.lower)
		if c > 0 || (c == 0 && compareUpper(in.upper, best.upper) > 0) {
			best = in
		}
	}
	return best, found
}

func (in interval) empty() bool {
	if in.lower.v == nil || in.upper.v == nil {
		return false
	}
	c := in.lower.v.Compare(in.upper.v)
	return c > 0 || (c == 0 && !(in.lower.inclusive && in.upper.inclusive))
}

// trimZeroPrerelease drops a trailing "-0" from a single-comparator range
// when it is the whole pre-release, as in "^16.0.0-0". Other pre-releases
// ending in "-0", such as "1.0.0-beta-0", are kept.
func trimZeroPrerelease(rng string) string {
	if !strings.HasSuffix(rng, zeroSuffix) {
		return rng
	}
	v, err := semver.NewVersion(strings.TrimLeft(rng, "^~<>="))
	if err != nil || v.Prerelease() != "0" {
		return rng
	}
	return strings.TrimSuffix(rng, zeroSuffix)
}
