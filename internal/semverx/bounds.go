package semverx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// bound is one end of a version interval. A nil version means unbounded.
type bound struct {
	v         *semver.Version
	inclusive bool
}

// interval is the set of versions accepted by one comparator set.
type interval struct {
	lower bound
	upper bound
}

var (
	partialPattern = regexp.MustCompile(`^[=v]*(\d+|[xX*])(?:\.(\d+|[xX*]))?(?:\.(\d+|[xX*]))?(?:-([0-9A-Za-z.-]+))?(?:\+([0-9A-Za-z.-]+))?$`)
	hyphenPattern  = regexp.MustCompile(`^(\S+)\s+-\s+(\S+)$`)
	opSpacePattern = regexp.MustCompile(`(>=|<=|~>|>|<|=|~|\^)\s+`)
)

// partial is a possibly incomplete version such as "1", "1.2.x" or "1.2.3-rc.1".
type partial struct {
	major, minor, patch uint64
	// parts counts the numeric components given before the first wildcard.
	parts int
	pre   string
}

func parsePartial(s string) (partial, error) {
	if s == "" || s == "*" || s == "x" || s == "X" {
		return partial{}, nil
	}
	m := partialPattern.FindStringSubmatch(s)
	if m == nil {
		return partial{}, fmt.Errorf("invalid version %q", s)
	}

	var p partial
	nums := []*uint64{&p.major, &p.minor, &p.patch}
	for i, field := range m[1:4] {
		if field == "" || field == "x" || field == "X" || field == "*" {
			break
		}
		n, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return partial{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		*nums[i] = n
		p.parts++
	}
	if p.parts == 3 {
		p.pre = m[4]
	}
	return p, nil
}

func (p partial) floor() *semver.Version {
	return semver.New(p.major, p.minor, p.patch, p.pre, "")
}

// next returns the first version above every version matching the partial,
// e.g. 1.2 -> 1.3.0 and 1 -> 2.0.0.
func (p partial) next() *semver.Version {
	switch p.parts {
	case 1:
		return semver.New(p.major+1, 0, 0, "", "")
	case 2:
		return semver.New(p.major, p.minor+1, 0, "", "")
	default:
		return semver.New(p.major, p.minor, p.patch+1, "", "")
	}
}

// parseAlternative desugars one `||`-separated comparator set into an interval.
func parseAlternative(alt string) (interval, error) {
	alt = strings.TrimSpace(alt)

	if m := hyphenPattern.FindStringSubmatch(alt); m != nil {
		return hyphenInterval(m[1], m[2])
	}

	alt = opSpacePattern.ReplaceAllString(alt, "$1")
	var in interval
	for _, comp := range strings.Fields(alt) {
		c, err := comparatorInterval(comp)
		if err != nil {
			return interval{}, err
		}
		in = intersect(in, c)
	}
	return in, nil
}

func hyphenInterval(from, to string) (interval, error) {
	lo, err := parsePartial(from)
	if err != nil {
		return interval{}, err
	}
	hi, err := parsePartial(to)
	if err != nil {
		return interval{}, err
	}

	var in interval
	if lo.parts > 0 {
		in.lower = bound{v: lo.floor(), inclusive: true}
	}
	switch {
	case hi.parts == 3:
		in.upper = bound{v: hi.floor(), inclusive: true}
	case hi.parts > 0:
		in.upper = bound{v: hi.next()}
	}
	return in, nil
}

func comparatorInterval(comp string) (interval, error) {
	op := ""
	for _, candidate := range []string{">=", "<=", "~>", ">", "<", "=", "~", "^"} {
		if strings.HasPrefix(comp, candidate) {
			op = candidate
			break
		}
	}
	p, err := parsePartial(comp[len(op):])
	if err != nil {
		return interval{}, err
	}

	var in interval
	if p.parts == 0 {
		switch op {
		case ">", "<":
			return interval{}, fmt.Errorf("comparator %q matches no version", comp)
		default:
			return in, nil
		}
	}

	switch op {
	case "", "=":
		in.lower = bound{v: p.floor(), inclusive: true}
		if p.parts == 3 {
			in.upper = bound{v: p.floor(), inclusive: true}
		} else {
			in.upper = bound{v: p.next()}
		}
	case "~", "~>":
		in.lower = bound{v: p.floor(), inclusive: true}
		if p.parts == 1 {
			in.upper = bound{v: semver.New(p.major+1, 0, 0, "", "")}
		} else {
			in.upper = bound{v: semver.New(p.major, p.minor+1, 0, "", "")}
		}
	case "^":
		in.lower = bound{v: p.floor(), inclusive: true}
		switch {
		case p.major > 0 || p.parts == 1:
			in.upper = bound{v: semver.New(p.major+1, 0, 0, "", "")}
		case p.minor > 0 || p.parts == 2:
			in.upper = bound{v: semver.New(0, p.minor+1, 0, "", "")}
		default:
			in.upper = bound{v: semver.New(0, 0, p.patch+1, "", "")}
		}
	case ">":
		if p.parts == 3 {
			in.lower = bound{v: p.floor()}
		} else {
			in.lower = bound{v: p.next(), inclusive: true}
		}
	case ">=":
		in.lower = bound{v: p.floor(), inclusive: true}
	case "<":
		in.upper = bound{v: p.floor()}
	case "<=":
		if p.parts == 3 {
			in.upper = bound{v: p.floor(), inclusive: true}
		} else {
			in.upper = bound{v: p.next()}
		}
	}
	return in, nil
}

func intersect(a, b interval) interval {
	out := a
	if compareLower(b.lower, a.lower) > 0 {
		out.lower = b.lower
	}
	if compareUpper(b.upper, a.upper) < 0 {
		out.upper = b.upper
	}
	return out
}

// compareLower orders lower bounds; an unbounded lower end sorts first and an
// exclusive bound sorts above an inclusive one at the same version.
func compareLower(a, b bound) int {
	switch {
	case a.v == nil && b.v == nil:
		return 0
	case a.v == nil:
		return -1
	case b.v == nil:
		return 1
	}
	if c := a.v.Compare(b.v); c != 0 {
		return c
	}
	switch {
	case a.inclusive == b.inclusive:
		return 0
	case a.inclusive:
		return -1
	default:
		return 1
	}
}

// compareUpper orders upper bounds; an unbounded upper end sorts last and an
// exclusive bound sorts below an inclusive one at the same version.
func compareUpper(a, b bound) int {
	switch {
	case a.v == nil && b.v == nil:
		return 0
	case a.v == nil:
		return 1
	case b.v == nil:
		return -1
	}
	if c := a.v.Compare(b.v); c != 0 {
		return c
	}
	switch {
	case a.inclusive == b.inclusive:
		return 0
	case a.inclusive:
		return 1
	default:
		return -1
	}
}

// String renders the interval as an npm range, or "" when it is unbounded.
func (in interval) String() string {
	if in.lower.v != nil && in.upper.v != nil &&
		in.lower.inclusive && in.upper.inclusive && in.lower.v.Equal(in.upper.v) {
		return formatVersion(in.lower.v)
	}

	var parts []string
	if in.lower.v != nil {
		op := ">"
		if in.lower.inclusive {
			op = ">="
		}
		parts = append(parts, op+formatVersion(in.lower.v))
	}
	if in.upper.v != nil {
		op := "<"
		if in.upper.inclusive {
			op = "<="
		}
		parts = append(parts, op+formatVersion(in.upper.v))
	}
	return strings.Join(parts, " ")
}

// formatVersion drops a bare "-0" pre-release, which npm ranges use only to
// admit pre-releases of the floor version.
func formatVersion(v *semver.Version) string {
	if v.Prerelease() == "0" {
		return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
	}
	return v.String()
}
