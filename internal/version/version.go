// Package version implements the package-version algebra: parsing,
// strict total ordering, and rendering of upstream version strings of
// the form "[epoch:]c1.c2...cn-release".
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/open-edge-platform/repodb/internal/errs"
)

// Component is one dot-separated token of the upstream version. It holds
// either an integer or a string, never both.
type Component struct {
	IsInt bool
	Int   int64
	Str   string
}

func intComponent(v int64) Component  { return Component{IsInt: true, Int: v} }
func strComponent(s string) Component { return Component{Str: s} }

func (c Component) String() string {
	if c.IsInt {
		return strconv.FormatInt(c.Int, 10)
	}
	return c.Str
}

// Version is a parsed package version: an optional epoch, an ordered
// sequence of upstream components, and a strictly positive release.
type Version struct {
	HasEpoch   bool
	Epoch      int64
	Components []Component
	Release    int64
}

// Parse splits s into a Version. It fails with errs.ErrVersionSyntax on an
// empty upstream part, a non-integer or non-positive release, or a
// non-integer epoch.
func Parse(s string) (Version, error) {
	rest := s

	var v Version
	if idx := strings.IndexByte(rest, ':'); idx >= 0 {
		epochStr := rest[:idx]
		epoch, err := strconv.ParseInt(epochStr, 10, 64)
		if err != nil || epoch < 0 {
			return Version{}, fmt.Errorf("%w: bad epoch %q in %q", errs.ErrVersionSyntax, epochStr, s)
		}
		v.HasEpoch = true
		v.Epoch = epoch
		rest = rest[idx+1:]
	}

	dash := strings.LastIndexByte(rest, '-')
	if dash < 0 {
		return Version{}, fmt.Errorf("%w: missing release in %q", errs.ErrVersionSyntax, s)
	}
	upstream := rest[:dash]
	releaseStr := rest[dash+1:]

	if upstream == "" {
		return Version{}, fmt.Errorf("%w: empty upstream version in %q", errs.ErrVersionSyntax, s)
	}

	release, err := strconv.ParseInt(releaseStr, 10, 64)
	if err != nil || release < 1 {
		return Version{}, fmt.Errorf("%w: bad release %q in %q", errs.ErrVersionSyntax, releaseStr, s)
	}
	v.Release = release

	for _, tok := range strings.Split(upstream, ".") {
		if tok == "" {
			return Version{}, fmt.Errorf("%w: empty component in %q", errs.ErrVersionSyntax, s)
		}
		if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
			v.Components = append(v.Components, intComponent(n))
		} else {
			v.Components = append(v.Components, strComponent(tok))
		}
	}

	return v, nil
}

// String renders v back into its wire form, writing every numeric field
// (epoch, integer components, release) in plain decimal with no padding.
// Parse(s).String() == s holds when those numeric fields of s carry no
// leading zeros or sign; other spellings are not preserved ("1.01-01"
// renders as "1.1-1").
func (v Version) String() string {
	var b strings.Builder
	if v.HasEpoch {
		b.WriteString(strconv.FormatInt(v.Epoch, 10))
		b.WriteByte(':')
	}
	for i, c := range v.Components {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(c.String())
	}
	b.WriteByte('-')
	b.WriteString(strconv.FormatInt(v.Release, 10))
	return b.String()
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// other, under the total order in spec §3: epoch first (absent < present,
// then numeric), then components lexicographically with the mixed-type
// tie-break (int < string when types differ, shorter < longer on an
// equal-length prefix), then release.
func (v Version) Compare(other Version) int {
	if c := compareEpoch(v, other); c != 0 {
		return c
	}
	n := len(v.Components)
	if len(other.Components) < n {
		n = len(other.Components)
	}
	for i := 0; i < n; i++ {
		if c := compareComponent(v.Components[i], other.Components[i]); c != 0 {
			return c
		}
	}
	if len(v.Components) != len(other.Components) {
		if len(v.Components) < len(other.Components) {
			return -1
		}
		return 1
	}
	switch {
	case v.Release < other.Release:
		return -1
	case v.Release > other.Release:
		return 1
	default:
		return 0
	}
}

func compareEpoch(a, b Version) int {
	switch {
	case !a.HasEpoch && !b.HasEpoch:
		return 0
	case !a.HasEpoch && b.HasEpoch:
		return -1
	case a.HasEpoch && !b.HasEpoch:
		return 1
	case a.Epoch < b.Epoch:
		return -1
	case a.Epoch > b.Epoch:
		return 1
	default:
		return 0
	}
}

// compareComponent implements the mixed-type tie-break: numeric vs
// numeric compares as integers, string vs string compares lexically, and
// a numeric component is always less than a string component regardless
// of value.
func compareComponent(a, b Component) int {
	switch {
	case a.IsInt && b.IsInt:
		switch {
		case a.Int < b.Int:
			return -1
		case a.Int > b.Int:
			return 1
		default:
			return 0
		}
	case !a.IsInt && !b.IsInt:
		return strings.Compare(a.Str, b.Str)
	case a.IsInt && !b.IsInt:
		return -1
	default:
		return 1
	}
}

// Equal reports structural equality: same epoch presence/value, same
// component sequence, same release.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0 &&
		v.HasEpoch == other.HasEpoch &&
		len(v.Components) == len(other.Components)
}

// Less reports whether v sorts strictly before other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }
