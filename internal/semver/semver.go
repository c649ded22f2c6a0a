// Package semver implements the Version Algebra component: parsing and
// comparing versions and requirements, "latest matching" selection, and
// style-preserving requirement bumping (spec §4.2).
//
// It is a thin wrapper around github.com/Masterminds/semver/v3, which
// already speaks the caret/tilde/exact/comparison/wildcard/comma-AND
// grammar spec §4.2 requires; this package adds the yank/prerelease
// filtering and bump semantics the library has no opinion on.
package semver

import (
	"fmt"
	"strings"

	mastersemver "github.com/Masterminds/semver/v3"
)

// Version wraps a parsed version. Masterminds/semver/v3's Version already
// models (major, minor, patch, pre, build) exactly as spec §4.2 specifies.
type Version struct {
	v *mastersemver.Version
}

// ParseVersion parses a version string.
func ParseVersion(s string) (Version, error) {
	v, err := mastersemver.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("parse version %q: %w", s, err)
	}
	return Version{v: v}, nil
}

func (v Version) String() string { return v.v.Original() }
func (v Version) Major() uint64  { return v.v.Major() }
func (v Version) Minor() uint64  { return v.v.Minor() }
func (v Version) Patch() uint64  { return v.v.Patch() }
func (v Version) Prerelease() string { return v.v.Prerelease() }
func (v Version) IsPrerelease() bool { return v.v.Prerelease() != "" }
func (v Version) LessThan(o Version) bool { return v.v.LessThan(o.v) }
func (v Version) Compare(o Version) int   { return v.v.Compare(o.v) }

// Requirement wraps a parsed requirement (semver range expression).
type Requirement struct {
	raw  string
	c    *mastersemver.Constraints
}

// ParseRequirement parses a requirement string using Cargo's operator
// grammar (^, ~, =, >, >=, <, <=, *, comma-joined AND) — the grammar
// Masterminds/semver/v3 natively implements.
func ParseRequirement(s string) (Requirement, error) {
	c, err := mastersemver.NewConstraint(normalizeCargoRequirement(s))
	if err != nil {
		return Requirement{}, fmt.Errorf("parse requirement %q: %w", s, err)
	}
	return Requirement{raw: s, c: c}, nil
}

// normalizeCargoRequirement translates Cargo's bare-requirement shorthand
// (a version with no operator means caret, e.g. "1.2" == "^1.2") into the
// library's expected syntax. Masterminds/semver/v3 reads a bare version as
// tilde-or-equal, so each comma-joined part that starts with a digit and
// has no '*' wildcard gets an explicit '^'.
func normalizeCargoRequirement(s string) string {
	parts := strings.Split(s, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" && part[0] >= '0' && part[0] <= '9' && !strings.Contains(part, "*") {
			part = "^" + part
		}
		parts[i] = part
	}
	return strings.Join(parts, ", ")
}

func (r Requirement) String() string { return r.raw }

// Matches reports whether v satisfies r, honoring allowPrerelease the way
// spec §4.2 describes: prerelease versions are excluded unless the caller
// opts in or the requirement itself names a prerelease.
func (r Requirement) Matches(v Version, allowPrerelease bool) bool {
	if v.IsPrerelease() && !allowPrerelease && !requirementMentionsPrerelease(r.raw) {
		return false
	}
	return r.c.Check(v.v)
}

func requirementMentionsPrerelease(raw string) bool {
	return strings.Contains(raw, "-")
}

// Match returns the subset of versions satisfying req, preserving input
// order (spec §4.2).
func Match(req Requirement, versions []Version, allowPrerelease bool) []Version {
	var out []Version
	for _, v := range versions {
		if req.Matches(v, allowPrerelease) {
			out = append(out, v)
		}
	}
	return out
}

// LatestOptions configures Latest's filtering.
type LatestOptions struct {
	AllowPrerelease bool
	AllowYanked     bool
}

// Yanked pairs a Version with its registry yanked flag, since yank status
// lives on the Crate Record, not on the parsed version itself.
type Yanked struct {
	Version Version
	IsYanked bool
}

// Latest returns the newest version matching req under opts' filters, or
// false if none match. Yanked versions are excluded from Latest but
// remain in the caller's version list for completion filtering (spec
// §4.2's tie-break rule).
func Latest(req Requirement, versions []Yanked, opts LatestOptions) (Version, bool) {
	var best *Version
	for _, y := range versions {
		if y.IsYanked && !opts.AllowYanked {
			continue
		}
		if !req.Matches(y.Version, opts.AllowPrerelease) {
			continue
		}
		v := y.Version
		if best == nil || best.LessThan(v) {
			best = &v
		}
	}
	if best == nil {
		return Version{}, false
	}
	return *best, true
}

// requirementStyle classifies how a requirement string was written, so
// Bump can preserve the caller's style.
type requirementStyle int

const (
	styleCaret requirementStyle = iota
	styleTilde
	styleExact
	styleWildcard
	styleBare // Cargo's implicit-caret bare version, e.g. "1.2"
	styleComparison
	styleOther
)

func classify(raw string) requirementStyle {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "^"):
		return styleCaret
	case strings.HasPrefix(s, "~"):
		return styleTilde
	case strings.HasPrefix(s, "="):
		return styleExact
	case strings.Contains(s, "*"):
		return styleWildcard
	case strings.HasPrefix(s, ">") || strings.HasPrefix(s, "<"):
		return styleComparison
	case strings.ContainsAny(s, ",|"):
		return styleOther
	default:
		return styleBare
	}
}

// Bump produces a new requirement string that still matches newVersion,
// preserving the caller's original style (caret vs tilde vs exact) where
// that style can express newVersion, widening only when it cannot (spec
// §4.2). Comparison-operator and comma-joined requirements are left to the
// caller's judgment and are widened to an explicit caret on the new
// version, since there is no single "preserve the shape" answer for them.
func Bump(currentRequirement string, newVersion Version) string {
	switch classify(currentRequirement) {
	case styleCaret:
		return "^" + newVersion.String()
	case styleTilde:
		return "~" + newVersion.String()
	case styleExact:
		return "=" + newVersion.String()
	case styleBare:
		return bumpBareStyle(currentRequirement, newVersion)
	default:
		return "^" + newVersion.String()
	}
}

// bumpBareStyle mirrors the precision of the original bare requirement:
// "1" -> "2" style major bumps stay one segment wide, "1.2" stays two,
// "1.2.3" stays three, matching what a human editing the manifest by hand
// would likely write.
func bumpBareStyle(current string, newVersion Version) string {
	segments := strings.Count(strings.TrimSpace(current), ".") + 1
	switch segments {
	case 1:
		return fmt.Sprintf("%d", newVersion.Major())
	case 2:
		return fmt.Sprintf("%d.%d", newVersion.Major(), newVersion.Minor())
	default:
		return fmt.Sprintf("%d.%d.%d", newVersion.Major(), newVersion.Minor(), newVersion.Patch())
	}
}
