package registry

import (
	"sort"

	"github.com/cargotom-ls/cargotom-ls/internal/semver"
)

// sortVersionsNewestFirst enforces the Crate Record invariant (spec §3):
// versions ordered by semver precedence, newest first. Neither backend can
// be trusted to already provide this — the offline index's SQL query has no
// ORDER BY, and the online sparse index just lists whatever order
// crates.io's JSON lines happen to be in — so Provider.Lookup applies this
// once, right after a backend fetch, before anything is cached.
//
// A version string a backend returns but semver can't parse is left in
// place relative to other unparsable entries and sorted after every
// parsable one, rather than dropped.
func sortVersionsNewestFirst(versions []VersionMeta) {
	sort.Stable(&versionSorter{
		versions: versions,
		parsed:   parseVersions(versions),
	})
}

func parseVersions(versions []VersionMeta) []parsedVersion {
	out := make([]parsedVersion, len(versions))
	for i, vm := range versions {
		if v, err := semver.ParseVersion(vm.Version); err == nil {
			out[i] = parsedVersion{v: v, ok: true}
		}
	}
	return out
}

type parsedVersion struct {
	v  semver.Version
	ok bool
}

// versionSorter keeps VersionMeta and its parsed semver.Version in lockstep
// across swaps, which a plain sort.SliceStable comparator indexed by
// position cannot do once elements start moving.
type versionSorter struct {
	versions []VersionMeta
	parsed   []parsedVersion
}

func (s *versionSorter) Len() int { return len(s.versions) }

func (s *versionSorter) Swap(i, j int) {
	s.versions[i], s.versions[j] = s.versions[j], s.versions[i]
	s.parsed[i], s.parsed[j] = s.parsed[j], s.parsed[i]
}

func (s *versionSorter) Less(i, j int) bool {
	a, b := s.parsed[i], s.parsed[j]
	switch {
	case a.ok && b.ok:
		return a.v.Compare(b.v) > 0
	case a.ok != b.ok:
		return a.ok
	default:
		return false
	}
}
