package manifest

// OriginKind tags which variant of a Dependency Entry's origin is active.
type OriginKind int

const (
	OriginVersion OriginKind = iota
	OriginPath
	OriginGit
	OriginRegistry
)

// Origin is the tagged union describing where a dependency's source comes
// from (spec §3's Dependency Entry).
type Origin struct {
	Kind OriginKind

	Requirement string // OriginVersion, OriginRegistry

	Path string // OriginPath

	GitURL    string // OriginGit
	GitRev    string
	GitBranch string
	GitTag    string

	RegistryName string // OriginRegistry
}

// Dependency is the normalized record for one recognized dependency key,
// lowered from either the shorthand (`serde = "1.0"`) or expanded
// (`serde = { version = "1.0", features = [...] }`) manifest forms.
type Dependency struct {
	Name               string
	Rename             string // from `package = "..."` inside the expanded form
	Origin             Origin
	HasConflictingOrigin bool // both e.g. git and path present; Origin still picks one deterministically
	Features           []string
	FeatureSpans       []Span
	DefaultFeatures    bool
	DefaultFeaturesSet bool
	Optional           bool
	OptionalSet        bool
	WorkspaceInherited bool

	Entry *KeyValue // back-reference for span-based diagnostics/actions
}

// LowerDependency normalizes one `[dependencies]`-shaped KeyValue entry
// into a Dependency record. Name is the manifest key (post-`package=`
// rename tracked separately in Rename); entry.Key() is used when a caller
// doesn't already have it split out.
func LowerDependency(entry *KeyValue) *Dependency {
	d := &Dependency{Name: entry.Key(), DefaultFeatures: true, Entry: entry}
	if entry.Value == nil {
		return d
	}
	switch entry.Value.Kind {
	case KindString:
		// Shorthand form: `serde = "1.0"` lowers to Origin(Version).
		d.Origin = Origin{Kind: OriginVersion, Requirement: entry.Value.Str}
		return d
	case KindInlineTable:
		lowerExpandedFields(d, entry.Value.Fields)
		return d
	default:
		return d
	}
}

func lowerExpandedFields(d *Dependency, fields []*KeyValue) {
	var hasPath, hasGit, hasVersion, hasRegistry, hasWorkspace bool
	var gitURL, gitRev, gitBranch, gitTag, path, version, registryName string

	for _, f := range fields {
		key := f.Key()
		switch key {
		case "workspace":
			hasWorkspace = valueIsTrue(f.Value)
		case "version":
			hasVersion = true
			version = stringValue(f.Value)
		case "path":
			hasPath = true
			path = stringValue(f.Value)
		case "git":
			hasGit = true
			gitURL = stringValue(f.Value)
		case "rev":
			gitRev = stringValue(f.Value)
		case "branch":
			gitBranch = stringValue(f.Value)
		case "tag":
			gitTag = stringValue(f.Value)
		case "registry":
			hasRegistry = true
			registryName = stringValue(f.Value)
		case "package":
			d.Rename = stringValue(f.Value)
		case "optional":
			d.Optional = valueIsTrue(f.Value)
			d.OptionalSet = true
		case "default-features", "default_features":
			d.DefaultFeatures = valueIsTrue(f.Value)
			d.DefaultFeaturesSet = true
		case "features":
			if f.Value != nil && f.Value.Kind == KindArray {
				for _, el := range f.Value.Elements {
					d.Features = append(d.Features, el.Str)
					d.FeatureSpans = append(d.FeatureSpans, el.Span)
				}
			}
		}
	}

	d.WorkspaceInherited = hasWorkspace

	// Conflicting-origin precedence, spec §3 invariant: path > git >
	// registry > version. Record the conflict for diagnostics, but
	// always resolve to exactly one deterministic Origin.
	originsPresent := 0
	for _, b := range []bool{hasPath, hasGit, hasVersion || hasRegistry} {
		if b {
			originsPresent++
		}
	}
	d.HasConflictingOrigin = originsPresent > 1 || (hasWorkspace && (hasPath || hasGit || hasVersion || hasRegistry))

	switch {
	case hasPath:
		d.Origin = Origin{Kind: OriginPath, Path: path}
	case hasGit:
		d.Origin = Origin{Kind: OriginGit, GitURL: gitURL, GitRev: gitRev, GitBranch: gitBranch, GitTag: gitTag}
	case hasRegistry:
		d.Origin = Origin{Kind: OriginRegistry, RegistryName: registryName, Requirement: version}
	default:
		d.Origin = Origin{Kind: OriginVersion, Requirement: version}
	}
}

func stringValue(v *Value) string {
	if v == nil {
		return ""
	}
	return v.Str
}

func valueIsTrue(v *Value) bool {
	return v != nil && v.Kind == KindBool && v.Bool
}

// DependencyTableNames lists the section names spec §3 calls out as
// Dependency Entry tables. IsDependencyTable also accepts them as the last
// segment of `[target.<cfg>.*]` and `[workspace.*]` headers; `[patch.*]`
// tables are not treated as dependency tables.
var DependencyTableNames = []string{"dependencies", "dev-dependencies", "build-dependencies"}

// IsDependencyTable reports whether path names a table whose entries should
// be lowered as Dependency records: the three fixed top-level tables, the
// three `target.<cfg>.*dependencies` variants, and the same three names
// under `workspace.` (e.g. `workspace.dependencies`).
func IsDependencyTable(path []string) bool {
	if len(path) == 1 {
		for _, n := range DependencyTableNames {
			if path[0] == n {
				return true
			}
		}
		return false
	}
	if len(path) == 2 && path[0] == "workspace" {
		for _, n := range DependencyTableNames {
			if path[1] == n {
				return true
			}
		}
	}
	if len(path) == 3 && path[0] == "target" {
		for _, n := range DependencyTableNames {
			if path[2] == n {
				return true
			}
		}
	}
	return false
}
