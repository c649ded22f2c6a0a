package manifest

// TopLevelSections is the built-in schema of static manifest section names
// offered when completing a bare `[` table header (spec §4.5, "Top-level
// table header" rule).
var TopLevelSections = []string{
	"package",
	"lib",
	"bin",
	"example",
	"test",
	"bench",
	"dependencies",
	"dev-dependencies",
	"build-dependencies",
	"features",
	"workspace",
	"workspace.dependencies",
	"profile.dev",
	"profile.release",
	"profile.test",
	"profile.bench",
	"patch.crates-io",
	"target",
}

// FeaturesTable returns the `[features]` table, if present.
func (d *Document) FeaturesTable() *Table {
	return d.Table([]string{"features"})
}

// PackageTable returns the `[package]` table, if present.
func (d *Document) PackageTable() *Table {
	return d.Table([]string{"package"})
}

// WorkspaceTable returns the `[workspace]` table, if present.
func (d *Document) WorkspaceTable() *Table {
	return d.Table([]string{"workspace"})
}

// WorkspaceDependenciesTable returns `[workspace.dependencies]`, if present.
func (d *Document) WorkspaceDependenciesTable() *Table {
	return d.Table([]string{"workspace", "dependencies"})
}

// DependencyTables returns every table in the document whose entries should
// be treated as Dependency records (spec §3's "Sections of Interest").
func (d *Document) DependencyTables() []*Table {
	var out []*Table
	for _, t := range d.Tables {
		if IsDependencyTable(t.HeaderPath) {
			out = append(out, t)
		}
	}
	return out
}

// Dependencies lowers every entry of every dependency table into a
// Dependency record, keyed by dotted table path (e.g. "dependencies",
// "target.x.dependencies").
func (d *Document) Dependencies() map[string][]*Dependency {
	out := make(map[string][]*Dependency)
	for _, t := range d.DependencyTables() {
		key := tablePathKey(t.HeaderPath)
		for _, e := range t.Entries {
			out[key] = append(out[key], LowerDependency(e))
		}
	}
	return out
}

func tablePathKey(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "."
		}
		s += p
	}
	return s
}
