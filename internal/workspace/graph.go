// Package workspace implements the Workspace Index: discovery of workspace
// roots, member manifests, and lockfile parsing (spec.md §4.4).
package workspace

import (
	"os"
	"path/filepath"

	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
)

// Node is one manifest in the workspace graph: either the root itself or
// a member discovered through `[workspace].members`.
type Node struct {
	Path    string
	Name    string
	Version string
	// Members holds this node's own declared member globs, non-empty only
	// on the root (spec.md §3's WorkspaceGraph.members).
	Members []string
	// InheritedDeps mirrors the root's [workspace.dependencies] table so
	// members can resolve `workspace = true` without re-parsing the root.
	InheritedDeps map[string]*manifest.Dependency
	Doc           *manifest.Document
}

// Graph is the in-memory Workspace Graph rooted at the nearest ancestor
// manifest declaring `[workspace]` (spec.md §3/§4.4).
type Graph struct {
	RootPath string
	Root     *Node
	Members  []*Node
}

// MemberByPath returns the member node for path, or nil.
func (g *Graph) MemberByPath(path string) *Node {
	if g.Root != nil && g.Root.Path == path {
		return g.Root
	}
	for _, m := range g.Members {
		if m.Path == path {
			return m
		}
	}
	return nil
}

// ResolveWorkspaceDependency looks up name in the root's
// `[workspace.dependencies]` table, the canonical source for
// `workspace = true` inheritance (spec.md §3).
func (g *Graph) ResolveWorkspaceDependency(name string) (*manifest.Dependency, bool) {
	if g.Root == nil || g.Root.InheritedDeps == nil {
		return nil, false
	}
	dep, ok := g.Root.InheritedDeps[name]
	return dep, ok
}

// Build expands root into a full Workspace Graph: it lowers the root's
// `[workspace.dependencies]` table, expands `[workspace].members`/`exclude`
// globs, and parses every member manifest. Path/git dependency origins
// found along the way are recorded on their owning Node but never followed
// further — transitive expansion of path/git members is out of scope
// (spec.md §4.4 Non-goals).
func Build(root *Root) *Graph {
	rootDir := filepath.Dir(root.Path)
	rootNode := nodeFromDoc(root.Path, root.Doc)

	g := &Graph{RootPath: root.Path, Root: rootNode}

	wsTable := root.Doc.WorkspaceTable()
	if wsTable == nil {
		return g
	}

	members := stringArrayEntry(wsTable, "members")
	exclude := stringArrayEntry(wsTable, "exclude")
	rootNode.Members = members

	if depsTable := root.Doc.WorkspaceDependenciesTable(); depsTable != nil {
		rootNode.InheritedDeps = make(map[string]*manifest.Dependency, len(depsTable.Entries))
		for _, e := range depsTable.Entries {
			dep := manifest.LowerDependency(e)
			rootNode.InheritedDeps[dep.Name] = dep
		}
	}

	memberDirs := expandMemberGlobs(rootDir, members, exclude)
	for _, dir := range memberDirs {
		path := filepath.Join(dir, "Cargo.toml")
		text, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		doc := manifest.Parse(string(text))
		g.Members = append(g.Members, nodeFromDoc(path, doc))
	}

	return g
}

func nodeFromDoc(path string, doc *manifest.Document) *Node {
	n := &Node{Path: path, Doc: doc}
	if pkg := doc.PackageTable(); pkg != nil {
		if nameEntry := pkg.Get("name"); nameEntry != nil && nameEntry.Value != nil {
			n.Name = nameEntry.Value.Str
		}
		if versionEntry := pkg.Get("version"); versionEntry != nil && versionEntry.Value != nil {
			n.Version = versionEntry.Value.Str
		}
	}
	return n
}

func stringArrayEntry(t *manifest.Table, key string) []string {
	entry := t.Get(key)
	if entry == nil || entry.Value == nil || entry.Value.Kind != manifest.KindArray {
		return nil
	}
	out := make([]string, 0, len(entry.Value.Elements))
	for _, el := range entry.Value.Elements {
		out = append(out, el.Str)
	}
	return out
}

// expandMemberGlobs resolves each members glob relative to rootDir via
// filepath.Glob, drops anything matching an exclude glob, and returns the
// deduplicated set of candidate member directories.
func expandMemberGlobs(rootDir string, members, exclude []string) []string {
	excluded := make(map[string]bool, len(exclude))
	for _, pattern := range exclude {
		matches, err := filepath.Glob(filepath.Join(rootDir, pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			excluded[filepath.Clean(m)] = true
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, pattern := range members {
		matches, err := filepath.Glob(filepath.Join(rootDir, pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if excluded[m] || seen[m] {
				continue
			}
			info, err := os.Stat(m)
			if err != nil || !info.IsDir() {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
