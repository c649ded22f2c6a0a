// Package analyzer implements the Analyzer component (spec.md §4.5):
// completion, hover, diagnostics, code actions, and inlay hints, computed
// as a pure function of (Document, Cursor, WorkspaceGraph, Provider,
// LockfileSnapshot). Nothing in this package imports an LSP protocol
// package; internal/server translates the domain-shaped results returned
// here into go-lsp structs.
package analyzer

import (
	"strings"

	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
)

// splitDependencyPath looks for the longest prefix of path that names a
// recognized dependency table (spec §3's Sections of Interest) and, if
// found, splits the remainder into the crate name and any nested field
// path beneath it (e.g. ["version"] for an expanded entry's version field,
// ["features"] for its features array).
func splitDependencyPath(path []string) (name string, fieldPath []string, ok bool) {
	for i := len(path) - 1; i >= 1; i-- {
		if manifest.IsDependencyTable(path[:i]) {
			return path[i], path[i+1:], true
		}
	}
	return "", nil, false
}

// dependencyValue returns the lowered Dependency record and the raw entry
// for the dependency named name in table, following both the shorthand
// (`serde = "1"`) and expanded (`serde = { version = "1" }`) forms; ok is
// false when table has no such entry.
func dependencyValue(table *manifest.Table, name string) (*manifest.Dependency, *manifest.KeyValue, bool) {
	entry := table.Get(name)
	if entry == nil {
		return nil, nil, false
	}
	return manifest.LowerDependency(entry), entry, true
}

// normalizeDashes folds '-' and '_' onto one separator so the two spellings
// of a crate name compare and rank identically (spec.md §4.5).
func normalizeDashes(s string) string {
	return strings.NewReplacer("_", "-").Replace(strings.ToLower(s))
}
