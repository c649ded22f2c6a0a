package analyzer

import (
	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
	"github.com/cargotom-ls/cargotom-ls/internal/workspace"
)

// InlayHint is a label anchored at a byte offset (end of the declaration
// line), domain-shaped the way spec.md §4.5 describes inlay hints.
type InlayHint struct {
	Offset int
	Label  string
}

// InlayHints returns one hint per dependency whose lockfile-resolved
// version differs from its textual requirement, per spec.md §4.5.
func InlayHints(doc *manifest.Document, lock *workspace.LockfileSnapshot) []InlayHint {
	if lock == nil {
		return nil
	}
	var hints []InlayHint
	for _, table := range doc.DependencyTables() {
		for _, entry := range table.Entries {
			dep := manifest.LowerDependency(entry)
			resolved := lock.Resolved(dep.Name)
			if len(resolved) == 0 {
				continue
			}
			version := resolved[0].Version
			if dep.Origin.Requirement == version {
				continue
			}
			// entry.Span.End lies past the consumed line break; anchor
			// the hint before it so it stays on the declaration line.
			end := entry.Span.End
			if end > entry.Span.Start && doc.Text[end-1] == '\n' {
				end--
			}
			if end > entry.Span.Start && doc.Text[end-1] == '\r' {
				end--
			}
			hints = append(hints, InlayHint{
				Offset: end,
				Label:  "(" + version + ")",
			})
		}
	}
	return hints
}
