package workspace

import (
	"os"
	"path/filepath"

	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
)

// Root is the result of a successful discovery: the manifest declaring
// `[workspace]` plus the already-parsed document, so Build doesn't need to
// re-read or re-parse it.
type Root struct {
	Path string
	Doc  *manifest.Document
}

// Discover walks upward from startingPath looking for the nearest ancestor
// Cargo.toml whose document declares a `[workspace]` table, stopping at the
// filesystem root (spec.md §4.4: "Discovery walks upward until a manifest
// declaring [workspace] is found, or stops at the filesystem root").
//
// startingPath may name a file or a directory; both resolve to the directory
// search starts from. A manifest with no `[workspace]` table still counts as
// a single-crate workspace rooted at itself, matching spec.md §3's note that
// a workspace root and a standalone crate share the same graph shape (one
// node, no members).
func Discover(startingPath string) (*Root, bool) {
	dir := startingPath
	if info, err := os.Stat(startingPath); err == nil && !info.IsDir() {
		dir = filepath.Dir(startingPath)
	}
	dir = filepath.Clean(dir)

	var fallback *Root

	for {
		candidate := filepath.Join(dir, "Cargo.toml")
		if text, err := os.ReadFile(candidate); err == nil {
			doc := manifest.Parse(string(text))
			root := &Root{Path: candidate, Doc: doc}
			if doc.Table([]string{"workspace"}) != nil {
				return root, true
			}
			if fallback == nil {
				fallback = root
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if fallback != nil {
		return fallback, true
	}
	return nil, false
}
