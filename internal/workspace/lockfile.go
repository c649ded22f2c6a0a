package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LockfileSnapshot is the read-only view of a workspace's Cargo.lock the
// Analyzer needs: which versions and checksums were actually resolved,
// independent of whatever the manifest's requirement ranges allow (spec.md
// §3). Unlike the manifest proper, the lockfile carries no editing or
// positional requirement, so a generic decoder is the right tool here
// rather than the hand-written span-carrying parser manifest.Parse uses.
type LockfileSnapshot struct {
	Path     string
	Packages []LockedPackage
	byName   map[string][]LockedPackage
}

// LockedPackage mirrors one `[[package]]` entry of a Cargo.lock file.
type LockedPackage struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Source       string   `toml:"source"`
	Checksum     string   `toml:"checksum"`
	Dependencies []string `toml:"dependencies"`
}

type lockfileDocument struct {
	Version  int             `toml:"version"`
	Packages []LockedPackage `toml:"package"`
}

// Lockfile locates and parses the Cargo.lock sibling to a workspace root,
// returning (nil, false) when none exists — absence is a normal, valid
// state (spec.md §3: "Lockfile Snapshot?" is optional).
func Lockfile(workspaceRootDir string) (*LockfileSnapshot, bool, error) {
	path := filepath.Join(workspaceRootDir, "Cargo.lock")
	text, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("workspace: read lockfile %q: %w", path, err)
	}

	var doc lockfileDocument
	if _, err := toml.Decode(string(text), &doc); err != nil {
		return nil, false, fmt.Errorf("workspace: parse lockfile %q: %w", path, err)
	}

	snap := &LockfileSnapshot{
		Path:     path,
		Packages: doc.Packages,
		byName:   make(map[string][]LockedPackage, len(doc.Packages)),
	}
	for _, p := range doc.Packages {
		snap.byName[p.Name] = append(snap.byName[p.Name], p)
	}
	return snap, true, nil
}

// Resolved returns every locked version of name, since a single lockfile
// may pin more than one version of the same crate across the dependency
// graph.
func (s *LockfileSnapshot) Resolved(name string) []LockedPackage {
	if s == nil {
		return nil
	}
	return s.byName[name]
}
