package workspace

import (
	"path/filepath"
	"testing"
)

func TestBuildExpandsMembersAndInheritedDeps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Cargo.toml"), `
[workspace]
members = ["crates/*"]
exclude = ["crates/excluded"]

[workspace.dependencies]
serde = { version = "1.0", features = ["derive"] }
`)
	writeFile(t, filepath.Join(dir, "crates", "core", "Cargo.toml"), `
[package]
name = "core"
version = "0.2.0"

[dependencies]
serde = { workspace = true }
`)
	writeFile(t, filepath.Join(dir, "crates", "excluded", "Cargo.toml"), `
[package]
name = "excluded"
version = "0.0.1"
`)

	root, ok := Discover(dir)
	if !ok {
		t.Fatal("expected discovery to succeed")
	}
	g := Build(root)

	if g.Root.InheritedDeps["serde"] == nil {
		t.Fatal("expected serde in root's inherited deps")
	}
	if len(g.Members) != 1 {
		t.Fatalf("expected exactly one member after exclude, got %d", len(g.Members))
	}
	member := g.Members[0]
	if member.Name != "core" {
		t.Fatalf("expected member 'core', got %q", member.Name)
	}

	dep, ok := g.ResolveWorkspaceDependency("serde")
	if !ok || dep.Origin.Requirement != "1.0" {
		t.Fatalf("expected resolvable workspace dependency serde@1.0, got %+v ok=%v", dep, ok)
	}
}

func TestMemberByPath(t *testing.T) {
	g := &Graph{
		Root:    &Node{Path: "/ws/Cargo.toml"},
		Members: []*Node{{Path: "/ws/crates/a/Cargo.toml"}},
	}
	if g.MemberByPath("/ws/Cargo.toml") == nil {
		t.Fatal("expected to find root by path")
	}
	if g.MemberByPath("/ws/crates/a/Cargo.toml") == nil {
		t.Fatal("expected to find member by path")
	}
	if g.MemberByPath("/nope") != nil {
		t.Fatal("expected nil for unknown path")
	}
}
