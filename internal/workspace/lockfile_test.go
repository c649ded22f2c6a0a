package workspace

import (
	"path/filepath"
	"testing"
)

func TestLockfileParsesPackages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Cargo.lock"), `
version = 3

[[package]]
name = "serde"
version = "1.0.195"
source = "registry+https://github.com/rust-lang/crates.io-index"
checksum = "abc123"
dependencies = ["serde_derive"]

[[package]]
name = "serde"
version = "0.9.0"
source = "registry+https://github.com/rust-lang/crates.io-index"
`)

	snap, ok, err := Lockfile(dir)
	if err != nil {
		t.Fatalf("Lockfile: %v", err)
	}
	if !ok {
		t.Fatal("expected lockfile to be found")
	}
	versions := snap.Resolved("serde")
	if len(versions) != 2 {
		t.Fatalf("expected 2 resolved versions of serde, got %d", len(versions))
	}
}

func TestLockfileAbsentIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	_, ok, err := Lockfile(dir)
	if err != nil {
		t.Fatalf("expected no error for missing lockfile, got %v", err)
	}
	if ok {
		t.Fatal("expected ok=false when no Cargo.lock exists")
	}
}
