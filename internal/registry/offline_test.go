package registry

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestOfflineBackend(t *testing.T) *OfflineBackend {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "index.sqlite3")
	b, err := OpenOfflineBackend(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenOfflineBackend: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	ctx := context.Background()
	crates := []struct{ name, desc string }{
		{"serde", "serialization framework"},
		{"serde_json", "JSON support for serde"},
		{"tokio", "async runtime"},
	}
	for _, c := range crates {
		if _, err := b.db.ExecContext(ctx,
			`INSERT INTO crates (name, description, homepage, repository, documentation) VALUES (?, ?, '', '', '')`,
			c.name, c.desc); err != nil {
			t.Fatalf("seed crate %q: %v", c.name, err)
		}
		if _, err := b.db.ExecContext(ctx,
			`INSERT INTO versions (crate_name, version, yanked, features, rust_version) VALUES (?, '1.0.0', 0, 'default', '1.60')`,
			c.name); err != nil {
			t.Fatalf("seed version for %q: %v", c.name, err)
		}
	}
	if err := b.reloadNames(ctx); err != nil {
		t.Fatalf("reloadNames: %v", err)
	}
	return b
}

func TestOfflineBackendFetchCrate(t *testing.T) {
	b := newTestOfflineBackend(t)
	rec, err := b.FetchCrate(context.Background(), "serde")
	if err != nil {
		t.Fatalf("FetchCrate: %v", err)
	}
	if rec.Description != "serialization framework" {
		t.Fatalf("unexpected description %q", rec.Description)
	}
	if len(rec.Versions) != 1 || rec.Versions[0].Version != "1.0.0" {
		t.Fatalf("unexpected versions %+v", rec.Versions)
	}
}

func TestOfflineBackendPrefixSearch(t *testing.T) {
	b := newTestOfflineBackend(t)
	page, err := b.FetchSearch(context.Background(), "serde", 0, 10)
	if err != nil {
		t.Fatalf("FetchSearch: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 matches for prefix 'serde', got %d: %+v", page.Total, page.Results)
	}
}
