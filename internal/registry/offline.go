package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// OfflineBackend serves crate metadata from a local mirror: a sorted
// in-memory name index for prefix search (the "sorted-string-table"
// stand-in for a real FST/trie — see DESIGN.md for why no such library
// exists anywhere in the retrieved pack) backed by a SQLite sidecar
// database holding the full per-version metadata, queried through
// github.com/ncruces/go-sqlite3 (a cgo-free driver running on wazero,
// matching what a single-binary LSP server needs).
type OfflineBackend struct {
	db    *sql.DB
	names []string // sorted ascending, for prefix binary search
}

// OpenOfflineBackend opens (or creates) the sidecar database at path and
// loads its name index into memory.
func OpenOfflineBackend(ctx context.Context, path string) (*OfflineBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open offline index %q: %w", path, err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	b := &OfflineBackend{db: db}
	if err := b.reloadNames(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS crates (
	name TEXT PRIMARY KEY,
	description TEXT,
	homepage TEXT,
	repository TEXT,
	documentation TEXT
);
CREATE TABLE IF NOT EXISTS versions (
	crate_name TEXT NOT NULL REFERENCES crates(name),
	version TEXT NOT NULL,
	yanked INTEGER NOT NULL DEFAULT 0,
	features TEXT NOT NULL DEFAULT '',
	rust_version TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (crate_name, version)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (b *OfflineBackend) reloadNames(ctx context.Context) error {
	rows, err := b.db.QueryContext(ctx, `SELECT name FROM crates ORDER BY name ASC`)
	if err != nil {
		return err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return err
		}
		names = append(names, n)
	}
	b.names = names
	return rows.Err()
}

// Close releases the underlying database handle.
func (b *OfflineBackend) Close() error { return b.db.Close() }

func (b *OfflineBackend) FetchCrate(ctx context.Context, name string) (CrateRecord, error) {
	var rec CrateRecord
	row := b.db.QueryRowContext(ctx,
		`SELECT name, description, homepage, repository, documentation FROM crates WHERE name = ?`, name)
	if err := row.Scan(&rec.Name, &rec.Description, &rec.Homepage, &rec.Repository, &rec.Documentation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CrateRecord{}, &ErrNotFound{Name: name}
		}
		return CrateRecord{}, fmt.Errorf("offline lookup %q: %w", name, err)
	}

	// No ORDER BY here: SQL would sort the version string lexicographically
	// ("1.10.0" before "1.9.0"), not by semver precedence. Provider.Lookup
	// re-sorts every backend's result with sortVersionsNewestFirst, so
	// this query's row order doesn't matter.
	rows, err := b.db.QueryContext(ctx,
		`SELECT version, yanked, features, rust_version FROM versions WHERE crate_name = ?`, name)
	if err != nil {
		return CrateRecord{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var vm VersionMeta
		var yanked int
		var features string
		if err := rows.Scan(&vm.Version, &yanked, &features, &vm.MSRV); err != nil {
			return CrateRecord{}, err
		}
		vm.Yanked = yanked != 0
		if features != "" {
			vm.Features = strings.Split(features, ",")
		}
		rec.Versions = append(rec.Versions, vm)
	}
	return rec, rows.Err()
}

// FetchSearch walks the in-memory sorted name index via binary search to
// find prefix's span, then paginates within it — O(log n) to locate the
// window, O(page size) to materialize it.
func (b *OfflineBackend) FetchSearch(ctx context.Context, prefix string, page, perPage int) (Page, error) {
	lo := sort.SearchStrings(b.names, prefix)
	hi := lo
	for hi < len(b.names) && strings.HasPrefix(b.names[hi], prefix) {
		hi++
	}
	matches := b.names[lo:hi]

	total := len(matches)
	start := page * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	out := Page{Total: total}
	for _, name := range matches[start:end] {
		var desc string
		_ = b.db.QueryRowContext(ctx, `SELECT description FROM crates WHERE name = ?`, name).Scan(&desc)
		out.Results = append(out.Results, SearchResult{Name: name, Description: desc})
	}
	return out, nil
}
