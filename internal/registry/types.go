// Package registry implements the Crate Info Provider: a unified async
// query API over an online registry backend and an offline index backend,
// behind one cache+single-flight decorator (spec §4.3).
package registry

import "time"

// VersionMeta describes one published version of a crate.
type VersionMeta struct {
	Version      string
	Yanked       bool
	Features     []string
	OptionalDeps []string
	MSRV         string
	PublishedAt  time.Time
}

// CrateRecord is the normalized crate metadata spec §3 defines, versions
// ordered newest-first by semver precedence.
type CrateRecord struct {
	Name          string
	Description   string
	Homepage      string
	Repository    string
	Documentation string
	Readme        string
	Versions      []VersionMeta
}

// SearchResult is one `(name, description)` hit from Search.
type SearchResult struct {
	Name        string
	Description string
}

// Page is the result of a paginated search.
type Page struct {
	Results []SearchResult
	Total   int
}
