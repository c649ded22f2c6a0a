package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// OnlineBackend queries the crates.io-shaped sparse HTTP API: one JSON
// document per crate at {BaseURL}/{name} and a search endpoint at
// {BaseURL}/api/v1/crates. No third-party HTTP client library appears
// anywhere in the retrieved pack (see DESIGN.md) — net/http plus
// encoding/json is the stdlib-justified choice here; everything else this
// backend needs (retry, caching, coalescing) already lives one layer up in
// Provider, so there is nothing left for an HTTP client library to add.
type OnlineBackend struct {
	BaseURL string
	Client  *http.Client
}

// NewOnlineBackend builds a backend against baseURL with a bounded
// per-request timeout; Provider's own backoff loop governs retries, so
// this timeout only bounds a single attempt.
func NewOnlineBackend(baseURL string) *OnlineBackend {
	return &OnlineBackend{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sparseIndexVersion struct {
	Vers     string          `json:"vers"`
	Deps     json.RawMessage `json:"deps"`
	Features map[string][]string `json:"features"`
	Yanked   bool            `json:"yanked"`
	Links    string          `json:"links"`
	RustVer  string          `json:"rust_version"`
}

type crateMetaResponse struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Homepage      string `json:"homepage"`
	Repository    string `json:"repository"`
	Documentation string `json:"documentation"`
	Versions      []sparseIndexVersion `json:"versions"`
}

func (b *OnlineBackend) FetchCrate(ctx context.Context, name string) (CrateRecord, error) {
	u := fmt.Sprintf("%s/%s", b.BaseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return CrateRecord{}, err
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		return CrateRecord{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return CrateRecord{}, &ErrNotFound{Name: name}
	}
	if resp.StatusCode != http.StatusOK {
		return CrateRecord{}, fmt.Errorf("fetch crate %q: status %d", name, resp.StatusCode)
	}

	var meta crateMetaResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return CrateRecord{}, &ErrMalformedUpstream{Op: "FetchCrate", Key: name, Err: err}
	}

	rec := CrateRecord{
		Name:          meta.Name,
		Description:   meta.Description,
		Homepage:      meta.Homepage,
		Repository:    meta.Repository,
		Documentation: meta.Documentation,
	}
	// meta.Versions lists whatever order the sparse index's JSON lines
	// file happens to be in, not semver order; Provider.Lookup re-sorts
	// with sortVersionsNewestFirst before anything is cached.
	for _, v := range meta.Versions {
		features := make([]string, 0, len(v.Features))
		for f := range v.Features {
			features = append(features, f)
		}
		rec.Versions = append(rec.Versions, VersionMeta{
			Version:  v.Vers,
			Yanked:   v.Yanked,
			Features: features,
			MSRV:     v.RustVer,
		})
	}
	return rec, nil
}

type searchResponse struct {
	Crates []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"crates"`
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func (b *OnlineBackend) FetchSearch(ctx context.Context, prefix string, page, perPage int) (Page, error) {
	q := url.Values{}
	q.Set("q", prefix)
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("per_page", fmt.Sprintf("%d", perPage))
	u := fmt.Sprintf("%s/api/v1/crates?%s", b.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Page{}, err
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("search %q: status %d", prefix, resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Page{}, &ErrMalformedUpstream{Op: "FetchSearch", Key: prefix, Err: err}
	}

	out := Page{Total: sr.Meta.Total}
	for _, c := range sr.Crates {
		out.Results = append(out.Results, SearchResult{Name: c.Name, Description: c.Description})
	}
	return out, nil
}
