package analyzer

import (
	"context"
	"strings"

	"github.com/cargotom-ls/cargotom-ls/internal/registry"
)

// stubBackend is an in-memory registry.Backend for analyzer tests: no
// network, no cache misses beyond what Provider itself introduces.
type stubBackend struct {
	crates map[string]registry.CrateRecord
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		crates: map[string]registry.CrateRecord{
			"serde": {
				Name:          "serde",
				Description:   "A generic serialization framework",
				Documentation: "https://docs.rs/serde",
				Repository:    "https://github.com/serde-rs/serde",
				Versions: []registry.VersionMeta{
					{Version: "1.0.195", Features: []string{"derive", "std", "alloc"}},
					{Version: "1.0.100", Features: []string{"derive", "std"}},
					{Version: "0.9.0", Features: []string{"std"}},
				},
			},
			"tokio": {
				Name: "tokio",
				Versions: []registry.VersionMeta{
					{Version: "1.35.0", Features: []string{"full", "rt"}},
					{Version: "1.0.0-alpha.1", Features: []string{"full"}},
				},
			},
		},
	}
}

func (b *stubBackend) FetchCrate(ctx context.Context, name string) (registry.CrateRecord, error) {
	rec, ok := b.crates[name]
	if !ok {
		return registry.CrateRecord{}, &registry.ErrNotFound{Name: name}
	}
	return rec, nil
}

func (b *stubBackend) FetchSearch(ctx context.Context, prefix string, page, perPage int) (registry.Page, error) {
	var out registry.Page
	for name, rec := range b.crates {
		if strings.HasPrefix(name, prefix) {
			out.Results = append(out.Results, registry.SearchResult{Name: name, Description: rec.Description})
		}
	}
	out.Total = len(out.Results)
	return out, nil
}

func newTestProvider() *registry.Provider {
	return registry.NewProvider(newStubBackend())
}
