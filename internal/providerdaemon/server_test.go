package providerdaemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cargotom-ls/cargotom-ls/internal/registry"
)

type stubBackend struct{}

func (stubBackend) FetchCrate(ctx context.Context, name string) (registry.CrateRecord, error) {
	return registry.CrateRecord{Name: name, Description: "a stub crate"}, nil
}

func (stubBackend) FetchSearch(ctx context.Context, prefix string, page, perPage int) (registry.Page, error) {
	return registry.Page{Total: 1, Results: []registry.SearchResult{{Name: prefix + "-stub"}}}, nil
}

func TestServerClientLookupRoundTrip(t *testing.T) {
	dir := t.TempDir()
	reg, err := NewRegistry(filepath.Join(dir, "cfg"))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	provider := registry.NewProvider(stubBackend{})
	srv := NewServer(provider, reg, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{})
	go func() {
		go func() {
			for i := 0; i < 50; i++ {
				if _, found := reg.Read(); found {
					close(ready)
					return
				}
				time.Sleep(10 * time.Millisecond)
			}
		}()
		srv.Serve(ctx)
	}()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("daemon never registered")
	}

	client, connected, err := Connect(reg, time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !connected {
		t.Fatal("expected to connect to running daemon")
	}
	defer client.Close()

	rec, err := client.FetchCrate(context.Background(), "tokio")
	if err != nil {
		t.Fatalf("FetchCrate: %v", err)
	}
	if rec.Name != "tokio" {
		t.Fatalf("unexpected record %+v", rec)
	}
}
