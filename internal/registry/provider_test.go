package registry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeBackend struct {
	calls   int32
	fail    bool
	record  CrateRecord
}

func (f *fakeBackend) FetchCrate(ctx context.Context, name string) (CrateRecord, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fail {
		return CrateRecord{}, errors.New("boom")
	}
	return f.record, nil
}

func (f *fakeBackend) FetchSearch(ctx context.Context, prefix string, page, perPage int) (Page, error) {
	return Page{}, nil
}

func TestProviderLookupCachesResult(t *testing.T) {
	backend := &fakeBackend{record: CrateRecord{Name: "serde", Versions: []VersionMeta{{Version: "1.0.0"}}}}
	p := NewProvider(backend)

	for i := 0; i < 5; i++ {
		res, err := p.Lookup(context.Background(), "serde")
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if res.Value.Name != "serde" {
			t.Fatalf("unexpected record %+v", res.Value)
		}
	}
	if calls := atomic.LoadInt32(&backend.calls); calls != 1 {
		t.Fatalf("expected exactly one backend call, got %d", calls)
	}
}

func TestProviderLookupCoalescesConcurrentCalls(t *testing.T) {
	backend := &fakeBackend{record: CrateRecord{Name: "tokio"}}
	p := NewProvider(backend)

	const n = 20
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := p.Lookup(context.Background(), "tokio")
			done <- err
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-done; err != nil {
			t.Fatalf("Lookup: %v", err)
		}
	}
	if calls := atomic.LoadInt32(&backend.calls); calls != 1 {
		t.Fatalf("expected single-flight coalescing to 1 call, got %d", calls)
	}
}

func TestProviderLookupUnavailableWraps(t *testing.T) {
	backend := &fakeBackend{fail: true}
	p := NewProvider(backend)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := p.Lookup(ctx, "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	var unavailable *ErrUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ErrUnavailable, got %T: %v", err, err)
	}
}

func TestProviderLookupNotFoundIsNotRetried(t *testing.T) {
	backend := &notFoundBackend{}
	p := NewProvider(backend)

	_, err := p.Lookup(context.Background(), "no-such-crate")
	var notFound *ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %T: %v", err, err)
	}
	if calls := atomic.LoadInt32(&backend.calls); calls != 1 {
		t.Fatalf("expected exactly one attempt for a permanent not-found error, got %d", calls)
	}
}

type notFoundBackend struct {
	calls int32
}

func (b *notFoundBackend) FetchCrate(ctx context.Context, name string) (CrateRecord, error) {
	atomic.AddInt32(&b.calls, 1)
	return CrateRecord{}, &ErrNotFound{Name: name}
}

func (b *notFoundBackend) FetchSearch(ctx context.Context, prefix string, page, perPage int) (Page, error) {
	return Page{}, nil
}

func TestProviderLookupSortsVersionsBySemverNotLexicographically(t *testing.T) {
	// "1.9.0" sorts after "1.10.0" lexicographically but must come first
	// by semver precedence; a backend handing back versions in whatever
	// order it found them must not leak that ordering through Lookup.
	backend := &fakeBackend{record: CrateRecord{
		Name: "serde",
		Versions: []VersionMeta{
			{Version: "1.9.0"},
			{Version: "1.10.0"},
			{Version: "1.2.0"},
		},
	}}
	p := NewProvider(backend)

	res, err := p.Lookup(context.Background(), "serde")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	got := make([]string, len(res.Value.Versions))
	for i, vm := range res.Value.Versions {
		got[i] = vm.Version
	}
	want := []string{"1.10.0", "1.9.0", "1.2.0"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestFeaturesLooksUpSpecificVersion(t *testing.T) {
	backend := &fakeBackend{record: CrateRecord{
		Name: "rand",
		Versions: []VersionMeta{
			{Version: "0.8.5", Features: []string{"std", "alloc"}},
			{Version: "0.9.0", Features: []string{"std"}},
		},
	}}
	p := NewProvider(backend)

	feats, err := p.Features(context.Background(), "rand", "0.8.5")
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	if len(feats.Value) != 2 {
		t.Fatalf("expected 2 features, got %v", feats.Value)
	}
}
