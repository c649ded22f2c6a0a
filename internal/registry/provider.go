package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Backend is the raw data source a Provider wraps: either the online HTTPS
// client or the offline index. Both implement the same narrow surface so
// the cache/coalesce/backoff decorator in Provider never needs to know
// which one it is driving (spec §4.3's "unified... over an online and an
// offline backend").
type Backend interface {
	FetchCrate(ctx context.Context, name string) (CrateRecord, error)
	FetchSearch(ctx context.Context, prefix string, page, perPage int) (Page, error)
}

// Provider is the Crate Info Provider: cache, single-flight coalescing and
// exponential backoff wrapped around a Backend (spec §4.3).
type Provider struct {
	backend Backend
	cache   *Cache

	boMu     sync.Mutex
	boffs    map[string]*backoff.ExponentialBackOff
	degrade  func(name string, err error)
}

// NewProvider builds a Provider over backend with the TTLs spec §4.3
// recommends: a short soft TTL so completions stay fresh across a working
// session, and a much longer hard TTL so a flaky network degrades to stale
// data instead of outright failure.
func NewProvider(backend Backend) *Provider {
	return &Provider{
		backend: backend,
		cache:   NewCache(2048, 5*time.Minute, 24*time.Hour),
		boffs:   make(map[string]*backoff.ExponentialBackOff),
	}
}

// OnDegrade installs a callback invoked whenever Lookup fails with an error
// other than not-found, or Search fails (no cached value could be served);
// a stale value served from the cache does not trigger it.
func (p *Provider) OnDegrade(fn func(name string, err error)) { p.degrade = fn }

func (p *Provider) backoffFor(key string) *backoff.ExponentialBackOff {
	p.boMu.Lock()
	defer p.boMu.Unlock()
	if b, ok := p.boffs[key]; ok {
		return b
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 60 * time.Second
	b.MaxElapsedTime = 0 // caller's context governs the deadline, not the backoff policy
	p.boffs[key] = b
	return b
}

// retrying wraps fetch with exponential backoff capped at 60s between
// attempts (spec §4.3), giving up once ctx is done.
func (p *Provider) retrying(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	b := backoff.WithContext(p.backoffFor(key), ctx)
	var result any
	op := func() error {
		v, err := fetch(ctx)
		if err != nil {
			var notFound *ErrNotFound
			if errors.As(err, &notFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = v
		return nil
	}
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return result, nil
}

// Lookup returns the full crate record for name, per spec §4.3's Lookup
// operation.
func (p *Provider) Lookup(ctx context.Context, name string) (StaleResult[CrateRecord], error) {
	key := "crate:" + name
	res, err := p.cache.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return p.retrying(ctx, key, func(ctx context.Context) (any, error) {
			rec, err := p.backend.FetchCrate(ctx, name)
			if err != nil {
				return nil, err
			}
			sortVersionsNewestFirst(rec.Versions)
			return rec, nil
		})
	})
	if err != nil {
		var notFound *ErrNotFound
		if errors.As(err, &notFound) {
			return StaleResult[CrateRecord]{}, notFound
		}
		if p.degrade != nil {
			p.degrade(name, err)
		}
		return StaleResult[CrateRecord]{}, &ErrUnavailable{Op: "Lookup", Key: name, Err: err}
	}
	rec, ok := res.Value.(CrateRecord)
	if !ok {
		return StaleResult[CrateRecord]{}, &ErrMalformedUpstream{Op: "Lookup", Key: name, Err: fmt.Errorf("unexpected cached type %T", res.Value)}
	}
	return StaleResult[CrateRecord]{Value: rec, Stale: res.Stale}, nil
}

// Versions returns name's version list, sorted newest-first, derived from
// Lookup's cached record (spec §4.3's Versions operation).
func (p *Provider) Versions(ctx context.Context, name string) (StaleResult[[]VersionMeta], error) {
	rec, err := p.Lookup(ctx, name)
	if err != nil {
		return StaleResult[[]VersionMeta]{}, err
	}
	return StaleResult[[]VersionMeta]{Value: rec.Value.Versions, Stale: rec.Stale}, nil
}

// Features returns the named feature set declared by a specific published
// version (spec §4.3's Features operation).
func (p *Provider) Features(ctx context.Context, name, version string) (StaleResult[[]string], error) {
	rec, err := p.Lookup(ctx, name)
	if err != nil {
		return StaleResult[[]string]{}, err
	}
	for _, vm := range rec.Value.Versions {
		if vm.Version == version {
			return StaleResult[[]string]{Value: vm.Features, Stale: rec.Stale}, nil
		}
	}
	return StaleResult[[]string]{}, &ErrMalformedUpstream{Op: "Features", Key: name + "@" + version, Err: fmt.Errorf("version not found")}
}

// Search returns a page of crates whose name starts with prefix, ordered
// by relevance (spec §4.3's Search operation; ranking itself is the
// analyzer's job, this just proxies the backend's substring/prefix match).
func (p *Provider) Search(ctx context.Context, prefix string, page, perPage int) (StaleResult[Page], error) {
	key := fmt.Sprintf("search:%s:%d:%d", prefix, page, perPage)
	res, err := p.cache.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return p.retrying(ctx, key, func(ctx context.Context) (any, error) {
			return p.backend.FetchSearch(ctx, prefix, page, perPage)
		})
	})
	if err != nil {
		if p.degrade != nil {
			p.degrade(prefix, err)
		}
		return StaleResult[Page]{}, &ErrUnavailable{Op: "Search", Key: prefix, Err: err}
	}
	pg, ok := res.Value.(Page)
	if !ok {
		return StaleResult[Page]{}, &ErrMalformedUpstream{Op: "Search", Key: prefix, Err: fmt.Errorf("unexpected cached type %T", res.Value)}
	}
	return StaleResult[Page]{Value: pg, Stale: res.Stale}, nil
}

// Invalidate drops name's cached record, used after an explicit refresh
// request from the editor (e.g. a "clear cache" command).
func (p *Provider) Invalidate(name string) {
	p.cache.Invalidate("crate:" + name)
}
