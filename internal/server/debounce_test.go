package server

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesRapidSchedules(t *testing.T) {
	var fires int32
	d := newDebouncer(30*time.Millisecond, func(uri string) {
		atomic.AddInt32(&fires, 1)
	})

	for i := 0; i < 5; i++ {
		d.schedule("file:///Cargo.toml")
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt32(&fires); got != 1 {
		t.Fatalf("expected exactly 1 coalesced fire, got %d", got)
	}
}

func TestDebouncerCancelSuppressesFire(t *testing.T) {
	var fires int32
	d := newDebouncer(20*time.Millisecond, func(uri string) {
		atomic.AddInt32(&fires, 1)
	})

	d.schedule("file:///Cargo.toml")
	d.cancel("file:///Cargo.toml")

	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&fires); got != 0 {
		t.Fatalf("expected no fire after cancel, got %d", got)
	}
}

func TestDebouncerTracksURIsIndependently(t *testing.T) {
	var mu sync.Mutex
	fired := make(map[string]int)
	d := newDebouncer(15*time.Millisecond, func(uri string) {
		mu.Lock()
		fired[uri]++
		mu.Unlock()
	})

	d.schedule("file:///a/Cargo.toml")
	d.schedule("file:///b/Cargo.toml")

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired["file:///a/Cargo.toml"] != 1 || fired["file:///b/Cargo.toml"] != 1 {
		t.Fatalf("expected both URIs to fire once each, got %+v", fired)
	}
}

func TestDebouncerStopCancelsAllPending(t *testing.T) {
	var fires int32
	d := newDebouncer(20*time.Millisecond, func(uri string) {
		atomic.AddInt32(&fires, 1)
	})

	d.schedule("file:///a/Cargo.toml")
	d.schedule("file:///b/Cargo.toml")
	d.stop()

	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&fires); got != 0 {
		t.Fatalf("expected no fires after stop, got %d", got)
	}
}
