package providerdaemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
)

// Entry is the JSON shape persisted to the registry file describing a
// running Provider daemon, grounded on the teacher's RegistryEntry
// (internal/daemon/registry.go) but simplified: there is exactly one
// Provider daemon per user, not one per workspace, since its cache is
// shared across every open project.
type Entry struct {
	Addr      string    `json:"addr"` // loopback host:port the daemon listens on
	PID       int       `json:"pid"`
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
}

// Registry is the file-backed discovery mechanism other processes use to
// find (or decide they must start) the shared Provider daemon.
type Registry struct {
	path     string
	lockPath string
}

// NewRegistry opens the registry rooted at configDir (typically
// os.UserConfigDir()/cargotom-ls), creating the directory if needed.
func NewRegistry(configDir string) (*Registry, error) {
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("providerdaemon: create config dir %q: %w", configDir, err)
	}
	return &Registry{
		path:     filepath.Join(configDir, "provider-daemon.json"),
		lockPath: filepath.Join(configDir, "provider-daemon.lock"),
	}, nil
}

// withLock runs fn while holding an exclusive file lock on the registry,
// providing cross-process synchronization for the read-modify-write below
// (same shape as the teacher's withFileLock, using gofrs/flock instead of
// a hand-rolled syscall wrapper).
func (r *Registry) withLock(fn func() error) error {
	lock := flock.New(r.lockPath)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("providerdaemon: acquire registry lock: %w", err)
	}
	defer lock.Unlock()
	return fn()
}

// Read returns the currently registered entry, or (Entry{}, false) if none
// is registered or the file is missing/corrupt.
func (r *Registry) Read() (Entry, bool) {
	var entry Entry
	var found bool
	_ = r.withLock(func() error {
		data, err := os.ReadFile(r.path)
		if err != nil {
			return nil
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil
		}
		found = entry.Addr != ""
		return nil
	})
	return entry, found
}

// Write persists entry atomically (write-temp-then-rename, matching the
// teacher's writeEntriesLocked).
func (r *Registry) Write(entry Entry) error {
	return r.withLock(func() error {
		data, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("providerdaemon: marshal registry entry: %w", err)
		}
		dir := filepath.Dir(r.path)
		tmp, err := os.CreateTemp(dir, "provider-daemon-*.json.tmp")
		if err != nil {
			return fmt.Errorf("providerdaemon: create temp registry file: %w", err)
		}
		tmpPath := tmp.Name()
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("providerdaemon: write temp registry file: %w", err)
		}
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("providerdaemon: sync temp registry file: %w", err)
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmpPath)
			return err
		}
		return os.Rename(tmpPath, r.path)
	})
}

// Clear removes the registered entry, used on graceful daemon shutdown.
func (r *Registry) Clear() error {
	return r.withLock(func() error {
		err := os.Remove(r.path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	})
}

// isProcessAlive reports whether pid still refers to a live process.
// os.FindProcess always succeeds on Unix, so a zero-signal probe is
// required to actually test liveness.
func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
