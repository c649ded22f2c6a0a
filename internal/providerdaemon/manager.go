package providerdaemon

import (
	"fmt"
	"time"
)

// Connect tries to reach an already-running Provider daemon via reg,
// verifying it is actually alive with a Ping before handing back a usable
// Client. Returns (nil, false, nil) when no daemon is registered or the
// registered one is unreachable, signaling the caller should start one.
func Connect(reg *Registry, dialTimeout time.Duration) (*Client, bool, error) {
	entry, found := reg.Read()
	if !found {
		return nil, false, nil
	}
	if !isProcessAlive(entry.PID) {
		reg.Clear()
		return nil, false, nil
	}
	client, err := Dial(entry.Addr, dialTimeout)
	if err != nil {
		return nil, false, nil
	}
	if err := client.Ping(); err != nil {
		client.Close()
		return nil, false, nil
	}
	return client, true, nil
}

// ErrNoDaemon is returned by callers that require an already-running
// daemon (e.g. `cargotom-ls daemon status`) when none is registered.
var ErrNoDaemon = fmt.Errorf("providerdaemon: no daemon registered")
