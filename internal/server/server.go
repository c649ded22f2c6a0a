// Package server is the LSP Server Facade: it owns the jsonrpc2
// connection, the open-document store, the Workspace Index, and the
// Crate Info Provider, and translates internal/analyzer's domain-shaped
// results into github.com/sourcegraph/go-lsp wire structs. The Analyzer
// itself never imports an LSP protocol package; this is the one place
// that does, mirroring the teacher's separation between internal/queries
// (domain) and internal/rpc (transport).
package server

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"go.uber.org/zap"

	"github.com/cargotom-ls/cargotom-ls/internal/config"
	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
	"github.com/cargotom-ls/cargotom-ls/internal/registry"
	"github.com/cargotom-ls/cargotom-ls/internal/workspace"
)

// document is the server's in-memory record of one open Cargo.toml.
type document struct {
	uri     string
	version int
	doc     *manifest.Document
	lines   *manifest.LineIndex
}

// Server holds all state shared across RPC handlers: the open-document
// store, the workspace graph discovered from the editor's root URI, the
// registry Provider backing completion/hover/diagnostics, and the
// debounced diagnostics scheduler. One Server serves exactly one
// initialize/shutdown lifecycle, matching the teacher's one-daemon-per-
// workspace model in internal/rpc.Server.
type Server struct {
	logger *zap.Logger
	conn   *jsonrpc2.Conn

	mu         sync.RWMutex
	documents  map[string]*document
	cfg        config.Config
	graph      *workspace.Graph
	lockfile   *workspace.LockfileSnapshot
	watcher    *workspace.Watcher
	provider   *registry.Provider
	rootPath   string
	shutdownCh chan struct{}

	debouncer *debouncer

	updateAll UpdateAllFunc
	openURL   OpenURLFunc
}

// UpdateAllFunc is the host-provided callback behind the "Update All"
// code action (spec.md §4.5's Open Question: running `cargo update` is a
// side effect outside the Analyzer's pure-function contract, so the
// daemon/CLI host supplies it). cmd/cargotom-ls wires this to exec.Command.
type UpdateAllFunc func(ctx context.Context, manifestDir string) error

// OpenURLFunc is the host-provided callback behind Open Docs/crates.io/
// Source/Homepage actions. cmd/cargotom-ls wires this to the OS's default
// URL opener; tests can stub it.
type OpenURLFunc func(url string) error

// Options configures a new Server.
type Options struct {
	Logger    *zap.Logger
	Provider  *registry.Provider
	UpdateAll UpdateAllFunc
	OpenURL   OpenURLFunc
}

// New constructs a Server. The workspace graph is built lazily, during
// the initialize handshake, once the editor has told us the root URI.
func New(opts Options) *Server {
	return &Server{
		logger:     opts.Logger,
		documents:  make(map[string]*document),
		provider:   opts.Provider,
		shutdownCh: make(chan struct{}),
		updateAll:  opts.UpdateAll,
		openURL:    opts.OpenURL,
	}
}

// Run serves the LSP protocol over rwc (typically stdin/stdout) until the
// connection closes or ctx is cancelled. It blocks until the client
// disconnects or sends exit.
func (s *Server) Run(ctx context.Context, rwc io.ReadWriteCloser) error {
	s.debouncer = newDebouncer(250*time.Millisecond, s.recomputeDiagnostics)
	defer s.debouncer.stop()

	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))
	s.conn = conn

	select {
	case <-conn.DisconnectNotify():
		return nil
	case <-s.shutdownCh:
		return conn.Close()
	case <-ctx.Done():
		return conn.Close()
	}
}

func (s *Server) getDocument(uri string) (*document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.documents[uri]
	return d, ok
}

func (s *Server) setDocument(d *document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[d.uri] = d
}

func (s *Server) dropDocument(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, uri)
}

func (s *Server) currentGraph() *workspace.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

func (s *Server) currentLockfile() *workspace.LockfileSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lockfile
}

func (s *Server) currentConfig() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}
