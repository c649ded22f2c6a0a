package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"

	lsp "github.com/sourcegraph/go-lsp"
	"go.uber.org/zap"

	"github.com/cargotom-ls/cargotom-ls/internal/config"
	"github.com/cargotom-ls/cargotom-ls/internal/workspace"
)

func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p lsp.InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("server: decode initialize params: %w", err)
	}

	var initOpts map[string]any
	if len(p.InitializationOptions) > 0 {
		_ = json.Unmarshal(p.InitializationOptions, &initOpts)
	}
	cfg, err := config.Load(initOpts)
	if err != nil {
		s.logger.Warn("config load failed, using defaults", zap.Error(err))
		cfg = config.Config{PerPage: 25}
	}

	rootPath := rootPathFromParams(p)
	s.mu.Lock()
	s.cfg = cfg
	s.rootPath = rootPath
	s.mu.Unlock()

	if rootPath != "" {
		s.initWorkspace(rootPath)
	}

	syncKind := lsp.TDSKIncremental
	return lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    &syncKind,
					Save:      &lsp.SaveOptions{IncludeText: false},
				},
			},
			CompletionProvider: &lsp.CompletionOptions{
				TriggerCharacters: []string{"\"", "'", "="},
			},
			HoverProvider:      true,
			CodeActionProvider: true,
			ExecuteCommandProvider: &lsp.ExecuteCommandOptions{
				Commands: []string{"cargotom-ls.openURL", "cargotom-ls.updateAll"},
			},
		},
	}, nil
}

// initWorkspace discovers the workspace root and lockfile rooted at
// rootPath and starts the filesystem watcher that keeps both current,
// matching spec.md §4.4's "rebuild the graph on save of any manifest"
// refresh policy.
func (s *Server) initWorkspace(rootPath string) {
	root, ok := workspace.Discover(rootPath)
	if !ok {
		s.logger.Warn("no Cargo.toml found under workspace root", zap.String("root", rootPath))
		return
	}
	graph := workspace.Build(root)
	lock, _, err := workspace.Lockfile(rootPathOf(graph.RootPath))
	if err != nil {
		s.logger.Warn("failed to parse Cargo.lock", zap.Error(err))
	}

	watcher, err := workspace.NewWatcher(s.logger, func(path string) {
		s.onWorkspaceFileChanged(rootPathOf(graph.RootPath))
	})
	if err != nil {
		s.logger.Warn("failed to start workspace watcher", zap.Error(err))
	} else if err := watcher.WatchGraph(graph, rootPathOf(graph.RootPath)); err != nil {
		s.logger.Warn("failed to watch workspace graph", zap.Error(err))
	}

	s.mu.Lock()
	s.graph = graph
	s.lockfile = lock
	s.watcher = watcher
	s.mu.Unlock()
}

// onWorkspaceFileChanged rebuilds the graph and lockfile snapshot after a
// manifest or lockfile changes on disk, then republishes diagnostics for
// every open document so inherited-dependency and lockfile-derived state
// (rules 3 and 7, inlay hints) stay current without an editor round trip.
func (s *Server) onWorkspaceFileChanged(rootDir string) {
	root, ok := workspace.Discover(rootDir)
	if !ok {
		return
	}
	graph := workspace.Build(root)
	lock, _, err := workspace.Lockfile(rootPathOf(graph.RootPath))
	if err != nil {
		s.logger.Warn("failed to reparse Cargo.lock after change", zap.Error(err))
	}

	s.mu.Lock()
	s.graph = graph
	s.lockfile = lock
	uris := make([]string, 0, len(s.documents))
	for uri := range s.documents {
		uris = append(uris, uri)
	}
	s.mu.Unlock()

	for _, uri := range uris {
		s.debouncer.schedule(uri)
	}
}

func (s *Server) handleShutdown() (interface{}, error) {
	return nil, nil
}

func (s *Server) handleExit() {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	close(s.shutdownCh)
}

func rootPathFromParams(p lsp.InitializeParams) string {
	if p.RootURI != "" {
		if path, err := uriToPath(string(p.RootURI)); err == nil {
			return path
		}
	}
	return p.RootPath
}

func uriToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("server: unsupported URI scheme %q", u.Scheme)
	}
	return u.Path, nil
}

func pathToURI(path string) string {
	return "file://" + path
}

// rootPathOf returns the directory containing a workspace root manifest,
// the directory workspace.Lockfile expects.
func rootPathOf(manifestPath string) string {
	return filepath.Dir(manifestPath)
}
