package server

import (
	"context"
	"encoding/json"
	"fmt"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/cargotom-ls/cargotom-ls/internal/analyzer"
	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
)

// handle is the single jsonrpc2.Handler entry point; it dispatches by
// method name the way the teacher's internal/rpc.Server.handleRequest
// dispatches by Operation, just against LSP method strings instead of a
// closed Op enum.
func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(ctx, *req.Params)
	case "initialized":
		return nil, nil
	case "shutdown":
		return s.handleShutdown()
	case "exit":
		s.handleExit()
		return nil, nil

	case "textDocument/didOpen":
		return nil, s.handleDidOpen(*req.Params)
	case "textDocument/didChange":
		return nil, s.handleDidChange(*req.Params)
	case "textDocument/didClose":
		return nil, s.handleDidClose(*req.Params)
	case "textDocument/didSave":
		return nil, s.handleDidSave(*req.Params)

	case "textDocument/completion":
		return s.handleCompletion(ctx, *req.Params)
	case "textDocument/hover":
		return s.handleHover(ctx, *req.Params)
	case "textDocument/codeAction":
		return s.handleCodeAction(ctx, *req.Params)
	case "textDocument/inlayHint":
		return s.handleInlayHint(ctx, *req.Params)

	case "workspace/executeCommand":
		return s.handleExecuteCommand(ctx, *req.Params)
	case "workspace/didChangeWatchedFiles":
		return nil, nil

	default:
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not supported: %s", req.Method),
		}
	}
}

func newDocument(uri, text string) *document {
	return &document{
		uri:   uri,
		doc:   manifest.Parse(text),
		lines: manifest.NewLineIndex(text),
	}
}

func (s *Server) handleDidOpen(raw json.RawMessage) error {
	var p lsp.DidOpenTextDocumentParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("server: decode didOpen: %w", err)
	}
	uri := string(p.TextDocument.URI)
	d := newDocument(uri, p.TextDocument.Text)
	d.version = p.TextDocument.Version
	s.setDocument(d)
	s.debouncer.schedule(uri)
	return nil
}

func (s *Server) handleDidChange(raw json.RawMessage) error {
	var p lsp.DidChangeTextDocumentParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("server: decode didChange: %w", err)
	}
	uri := string(p.TextDocument.URI)

	d, ok := s.getDocument(uri)
	if !ok {
		return nil
	}

	text := d.doc.Text
	edits := make([]struct {
		Range       manifest.Range
		Replacement string
	}, 0, len(p.ContentChanges))
	for _, c := range p.ContentChanges {
		if c.Range == nil {
			text = c.Text
			edits = nil
			break
		}
		edits = append(edits, struct {
			Range       manifest.Range
			Replacement string
		}{
			Range: manifest.Range{
				Start: offsetFromLSPPosition(d.lines, c.Range.Start),
				End:   offsetFromLSPPosition(d.lines, c.Range.End),
			},
			Replacement: c.Text,
		})
	}

	var newDoc *manifest.Document
	if len(edits) > 0 {
		newDoc = manifest.ApplyEdits(d.doc, edits)
	} else {
		newDoc = manifest.Parse(text)
	}

	s.setDocument(&document{
		uri:     uri,
		version: p.TextDocument.Version,
		doc:     newDoc,
		lines:   manifest.NewLineIndex(newDoc.Text),
	})
	s.debouncer.schedule(uri)
	return nil
}

func (s *Server) handleDidClose(raw json.RawMessage) error {
	var p lsp.DidCloseTextDocumentParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("server: decode didClose: %w", err)
	}
	uri := string(p.TextDocument.URI)
	s.debouncer.cancel(uri)
	s.dropDocument(uri)
	return nil
}

func (s *Server) handleDidSave(raw json.RawMessage) error {
	var p lsp.DidSaveTextDocumentParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("server: decode didSave: %w", err)
	}
	s.debouncer.schedule(string(p.TextDocument.URI))
	return nil
}

func (s *Server) handleCompletion(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var p lsp.TextDocumentPositionParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("server: decode completion params: %w", err)
	}
	d, ok := s.getDocument(string(p.TextDocument.URI))
	if !ok {
		return lsp.CompletionList{}, nil
	}
	offset := offsetFromLSPPosition(d.lines, p.Position)

	list, err := analyzer.Completion(ctx, d.doc, offset, s.currentGraph(), s.provider, s.currentConfig())
	if err != nil {
		return nil, fmt.Errorf("server: completion: %w", err)
	}
	return completionListToLSP(d.lines, list), nil
}

func (s *Server) handleHover(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var p lsp.TextDocumentPositionParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("server: decode hover params: %w", err)
	}
	d, ok := s.getDocument(string(p.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	offset := offsetFromLSPPosition(d.lines, p.Position)

	hover, ok := analyzer.Hover(ctx, d.doc, offset, s.provider, s.currentConfig())
	if !ok {
		return nil, nil
	}
	return hoverToLSP(d.lines, hover), nil
}

func (s *Server) handleCodeAction(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var p CodeActionParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("server: decode codeAction params: %w", err)
	}
	d, ok := s.getDocument(string(p.TextDocument.URI))
	if !ok {
		return []CodeAction{}, nil
	}
	offset := offsetFromLSPPosition(d.lines, p.Range.Start)

	actions := analyzer.CodeActions(ctx, d.doc, offset, s.currentGraph(), s.provider)
	actions = append(actions, analyzer.DocumentActions(ctx, d.doc, s.provider)...)

	return actionsToLSP(d, actions), nil
}

func (s *Server) handleInlayHint(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var p InlayHintParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("server: decode inlayHint params: %w", err)
	}
	d, ok := s.getDocument(string(p.TextDocument.URI))
	if !ok {
		return []InlayHint{}, nil
	}

	hints := analyzer.InlayHints(d.doc, s.currentLockfile())
	return inlayHintsToLSP(d.lines, hints), nil
}
