package server

import (
	lsp "github.com/sourcegraph/go-lsp"
)

// This file hand-defines the slice of the LSP wire protocol that postdates
// github.com/sourcegraph/go-lsp's vendored struct set: the CodeAction
// literal (LSP 3.8, go-lsp only ever shipped the older Command form) and
// inlay hints (LSP 3.17). Field tags follow go-lsp's own lowerCamelCase
// convention so a real client decodes them the same way.

// CodeActionKind mirrors the handful of LSP-defined kinds this server
// emits; spec.md §4.5's actions are all either a "quickfix" or a bare
// source action.
type CodeActionKind string

const (
	CodeActionKindQuickFix CodeActionKind = "quickfix"
	CodeActionKindSource   CodeActionKind = "source"
)

// CodeActionContext carries the diagnostics already computed for the
// requested range, so a handler can offer "fix this diagnostic" actions
// without recomputing them.
type CodeActionContext struct {
	Diagnostics []lsp.Diagnostic `json:"diagnostics"`
}

// CodeActionParams is textDocument/codeAction's request shape.
type CodeActionParams struct {
	TextDocument lsp.TextDocumentIdentifier `json:"textDocument"`
	Range        lsp.Range                  `json:"range"`
	Context      CodeActionContext          `json:"context"`
}

// CodeAction is one entry of textDocument/codeAction's response. Edit is
// nil for the non-edit actions (Open*, Update All); Command carries the
// client-side verb the editor should invoke instead (open a URL, run
// `cargo update`).
type CodeAction struct {
	Title       string             `json:"title"`
	Kind        CodeActionKind     `json:"kind,omitempty"`
	Diagnostics []lsp.Diagnostic   `json:"diagnostics,omitempty"`
	Edit        *lsp.WorkspaceEdit `json:"edit,omitempty"`
	Command     *Command           `json:"command,omitempty"`
}

// Command is the client-invoked verb attached to a non-edit CodeAction.
// Arguments[0] carries the URL for cargotom-ls.openURL, or is empty for
// cargotom-ls.updateAll.
type Command struct {
	Title     string        `json:"title"`
	Command   string        `json:"command"`
	Arguments []interface{} `json:"arguments,omitempty"`
}

// InlayHintParams is textDocument/inlayHint's request shape.
type InlayHintParams struct {
	TextDocument lsp.TextDocumentIdentifier `json:"textDocument"`
	Range        lsp.Range                  `json:"range"`
}

// InlayHint is one entry of textDocument/inlayHint's response. Kind 1
// ("Type") is the closest LSP-defined kind to a resolved-version
// annotation; PaddingLeft keeps it visually separated from the
// requirement string it follows.
type InlayHint struct {
	Position    lsp.Position `json:"position"`
	Label       string       `json:"label"`
	Kind        int          `json:"kind,omitempty"`
	PaddingLeft bool         `json:"paddingLeft,omitempty"`
}

// ExecuteCommandParams is workspace/executeCommand's request shape, used
// for cargotom-ls.openURL and cargotom-ls.updateAll (see commands.go).
type ExecuteCommandParams struct {
	Command   string        `json:"command"`
	Arguments []interface{} `json:"arguments,omitempty"`
}
