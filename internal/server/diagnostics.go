package server

import (
	"context"
	"time"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/cargotom-ls/cargotom-ls/internal/analyzer"
)

// recomputeDiagnostics runs the Analyzer's nine rules over uri's current
// document and publishes the result, the debouncer's fire callback.
func (s *Server) recomputeDiagnostics(uri string) {
	d, ok := s.getDocument(uri)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findings := analyzer.Diagnostics(ctx, d.doc, s.currentGraph(), s.provider)
	s.publishDiagnostics(uri, d, findings)
}

func (s *Server) publishDiagnostics(uri string, d *document, findings []analyzer.Diagnostic) {
	diags := make([]lsp.Diagnostic, 0, len(findings))
	for _, f := range findings {
		diags = append(diags, lsp.Diagnostic{
			Range:    spanToRange(d.lines, f.Span),
			Severity: severityToLSP(f.Severity),
			Source:   "cargotom-ls",
			Message:  f.Message,
			Code:     int(f.Rule),
		})
	}

	if s.conn == nil {
		return
	}
	_ = s.conn.Notify(context.Background(), "textDocument/publishDiagnostics", lsp.PublishDiagnosticsParams{
		URI:         lsp.DocumentURI(uri),
		Diagnostics: diags,
	})
}

func severityToLSP(sev analyzer.Severity) lsp.DiagnosticSeverity {
	switch sev {
	case analyzer.SeverityError:
		return lsp.Error
	case analyzer.SeverityWarning:
		return lsp.Warning
	case analyzer.SeverityInfo:
		return lsp.Information
	default:
		return lsp.Hint
	}
}
