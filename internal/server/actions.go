package server

import (
	lsp "github.com/sourcegraph/go-lsp"

	"github.com/cargotom-ls/cargotom-ls/internal/analyzer"
)

// actionsToLSP translates the Analyzer's domain-shaped CodeActions into
// the wire shape: edit-producing actions become a WorkspaceEdit scoped to
// d's URI, non-edit actions (Open*, Update All) become a Command the
// client invokes via workspace/executeCommand.
func actionsToLSP(d *document, actions []analyzer.CodeAction) []CodeAction {
	out := make([]CodeAction, 0, len(actions))
	for _, a := range actions {
		switch a.Kind {
		case analyzer.ActionOpenDocs, analyzer.ActionOpenCratesIO, analyzer.ActionOpenSource, analyzer.ActionOpenHomepage:
			out = append(out, CodeAction{
				Title: a.Title,
				Kind:  CodeActionKindSource,
				Command: &Command{
					Title:     a.Title,
					Command:   "cargotom-ls.openURL",
					Arguments: []interface{}{a.URL},
				},
			})
		case analyzer.ActionUpdateAll:
			out = append(out, CodeAction{
				Title: a.Title,
				Kind:  CodeActionKindSource,
				Command: &Command{
					Title:   a.Title,
					Command: "cargotom-ls.updateAll",
				},
			})
		default:
			out = append(out, CodeAction{
				Title: a.Title,
				Kind:  CodeActionKindQuickFix,
				Edit: &lsp.WorkspaceEdit{
					Changes: map[string][]lsp.TextEdit{
						d.uri: textEditsToLSP(d.lines, a.Edits),
					},
				},
			})
		}
	}
	return out
}
