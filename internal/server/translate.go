package server

import (
	lsp "github.com/sourcegraph/go-lsp"

	"github.com/cargotom-ls/cargotom-ls/internal/analyzer"
	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
)

func spanToRange(lines *manifest.LineIndex, span manifest.Span) lsp.Range {
	return lsp.Range{
		Start: positionToLSP(lines.Position(span.Start)),
		End:   positionToLSP(lines.Position(span.End)),
	}
}

func positionToLSP(p manifest.Position) lsp.Position {
	return lsp.Position{Line: p.Line, Character: p.Character}
}

func positionFromLSP(p lsp.Position) manifest.Position {
	return manifest.Position{Line: p.Line, Character: p.Character}
}

func offsetFromLSPPosition(lines *manifest.LineIndex, p lsp.Position) int {
	return lines.Offset(positionFromLSP(p))
}

func completionItemKindToLSP(kind analyzer.CompletionItemKind) lsp.CompletionItemKind {
	switch kind {
	case analyzer.CompletionCrateName:
		return lsp.CIKModule
	case analyzer.CompletionVersion:
		return lsp.CIKValue
	case analyzer.CompletionFeature:
		return lsp.CIKProperty
	case analyzer.CompletionSectionHeader:
		return lsp.CIKClass
	case analyzer.CompletionWorkspaceShortcut:
		return lsp.CIKSnippet
	default:
		return lsp.CIKText
	}
}

func completionListToLSP(lines *manifest.LineIndex, list analyzer.CompletionList) lsp.CompletionList {
	items := make([]lsp.CompletionItem, 0, len(list.Items))
	for _, it := range list.Items {
		item := lsp.CompletionItem{
			Label:         it.Label,
			Kind:          completionItemKindToLSP(it.Kind),
			Detail:        it.Detail,
			Documentation: it.Documentation,
			InsertText:    it.InsertText,
		}
		if it.ReplaceSpan != nil {
			r := spanToRange(lines, *it.ReplaceSpan)
			item.TextEdit = &lsp.TextEdit{Range: r, NewText: it.InsertText}
		}
		items = append(items, item)
	}
	return lsp.CompletionList{IsIncomplete: list.IsIncomplete, Items: items}
}

func hoverToLSP(lines *manifest.LineIndex, h *analyzer.HoverContent) *lsp.Hover {
	if h == nil {
		return nil
	}
	r := spanToRange(lines, h.Span)
	return &lsp.Hover{
		Contents: []lsp.MarkedString{lsp.RawMarkedString(h.Markdown)},
		Range:    &r,
	}
}

func textEditsToLSP(lines *manifest.LineIndex, edits []analyzer.TextEdit) []lsp.TextEdit {
	out := make([]lsp.TextEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, lsp.TextEdit{Range: spanToRange(lines, e.Span), NewText: e.Replacement})
	}
	return out
}

func inlayHintsToLSP(lines *manifest.LineIndex, hints []analyzer.InlayHint) []InlayHint {
	out := make([]InlayHint, 0, len(hints))
	for _, h := range hints {
		out = append(out, InlayHint{
			Position:    positionToLSP(lines.Position(h.Offset)),
			Label:       " " + h.Label,
			Kind:        1,
			PaddingLeft: true,
		})
	}
	return out
}
