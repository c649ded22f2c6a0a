package server

import (
	"testing"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/cargotom-ls/cargotom-ls/internal/analyzer"
	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
)

func TestPositionRoundTripsThroughLineIndex(t *testing.T) {
	text := "[dependencies]\nserde = \"1.0\"\ntokio = \"1.0\"\n"
	lines := manifest.NewLineIndex(text)

	offset := len("[dependencies]\nserde = \"")
	pos := lines.Position(offset)
	if pos.Line != 1 {
		t.Fatalf("expected line 1, got %d", pos.Line)
	}

	back := lines.Offset(positionFromLSP(positionToLSP(pos)))
	if back != offset {
		t.Fatalf("round trip mismatch: started at %d, got back %d", offset, back)
	}
}

func TestSpanToRangeCoversMultiByteLine(t *testing.T) {
	text := "name = \"café\"\nversion = \"1\"\n"
	lines := manifest.NewLineIndex(text)

	span := manifest.Span{Start: 8, End: 14}
	r := spanToRange(lines, span)
	if r.Start.Line != 0 || r.End.Line != 0 {
		t.Fatalf("expected both endpoints on line 0, got %+v", r)
	}
	if r.End.Character <= r.Start.Character {
		t.Fatalf("expected end column after start column, got %+v", r)
	}
}

func TestCompletionItemKindToLSPMapping(t *testing.T) {
	cases := []struct {
		in   analyzer.CompletionItemKind
		want lsp.CompletionItemKind
	}{
		{analyzer.CompletionCrateName, lsp.CIKModule},
		{analyzer.CompletionVersion, lsp.CIKValue},
		{analyzer.CompletionFeature, lsp.CIKProperty},
		{analyzer.CompletionSectionHeader, lsp.CIKClass},
		{analyzer.CompletionWorkspaceShortcut, lsp.CIKSnippet},
	}
	for _, c := range cases {
		if got := completionItemKindToLSP(c.in); got != c.want {
			t.Errorf("completionItemKindToLSP(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCompletionListToLSPCarriesReplaceSpanAsTextEdit(t *testing.T) {
	text := "serde = \"1.0\""
	lines := manifest.NewLineIndex(text)
	span := manifest.Span{Start: 0, End: 5}

	list := analyzer.CompletionList{Items: []analyzer.CompletionItem{
		{Label: "serde", InsertText: "serde", Kind: analyzer.CompletionCrateName, ReplaceSpan: &span},
	}}

	out := completionListToLSP(lines, list)
	if len(out.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out.Items))
	}
	edit := out.Items[0].TextEdit
	if edit == nil {
		t.Fatal("expected a TextEdit derived from ReplaceSpan")
	}
	if edit.NewText != "serde" {
		t.Fatalf("expected NewText %q, got %q", "serde", edit.NewText)
	}
}

func TestHoverToLSPNilWhenNoContent(t *testing.T) {
	lines := manifest.NewLineIndex("")
	if got := hoverToLSP(lines, nil); got != nil {
		t.Fatalf("expected nil Hover for nil content, got %+v", got)
	}
}
