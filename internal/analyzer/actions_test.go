package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
)

func TestCodeActionsOffersExpandForShorthand(t *testing.T) {
	text := `
[dependencies]
ser@@de = "1.0"
`
	cursorText := strings.Replace(text, "@@", "", 1)
	offset := offsetOf(text, "@@")
	doc := manifest.Parse(cursorText)

	actions := CodeActions(context.Background(), doc, offset, nil, newTestProvider())
	var found bool
	for _, a := range actions {
		if a.Kind == ActionExpand {
			found = true
			if len(a.Edits) != 1 || !strings.Contains(a.Edits[0].Replacement, "version = \"1.0\"") {
				t.Fatalf("unexpected expand edit: %+v", a)
			}
		}
	}
	if !found {
		t.Fatalf("expected an Expand action, got %+v", actions)
	}
}

func TestCodeActionsOffersCollapseForVersionOnlyTable(t *testing.T) {
	text := `
[dependencies]
ser@@de = { version = "1.0" }
`
	cursorText := strings.Replace(text, "@@", "", 1)
	offset := offsetOf(text, "@@")
	doc := manifest.Parse(cursorText)

	actions := CodeActions(context.Background(), doc, offset, nil, newTestProvider())
	var found bool
	for _, a := range actions {
		if a.Kind == ActionCollapse {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a Collapse action, got %+v", actions)
	}
}

func TestCodeActionsOffersUpgrade(t *testing.T) {
	text := `
[dependencies]
ser@@de = "0.9"
`
	cursorText := strings.Replace(text, "@@", "", 1)
	offset := offsetOf(text, "@@")
	doc := manifest.Parse(cursorText)

	actions := CodeActions(context.Background(), doc, offset, nil, newTestProvider())
	var found bool
	for _, a := range actions {
		if a.Kind == ActionUpgrade {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an Upgrade action, got %+v", actions)
	}
}
