package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/cargotom-ls/cargotom-ls/internal/config"
	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
)

func offsetOf(text, marker string) int {
	i := strings.Index(text, marker)
	if i < 0 {
		panic("marker not found: " + marker)
	}
	return i
}

func TestCompletionSuggestsVersionsNewestFirst(t *testing.T) {
	text := `
[dependencies]
serde = "@@"
`
	cursorText := strings.Replace(text, "@@", "", 1)
	offset := offsetOf(text, "@@")
	doc := manifest.Parse(cursorText)

	list, err := Completion(context.Background(), doc, offset, nil, newTestProvider(), config.Config{PerPage: 25})
	if err != nil {
		t.Fatalf("Completion: %v", err)
	}
	if len(list.Items) == 0 {
		t.Fatal("expected version suggestions")
	}
	if list.Items[0].Label != "1.0.195" {
		t.Fatalf("expected newest version first, got %q", list.Items[0].Label)
	}
}

func TestCompletionExcludesPrereleaseWhenStableVersionConfigured(t *testing.T) {
	text := `
[dependencies]
tokio = "@@"
`
	cursorText := strings.Replace(text, "@@", "", 1)
	offset := offsetOf(text, "@@")
	doc := manifest.Parse(cursorText)

	list, err := Completion(context.Background(), doc, offset, nil, newTestProvider(), config.Config{PerPage: 25, StableVersion: true})
	if err != nil {
		t.Fatalf("Completion: %v", err)
	}
	for _, item := range list.Items {
		if item.Label == "1.0.0-alpha.1" {
			t.Fatalf("expected prerelease to be excluded, got %+v", list.Items)
		}
	}
}

func TestCompletionFeaturesExcludesAlreadyListed(t *testing.T) {
	text := `
[dependencies]
serde = { version = "1.0", features = ["derive", "@@"] }
`
	cursorText := strings.Replace(text, "@@", "", 1)
	offset := offsetOf(text, "@@")
	doc := manifest.Parse(cursorText)

	list, err := Completion(context.Background(), doc, offset, nil, newTestProvider(), config.Config{PerPage: 25})
	if err != nil {
		t.Fatalf("Completion: %v", err)
	}
	for _, item := range list.Items {
		if item.Label == "derive" {
			t.Fatalf("expected already-listed feature to be excluded, got %+v", list.Items)
		}
	}
	found := false
	for _, item := range list.Items {
		if item.Label == "std" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'std' feature to be suggested, got %+v", list.Items)
	}
}
