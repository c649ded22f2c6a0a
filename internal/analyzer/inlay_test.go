package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
	"github.com/cargotom-ls/cargotom-ls/internal/workspace"
)

func TestInlayHintsOnlyWhenResolvedDiffersFromRequirement(t *testing.T) {
	doc := manifest.Parse(`
[dependencies]
serde = "1.0"
tokio = "1.35.0"
`)

	dir := t.TempDir()
	lockPath := filepath.Join(dir, "Cargo.lock")
	lockText := `
[[package]]
name = "serde"
version = "1.0.195"

[[package]]
name = "tokio"
version = "1.35.0"
`
	if err := os.WriteFile(lockPath, []byte(lockText), 0o644); err != nil {
		t.Fatalf("write lockfile: %v", err)
	}

	snap, ok, err := workspace.Lockfile(dir)
	if err != nil || !ok {
		t.Fatalf("Lockfile: ok=%v err=%v", ok, err)
	}

	hints := InlayHints(doc, snap)
	if len(hints) != 1 {
		t.Fatalf("expected exactly one hint (serde differs, tokio matches), got %+v", hints)
	}
	if hints[0].Label != "(1.0.195)" {
		t.Fatalf("expected resolved version label, got %q", hints[0].Label)
	}
}
