package analyzer

import (
	"context"
	"testing"

	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
	"github.com/cargotom-ls/cargotom-ls/internal/workspace"
)

func findRule(diags []Diagnostic, rule DiagnosticRule) *Diagnostic {
	for i := range diags {
		if diags[i].Rule == rule {
			return &diags[i]
		}
	}
	return nil
}

func TestDiagnosticsUnknownCrate(t *testing.T) {
	doc := manifest.Parse(`
[dependencies]
totally-not-a-real-crate = "1.0"
`)
	diags := Diagnostics(context.Background(), doc, nil, newTestProvider())
	if findRule(diags, RuleUnknownCrate) == nil {
		t.Fatalf("expected RuleUnknownCrate, got %+v", diags)
	}
}

func TestDiagnosticsNoMatchingVersion(t *testing.T) {
	doc := manifest.Parse(`
[dependencies]
serde = "99.0"
`)
	diags := Diagnostics(context.Background(), doc, nil, newTestProvider())
	if findRule(diags, RuleNoMatchingVersion) == nil {
		t.Fatalf("expected RuleNoMatchingVersion, got %+v", diags)
	}
}

func TestDiagnosticsNewerVersionAvailable(t *testing.T) {
	doc := manifest.Parse(`
[dependencies]
serde = "0.9"
`)
	diags := Diagnostics(context.Background(), doc, nil, newTestProvider())
	if findRule(diags, RuleNewerVersionAvailable) == nil {
		t.Fatalf("expected RuleNewerVersionAvailable, got %+v", diags)
	}
}

func TestDiagnosticsDuplicateDependencyKey(t *testing.T) {
	doc := manifest.Parse(`
[dependencies]
serde = "1.0"
serde = "1.0"
`)
	diags := Diagnostics(context.Background(), doc, nil, newTestProvider())
	if findRule(diags, RuleDuplicateDependencyKey) == nil {
		t.Fatalf("expected RuleDuplicateDependencyKey, got %+v", diags)
	}
}

func TestDiagnosticsDuplicateFeature(t *testing.T) {
	doc := manifest.Parse(`
[dependencies]
serde = { version = "1.0", features = ["derive", "derive"] }
`)
	diags := Diagnostics(context.Background(), doc, nil, newTestProvider())
	if findRule(diags, RuleDuplicateFeature) == nil {
		t.Fatalf("expected RuleDuplicateFeature, got %+v", diags)
	}
}

func TestDiagnosticsWorkspaceTrueNotDeclared(t *testing.T) {
	doc := manifest.Parse(`
[dependencies]
serde = { workspace = true }
`)
	graph := &workspace.Graph{Root: &workspace.Node{InheritedDeps: map[string]*manifest.Dependency{}}}
	diags := Diagnostics(context.Background(), doc, graph, newTestProvider())
	if findRule(diags, RuleWorkspaceTrueNotDeclared) == nil {
		t.Fatalf("expected RuleWorkspaceTrueNotDeclared, got %+v", diags)
	}
}

func TestDiagnosticsConflictingOrigin(t *testing.T) {
	doc := manifest.Parse(`
[dependencies]
serde = { version = "1.0", path = "../serde" }
`)
	diags := Diagnostics(context.Background(), doc, nil, newTestProvider())
	if findRule(diags, RuleConflictingOrigin) == nil {
		t.Fatalf("expected RuleConflictingOrigin, got %+v", diags)
	}
}

func TestDiagnosticsUndeclaredOptionalDepFeature(t *testing.T) {
	doc := manifest.Parse(`
[dependencies]
serde = "1.0"

[features]
extra = ["dep:serde"]
`)
	diags := Diagnostics(context.Background(), doc, nil, newTestProvider())
	if findRule(diags, RuleUndeclaredOptionalDepFeature) == nil {
		t.Fatalf("expected RuleUndeclaredOptionalDepFeature, got %+v", diags)
	}
}

func TestDiagnosticsUnknownFeature(t *testing.T) {
	doc := manifest.Parse(`
[dependencies]
serde = { version = "1.0", features = ["not-a-real-feature"] }
`)
	diags := Diagnostics(context.Background(), doc, nil, newTestProvider())
	diag := findRule(diags, RuleUnknownFeature)
	if diag == nil {
		t.Fatalf("expected RuleUnknownFeature, got %+v", diags)
	}
	if diag.Severity != SeverityError {
		t.Fatalf("expected SeverityError, got %v", diag.Severity)
	}
}

func TestDiagnosticsNoFalsePositiveForKnownFeature(t *testing.T) {
	doc := manifest.Parse(`
[dependencies]
serde = { version = "1.0", features = ["derive"] }
`)
	diags := Diagnostics(context.Background(), doc, nil, newTestProvider())
	if findRule(diags, RuleUnknownFeature) != nil {
		t.Fatalf("expected no RuleUnknownFeature for a known feature, got %+v", diags)
	}
}

func TestDiagnosticsNoFalsePositiveForOptionalDepFeatureRef(t *testing.T) {
	doc := manifest.Parse(`
[dependencies]
serde = { version = "1.0", optional = true, features = ["serde?/derive"] }
`)
	diags := Diagnostics(context.Background(), doc, nil, newTestProvider())
	if findRule(diags, RuleUnknownFeature) != nil {
		t.Fatalf("expected no RuleUnknownFeature for a dep-feature-ref entry, got %+v", diags)
	}
}

func TestDiagnosticsNoFalsePositiveForDeclaredOptionalDep(t *testing.T) {
	doc := manifest.Parse(`
[dependencies]
serde = { version = "1.0", optional = true }

[features]
extra = ["dep:serde"]
`)
	diags := Diagnostics(context.Background(), doc, nil, newTestProvider())
	if findRule(diags, RuleUndeclaredOptionalDepFeature) != nil {
		t.Fatalf("expected no RuleUndeclaredOptionalDepFeature for a declared optional dep, got %+v", diags)
	}
}
