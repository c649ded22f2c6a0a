package analyzer

import (
	"context"
	"errors"
	"fmt"

	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
	"github.com/cargotom-ls/cargotom-ls/internal/registry"
	"github.com/cargotom-ls/cargotom-ls/internal/semver"
	"github.com/cargotom-ls/cargotom-ls/internal/workspace"
)

// Severity mirrors LSP's DiagnosticSeverity ordering (Error=1 ... Hint=4)
// without importing the protocol package.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInfo
	SeverityHint
)

// DiagnosticRule names which of spec.md §4.5's nine numbered rules
// produced a Diagnostic, so the server facade can key code actions off it
// without re-deriving the rule from the message text.
type DiagnosticRule int

const (
	RuleUnknownCrate DiagnosticRule = iota + 1
	RuleNoMatchingVersion
	RuleNewerVersionAvailable
	RuleUnknownFeature
	RuleDuplicateDependencyKey
	RuleDuplicateFeature
	RuleWorkspaceTrueNotDeclared
	RuleConflictingOrigin
	RuleUndeclaredOptionalDepFeature
)

// Diagnostic is one finding, domain-shaped; internal/server maps Span to
// an LSP Range and Severity/Rule to protocol-specific fields.
type Diagnostic struct {
	Rule     DiagnosticRule
	Severity Severity
	Message  string
	Span     manifest.Span
}

// Diagnostics runs every rule in spec.md §4.5 over doc and returns the
// union, recomputed wholesale on every debounced edit per spec.md's
// refresh policy (the Analyzer itself is stateless; debouncing is the
// server facade's job).
func Diagnostics(ctx context.Context, doc *manifest.Document, graph *workspace.Graph, provider *registry.Provider) []Diagnostic {
	var out []Diagnostic
	for _, table := range doc.DependencyTables() {
		out = append(out, duplicateKeyDiagnostics(table)...)
		for _, entry := range table.Entries {
			dep := manifest.LowerDependency(entry)
			out = append(out, crateAndVersionDiagnostics(ctx, provider, dep, entry)...)
			out = append(out, dependencyFeatureDiagnostics(ctx, provider, dep)...)
			out = append(out, duplicateFeatureDiagnostics(dep)...)
			out = append(out, workspaceOriginDiagnostics(graph, dep, entry)...)
		}
	}
	out = append(out, featuresTableDiagnostics(doc)...)
	return out
}

// Rule 5: duplicate dependency key within the same table.
func duplicateKeyDiagnostics(table *manifest.Table) []Diagnostic {
	var out []Diagnostic
	seen := make(map[string]bool)
	for _, e := range table.Entries {
		key := e.Key()
		if seen[key] {
			out = append(out, Diagnostic{
				Rule:     RuleDuplicateDependencyKey,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("duplicate dependency key %q", key),
				Span:     e.KeySpan,
			})
		}
		seen[key] = true
	}
	return out
}

// Rules 1, 2, 3, 8: crate existence, requirement satisfaction, upgrade
// availability, and conflicting-origin.
func crateAndVersionDiagnostics(ctx context.Context, provider *registry.Provider, dep *manifest.Dependency, entry *manifest.KeyValue) []Diagnostic {
	var out []Diagnostic

	if dep.HasConflictingOrigin {
		out = append(out, Diagnostic{
			Rule:     RuleConflictingOrigin,
			Severity: SeverityError,
			Message:  fmt.Sprintf("%q specifies more than one conflicting origin (workspace/path/git/version)", dep.Name),
			Span:     entry.Span,
		})
	}

	if provider == nil || dep.Origin.Requirement == "" {
		return out
	}

	res, err := provider.Lookup(ctx, dep.Name)
	if err != nil {
		var notFound *registry.ErrNotFound
		if errors.As(err, &notFound) {
			out = append(out, Diagnostic{
				Rule:     RuleUnknownCrate,
				Severity: SeverityError,
				Message:  fmt.Sprintf("unknown crate %q", dep.Name),
				Span:     entry.KeySpan,
			})
		}
		return out
	}

	req, perr := semver.ParseRequirement(dep.Origin.Requirement)
	if perr != nil {
		return out
	}

	versionSpan := requirementSpan(entry)
	var yanked []semver.Yanked
	for _, vm := range res.Value.Versions {
		v, verr := semver.ParseVersion(vm.Version)
		if verr != nil {
			continue
		}
		yanked = append(yanked, semver.Yanked{Version: v, IsYanked: vm.Yanked})
	}

	latest, ok := semver.Latest(req, yanked, semver.LatestOptions{})
	if !ok {
		out = append(out, Diagnostic{
			Rule:     RuleNoMatchingVersion,
			Severity: SeverityError,
			Message:  fmt.Sprintf("no published version of %q satisfies %q", dep.Name, dep.Origin.Requirement),
			Span:     versionSpan,
		})
		return out
	}

	// Rule 3: requirement is satisfied, but a newer version exists. Any
	// published (unyanked) version strictly newer than the matched one
	// counts, not just ones the current requirement would itself match.
	for _, vm := range res.Value.Versions {
		if vm.Yanked {
			continue
		}
		v, verr := semver.ParseVersion(vm.Version)
		if verr != nil {
			continue
		}
		if latest.LessThan(v) {
			out = append(out, Diagnostic{
				Rule:     RuleNewerVersionAvailable,
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("%s %s is available (matched %s)", dep.Name, v.String(), latest.String()),
				Span:     versionSpan,
			})
			break
		}
	}

	return out
}

// requirementSpan returns the span of the requirement text itself: the
// whole value for a shorthand string, or the nested "version" field's
// value for an expanded table.
func requirementSpan(entry *manifest.KeyValue) manifest.Span {
	if entry.Value == nil {
		return entry.Span
	}
	if entry.Value.Kind == manifest.KindInlineTable {
		if v := entry.Value.Fields; v != nil {
			for _, f := range v {
				if f.Key() == "version" && f.Value != nil {
					return f.Value.Span
				}
			}
		}
	}
	return entry.Value.Span
}

// Rule 4: a listed feature absent from the resolved version's feature set,
// the same resolution featureCompletion (completion.go) uses to subtract
// already-enabled features from its suggestions.
func dependencyFeatureDiagnostics(ctx context.Context, provider *registry.Provider, dep *manifest.Dependency) []Diagnostic {
	if provider == nil || len(dep.Features) == 0 {
		return nil
	}

	version, resolved := resolveMatchedVersion(ctx, provider, dep.Name, dep)
	if !resolved {
		return nil
	}
	feats, err := provider.Features(ctx, dep.Name, version)
	if err != nil {
		return nil
	}

	known := make(map[string]bool, len(feats.Value))
	for _, f := range feats.Value {
		known[f] = true
	}

	var out []Diagnostic
	for i, f := range dep.Features {
		if _, isDepRef := parseDepFeatureRef(f); isDepRef {
			// "dep:other" / "other?/feat" names another crate's feature,
			// not one of dep's own; out of scope for this rule.
			continue
		}
		if known[f] {
			continue
		}
		out = append(out, Diagnostic{
			Rule:     RuleUnknownFeature,
			Severity: SeverityError,
			Message:  fmt.Sprintf("%q has no feature %q in %s %s", dep.Name, f, dep.Name, version),
			Span:     dep.FeatureSpans[i],
		})
	}
	return out
}

// Rule 6: duplicate feature listed twice in the same features array.
func duplicateFeatureDiagnostics(dep *manifest.Dependency) []Diagnostic {
	var out []Diagnostic
	seen := make(map[string]bool)
	for i, f := range dep.Features {
		if seen[f] {
			out = append(out, Diagnostic{
				Rule:     RuleDuplicateFeature,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("duplicate feature %q", f),
				Span:     dep.FeatureSpans[i],
			})
		}
		seen[f] = true
	}
	return out
}

// Rule 7: `workspace = true` for a crate absent from [workspace.dependencies].
func workspaceOriginDiagnostics(graph *workspace.Graph, dep *manifest.Dependency, entry *manifest.KeyValue) []Diagnostic {
	if !dep.WorkspaceInherited || graph == nil {
		return nil
	}
	if _, ok := graph.ResolveWorkspaceDependency(dep.Name); ok {
		return nil
	}
	return []Diagnostic{{
		Rule:     RuleWorkspaceTrueNotDeclared,
		Severity: SeverityError,
		Message:  fmt.Sprintf("%q uses workspace = true but is not declared in the workspace root's [workspace.dependencies]", dep.Name),
		Span:     entry.Span,
	}}
}

// Rule 9: `dep:X` in [features] referencing an X that isn't an optional
// dependency anywhere in the document.
func featuresTableDiagnostics(doc *manifest.Document) []Diagnostic {
	ft := doc.FeaturesTable()
	if ft == nil {
		return nil
	}

	optional := make(map[string]bool)
	for _, deps := range doc.Dependencies() {
		for _, d := range deps {
			if d.Optional {
				optional[d.Name] = true
			}
		}
	}

	var out []Diagnostic
	for _, e := range ft.Entries {
		if e.Value == nil || e.Value.Kind != manifest.KindArray {
			continue
		}
		for _, el := range e.Value.Elements {
			depName, isDepRef := parseDepFeatureRef(el.Str)
			if !isDepRef {
				continue
			}
			if !optional[depName] {
				out = append(out, Diagnostic{
					Rule:     RuleUndeclaredOptionalDepFeature,
					Severity: SeverityError,
					Message:  fmt.Sprintf("%q is not declared as an optional dependency", depName),
					Span:     el.Span,
				})
			}
		}
	}
	return out
}

// parseDepFeatureRef recognizes `dep:<name>` and `<name>?/<feature>`
// feature-value forms, returning the referenced dependency name.
func parseDepFeatureRef(s string) (depName string, ok bool) {
	if len(s) > len("dep:") && s[:len("dep:")] == "dep:" {
		return s[len("dep:"):], true
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '?' && i+1 < len(s) && s[i+1] == '/' {
			return s[:i], true
		}
		if s[i] == '/' {
			// plain "<dep>/<feature>" form also names a dependency, but
			// that dependency need not be optional (spec.md rule 9 only
			// applies to the `?/`/`dep:` optional-dependency forms).
			return "", false
		}
	}
	return "", false
}
