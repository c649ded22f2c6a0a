package analyzer

import (
	"context"
	"fmt"

	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
	"github.com/cargotom-ls/cargotom-ls/internal/registry"
	"github.com/cargotom-ls/cargotom-ls/internal/semver"
	"github.com/cargotom-ls/cargotom-ls/internal/workspace"
)

// ActionKind distinguishes an edit-producing action from one that just
// invokes an external command (opening a URL, running `cargo update`).
type ActionKind int

const (
	ActionOpenDocs ActionKind = iota
	ActionOpenCratesIO
	ActionOpenSource
	ActionOpenHomepage
	ActionMakeWorkspaceDependency
	ActionExpand
	ActionCollapse
	ActionUpgrade
	ActionUpgradeAll
	ActionToggleOptional
	ActionUpdateAll
)

// TextEdit is one (span, replacement) pair, domain-shaped the way spec.md
// §4.5 describes code actions ("edits as a list of (range, replacement)
// pairs").
type TextEdit struct {
	Span        manifest.Span
	Replacement string
}

// CodeAction is one proposed fix. Edits is empty for the non-edit actions
// (Open*, Update All), which the server facade instead dispatches to an
// injected URL-opener/command-runner callback.
type CodeAction struct {
	Kind  ActionKind
	Title string
	Edits []TextEdit
	URL   string // ActionOpen* only
}

// CodeActions proposes fixes for the dependency entry under offset.
func CodeActions(ctx context.Context, doc *manifest.Document, offset int, graph *workspace.Graph, provider *registry.Provider) []CodeAction {
	cursor := manifest.Locate(doc, offset)
	name, fieldPath, ok := splitDependencyPath(cursor.Path)
	if !ok {
		return nil
	}
	_ = fieldPath
	if cursor.Table == nil {
		return nil
	}
	dep, entry, ok := dependencyValue(cursor.Table, name)
	if !ok {
		return nil
	}

	var actions []CodeAction

	if provider != nil {
		rec, err := provider.Lookup(ctx, name)
		if err == nil {
			if rec.Value.Documentation != "" {
				actions = append(actions, CodeAction{Kind: ActionOpenDocs, Title: "Open Docs", URL: rec.Value.Documentation})
			}
			actions = append(actions, CodeAction{Kind: ActionOpenCratesIO, Title: "Open crates.io", URL: "https://crates.io/crates/" + name})
			if rec.Value.Repository != "" {
				actions = append(actions, CodeAction{Kind: ActionOpenSource, Title: "Open Source", URL: rec.Value.Repository})
			}
			if rec.Value.Homepage != "" {
				actions = append(actions, CodeAction{Kind: ActionOpenHomepage, Title: "Open Homepage", URL: rec.Value.Homepage})
			}
		}
	}

	if graph != nil && !dep.WorkspaceInherited {
		if _, declared := graph.ResolveWorkspaceDependency(name); declared {
			actions = append(actions, CodeAction{
				Kind:  ActionMakeWorkspaceDependency,
				Title: "Make Workspace dependency",
				Edits: []TextEdit{{Span: entry.Value.Span, Replacement: "{ workspace = true }"}},
			})
		}
	}

	if expand, ok := expandAction(entry); ok {
		actions = append(actions, expand)
	}
	if collapse, ok := collapseAction(entry); ok {
		actions = append(actions, collapse)
	}

	if provider != nil && dep.Origin.Requirement != "" {
		if upgrade, ok := upgradeAction(ctx, provider, name, dep, entry); ok {
			actions = append(actions, upgrade)
		}
	}

	actions = append(actions, toggleOptionalAction(dep, entry))

	return actions
}

// expandAction proposes `"x.y"` -> `{ version = "x.y" }`.
func expandAction(entry *manifest.KeyValue) (CodeAction, bool) {
	if entry.Value == nil || entry.Value.Kind != manifest.KindString {
		return CodeAction{}, false
	}
	return CodeAction{
		Kind:  ActionExpand,
		Title: "Expand",
		Edits: []TextEdit{{Span: entry.Value.Span, Replacement: fmt.Sprintf("{ version = %q }", entry.Value.Str)}},
	}, true
}

// collapseAction proposes the inverse of Expand, only offered when the
// inline table has no field besides "version" to lose.
func collapseAction(entry *manifest.KeyValue) (CodeAction, bool) {
	if entry.Value == nil || entry.Value.Kind != manifest.KindInlineTable {
		return CodeAction{}, false
	}
	if len(entry.Value.Fields) != 1 || entry.Value.Fields[0].Key() != "version" {
		return CodeAction{}, false
	}
	versionStr := entry.Value.Fields[0].Value.Str
	return CodeAction{
		Kind:  ActionCollapse,
		Title: "Collapse",
		Edits: []TextEdit{{Span: entry.Value.Span, Replacement: fmt.Sprintf("%q", versionStr)}},
	}, true
}

func upgradeAction(ctx context.Context, provider *registry.Provider, name string, dep *manifest.Dependency, entry *manifest.KeyValue) (CodeAction, bool) {
	res, err := provider.Versions(ctx, name)
	if err != nil {
		return CodeAction{}, false
	}
	req, perr := semver.ParseRequirement(dep.Origin.Requirement)
	if perr != nil {
		return CodeAction{}, false
	}
	var yanked []semver.Yanked
	for _, vm := range res.Value {
		v, verr := semver.ParseVersion(vm.Version)
		if verr == nil {
			yanked = append(yanked, semver.Yanked{Version: v, IsYanked: vm.Yanked})
		}
	}
	latest, ok := semver.Latest(req, yanked, semver.LatestOptions{})
	if !ok {
		return CodeAction{}, false
	}
	bumped := semver.Bump(dep.Origin.Requirement, latest)
	return CodeAction{
		Kind:  ActionUpgrade,
		Title: fmt.Sprintf("Upgrade %s to %s", name, latest.String()),
		Edits: []TextEdit{{Span: requirementSpan(entry), Replacement: fmt.Sprintf("%q", bumped)}},
	}, true
}

func toggleOptionalAction(dep *manifest.Dependency, entry *manifest.KeyValue) CodeAction {
	title := "Toggle optional"
	if entry.Value == nil || entry.Value.Kind != manifest.KindInlineTable {
		return CodeAction{
			Kind:  ActionToggleOptional,
			Title: title,
			Edits: []TextEdit{{Span: entry.Value.Span, Replacement: fmt.Sprintf("{ version = %q, optional = true }", entry.Value.Str)}},
		}
	}
	for _, f := range entry.Value.Fields {
		if f.Key() == "optional" {
			replacement := "false"
			if !dep.Optional {
				replacement = "true"
			}
			return CodeAction{Kind: ActionToggleOptional, Title: title, Edits: []TextEdit{{Span: f.Value.Span, Replacement: replacement}}}
		}
	}
	return CodeAction{
		Kind:  ActionToggleOptional,
		Title: title,
		Edits: []TextEdit{{Span: manifest.Span{Start: entry.Value.BraceSpan.End - 1, End: entry.Value.BraceSpan.End - 1}, Replacement: ", optional = true"}},
	}
}

// UpgradeAll bumps every requirement in doc to its matched latest version,
// backing the "Upgrade All" action.
func UpgradeAll(ctx context.Context, doc *manifest.Document, provider *registry.Provider) []TextEdit {
	var edits []TextEdit
	for _, table := range doc.DependencyTables() {
		for _, entry := range table.Entries {
			dep := manifest.LowerDependency(entry)
			if dep.Origin.Requirement == "" {
				continue
			}
			if action, ok := upgradeAction(ctx, provider, dep.Name, dep, entry); ok {
				edits = append(edits, action.Edits...)
			}
		}
	}
	return edits
}

// DocumentActions returns the document-wide actions spec.md §4.5 lists
// alongside the per-dependency ones: "Upgrade All" bundles UpgradeAll's
// edits into one action; "Update All" is a non-edit action the server
// facade dispatches to a host-provided package-manager callback.
func DocumentActions(ctx context.Context, doc *manifest.Document, provider *registry.Provider) []CodeAction {
	var actions []CodeAction
	if provider != nil {
		if edits := UpgradeAll(ctx, doc, provider); len(edits) > 0 {
			actions = append(actions, CodeAction{Kind: ActionUpgradeAll, Title: "Upgrade All", Edits: edits})
		}
	}
	actions = append(actions, CodeAction{Kind: ActionUpdateAll, Title: "Update All"})
	return actions
}
