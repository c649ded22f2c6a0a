package analyzer

import (
	"context"

	"github.com/cargotom-ls/cargotom-ls/internal/config"
	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
	"github.com/cargotom-ls/cargotom-ls/internal/registry"
	"github.com/cargotom-ls/cargotom-ls/internal/semver"
	"github.com/cargotom-ls/cargotom-ls/internal/workspace"
)

// CompletionItemKind distinguishes what a CompletionItem completes, so the
// server facade can pick an appropriate LSP CompletionItemKind icon.
type CompletionItemKind int

const (
	CompletionCrateName CompletionItemKind = iota
	CompletionVersion
	CompletionFeature
	CompletionSectionHeader
	CompletionWorkspaceShortcut
)

// CompletionItem is one suggestion. ReplaceSpan, when non-nil, is the
// region InsertText should replace instead of simply being inserted at the
// cursor (used by the `workspace = true` shortcut, which replaces the
// whole dependency value).
type CompletionItem struct {
	Label         string
	InsertText    string
	Kind          CompletionItemKind
	Detail        string
	Documentation string
	ReplaceSpan   *manifest.Span
}

// CompletionList is the Analyzer's completion result. IsIncomplete mirrors
// spec.md §4.6: "completion requests may return incomplete lists marked as
// such, with a follow-up refresh sent... when full data arrives" — set
// whenever a registry round-trip was still in flight (served from a stale
// cache entry) rather than fully resolved.
type CompletionList struct {
	Items        []CompletionItem
	IsIncomplete bool
}

// Completion computes the completion list at offset in doc.
func Completion(ctx context.Context, doc *manifest.Document, offset int, graph *workspace.Graph, provider *registry.Provider, cfg config.Config) (CompletionList, error) {
	cursor := manifest.Locate(doc, offset)

	switch cursor.Kind {
	case manifest.CursorTableHeader:
		return sectionHeaderCompletion(cursor), nil
	case manifest.CursorKey:
		if name, fieldPath, ok := splitDependencyPath(cursor.Path); ok && len(fieldPath) == 0 {
			return crateNameCompletion(ctx, cursor, name, graph, provider, cfg)
		}
	case manifest.CursorStringValue:
		if name, fieldPath, ok := splitDependencyPath(cursor.Path); ok && (len(fieldPath) == 0 || (len(fieldPath) == 1 && fieldPath[0] == "version")) {
			return versionCompletion(ctx, cursor, name, graph, provider, cfg)
		}
	case manifest.CursorArrayElement:
		if name, fieldPath, ok := splitDependencyPath(cursor.Path); ok && len(fieldPath) == 1 && fieldPath[0] == "features" {
			return featureCompletion(ctx, cursor, name, provider)
		}
		if cursor.Table != nil && len(cursor.Table.HeaderPath) == 1 && cursor.Table.HeaderPath[0] == "features" {
			return localFeatureTableCompletion(doc, cursor), nil
		}
	}
	return CompletionList{}, nil
}

func sectionHeaderCompletion(cursor manifest.Cursor) CompletionList {
	prefix := ""
	if len(cursor.Path) > 0 {
		prefix = cursor.Path[len(cursor.Path)-1]
	}
	names := RankNames(prefix, manifest.TopLevelSections)
	items := make([]CompletionItem, 0, len(names))
	for _, n := range names {
		items = append(items, CompletionItem{Label: n, InsertText: n, Kind: CompletionSectionHeader})
	}
	return CompletionList{Items: items}
}

// crateNameCompletion implements spec.md §4.5's two-source ordering:
// workspace-declared dependencies not yet present in this table first,
// then a registry search for the partial prefix.
func crateNameCompletion(ctx context.Context, cursor manifest.Cursor, partial string, graph *workspace.Graph, provider *registry.Provider, cfg config.Config) (CompletionList, error) {
	already := make(map[string]bool)
	if cursor.Table != nil {
		for _, e := range cursor.Table.Entries {
			already[e.Key()] = true
		}
	}

	var items []CompletionItem
	if graph != nil && graph.Root != nil {
		var wsNames []string
		for name := range graph.Root.InheritedDeps {
			if !already[name] {
				wsNames = append(wsNames, name)
			}
		}
		for _, name := range RankNames(partial, wsNames) {
			items = append(items, CompletionItem{
				Label:      name,
				InsertText: name,
				Kind:       CompletionCrateName,
				Detail:     "workspace dependency",
			})
		}
	}

	incomplete := false
	if provider != nil && partial != "" {
		page, err := provider.Search(ctx, partial, 0, cfg.PerPage)
		if err == nil {
			incomplete = page.Stale
			for _, r := range page.Value.Results {
				if already[r.Name] {
					continue
				}
				items = append(items, CompletionItem{
					Label:         r.Name,
					InsertText:    r.Name,
					Kind:          CompletionCrateName,
					Documentation: r.Description,
				})
			}
		}
	}

	return CompletionList{Items: items, IsIncomplete: incomplete}, nil
}

// versionCompletion implements spec.md §4.5's version-field completion:
// newest-first, filtered by stable_version, with a `workspace = true`
// shortcut prepended when the crate is workspace-declared.
func versionCompletion(ctx context.Context, cursor manifest.Cursor, name string, graph *workspace.Graph, provider *registry.Provider, cfg config.Config) (CompletionList, error) {
	var items []CompletionItem

	if graph != nil {
		if _, ok := graph.ResolveWorkspaceDependency(name); ok {
			valueSpan := dependencyValueSpan(cursor)
			items = append(items, CompletionItem{
				Label:       "workspace = true",
				InsertText:  "{ workspace = true }",
				Kind:        CompletionWorkspaceShortcut,
				ReplaceSpan: valueSpan,
			})
		}
	}

	if provider == nil {
		return CompletionList{Items: items}, nil
	}

	res, err := provider.Versions(ctx, name)
	if err != nil {
		return CompletionList{Items: items}, nil //nolint:nilerr // unknown-crate is surfaced via diagnostics, not a completion error
	}

	for _, vm := range res.Value {
		v, perr := semver.ParseVersion(vm.Version)
		if perr == nil && cfg.StableVersion && v.IsPrerelease() {
			continue
		}
		items = append(items, CompletionItem{
			Label:      vm.Version,
			InsertText: vm.Version,
			Kind:       CompletionVersion,
		})
	}

	return CompletionList{Items: items, IsIncomplete: res.Stale}, nil
}

// dependencyValueSpan returns the span of the crate's whole dependency
// value (not just the version sub-field), the region the `workspace =
// true` shortcut replaces.
func dependencyValueSpan(cursor manifest.Cursor) *manifest.Span {
	if cursor.Table == nil {
		return nil
	}
	name, fieldPath, ok := splitDependencyPath(cursor.Path)
	if !ok {
		return nil
	}
	_ = fieldPath
	entry := cursor.Table.Get(name)
	if entry == nil || entry.Value == nil {
		return nil
	}
	span := entry.Value.Span
	return &span
}

// featureCompletion implements spec.md §4.5's dependency-features-array
// completion, resolving the dependency's matched version from its
// requirement text and subtracting already-listed features.
func featureCompletion(ctx context.Context, cursor manifest.Cursor, name string, provider *registry.Provider) (CompletionList, error) {
	if provider == nil || cursor.Table == nil {
		return CompletionList{}, nil
	}
	dep, _, ok := dependencyValue(cursor.Table, name)
	if !ok {
		return CompletionList{}, nil
	}

	version, resolved := resolveMatchedVersion(ctx, provider, name, dep)
	if !resolved {
		return CompletionList{}, nil
	}

	feats, err := provider.Features(ctx, name, version)
	if err != nil {
		return CompletionList{}, nil //nolint:nilerr // no data to suggest; not a user-facing error
	}

	existing := make(map[string]bool)
	if cursor.Entry != nil && cursor.Entry.Value != nil {
		for _, el := range cursor.Entry.Value.Elements {
			existing[el.Str] = true
		}
	}

	var items []CompletionItem
	for _, f := range feats.Value {
		if existing[f] {
			continue
		}
		items = append(items, CompletionItem{Label: f, InsertText: f, Kind: CompletionFeature})
	}
	return CompletionList{Items: items, IsIncomplete: feats.Stale}, nil
}

// resolveMatchedVersion finds the newest published version satisfying
// dep's requirement, the "resolved_version" spec.md §4.5 asks Features
// completion to key off of.
func resolveMatchedVersion(ctx context.Context, provider *registry.Provider, name string, dep *manifest.Dependency) (string, bool) {
	res, err := provider.Versions(ctx, name)
	if err != nil || len(res.Value) == 0 {
		return "", false
	}

	requirement := dep.Origin.Requirement
	if requirement == "" {
		// No version requirement to match (e.g. workspace = true, or a
		// path/git dependency): fall back to the newest non-yanked
		// published version.
		for _, vm := range res.Value {
			if !vm.Yanked {
				return vm.Version, true
			}
		}
		return "", false
	}

	req, err := semver.ParseRequirement(requirement)
	if err != nil {
		return "", false
	}
	var yanked []semver.Yanked
	for _, vm := range res.Value {
		v, perr := semver.ParseVersion(vm.Version)
		if perr != nil {
			continue
		}
		yanked = append(yanked, semver.Yanked{Version: v, IsYanked: vm.Yanked})
	}
	latest, ok := semver.Latest(req, yanked, semver.LatestOptions{})
	if !ok {
		return "", false
	}
	return latest.String(), true
}

// localFeatureTableCompletion implements spec.md §4.5's `[features]`
// value completion: local feature names, `dep:<optional-dep>`, and
// `<dep>?/<feature>` forms.
func localFeatureTableCompletion(doc *manifest.Document, cursor manifest.Cursor) CompletionList {
	var items []CompletionItem

	if ft := doc.FeaturesTable(); ft != nil {
		currentKey := cursor.Entry.Key()
		for _, e := range ft.Entries {
			if e.Key() == currentKey {
				continue
			}
			items = append(items, CompletionItem{Label: e.Key(), InsertText: e.Key(), Kind: CompletionFeature})
		}
	}

	for _, deps := range doc.Dependencies() {
		for _, d := range deps {
			if !d.Optional {
				continue
			}
			items = append(items, CompletionItem{
				Label:      "dep:" + d.Name,
				InsertText: "dep:" + d.Name,
				Kind:       CompletionFeature,
				Detail:     "enable optional dependency " + d.Name,
			})
			items = append(items, CompletionItem{
				Label:      d.Name + "?/",
				InsertText: d.Name + "?/",
				Kind:       CompletionFeature,
				Detail:     "forward a feature to optional dependency " + d.Name,
			})
		}
	}

	return CompletionList{Items: items}
}
