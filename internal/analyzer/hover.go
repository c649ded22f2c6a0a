package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cargotom-ls/cargotom-ls/internal/config"
	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
	"github.com/cargotom-ls/cargotom-ls/internal/registry"
	"github.com/cargotom-ls/cargotom-ls/internal/semver"
)

// HoverContent is Markdown content (LSP MarkupContent, kind markdown) plus
// the span it documents, for the editor to underline/highlight.
type HoverContent struct {
	Markdown string
	Span     manifest.Span
}

// Hover computes hover content at offset in doc, or (nil, false) when the
// cursor isn't over anything the Analyzer documents.
func Hover(ctx context.Context, doc *manifest.Document, offset int, provider *registry.Provider, cfg config.Config) (*HoverContent, bool) {
	cursor := manifest.Locate(doc, offset)
	name, fieldPath, ok := splitDependencyPath(cursor.Path)
	if !ok || provider == nil {
		return nil, false
	}

	switch {
	case cursor.Kind == manifest.CursorKey && len(fieldPath) == 0:
		return hoverCrateName(ctx, provider, name, cursor)
	case cursor.Kind == manifest.CursorStringValue && (len(fieldPath) == 0 || (len(fieldPath) == 1 && fieldPath[0] == "version")):
		return hoverVersion(ctx, provider, cursor.Table, name, cursor)
	case cursor.Kind == manifest.CursorArrayElement && len(fieldPath) == 1 && fieldPath[0] == "features":
		return hoverFeature(ctx, provider, cursor.Table, name, cursor, cfg)
	}
	return nil, false
}

func hoverCrateName(ctx context.Context, provider *registry.Provider, name string, cursor manifest.Cursor) (*HoverContent, bool) {
	rec, err := provider.Lookup(ctx, name)
	if err != nil {
		return &HoverContent{Markdown: fmt.Sprintf("**%s**\n\nno registry data available: %v", name, err), Span: cursor.Entry.KeySpan}, true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", name)
	if rec.Value.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", rec.Value.Description)
	}
	if latest, ok := newestNonYanked(rec.Value.Versions); ok {
		fmt.Fprintf(&b, "latest: `%s`\n\n", latest)
	}
	if rec.Value.Readme != "" {
		b.WriteString(rec.Value.Readme)
		b.WriteString("\n\n")
	}
	var links []string
	if rec.Value.Documentation != "" {
		links = append(links, fmt.Sprintf("[docs](%s)", rec.Value.Documentation))
	}
	if rec.Value.Repository != "" {
		links = append(links, fmt.Sprintf("[source](%s)", rec.Value.Repository))
	}
	if rec.Value.Homepage != "" {
		links = append(links, fmt.Sprintf("[homepage](%s)", rec.Value.Homepage))
	}
	if len(links) > 0 {
		b.WriteString(strings.Join(links, " · "))
	}
	return &HoverContent{Markdown: b.String(), Span: cursor.Entry.KeySpan}, true
}

func hoverVersion(ctx context.Context, provider *registry.Provider, table *manifest.Table, name string, cursor manifest.Cursor) (*HoverContent, bool) {
	dep, _, ok := dependencyValue(table, name)
	if !ok {
		return nil, false
	}
	res, err := provider.Versions(ctx, name)
	if err != nil {
		return &HoverContent{Markdown: fmt.Sprintf("no version data available: %v", err), Span: hoverTargetSpan(cursor)}, true
	}

	requirement := dep.Origin.Requirement
	var req *semver.Requirement
	if requirement != "" {
		if r, perr := semver.ParseRequirement(requirement); perr == nil {
			req = &r
		}
	}

	var b strings.Builder
	b.WriteString("| version | |\n|---|---|\n")
	for _, vm := range res.Value {
		marker := ""
		if req != nil {
			if v, perr := semver.ParseVersion(vm.Version); perr == nil && req.Matches(v, true) {
				marker = "← matches"
			}
		}
		yankMark := ""
		if vm.Yanked {
			yankMark = " (yanked)"
		}
		fmt.Fprintf(&b, "| `%s`%s | %s |\n", vm.Version, yankMark, marker)
	}
	return &HoverContent{Markdown: b.String(), Span: hoverTargetSpan(cursor)}, true
}

func hoverFeature(ctx context.Context, provider *registry.Provider, table *manifest.Table, name string, cursor manifest.Cursor, cfg config.Config) (*HoverContent, bool) {
	dep, _, ok := dependencyValue(table, name)
	if !ok || cursor.Value == nil {
		return nil, false
	}
	version, resolved := resolveMatchedVersion(ctx, provider, name, dep)
	if !resolved {
		return &HoverContent{Markdown: "(unknown)", Span: cursor.Value.Span}, true
	}

	feats, err := provider.Features(ctx, name, version)
	if err != nil {
		return &HoverContent{Markdown: "(unknown)", Span: cursor.Value.Span}, true
	}

	declared := make(map[string]bool)
	for _, f := range dep.Features {
		declared[f] = true
	}

	var shown []string
	switch cfg.FeatureDisplayMode {
	case config.FeatureDisplayFeatures:
		shown = feats.Value
	case config.FeatureDisplayUnusedOpt:
		for _, f := range feats.Value {
			if !declared[f] {
				shown = append(shown, f)
			}
		}
	default:
		shown = feats.Value
	}
	sort.Strings(shown)

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**: %s\n\n", cursor.Value.Str, strings.Join(shown, ", "))
	return &HoverContent{Markdown: b.String(), Span: cursor.Value.Span}, true
}

func hoverTargetSpan(cursor manifest.Cursor) manifest.Span {
	if cursor.Value != nil {
		return cursor.Value.Span
	}
	return cursor.Entry.Span
}

func newestNonYanked(versions []registry.VersionMeta) (string, bool) {
	for _, vm := range versions {
		if !vm.Yanked {
			return vm.Version, true
		}
	}
	return "", false
}
