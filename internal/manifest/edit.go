package manifest

import "sort"

// Range is a byte range within a document, used by Edit to describe a text
// replacement (as opposed to Span, which marks an AST node's extent).
type Range struct {
	Start int
	End   int
}

// Edit applies a single text replacement and reparses. Spec §4.1 allows a
// full reparse as the reference strategy ("implementations may reparse
// fully; the contract is observational equivalence") — manifests are well
// under the 100KB threshold spec §9 calls out, so incremental re-use of
// unaffected subtrees is an optimization this implementation doesn't need.
func Edit(doc *Document, r Range, replacement string) *Document {
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End > len(doc.Text) {
		r.End = len(doc.Text)
	}
	if r.End < r.Start {
		r.End = r.Start
	}
	newText := doc.Text[:r.Start] + replacement + doc.Text[r.End:]
	return Parse(newText)
}

// ApplyEdits applies a batch of non-overlapping edits in one reparse pass,
// for LSP's didChange with multiple contentChanges. Edits are applied in
// reverse offset order so earlier ranges stay valid.
func ApplyEdits(doc *Document, edits []struct {
	Range       Range
	Replacement string
}) *Document {
	text := doc.Text
	ordered := append([]struct {
		Range       Range
		Replacement string
	}{}, edits...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Range.Start < ordered[j].Range.Start
	})
	for i := len(ordered) - 1; i >= 0; i-- {
		e := ordered[i]
		start, end := e.Range.Start, e.Range.End
		if start < 0 {
			start = 0
		}
		if end > len(text) {
			end = len(text)
		}
		if end < start {
			end = start
		}
		text = text[:start] + e.Replacement + text[end:]
	}
	return Parse(text)
}
