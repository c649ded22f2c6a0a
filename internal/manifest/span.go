// Package manifest implements the positionable, resilient parser for the
// Cargo manifest's TOML-family surface: a span-carrying AST, incremental
// edit-then-reparse, and cursor resolution for "what is at this offset".
package manifest

import "sort"

// Span is a half-open byte range [Start, End) into the document text.
// Every AST node carries one; absent fields carry the zero-width span
// where they would be inserted.
type Span struct {
	Start int
	End   int
}

// Contains reports whether offset falls within the span, Start inclusive,
// End inclusive as well so that a cursor resting exactly at the end of a
// token (e.g. just after a closing quote) still resolves to it.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

// Len returns the span's width in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Position is a 0-based line/column pair, UTF-16-code-unit columns as LSP
// requires.
type Position struct {
	Line      int
	Character int
}

// LineIndex maps byte offsets to line/column positions and back. Built once
// per parse; edits trigger a full reparse (and thus a fresh index) per the
// Manifest Model's "observational equivalence" contract.
type LineIndex struct {
	text        string
	lineStarts  []int // byte offset of the first byte of each line
}

// NewLineIndex scans text once for newline offsets.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, lineStarts: starts}
}

// Position converts a byte offset to a line/column. Columns count UTF-16
// code units, matching LSP's position encoding.
func (li *LineIndex) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.text) {
		offset = len(li.text)
	}
	line := sort.Search(len(li.lineStarts), func(i int) bool {
		return li.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	lineStart := li.lineStarts[line]
	col := utf16Len(li.text[lineStart:offset])
	return Position{Line: line, Character: col}
}

// Offset converts a line/column back to a byte offset.
func (li *LineIndex) Offset(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(li.lineStarts) {
		return len(li.text)
	}
	lineStart := li.lineStarts[pos.Line]
	lineEnd := len(li.text)
	if pos.Line+1 < len(li.lineStarts) {
		lineEnd = li.lineStarts[pos.Line+1]
	}
	return utf16Offset(li.text[lineStart:lineEnd], pos.Character) + lineStart
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func utf16Offset(s string, units int) int {
	n := 0
	for i, r := range s {
		if n >= units {
			return i
		}
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return len(s)
}
