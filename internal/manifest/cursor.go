package manifest

// CursorKind tags the smallest AST node containing a cursor offset.
type CursorKind int

const (
	CursorNone CursorKind = iota
	CursorTableHeader
	CursorKey
	CursorStringValue
	CursorArrayElement
	CursorInlineTableField
	CursorWhitespace
)

// Cursor identifies where a byte offset lands in the document, resolved per
// the ambiguous-position policy in spec §4.1.
type Cursor struct {
	Kind CursorKind

	// Path is the table path the cursor falls under, extended by the key
	// path of the entry (and inline-table field) it lands in (e.g.
	// ["dependencies", "serde"] for the key or value of `serde = "1"`
	// directly in [dependencies], or ["dependencies", "serde", "version"]
	// for the version field of `serde = { version = "1" }`).
	Path []string

	// Key is the name of the key the cursor's entry or field belongs to;
	// empty for table-header and whitespace cursors.
	Key string

	// InnerOffset is the cursor's offset relative to the start of a
	// string value's content (CursorStringValue) or, for
	// CursorArrayElement, irrelevant unless the element itself is a
	// string.
	InnerOffset int

	// Index is the element index for CursorArrayElement.
	Index int

	// Table/Entry/Value point back into the Document for callers that
	// need more than the Cursor summary (e.g. the Analyzer reading
	// sibling entries for duplicate-detection).
	Table *Table
	Entry *KeyValue
	Value *Value
}

// Locate resolves the smallest containing node for offset. It always
// returns a cursor, even over an incomplete or malformed region, per the
// "for all offsets, locate returns a cursor whose span contains it"
// invariant (spec §8).
func Locate(doc *Document, offset int) Cursor {
	t := containingTable(doc, offset)
	if t == nil {
		return Cursor{Kind: CursorWhitespace}
	}
	if t.BracketSpan.Contains(offset) {
		return Cursor{Kind: CursorTableHeader, Path: t.HeaderPath, Table: t}
	}
	for _, e := range t.Entries {
		if c, ok := locateInEntry(t.HeaderPath, e, offset); ok {
			c.Table = t
			return c
		}
	}
	return Cursor{Kind: CursorWhitespace, Path: t.HeaderPath, Table: t}
}

func containingTable(doc *Document, offset int) *Table {
	for _, t := range doc.Tables {
		end := t.Span.End
		if end == 0 && t != doc.Tables[len(doc.Tables)-1] {
			end = t.Span.Start
		}
		if offset >= t.Span.Start && offset <= end {
			return t
		}
	}
	if len(doc.Tables) > 0 {
		return doc.Tables[len(doc.Tables)-1]
	}
	return nil
}

func locateInEntry(tablePath []string, e *KeyValue, offset int) (Cursor, bool) {
	if !e.Span.Contains(offset) {
		return Cursor{}, false
	}
	if e.KeySpan.Contains(offset) {
		return Cursor{Kind: CursorKey, Path: append(append([]string{}, tablePath...), e.KeyPath...), Key: e.Key(), Entry: e}, true
	}
	if e.Value == nil {
		// "serde = " with the cursor right after '=' and nothing typed
		// yet: treat as an empty string value per spec §4.1's policy.
		if offset >= e.EqSpan.End {
			return Cursor{
				Kind:        CursorStringValue,
				Path:        append(append([]string{}, tablePath...), e.KeyPath...),
				Key:         e.Key(),
				InnerOffset: 0,
				Entry:       e,
			}, true
		}
		return Cursor{Kind: CursorKey, Path: append(append([]string{}, tablePath...), e.KeyPath...), Key: e.Key(), Entry: e}, true
	}
	path := append(append([]string{}, tablePath...), e.KeyPath...)
	return locateInValue(path, e.Key(), e, e.Value, offset)
}

func locateInValue(path []string, key string, entry *KeyValue, v *Value, offset int) (Cursor, bool) {
	if !v.Span.Contains(offset) {
		return Cursor{}, false
	}
	switch v.Kind {
	case KindString:
		inner := offset - (v.Span.Start + 1) // skip opening quote
		if inner < 0 {
			inner = 0
		}
		if inner > len(v.Str) {
			inner = len(v.Str)
		}
		return Cursor{Kind: CursorStringValue, Path: path, Key: key, InnerOffset: inner, Entry: entry, Value: v}, true
	case KindArray:
		for i, el := range v.Elements {
			if el.Span.Contains(offset) {
				inner := 0
				if el.Kind == KindString {
					inner = offset - (el.Span.Start + 1)
					if inner < 0 {
						inner = 0
					}
				}
				return Cursor{Kind: CursorArrayElement, Path: path, Key: key, Index: i, InnerOffset: inner, Entry: entry, Value: el}, true
			}
		}
		return Cursor{Kind: CursorArrayElement, Path: path, Key: key, Index: len(v.Elements), Entry: entry, Value: v}, true
	case KindInlineTable:
		if v.BraceSpan.Contains(offset) {
			for _, f := range v.Fields {
				if f.Span.Contains(offset) {
					if f.KeySpan.Contains(offset) {
						return Cursor{Kind: CursorKey, Path: append(append([]string{}, path...), f.KeyPath...), Key: f.Key(), Entry: f}, true
					}
					if f.Value != nil {
						return locateInValue(append(append([]string{}, path...), f.KeyPath...), f.Key(), f, f.Value, offset)
					}
					return Cursor{Kind: CursorInlineTableField, Path: path, Key: f.Key(), Entry: f}, true
				}
			}
			return Cursor{Kind: CursorInlineTableField, Path: path, Key: key, Entry: entry, Value: v}, true
		}
		return Cursor{Kind: CursorWhitespace, Path: path}, true
	default:
		return Cursor{Kind: CursorStringValue, Path: path, Key: key, Entry: entry, Value: v}, true
	}
}
