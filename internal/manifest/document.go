package manifest

// ValueKind tags the leaf shape of a parsed Value.
type ValueKind int

const (
	KindInvalid ValueKind = iota
	KindString
	KindBool
	KindNumber
	KindArray
	KindInlineTable
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindArray:
		return "array"
	case KindInlineTable:
		return "inline-table"
	default:
		return "invalid"
	}
}

// Value is a parsed TOML value: a scalar, an array, or an inline table.
// Every instance keeps the raw source text and span so hover/completion can
// recover exactly what the editor displayed.
type Value struct {
	Kind ValueKind
	Span Span
	Raw  string

	Str  string // decoded string content, KindString only
	Bool bool   // KindBool only

	Elements []*Value    // KindArray only, in source order
	Fields   []*KeyValue // KindInlineTable only, in source order

	// BraceSpan covers just the { } pair for an inline table, used by
	// completion/hover to distinguish "inside the braces" from "on the
	// value as a whole".
	BraceSpan Span
}

// KeyValue is one `key = value` line (or inline-table field). KeyPath holds
// the dotted key split into segments (`a.b = 1` -> ["a","b"]).
type KeyValue struct {
	KeyPath []string
	KeySpan Span
	EqSpan  Span
	Value   *Value
	Span    Span
}

// Key returns the last segment of the dotted key path, the name most rules
// key off of (e.g. the crate name in `serde = "1"`).
func (kv *KeyValue) Key() string {
	if len(kv.KeyPath) == 0 {
		return ""
	}
	return kv.KeyPath[len(kv.KeyPath)-1]
}

// Table is one `[a.b.c]` or `[[a.b.c]]` section, holding every key/value
// entry that follows it until the next table header.
type Table struct {
	HeaderPath   []string
	HeaderSpan   Span // span of the path text inside the brackets
	BracketSpan  Span // span of the whole `[...]`/`[[...]]` line
	IsArrayTable bool
	Entries      []*KeyValue
	Span         Span // from the header (or start of file, for the implicit root) to just before the next header
}

// Get returns the entry whose last key segment equals name, or nil.
func (t *Table) Get(name string) *KeyValue {
	for _, e := range t.Entries {
		if e.Key() == name {
			return e
		}
	}
	return nil
}

// ParseError marks a region the resilient parser could not make sense of.
// It never aborts parsing; the region's raw text is preserved verbatim in
// the surrounding Table/Value spans.
type ParseError struct {
	Span    Span
	Message string
}

// Document is the full parse result: every table (including the implicit
// root table holding any keys that precede the first header), the line
// index used to translate offsets to LSP positions, and any parse errors
// encountered along the way.
type Document struct {
	Text   string
	Tables []*Table
	Errors []ParseError
	Lines  *LineIndex
}

// Table looks up a table by its exact header path (nil/empty for the
// implicit root table).
func (d *Document) Table(path []string) *Table {
	for _, t := range d.Tables {
		if pathEqual(t.HeaderPath, path) {
			return t
		}
	}
	return nil
}

// TablesWithPrefix returns every table whose header path starts with
// prefix — used to enumerate all `[target.<cfg>.dependencies]` variants,
// array-of-table entries, etc.
func (d *Document) TablesWithPrefix(prefix []string) []*Table {
	var out []*Table
	for _, t := range d.Tables {
		if len(t.HeaderPath) >= len(prefix) && pathEqual(t.HeaderPath[:len(prefix)], prefix) {
			out = append(out, t)
		}
	}
	return out
}

func pathEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Serialize reconstructs the original text. Required to be lossless for
// any document the parser produced (round-trip property, spec §8), since
// every node's Span slices directly into Text.
func (d *Document) Serialize() string {
	return d.Text
}
