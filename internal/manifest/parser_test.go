package manifest

import "testing"

func TestParseBasicDependency(t *testing.T) {
	doc := Parse("[package]\nname = \"demo\"\n\n[dependencies]\nserde = \"1.0\"\n")
	pkg := doc.PackageTable()
	if pkg == nil {
		t.Fatal("expected [package] table")
	}
	if got := pkg.Get("name"); got == nil || got.Value.Str != "demo" {
		t.Fatalf("expected name = demo, got %+v", got)
	}

	deps := doc.Table([]string{"dependencies"})
	if deps == nil {
		t.Fatal("expected [dependencies] table")
	}
	serde := deps.Get("serde")
	if serde == nil || serde.Value.Kind != KindString || serde.Value.Str != "1.0" {
		t.Fatalf("expected serde = \"1.0\", got %+v", serde)
	}
}

func TestParseExpandedDependency(t *testing.T) {
	text := `[dependencies]
tokio = { version = "1", features = ["rt", "macros"], default-features = false }
`
	doc := Parse(text)
	deps := doc.Table([]string{"dependencies"})
	d := LowerDependency(deps.Get("tokio"))
	if d.Origin.Kind != OriginVersion || d.Origin.Requirement != "1" {
		t.Fatalf("expected version origin 1, got %+v", d.Origin)
	}
	if len(d.Features) != 2 || d.Features[0] != "rt" || d.Features[1] != "macros" {
		t.Fatalf("expected [rt macros], got %v", d.Features)
	}
	if d.DefaultFeatures {
		t.Fatal("expected default-features = false")
	}
}

func TestOriginPrecedence(t *testing.T) {
	text := `[dependencies]
foo = { path = "../foo", git = "https://example.com/foo", version = "1" }
`
	doc := Parse(text)
	d := LowerDependency(doc.Table([]string{"dependencies"}).Get("foo"))
	if d.Origin.Kind != OriginPath {
		t.Fatalf("expected path to win precedence, got %v", d.Origin.Kind)
	}
	if !d.HasConflictingOrigin {
		t.Fatal("expected conflicting-origin flag set")
	}
}

func TestResilientParsingUnterminatedConstruct(t *testing.T) {
	text := "[dependencies]\nserde = \"1.0\nfoo = \"2.0\"\n"
	doc := Parse(text)
	if len(doc.Errors) == 0 {
		t.Fatal("expected at least one parse error for the unterminated string")
	}
	deps := doc.Table([]string{"dependencies"})
	if deps == nil {
		t.Fatal("expected [dependencies] table despite the malformed entry")
	}
	if foo := deps.Get("foo"); foo == nil || foo.Value.Str != "2.0" {
		t.Fatalf("expected parsing to recover and find foo = \"2.0\", got %+v", foo)
	}
}

func TestRoundTrip(t *testing.T) {
	text := "[package]\nname = \"demo\"\nversion = \"0.1.0\"\n\n[dependencies]\nserde = { version = \"1\", features = [\"derive\"] }\n"
	doc := Parse(text)
	if doc.Serialize() != text {
		t.Fatalf("round-trip mismatch:\n got: %q\nwant: %q", doc.Serialize(), text)
	}
}

func TestLocateEveryOffset(t *testing.T) {
	text := "[dependencies]\nserde = \"1.0\"\n"
	doc := Parse(text)
	for off := 0; off < len(text); off++ {
		c := Locate(doc, off)
		if c.Kind == CursorNone {
			t.Fatalf("locate returned CursorNone at offset %d", off)
		}
	}
}

func TestLocateCursorAfterEquals(t *testing.T) {
	text := "[dependencies]\nserde = "
	doc := Parse(text)
	c := Locate(doc, len(text))
	if c.Kind != CursorStringValue {
		t.Fatalf("expected StringValue cursor after bare '=', got %v", c.Kind)
	}
	if c.Key != "serde" {
		t.Fatalf("expected key 'serde', got %q", c.Key)
	}
}

func TestLocateInlineTableField(t *testing.T) {
	text := `[dependencies]
foo = { version = "" }
`
	doc := Parse(text)
	offset := indexOf(text, `""`) + 1 // inside the empty quotes
	c := Locate(doc, offset)
	if c.Kind != CursorStringValue {
		t.Fatalf("expected StringValue inside inline table field, got %v (%+v)", c.Kind, c)
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
