package providerdaemon

import (
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	req := Request{ID: 7, Operation: OpLookup, Args: []byte(`{"name":"serde"}`)}
	if err := writeFrame(&buf, req); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}

	var got Request
	if err := readFrame(&buf, &got); err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if got.ID != req.ID || got.Operation != req.Operation {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, req)
	}
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x7f, 0xff, 0xff, 0xff}) // huge bogus length prefix
	var out Request
	if err := readFrame(&buf, &out); err == nil {
		t.Fatalf("expected error for oversized frame length")
	}
}
