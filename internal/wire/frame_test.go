package wire

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload, _ := json.Marshal(LSPPayload{Origin: "A", Seq: 3, Links: []LinkEdge{{To: "B", W: 1}}})
	f := &Frame{
		ID:    NewID(),
		Type:  TypeInfo,
		Proto: ProtoLSR,
		Payload: payload,
	}

	line, err := Encode(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(line)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != f.ID || got.Type != f.Type || got.Proto != f.Proto {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, f)
	}
}

func TestDecodePreservesUnknownFields(t *testing.T) {
	line := []byte(`{"id":"x","type":"DATA","proto":"flooding","src":"A","dst":"B","future_field":"keep-me"}`)

	f, err := Decode(line)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := f.Extra["future_field"]; !ok {
		t.Fatalf("expected future_field to be preserved in Extra, got %+v", f.Extra)
	}

	out, err := Encode(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(out), "future_field") {
		t.Fatalf("expected re-encoded frame to carry future_field, got %s", out)
	}
}

func TestDecodeMissingRequiredFieldsFails(t *testing.T) {
	if _, err := Decode([]byte(`{"id":"x"}`)); err == nil {
		t.Fatal("expected error for missing type/proto")
	}
}

func TestDecodeMalformedLineFails(t *testing.T) {
	if _, err := Decode([]byte(`not json at all`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
