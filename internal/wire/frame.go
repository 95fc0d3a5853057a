// Package wire implements the line-delimited frame format exchanged
// between nodes: one JSON object per line, self-describing via a
// mandatory "type" and "proto" field.
package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies a frame's role on the wire.
type Type string

const (
	TypeHello Type = "HELLO"
	TypeEcho  Type = "ECHO"
	TypeInfo  Type = "INFO"
	TypeData  Type = "DATA"
)

// Proto identifies which routing strategy a frame belongs to.
type Proto string

const (
	ProtoLSR      Proto = "lsr"
	ProtoDV       Proto = "dv"
	ProtoFlooding Proto = "flooding"
)

// HopAnnotation is one relay's stamp on a frame's header trail.
type HopAnnotation struct {
	Hop string    `json:"hop"`
	At  time.Time `json:"ts"`
}

// Frame is the wire envelope common to every frame type. Fields not
// meaningful to a given Type are simply left zero; unknown extra
// fields a node doesn't recognize are preserved via Extra so an
// intermediate relay never strips data it doesn't understand.
type Frame struct {
	ID    string `json:"id"`
	Type  Type   `json:"type"`
	Proto Proto  `json:"proto"`

	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	Src string `json:"src,omitempty"`
	Dst string `json:"dst,omitempty"`
	TTL int    `json:"ttl,omitempty"`

	TS time.Time `json:"ts,omitempty"`

	Headers []HopAnnotation `json:"headers,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// Extra carries any field the decoder saw but this struct doesn't
	// name explicitly. Re-encoding merges it back in, so a node that
	// doesn't understand a newer field still forwards it unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

// NewID returns a fresh version-4 random frame id rendered as text.
func NewID() string {
	return uuid.NewString()
}

// LSPPayload is the INFO payload for LSR: one origin's link-state advertisement.
type LSPPayload struct {
	Origin string     `json:"origin"`
	Seq    uint64     `json:"seq"`
	Links  []LinkEdge `json:"links"`
}

// LinkEdge is one outgoing edge advertised by an LSP.
type LinkEdge struct {
	To string  `json:"to"`
	W  float64 `json:"w"`
}

// DVPayload is the INFO payload for DV: one node's distance vector.
type DVPayload struct {
	Origin string             `json:"origin"`
	Dist   map[string]float64 `json:"dist"`
}

// Encode marshals a frame as one JSON line, merging Extra fields back
// in so round-tripped unknown fields survive re-transmission.
func Encode(f *Frame) ([]byte, error) {
	base, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	if len(f.Extra) == 0 {
		return append(base, '\n'), nil
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	for k, v := range f.Extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return append(out, '\n'), nil
}

// Decode parses one line into a Frame. Per spec, a malformed line
// (bad JSON, missing required "type"/"proto") is a non-fatal decode
// failure — callers should drop the line and keep reading.
func Decode(line []byte) (*Frame, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	var f Frame
	if err := json.Unmarshal(line, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if f.Type == "" || f.Proto == "" {
		return nil, fmt.Errorf("decode frame: missing required type/proto")
	}

	known := map[string]struct{}{
		"id": {}, "type": {}, "proto": {}, "from": {}, "to": {},
		"src": {}, "dst": {}, "ttl": {}, "ts": {}, "headers": {}, "payload": {},
	}
	for k, v := range raw {
		if _, ok := known[k]; ok {
			continue
		}
		if f.Extra == nil {
			f.Extra = map[string]json.RawMessage{}
		}
		f.Extra[k] = v
	}

	return &f, nil
}
