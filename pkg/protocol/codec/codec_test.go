package codec

import (
	"testing"
)

func TestJSONCodec(t *testing.T) {
	c := JSON()
	in := map[string]any{"a": 1, "b": "x<y"}
	b, err := c.Marshal(in)
	if err != nil { t.Fatalf("marshal: %v", err) }
	if string(b) != `{"a":1,"b":"x<y"}` { t.Fatalf("unexpected encoding: %s", b) }
	var out map[string]any
	if err := c.Unmarshal(b, &out); err != nil { t.Fatalf("unmarshal: %v", err) }
	if out["a"].(float64) != 1 || out["b"].(string) != "x<y" {
		t.Fatalf("roundtrip mismatch: %#v", out)
	}
}

func TestCBORCodec(t *testing.T) {
	c := CBOR()
	type rec struct {
		N int    `cbor:"n"`
		P []byte `cbor:"p"`
	}
	b, err := c.Marshal(rec{N: 42, P: []byte{1, 2}})
	if err != nil { t.Fatalf("marshal: %v", err) }
	var out rec
	if err := c.Unmarshal(b, &out); err != nil { t.Fatalf("unmarshal: %v", err) }
	if out.N != 42 || len(out.P) != 2 || out.P[1] != 2 {
		t.Fatalf("roundtrip mismatch: %#v", out)
	}
}

func TestContentTypes(t *testing.T) {
	if JSON().ContentType() != ContentJSON || CBOR().ContentType() != ContentCBOR { t.Fatalf("content types") }
}
