package codec

import (
	"bytes"
	"encoding/json"
)

type jsonCodec struct{}

// JSON returns a compact JSON codec (RFC 8259) that leaves <, > and & unescaped.
func JSON() Codec { return jsonCodec{} }

func (jsonCodec) ContentType() string { return ContentJSON }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
