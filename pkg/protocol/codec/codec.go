package codec

// Codec marshals the structured text carried in INFO fields and the
// records of a session recording.
// Implementations should be deterministic.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Content types of the built-in codecs.
const (
	ContentJSON = "application/json"
	ContentCBOR = "application/cbor"
)
