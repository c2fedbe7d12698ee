package protocol

import (
	"encoding/binary"
	"unicode/utf8"
)

// Payload layout. All integers are big-endian int32.
//
//	0        Type u8
//	NODE only:
//	1  ..4   NodeID
//	5  ..8   RestartCount
//	9  ..12  0 (reserved thread id)
//	13 ..16  ParentID
//	17 ..20  RestartCount (repeated)
//	21 ..24  0 (reserved thread id, repeated)
//	25 ..28  Alt
//	29 ..32  Kids
//	33       Status u8
//	then zero or more fields: Tag u8 + (int32 | int32 length + bytes)
//
// The repeated restart count and reserved slots mirror the node/parent id
// pairs the profiler expects and must stay.
const (
	nodeBlockSize = 8*4 + 1
	intSize       = 4
)

// Marshal encodes m into its wire payload (without the frame prefix).
func Marshal(m Message) []byte {
	buf := make([]byte, 0, encodedSize(m))
	buf = append(buf, byte(m.typ))
	if m.typ == MsgNode {
		n := m.node
		buf = appendInt(buf, n.NodeID)
		buf = appendInt(buf, n.RestartCount)
		buf = appendInt(buf, 0)
		buf = appendInt(buf, n.ParentID)
		buf = appendInt(buf, n.RestartCount)
		buf = appendInt(buf, 0)
		buf = appendInt(buf, n.Alt)
		buf = appendInt(buf, n.Kids)
		buf = append(buf, byte(n.Status))
	}
	if m.version.Valid() {
		buf = append(buf, byte(TagVersion))
		buf = appendInt(buf, m.version.value)
	}
	if m.label.Valid() {
		buf = append(buf, byte(TagLabel))
		buf = appendString(buf, m.label.value)
	}
	if m.nogood.Valid() {
		buf = append(buf, byte(TagNogood))
		buf = appendString(buf, m.nogood.value)
	}
	if m.info.Valid() {
		buf = append(buf, byte(TagInfo))
		buf = appendString(buf, m.info.value)
	}
	return buf
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m Message) MarshalBinary() ([]byte, error) { return Marshal(m), nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler. m is left
// untouched on error.
func (m *Message) UnmarshalBinary(b []byte) error {
	d, err := Unmarshal(b)
	if err != nil {
		return err
	}
	*m = d
	return nil
}

// Unmarshal decodes exactly one payload. Every byte of b must be consumed by
// the type, the node block and whole fields.
func Unmarshal(b []byte) (Message, error) {
	d := decoder{buf: b}
	var m Message

	t, err := d.readByte()
	if err != nil {
		return Message{}, err
	}
	m.typ = MsgType(t)
	if !m.typ.valid() {
		return Message{}, protoErr("decode", 0, "unknown message type %d", t)
	}

	if m.typ == MsgNode {
		if d.remaining() < nodeBlockSize {
			return Message{}, protoErr("decode", d.off, "short node block: %d bytes", d.remaining())
		}
		m.node.NodeID = d.mustInt()
		m.node.RestartCount = d.mustInt()
		_ = d.mustInt() // thread id
		m.node.ParentID = d.mustInt()
		_ = d.mustInt() // parent restart count
		_ = d.mustInt() // parent thread id
		m.node.Alt = d.mustInt()
		m.node.Kids = d.mustInt()
		st := Status(d.buf[d.off])
		if !st.valid() {
			return Message{}, protoErr("decode", d.off, "unknown node status %d", st)
		}
		d.off++
		m.node.Status = st
	}

	for d.remaining() > 0 {
		at := d.off
		tag, _ := d.readByte()
		switch Tag(tag) {
		case TagVersion:
			v, err := d.readInt()
			if err != nil {
				return Message{}, err
			}
			m.version = Some(v)
		case TagLabel, TagNogood, TagInfo:
			s, err := d.readString()
			if err != nil {
				return Message{}, err
			}
			switch Tag(tag) {
			case TagLabel:
				m.label = Some(s)
			case TagNogood:
				m.nogood = Some(s)
			default:
				m.info = Some(s)
			}
		default:
			return Message{}, protoErr("decode", at, "unknown field tag %d", tag)
		}
	}
	return m, nil
}

func encodedSize(m Message) int {
	n := 1
	if m.typ == MsgNode {
		n += nodeBlockSize
	}
	if m.version.Valid() {
		n += 1 + intSize
	}
	for _, o := range []Option[string]{m.label, m.nogood, m.info} {
		if o.Valid() {
			n += 1 + intSize + utf8.RuneCountInString(o.value)
		}
	}
	return n
}

func appendInt(b []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(b, uint32(v))
}

// appendString writes one byte per character. Characters above 0xFF keep
// only their low byte; bytes that are not valid UTF-8 are copied as they are.
// RuneCountInString counts each such byte as one character.
func appendString(b []byte, s string) []byte {
	b = appendInt(b, int32(utf8.RuneCountInString(s)))
	for i := 0; i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && w == 1 {
			b = append(b, s[i])
		} else {
			b = append(b, byte(r))
		}
		i += w
	}
	return b
}

type decoder struct {
	buf []byte
	off int
}

func (d *decoder) remaining() int { return len(d.buf) - d.off }

func (d *decoder) readByte() (byte, error) {
	if d.remaining() < 1 {
		return 0, protoErr("decode", d.off, "unexpected end of payload")
	}
	c := d.buf[d.off]
	d.off++
	return c, nil
}

func (d *decoder) readInt() (int32, error) {
	if d.remaining() < intSize {
		return 0, protoErr("decode", d.off, "short integer: %d bytes", d.remaining())
	}
	return d.mustInt(), nil
}

// mustInt reads an integer the caller already bounds-checked.
func (d *decoder) mustInt() int32 {
	v := int32(binary.BigEndian.Uint32(d.buf[d.off:]))
	d.off += intSize
	return v
}

func (d *decoder) readString() (string, error) {
	at := d.off
	n, err := d.readInt()
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > d.remaining() {
		return "", protoErr("decode", at, "string length %d exceeds payload", n)
	}
	raw := d.buf[d.off : d.off+int(n)]
	d.off += int(n)
	return latin1(raw), nil
}

// latin1 maps each byte to the rune of the same value.
func latin1(raw []byte) string {
	ascii := true
	for _, c := range raw {
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return string(raw)
	}
	rs := make([]rune, len(raw))
	for i, c := range raw {
		rs[i] = rune(c)
	}
	return string(rs)
}
