package protocol

import (
	"encoding/binary"
	"io"
)

// Frame layout: a 4-byte little-endian payload length followed by the
// payload. The prefix is little-endian even though integers inside the
// payload are big-endian; the profiler reads both that way.
const (
	FramePrefixSize = 4
	// MaxFrameSize bounds the payload length accepted by ReadFrame.
	MaxFrameSize = 1 << 24
)

// EncodeFrame returns prefix+payload as a single byte slice.
func EncodeFrame(payload []byte) []byte {
	out := make([]byte, FramePrefixSize+len(payload))
	binary.LittleEndian.PutUint32(out[:FramePrefixSize], uint32(len(payload)))
	copy(out[FramePrefixSize:], payload)
	return out
}

// WriteFrame writes prefix and payload to w. Callers that need the frame
// delivered as one unit must flush w afterwards.
func WriteFrame(w io.Writer, payload []byte) (int64, error) {
	var lenbuf [FramePrefixSize]byte
	binary.LittleEndian.PutUint32(lenbuf[:], uint32(len(payload)))
	n1, err := w.Write(lenbuf[:])
	if err != nil {
		return int64(n1), err
	}
	n2, err := w.Write(payload)
	return int64(n1 + n2), err
}

// ReadFrame reads one frame from r and returns its payload. It returns io.EOF
// only when r ends exactly on a frame boundary; a frame cut short is a
// *ProtocolError.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenbuf [FramePrefixSize]byte
	if got, err := io.ReadFull(r, lenbuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, truncated(got, FramePrefixSize, got)
		}
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenbuf[:])
	if n > MaxFrameSize {
		return nil, protoErr("frame", 0, "frame too large: %d", n)
	}
	buf := make([]byte, int(n))
	if got, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, truncated(FramePrefixSize+got, FramePrefixSize+int(n), FramePrefixSize+got)
		}
		return nil, err
	}
	return buf, nil
}

// DecodeFrame parses a single frame from the front of buf and returns its
// payload and the unread remainder.
func DecodeFrame(buf []byte) (payload, rest []byte, err error) {
	if len(buf) < FramePrefixSize {
		return nil, buf, truncated(len(buf), FramePrefixSize, len(buf))
	}
	n := binary.LittleEndian.Uint32(buf[:FramePrefixSize])
	if n > MaxFrameSize {
		return nil, buf, protoErr("frame", 0, "frame too large: %d", n)
	}
	end := FramePrefixSize + int(n)
	if end > len(buf) {
		return nil, buf, truncated(len(buf), end, len(buf))
	}
	return buf[FramePrefixSize:end], buf[end:], nil
}

// DecodeMessages splits buf into frames and decodes each payload.
func DecodeMessages(buf []byte) ([]Message, error) {
	var out []Message
	for len(buf) > 0 {
		p, rest, err := DecodeFrame(buf)
		if err != nil {
			return out, err
		}
		m, err := Unmarshal(p)
		if err != nil {
			return out, err
		}
		out = append(out, m)
		buf = rest
	}
	return out, nil
}
