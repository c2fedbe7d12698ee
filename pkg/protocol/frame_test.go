package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestWriteFrameLayout(t *testing.T) {
	for _, n := range []int{0, 1, 34, 300, 70000} {
		p := bytes.Repeat([]byte{0xAB}, n)
		var buf bytes.Buffer
		w, err := WriteFrame(&buf, p)
		if err != nil { t.Fatalf("write: %v", err) }
		if w != int64(4+n) || buf.Len() != 4+n { t.Fatalf("wrote %d/%d bytes for %d", w, buf.Len(), n) }
		if got := binary.LittleEndian.Uint32(buf.Bytes()[:4]); got != uint32(n) { t.Fatalf("prefix = %d, want %d", got, n) }
		if !bytes.Equal(buf.Bytes()[4:], p) { t.Fatalf("payload mismatch") }
	}
}

func TestPrefixIsLittleEndian(t *testing.T) {
	f := EncodeFrame(make([]byte, 0x0102))
	if !bytes.Equal(f[:4], []byte{0x02, 0x01, 0x00, 0x00}) { t.Fatalf("prefix = % x", f[:4]) }
}

func TestReadFrame(t *testing.T) {
	var buf bytes.Buffer
	_, _ = WriteFrame(&buf, []byte("one"))
	_, _ = WriteFrame(&buf, nil)
	p, err := ReadFrame(&buf)
	if err != nil || string(p) != "one" { t.Fatalf("first = %q, %v", p, err) }
	p, err = ReadFrame(&buf)
	if err != nil || len(p) != 0 { t.Fatalf("second = %q, %v", p, err) }
	if _, err := ReadFrame(&buf); err != io.EOF { t.Fatalf("want EOF, got %v", err) }
}

func TestReadFrameTruncated(t *testing.T) {
	f := EncodeFrame([]byte("hello"))
	for _, cut := range []int{2, 6} {
		_, err := ReadFrame(bytes.NewReader(f[:cut]))
		if !errors.Is(err, ErrProtocol) || !errors.Is(err, io.ErrUnexpectedEOF) { t.Fatalf("cut %d: err = %v", cut, err) }
		var pe *ProtocolError
		if !errors.As(err, &pe) || pe.Offset != cut { t.Fatalf("cut %d: want offset %d, got %v", cut, cut, err) }
	}
}

func TestReadFrameTooLarge(t *testing.T) {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], MaxFrameSize+1)
	if _, err := ReadFrame(bytes.NewReader(hdr[:])); !errors.Is(err, ErrProtocol) { t.Fatalf("err = %v", err) }
}

func TestDecodeMessages(t *testing.T) {
	in := []Message{MakeStart("{}"), MakeNode(0, -1, 0, 0, 1, StatusBranch).WithLabel("root"), MakeDone()}
	var stream []byte
	for _, m := range in { stream = append(stream, EncodeFrame(Marshal(m))...) }
	out, err := DecodeMessages(stream)
	if err != nil { t.Fatalf("decode: %v", err) }
	if len(out) != len(in) { t.Fatalf("got %d messages", len(out)) }
	for i := range in {
		if out[i] != in[i] { t.Fatalf("message %d: got %s want %s", i, out[i], in[i]) }
	}
	if _, _, err := DecodeFrame(stream[:3]); !errors.Is(err, ErrProtocol) || !errors.Is(err, io.ErrUnexpectedEOF) { t.Fatalf("short prefix: %v", err) }
}

func TestDecodeTruncatedFrame(t *testing.T) {
	f := EncodeFrame([]byte("hello"))
	if _, _, err := DecodeFrame(f[:6]); !errors.Is(err, ErrProtocol) || !errors.Is(err, io.ErrUnexpectedEOF) { t.Fatalf("decode frame: %v", err) }
	stream := append(EncodeFrame(Marshal(MakeDone())), f[:6]...)
	out, err := DecodeMessages(stream)
	if !errors.Is(err, ErrProtocol) { t.Fatalf("decode messages: %v", err) }
	if len(out) != 1 || !out[0].IsDone() { t.Fatalf("decoded before the cut: %v", out) }
}
