package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestMarshalDone(t *testing.T) {
	if b := Marshal(MakeDone()); !bytes.Equal(b, []byte{0x01}) { t.Fatalf("done = % x", b) }
}

func TestMarshalStart(t *testing.T) {
	want := []byte{
		0x02,
		0x03, 0x00, 0x00, 0x00, 0x03,
		0x02, 0x00, 0x00, 0x00, 0x02, '{', '}',
	}
	if b := Marshal(MakeStart("{}")); !bytes.Equal(b, want) { t.Fatalf("start = % x", b) }
}

func TestMarshalNodeFixedBlock(t *testing.T) {
	b := Marshal(MakeNode(5, 2, 7, 1, 2, StatusBranch))
	if len(b) != 34 { t.Fatalf("node payload = %d bytes", len(b)) }
	if b[0] != byte(MsgNode) { t.Fatalf("type = %d", b[0]) }
	want := []int32{5, 7, 0, 2, 7, 0, 1, 2}
	for i, w := range want {
		got := int32(binary.BigEndian.Uint32(b[1+4*i:]))
		if got != w { t.Fatalf("slot %d = %d, want %d", i, got, w) }
	}
	if b[33] != byte(StatusBranch) { t.Fatalf("status = %d", b[33]) }
}

func TestMarshalFieldOrder(t *testing.T) {
	m := MakeNode(1, 0, 0, 0, 0, StatusSolved).WithInfo("i").WithNogood("n").WithLabel("l")
	b := Marshal(m)
	tags := []byte{b[34], b[34+6], b[34+12]}
	if !bytes.Equal(tags, []byte{byte(TagLabel), byte(TagNogood), byte(TagInfo)}) {
		t.Fatalf("tags = % x", tags)
	}
}

func TestRoundTrip(t *testing.T) {
	msgs := []Message{
		MakeDone(),
		MakeStart(`{"name":"golomb.fzn"}`),
		MakeRestart(`{"restart_id":2}`),
		MakeNode(0, -1, 0, -1, 2, StatusBranch),
		MakeNode(12, 4, 3, 1, 0, StatusFailed).WithLabel("x != 3").WithNogood("x < 2 \\/ y > 4"),
		MakeNode(13, 4, 3, 2, 0, StatusSolved).WithInfo("{}"),
		MakeNode(14, 4, 3, 3, 0, StatusSkipped).WithLabel(""),
		MakeDone().WithInfo("café"),
	}
	for _, m := range msgs {
		got, err := Unmarshal(Marshal(m))
		if err != nil { t.Fatalf("unmarshal %s: %v", m, err) }
		if got != m { t.Fatalf("roundtrip mismatch:\n got %s\nwant %s", got, m) }
	}
}

func TestStringTruncatesWideCharacters(t *testing.T) {
	b := Marshal(MakeDone().WithLabel("aŁ"))
	want := []byte{0x01, byte(TagLabel), 0, 0, 0, 2, 'a', 0x41}
	if !bytes.Equal(b, want) { t.Fatalf("label = % x", b) }
}

func TestStringKeepsRawSingleBytes(t *testing.T) {
	b := Marshal(MakeDone().WithLabel("\xe9t\xe9"))
	want := []byte{0x01, byte(TagLabel), 0, 0, 0, 3, 0xe9, 't', 0xe9}
	if !bytes.Equal(b, want) { t.Fatalf("label = % x", b) }
	m, err := Unmarshal(b)
	if err != nil { t.Fatalf("unmarshal: %v", err) }
	if l, _ := m.Label(); l != "été" { t.Fatalf("label = %q", l) }
	if again := Marshal(m); !bytes.Equal(again, want) { t.Fatalf("re-encoded = % x", again) }
}

func TestUnmarshalPermutedTags(t *testing.T) {
	var b []byte
	b = append(b, byte(MsgStart))
	b = append(b, byte(TagInfo))
	b = binary.BigEndian.AppendUint32(b, 2)
	b = append(b, "{}"...)
	b = append(b, byte(TagLabel))
	b = binary.BigEndian.AppendUint32(b, 1)
	b = append(b, 'L')
	b = append(b, byte(TagVersion))
	b = binary.BigEndian.AppendUint32(b, 3)
	m, err := Unmarshal(b)
	if err != nil { t.Fatalf("unmarshal: %v", err) }
	if want := MakeStart("{}").WithLabel("L"); m != want { t.Fatalf("got %s want %s", m, want) }
}

func TestUnmarshalDiscardsReservedSlots(t *testing.T) {
	b := Marshal(MakeNode(9, 8, 1, 0, 3, StatusBranch))
	binary.BigEndian.PutUint32(b[9:], 77)  // thread id
	binary.BigEndian.PutUint32(b[17:], 55) // parent restart count
	binary.BigEndian.PutUint32(b[21:], 66) // parent thread id
	m, err := Unmarshal(b)
	if err != nil { t.Fatalf("unmarshal: %v", err) }
	if m != MakeNode(9, 8, 1, 0, 3, StatusBranch) { t.Fatalf("got %s", m) }
}

func TestUnmarshalErrors(t *testing.T) {
	node := Marshal(MakeNode(1, 0, 0, 0, 0, StatusSolved))
	badStatus := append([]byte(nil), node...)
	badStatus[33] = 9
	cases := map[string][]byte{
		"empty":        {},
		"bad type":     {0x07},
		"short node":   node[:20],
		"bad status":   badStatus,
		"bad tag":      {0x01, 0x09},
		"short int":    {0x02, byte(TagVersion), 0, 0},
		"short string": {0x01, byte(TagInfo), 0, 0, 0, 5, 'a'},
		"neg length":   {0x01, byte(TagInfo), 0xff, 0xff, 0xff, 0xff},
	}
	for name, b := range cases {
		_, err := Unmarshal(b)
		if !errors.Is(err, ErrProtocol) { t.Fatalf("%s: err = %v", name, err) }
		var pe *ProtocolError
		if !errors.As(err, &pe) { t.Fatalf("%s: not a *ProtocolError: %T", name, err) }
	}
}

func TestUnmarshalBinaryKeepsReceiverOnError(t *testing.T) {
	m := MakeDone().WithLabel("keep")
	if err := m.UnmarshalBinary([]byte{0x01, 0x42}); err == nil { t.Fatalf("expected error") }
	if l, _ := m.Label(); l != "keep" { t.Fatalf("receiver changed: %s", m) }
	if err := m.UnmarshalBinary([]byte{0x01}); err != nil { t.Fatalf("unmarshal: %v", err) }
	if m.HasLabel() { t.Fatalf("stale field after decode: %s", m) }
}
