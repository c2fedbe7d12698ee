package recorder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/chocoteam/cpp-integration/pkg/protocol"
)

type collect struct{ payloads [][]byte }

func (c *collect) SendRaw(p []byte) error { c.payloads = append(c.payloads, p); return nil }

func TestWriteReadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "run.cbor")
	w, err := Create(p)
	if err != nil { t.Fatalf("create: %v", err) }
	in := [][]byte{
		protocol.Marshal(protocol.MakeStart("{}")),
		protocol.Marshal(protocol.MakeNode(0, -1, 0, -1, 2, protocol.StatusBranch)),
		protocol.Marshal(protocol.MakeDone()),
	}
	for _, b := range in {
		if err := w.Append(b); err != nil { t.Fatalf("append: %v", err) }
	}
	if err := w.Close(); err != nil { t.Fatalf("close: %v", err) }

	r, err := Open(p)
	if err != nil { t.Fatalf("open: %v", err) }
	defer r.Close()
	for i, want := range in {
		rec, err := r.Next()
		if err != nil { t.Fatalf("next %d: %v", i, err) }
		if !bytes.Equal(rec.Payload, want) { t.Fatalf("record %d = % x", i, rec.Payload) }
		if rec.At().IsZero() { t.Fatalf("record %d has no time", i) }
	}
	if _, err := r.Next(); err != io.EOF { t.Fatalf("want EOF, got %v", err) }
}

func TestReplay(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	base := time.Unix(100, 0)
	tick := 0
	w.nowFn = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Millisecond) }
	for i := 0; i < 3; i++ { _ = w.Append([]byte{byte(i)}) }
	_ = w.Flush()

	var c collect
	n, err := Replay(context.Background(), NewReader(&buf), &c, ReplayOptions{Pace: true, Speed: 10})
	if err != nil || n != 3 { t.Fatalf("replay = %d, %v", n, err) }
	if len(c.payloads) != 3 || c.payloads[2][0] != 2 { t.Fatalf("payloads = %v", c.payloads) }
}

func TestReplayCanceled(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_ = w.Append([]byte{1})
	_ = w.Flush()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var c collect
	if _, err := Replay(ctx, NewReader(&buf), &c, ReplayOptions{}); !errors.Is(err, context.Canceled) { t.Fatalf("err = %v", err) }
}

func TestTruncatedRecording(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_ = w.Append([]byte("payload"))
	_ = w.Flush()
	b := buf.Bytes()[:buf.Len()-2]
	if _, err := NewReader(bytes.NewReader(b)).Next(); err == nil || err == io.EOF { t.Fatalf("err = %v", err) }
}
