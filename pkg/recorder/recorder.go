// Package recorder keeps a file of the frames a connector sent so a search
// can be replayed to a profiler later.
//
// A recording is a sequence of CBOR-encoded Records.
package recorder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	cbor "github.com/fxamacker/cbor/v2"

	"github.com/chocoteam/cpp-integration/pkg/protocol/codec"
)

// Record is one sent frame payload.
type Record struct {
	Time    int64  `cbor:"t"` // unix nanoseconds
	Payload []byte `cbor:"p"`
}

// At returns the record timestamp.
func (r Record) At() time.Time { return time.Unix(0, r.Time) }

// Writer appends records to an io.Writer. It is safe for concurrent use.
type Writer struct {
	mu    sync.Mutex
	bw    *bufio.Writer
	enc   codec.Codec
	c     io.Closer
	nowFn func() time.Time
}

// NewWriter writes records to w. If w is an io.Closer, Close closes it.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	rw := &Writer{bw: bw, enc: codec.CBOR(), nowFn: time.Now}
	if c, ok := w.(io.Closer); ok {
		rw.c = c
	}
	return rw
}

// Create truncates or creates path and returns a Writer on it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}
	return NewWriter(f), nil
}

// Append records payload with the current time.
func (w *Writer) Append(payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, err := w.enc.Marshal(Record{Time: w.nowFn().UnixNano(), Payload: payload})
	if err != nil {
		return err
	}
	_, err = w.bw.Write(b)
	return err
}

// Flush writes buffered records through.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bw.Flush()
}

// Close flushes and closes the underlying writer.
func (w *Writer) Close() error {
	err := w.Flush()
	if w.c != nil {
		if cerr := w.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Reader iterates records.
type Reader struct {
	dec *cbor.Decoder
	c   io.Closer
}

// NewReader reads records from r.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{dec: cbor.NewDecoder(bufio.NewReader(r))}
	if c, ok := r.(io.Closer); ok {
		rd.c = c
	}
	return rd
}

// Open opens a recording file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	return NewReader(f), nil
}

// Next returns the next record, or io.EOF at the end of the recording.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Record{}, fmt.Errorf("truncated recording: %w", err)
		}
		return Record{}, err
	}
	return rec, nil
}

// Close closes the underlying reader if it is closable.
func (r *Reader) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

// Sender is what Replay sends payloads through.
type Sender interface {
	SendRaw(payload []byte) error
}

// ReplayOptions tunes Replay.
type ReplayOptions struct {
	// Pace reproduces the recorded gaps between frames, scaled by Speed.
	Pace  bool
	Speed float64
}

// Replay sends every record of r through s and returns the number sent.
func Replay(ctx context.Context, r *Reader, s Sender, opts ReplayOptions) (int, error) {
	speed := opts.Speed
	if speed <= 0 {
		speed = 1
	}
	var n int
	var prev int64
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if opts.Pace && prev != 0 && rec.Time > prev {
			gap := time.Duration(float64(rec.Time-prev) / speed)
			select {
			case <-ctx.Done():
				return n, ctx.Err()
			case <-time.After(gap):
			}
		} else if err := ctx.Err(); err != nil {
			return n, err
		}
		prev = rec.Time
		if err := s.SendRaw(rec.Payload); err != nil {
			return n, err
		}
		n++
	}
}
