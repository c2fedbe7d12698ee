// Package stream frames protocol messages over a raw duplex byte stream.
package stream

import (
	"bufio"
	"io"
	"time"

	"github.com/chocoteam/cpp-integration/pkg/protocol"
)

// Duplex is the raw byte stream a Conn wraps.
type Duplex interface {
	io.Reader
	io.Writer
	io.Closer
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Conn sends and receives length-prefixed frames. It is not safe for
// concurrent use; one writer and one reader are expected.
type Conn struct {
	rw      Duplex
	br      *bufio.Reader
	bw      *bufio.Writer
	timeout time.Duration
}

// New wraps rw.
func New(rw Duplex) *Conn {
	return &Conn{rw: rw, br: bufio.NewReader(rw), bw: bufio.NewWriter(rw)}
}

// SetWriteTimeout bounds each Send when the stream supports write deadlines.
// Zero, the default, blocks until the peer accepts the bytes.
func (c *Conn) SetWriteTimeout(d time.Duration) { c.timeout = d }

// Send writes one frame and flushes it before returning.
func (c *Conn) Send(payload []byte) error {
	if c.timeout > 0 {
		if wd, ok := c.rw.(writeDeadliner); ok {
			if err := wd.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
				return err
			}
			defer func() { _ = wd.SetWriteDeadline(time.Time{}) }()
		}
	}
	if _, err := protocol.WriteFrame(c.bw, payload); err != nil {
		return err
	}
	return c.bw.Flush()
}

// Recv reads the payload of the next frame.
func (c *Conn) Recv() ([]byte, error) { return protocol.ReadFrame(c.br) }

// SendMessage encodes m and sends it as one frame.
func (c *Conn) SendMessage(m protocol.Message) error { return c.Send(protocol.Marshal(m)) }

// RecvMessage reads and decodes the next frame.
func (c *Conn) RecvMessage() (protocol.Message, error) {
	p, err := c.Recv()
	if err != nil {
		return protocol.Message{}, err
	}
	return protocol.Unmarshal(p)
}

// Close closes the underlying stream.
func (c *Conn) Close() error { return c.rw.Close() }
