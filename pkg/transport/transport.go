package transport

import (
	"context"
	"io"
	"net"
)

// Kind identifies the link type.
type Kind int

const (
	KindUnknown Kind = iota
	KindTCP
	KindQUIC
	KindWinPipe
	KindMem
)

func (k Kind) String() string {
	switch k {
	case KindTCP:
		return "tcp"
	case KindQUIC:
		return "quic"
	case KindWinPipe:
		return "winpipe"
	case KindMem:
		return "mem"
	default:
		return "unknown"
	}
}

// Stream is a raw duplex byte stream. Implementations backed by net.Conn
// also implement SetWriteDeadline.
type Stream interface {
	io.Reader
	io.Writer
	io.Closer
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// Listener accepts inbound streams.
type Listener interface {
	// Accept blocks until an inbound stream is available or ctx is done.
	Accept(ctx context.Context) (Stream, error)
	// Addr returns the local listening address.
	Addr() net.Addr
	// Close stops the listener and unblocks Accept.
	Close() error
}

// Transport provides dialing/listening for a specific link kind.
type Transport interface {
	Kind() Kind
	// Listen starts accepting inbound streams on address (transport-specific format).
	Listen(ctx context.Context, address string) (Listener, error)
	// Dial opens a stream to address. ctx bounds connection setup only.
	Dial(ctx context.Context, address string) (Stream, error)
}

// ErrListenerClosed is returned by Accept after Close.
var ErrListenerClosed = net.ErrClosed
