package protocol

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrProtocol marks malformed or unrecognized bytes.
	ErrProtocol = errors.New("protocol error")
	// ErrInvalidState marks a read of an absent field or an operation
	// issued in the wrong session state.
	ErrInvalidState = errors.New("invalid state")
	// ErrConnection marks a failure to open or use the duplex stream.
	ErrConnection = errors.New("connection error")
)

// ProtocolError describes where decoding stopped.
type ProtocolError struct {
	Op     string // "decode", "frame"
	Offset int    // byte offset into the payload
	Reason string
	Err    error // underlying cause, if any
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: %s at offset %d: %s", e.Op, e.Offset, e.Reason)
}

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

func (e *ProtocolError) Unwrap() error { return e.Err }

// ConnectionError wraps the transport error of a failed connect.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

func protoErr(op string, off int, format string, a ...any) error {
	return &ProtocolError{Op: op, Offset: off, Reason: fmt.Sprintf(format, a...)}
}

// truncated reports a frame cut short after off bytes. It matches both
// ErrProtocol and io.ErrUnexpectedEOF.
func truncated(off, want, have int) error {
	return &ProtocolError{
		Op:     "frame",
		Offset: off,
		Reason: fmt.Sprintf("truncated frame: want %d bytes, have %d", want, have),
		Err:    io.ErrUnexpectedEOF,
	}
}
