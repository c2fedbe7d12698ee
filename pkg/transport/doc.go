// Package transport opens the raw duplex byte streams a profiler connection
// runs over. Framing is not done here; see package stream.
//
// Key concepts:
// - Transport: dials/listens for Streams of a specific Kind (TCP/QUIC/etc.)
// - Stream: an unframed, bidirectional byte stream
// - Listener: accepts inbound Streams; used by sinks and tests
package transport
