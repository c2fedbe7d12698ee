// Package connector reports a search tree to a profiler.
//
// A Connector owns one stream to the profiler. Calls are synchronous and a
// Connector must be driven by one goroutine. Every send is a no-op until
// Connect succeeds and again after Disconnect, so solvers can leave the
// reporting calls in place when no profiler is listening.
package connector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chocoteam/cpp-integration/pkg/core/netstack"
	"github.com/chocoteam/cpp-integration/pkg/observability"
	"github.com/chocoteam/cpp-integration/pkg/protocol"
	"github.com/chocoteam/cpp-integration/pkg/protocol/stream"
	"github.com/chocoteam/cpp-integration/pkg/recorder"
	"github.com/chocoteam/cpp-integration/pkg/transport"
	ttcp "github.com/chocoteam/cpp-integration/pkg/transport/tcp"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 6565
)

// State of a Connector.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configure a Connector. The zero value dials TCP, drops send
// failures and blocks on writes without a deadline.
type Options struct {
	// Transport used by Connect; nil means TCP.
	Transport transport.Transport
	// Strict returns send failures instead of logging and dropping them.
	Strict bool
	// WriteTimeout bounds each frame write. Zero blocks until the peer reads.
	WriteTimeout time.Duration
	// Recorder, if set, receives every payload that was sent.
	Recorder *recorder.Writer
	Metrics  *observability.Metrics
	Logger   *zap.Logger
}

type Connector struct {
	opts  Options
	log   *zap.Logger
	state State
	conn  *stream.Conn
	addr  string
}

// New returns a disconnected Connector.
func New(opts Options) *Connector {
	if opts.Transport == nil {
		opts.Transport = ttcp.New()
	}
	return &Connector{opts: opts, log: observability.Or(opts.Logger).Named("connector")}
}

// Connect opens the stream to the profiler at host:port. For transports that
// are not addressed by host and port, host is the full address.
func (c *Connector) Connect(ctx context.Context, host string, port int) error {
	if c.state != StateDisconnected {
		return fmt.Errorf("connect: connector is %s: %w", c.state, protocol.ErrInvalidState)
	}
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	addr := netstack.Address(c.opts.Transport.Kind(), host, port)
	s, err := c.opts.Transport.Dial(ctx, addr)
	if err != nil {
		c.log.Info("profiler unreachable", zap.String("addr", addr), zap.Error(err))
		return &protocol.ConnectionError{Addr: addr, Err: err}
	}
	c.addr = addr
	c.attach(s)
	return nil
}

// Attach adopts an already open stream, as Connect does after dialing.
func (c *Connector) Attach(rw stream.Duplex) error {
	if c.state != StateDisconnected {
		return fmt.Errorf("attach: connector is %s: %w", c.state, protocol.ErrInvalidState)
	}
	c.attach(rw)
	return nil
}

func (c *Connector) attach(rw stream.Duplex) {
	c.conn = stream.New(rw)
	c.conn.SetWriteTimeout(c.opts.WriteTimeout)
	c.state = StateConnected
	c.opts.Metrics.SetConnected(true)
	c.log.Info("connected to profiler", zap.String("addr", c.addr), zap.Stringer("transport", c.opts.Transport.Kind()))
}

func (c *Connector) State() State    { return c.state }
func (c *Connector) Connected() bool { return c.state == StateConnected }

// Start announces a new search. Only the base name of filePath is sent.
func (c *Connector) Start(filePath string, executionID int32, hasRestarts bool) error {
	info, err := protocol.EncodeInfo(protocol.NewStartInfo(filePath, executionID, hasRestarts))
	if err != nil {
		return fmt.Errorf("start info: %w", err)
	}
	return c.Send(protocol.MakeStart(info))
}

// Restart announces that the search restarted.
func (c *Connector) Restart(restartID int32) error {
	info, err := protocol.EncodeInfo(protocol.RestartInfo{RestartID: restartID})
	if err != nil {
		return fmt.Errorf("restart info: %w", err)
	}
	return c.Send(protocol.MakeRestart(info))
}

// Node reports one explored node.
func (c *Connector) Node(nodeID, parentID, restartCount, alt, kids int32, status protocol.Status, opts ...NodeOption) error {
	m := protocol.MakeNode(nodeID, parentID, restartCount, alt, kids, status)
	for _, o := range opts {
		m = o(m)
	}
	return c.Send(m)
}

// Done ends the search.
func (c *Connector) Done() error { return c.Send(protocol.MakeDone()) }

// Send encodes and sends m.
func (c *Connector) Send(m protocol.Message) error {
	return c.send(m.Type(), protocol.Marshal(m))
}

// SendRaw sends an already encoded payload as one frame.
func (c *Connector) SendRaw(payload []byte) error {
	t := protocol.MsgType(0xFF)
	if len(payload) > 0 {
		t = protocol.MsgType(payload[0])
	}
	return c.send(t, payload)
}

func (c *Connector) send(t protocol.MsgType, payload []byte) error {
	if c.state != StateConnected {
		c.opts.Metrics.Dropped(t.String())
		return nil
	}
	if err := c.conn.Send(payload); err != nil {
		c.opts.Metrics.SendError()
		c.abort(err)
		if c.opts.Strict {
			return fmt.Errorf("send %s: %w", t, err)
		}
		c.log.Warn("dropping frame", zap.Stringer("type", t), zap.Error(err))
		return nil
	}
	c.opts.Metrics.FrameSent(t.String(), protocol.FramePrefixSize+len(payload))
	if ce := c.log.Check(zap.DebugLevel, "frame sent"); ce != nil {
		ce.Write(zap.Stringer("type", t), zap.Int("bytes", len(payload)))
	}
	if c.opts.Recorder != nil {
		if err := c.opts.Recorder.Append(payload); err != nil {
			c.log.Warn("recording failed", zap.Error(err))
		}
	}
	return nil
}

// abort closes the session after a failed write. Part of a frame may already
// be on the wire, so the peer can no longer find frame boundaries.
func (c *Connector) abort(cause error) {
	c.state = StateClosed
	if err := c.conn.Close(); err != nil {
		c.log.Debug("closing failed stream", zap.Error(err))
	}
	c.conn = nil
	c.opts.Metrics.SetConnected(false)
	c.log.Warn("profiler stream broken; further events are skipped", zap.String("addr", c.addr), zap.Error(cause))
}

// Disconnect closes the stream if one is open. It may be called any number
// of times; later sends are skipped.
func (c *Connector) Disconnect() {
	if c.state == StateClosed {
		return
	}
	was := c.state
	c.state = StateClosed
	if was != StateConnected {
		return
	}
	if err := c.conn.Close(); err != nil {
		c.log.Warn("closing profiler stream", zap.Error(err))
	}
	c.conn = nil
	c.opts.Metrics.SetConnected(false)
	c.log.Info("disconnected from profiler", zap.String("addr", c.addr))
}
