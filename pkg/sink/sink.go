// Package sink receives profiler frames and decodes them. It stands in for
// the profiler in tests and in the `profconn sink` command.
package sink

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/chocoteam/cpp-integration/pkg/protocol"
	"github.com/chocoteam/cpp-integration/pkg/protocol/stream"
	"github.com/chocoteam/cpp-integration/pkg/transport"
)

// Handler is called for every decoded message, from the goroutine serving
// that stream. remote identifies the sending connection.
type Handler func(remote net.Addr, m protocol.Message)

// Serve accepts streams from l until ctx is done or l is closed, decoding
// frames from each and passing them to h. It waits for open streams to end
// before returning.
func Serve(ctx context.Context, l transport.Listener, h Handler, log *zap.Logger) error {
	if log == nil {
		log = zap.L()
	}
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		s, err := l.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, transport.ErrListenerClosed) {
				return nil
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveStream(ctx, s, h, log)
		}()
	}
}

func serveStream(ctx context.Context, s transport.Stream, h Handler, log *zap.Logger) {
	remote := s.RemoteAddr()
	log = log.With(zap.Stringer("remote", remote))
	conn := stream.New(s)
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	log.Info("profiler stream opened")
	var n int
	for {
		m, err := conn.RecvMessage()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				log.Info("profiler stream closed", zap.Int("messages", n))
			case errors.Is(err, protocol.ErrProtocol):
				log.Warn("dropping stream after malformed frame", zap.Int("messages", n), zap.Error(err))
			case ctx.Err() != nil:
			default:
				log.Warn("profiler stream failed", zap.Int("messages", n), zap.Error(err))
			}
			return
		}
		n++
		h(remote, m)
	}
}

// Collector is a Handler target that keeps every message in arrival order.
type Collector struct {
	mu     sync.Mutex
	msgs   []protocol.Message
	notify chan struct{}
}

func NewCollector() *Collector { return &Collector{notify: make(chan struct{}, 1)} }

// Handle appends m; pass it to Serve.
func (c *Collector) Handle(_ net.Addr, m protocol.Message) {
	c.mu.Lock()
	c.msgs = append(c.msgs, m)
	c.mu.Unlock()
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Messages returns a copy of what has arrived so far.
func (c *Collector) Messages() []protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.Message(nil), c.msgs...)
}

// WaitFor blocks until at least n messages arrived or ctx is done.
func (c *Collector) WaitFor(ctx context.Context, n int) ([]protocol.Message, error) {
	for {
		if msgs := c.Messages(); len(msgs) >= n {
			return msgs, nil
		}
		select {
		case <-ctx.Done():
			return c.Messages(), ctx.Err()
		case <-c.notify:
		}
	}
}
