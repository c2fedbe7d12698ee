package tcp

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/chocoteam/cpp-integration/pkg/transport"
)

// Transport implements plain TCP streams, the profiler's native link.
type Transport struct {
	// KeepAlive is passed to net.Dialer; zero uses the Go default.
	KeepAlive time.Duration
}

func New() *Transport { return &Transport{} }

func (t *Transport) Kind() transport.Kind { return transport.KindTCP }

func (t *Transport) Listen(ctx context.Context, address string) (transport.Listener, error) {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", address)
	if err != nil { return nil, err }
	tl := &listener{l: l, newCh: make(chan net.Conn, 8), closeCh: make(chan struct{})}
	go tl.acceptLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = tl.Close()
		case <-tl.closeCh:
		}
	}()
	return tl, nil
}

func (t *Transport) Dial(ctx context.Context, address string) (transport.Stream, error) {
	d := &net.Dialer{KeepAlive: t.KeepAlive}
	c, err := d.DialContext(ctx, "tcp", address)
	if err != nil { return nil, err }
	if tc, ok := c.(*net.TCPConn); ok {
		// frames are flushed whole; do not hold small ones back
		_ = tc.SetNoDelay(true)
	}
	return c, nil
}

type listener struct {
	l       net.Listener
	newCh   chan net.Conn
	closeCh chan struct{}
	once    sync.Once
}

func (l *listener) Addr() net.Addr { return l.l.Addr() }

func (l *listener) Accept(ctx context.Context) (transport.Stream, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closeCh:
		return nil, transport.ErrListenerClosed
	case c := <-l.newCh:
		return c, nil
	}
}

func (l *listener) Close() error {
	l.once.Do(func() { close(l.closeCh) })
	return l.l.Close()
}

func (l *listener) acceptLoop() {
	for {
		c, err := l.l.Accept()
		if err != nil { return }
		select {
		case l.newCh <- c:
		case <-l.closeCh:
			_ = c.Close()
			return
		}
	}
}
