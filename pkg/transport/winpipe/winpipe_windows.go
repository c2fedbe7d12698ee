//go:build windows

package winpipe

import (
	"context"
	"net"
	"sync"

	"github.com/Microsoft/go-winio"

	"github.com/chocoteam/cpp-integration/pkg/transport"
)

// Transport carries the byte stream over a Windows named pipe such as
// \\.\pipe\cpprofiler.
type Transport struct{}

func New() *Transport { return &Transport{} }

func (t *Transport) Kind() transport.Kind { return transport.KindWinPipe }

func (t *Transport) Listen(ctx context.Context, pipeName string) (transport.Listener, error) {
	l, err := winio.ListenPipe(pipeName, nil)
	if err != nil { return nil, err }
	wl := &listener{l: l, newCh: make(chan net.Conn, 8), closeCh: make(chan struct{})}
	go wl.acceptLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = wl.Close()
		case <-wl.closeCh:
		}
	}()
	return wl, nil
}

func (t *Transport) Dial(ctx context.Context, pipeName string) (transport.Stream, error) {
	return winio.DialPipeContext(ctx, pipeName)
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
