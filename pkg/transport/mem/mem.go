package mem

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/chocoteam/cpp-integration/pkg/transport"
)

// Transport is an in-process transport using net.Pipe. Useful for tests and
// for running a sink inside the reporting process.
type Transport struct {
	mu        sync.Mutex
	listeners map[string]*listener
}

var shared = New()

// Default returns the process-wide transport used by kind "mem".
func Default() *Transport { return shared }

func New() *Transport { return &Transport{listeners: make(map[string]*listener)} }

func (t *Transport) Kind() transport.Kind { return transport.KindMem }

func (t *Transport) Listen(ctx context.Context, name string) (transport.Listener, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.listeners[name]; ok {
		return nil, errors.New("mem: listener already exists")
	}
	l := &listener{name: name, newCh: make(chan net.Conn, 8), closeCh: make(chan struct{})}
	l.onClose = func() {
		t.mu.Lock()
		if t.listeners[name] == l { delete(t.listeners, name) }
		t.mu.Unlock()
	}
	t.listeners[name] = l
	go func() {
		select {
		case <-ctx.Done():
			_ = l.Close()
		case <-l.closeCh:
		}
	}()
	return l, nil
}

func (t *Transport) Dial(ctx context.Context, name string) (transport.Stream, error) {
	t.mu.Lock()
	l := t.listeners[name]
	t.mu.Unlock()
	if l == nil { return nil, errors.New("mem: no such listener: " + name) }
	srv, cli := net.Pipe()
	select {
	case l.newCh <- srv:
		return cli, nil
	case <-l.closeCh:
	case <-ctx.Done():
	}
	_ = srv.Close()
	_ = cli.Close()
	if err := ctx.Err(); err != nil { return nil, err }
	return nil, errors.New("mem: listener closed: " + name)
}

type listener struct {
	name    string
	newCh   chan net.Conn
	closeCh chan struct{}
	once    sync.Once
	onClose func()
}

func (l *listener) Addr() net.Addr { return memAddr(l.name) }

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
	l.once.Do(func() {
		close(l.closeCh)
		if l.onClose != nil { l.onClose() }
	})
	return nil
}

type memAddr string

func (a memAddr) Network() string { return "mem" }
func (a memAddr) String() string  { return string(a) }
