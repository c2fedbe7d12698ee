package quic

import (
	"context"
	"io"
	"testing"
	"time"
)

func TestLoopback(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tr := New()
	tr.Linger = 200 * time.Millisecond
	l, err := tr.Listen(ctx, "127.0.0.1:0")
	if err != nil { t.Fatalf("listen: %v", err) }
	defer l.Close()

	cli, err := tr.Dial(ctx, l.Addr().String())
	if err != nil { t.Fatalf("dial: %v", err) }
	// the listener only sees the stream once bytes arrive
	if _, err := cli.Write([]byte("frame")); err != nil { t.Fatalf("write: %v", err) }

	srv, err := l.Accept(ctx)
	if err != nil { t.Fatalf("accept: %v", err) }
	go func() { _ = cli.Close() }()
	b, err := io.ReadAll(srv)
	if err != nil || string(b) != "frame" { t.Fatalf("read = %q, %v", b, err) }
	_ = srv.Close()
}
