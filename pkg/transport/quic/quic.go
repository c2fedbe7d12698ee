package quic

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"math/big"
	"net"
	"sync"
	"time"

	quicgo "github.com/quic-go/quic-go"

	"github.com/chocoteam/cpp-integration/pkg/transport"
)

// ALPN protocol id negotiated by both ends.
const nextProto = "cpprofiler"

// Transport carries the byte stream over one bidirectional QUIC stream,
// opened by the dialer and accepted by the listener.
type Transport struct {
	tlsConf  *tls.Config
	quicConf *quicgo.Config
	// Linger is how long Close waits for the peer to finish reading before
	// tearing the connection down.
	Linger time.Duration
}

func New() *Transport {
	cert, _ := selfSignedCert()
	tlsConf := &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{nextProto},
		MinVersion:   tls.VersionTLS13,
	}
	return &Transport{tlsConf: tlsConf, quicConf: &quicgo.Config{KeepAlivePeriod: 10 * time.Second}, Linger: time.Second}
}

func (t *Transport) Kind() transport.Kind { return transport.KindQUIC }

func (t *Transport) Listen(ctx context.Context, address string) (transport.Listener, error) {
	l, err := quicgo.ListenAddr(address, t.tlsConf, t.quicConf)
	if err != nil { return nil, err }
	ql := &listener{l: l, linger: t.Linger, newCh: make(chan *qstream, 8), closeCh: make(chan struct{})}
	go ql.acceptLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = ql.Close()
		case <-ql.closeCh:
		}
	}()
	return ql, nil
}

func (t *Transport) Dial(ctx context.Context, address string) (transport.Stream, error) {
	tlsClient := &tls.Config{
		InsecureSkipVerify: true, // the profiler link is local and unauthenticated
		NextProtos:         []string{nextProto},
		MinVersion:         tls.VersionTLS13,
	}
	c, err := quicgo.DialAddr(ctx, address, tlsClient, t.quicConf)
	if err != nil { return nil, err }
	st, err := c.OpenStreamSync(ctx)
	if err != nil {
		_ = c.CloseWithError(0, "open stream failed")
		return nil, err
	}
	return &qstream{Stream: st, conn: c, linger: t.Linger}, nil
}

// ---- Listener ----

type listener struct {
	l       *quicgo.Listener
	linger  time.Duration
	newCh   chan *qstream
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
	case s := <-l.newCh:
		return s, nil
	}
}

func (l *listener) Close() error {
	l.once.Do(func() { close(l.closeCh) })
	return l.l.Close()
}

func (l *listener) acceptLoop() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() { <-l.closeCh; cancel() }()
	for {
		c, err := l.l.Accept(ctx)
		if err != nil { return }
		go func() {
			st, err := c.AcceptStream(ctx)
			if err != nil {
				_ = c.CloseWithError(0, "")
				return
			}
			s := &qstream{Stream: st, conn: c, linger: l.linger}
			select {
			case l.newCh <- s:
			case <-l.closeCh:
				_ = s.Close()
			}
		}()
	}
}

// ---- Stream ----

// qstream adapts a QUIC stream plus its connection to transport.Stream.
type qstream struct {
	quicgo.Stream
	conn   quicgo.Connection
	linger time.Duration
	once   sync.Once
	err    error
}

func (s *qstream) LocalAddr() net.Addr  { return s.conn.LocalAddr() }
func (s *qstream) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// Close ends the write side, gives the peer up to linger to drain and hang
// up, then closes the connection.
func (s *qstream) Close() error {
	s.once.Do(func() {
		s.err = s.Stream.Close()
		if s.linger > 0 {
			select {
			case <-s.conn.Context().Done():
			case <-time.After(s.linger):
			}
		}
		if err := s.conn.CloseWithError(0, ""); err != nil && s.err == nil {
			s.err = err
		}
	})
	return s.err
}

// selfSignedCert generates a short-lived self-signed TLS certificate for local QUIC use.
func selfSignedCert() (tls.Certificate, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil { return tls.Certificate{}, err }
	tmpl := x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil { return tls.Certificate{}, err }
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}, nil
}
