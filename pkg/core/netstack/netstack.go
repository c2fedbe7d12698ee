// Package netstack builds transports by configured kind.
package netstack

import (
	"net"
	"strconv"
	"strings"

	"github.com/chocoteam/cpp-integration/pkg/transport"
	"github.com/chocoteam/cpp-integration/pkg/transport/mem"
	tquic "github.com/chocoteam/cpp-integration/pkg/transport/quic"
	ttcp "github.com/chocoteam/cpp-integration/pkg/transport/tcp"
)

// NewByKind constructs a Transport by string kind.
func NewByKind(kind string) (transport.Transport, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "tcp":
		return ttcp.New(), nil
	case "quic":
		return tquic.New(), nil
	case "mem", "inproc":
		return mem.Default(), nil
	case "winpipe", "pipe":
		return newWinPipeTransport()
	default:
		return nil, ErrUnknownKind(kind)
	}
}

// Address joins host and port for kinds that address by host:port. Other
// kinds use host as the full name.
func Address(kind transport.Kind, host string, port int) string {
	switch kind {
	case transport.KindTCP, transport.KindQUIC:
		return net.JoinHostPort(host, strconv.Itoa(port))
	default:
		return host
	}
}

// Basic typed error for unknown kinds
type ErrUnknownKind string

func (e ErrUnknownKind) Error() string { return "unknown transport kind: " + string(e) }
