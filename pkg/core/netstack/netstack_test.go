package netstack

import (
	"errors"
	"testing"

	"github.com/chocoteam/cpp-integration/pkg/transport"
)

func TestNewByKind(t *testing.T) {
	for kind, want := range map[string]transport.Kind{"": transport.KindTCP, "TCP": transport.KindTCP, "quic": transport.KindQUIC, "mem": transport.KindMem} {
		tr, err := NewByKind(kind)
		if err != nil { t.Fatalf("%q: %v", kind, err) }
		if tr.Kind() != want { t.Fatalf("%q: kind = %s", kind, tr.Kind()) }
	}
	var uk ErrUnknownKind
	if _, err := NewByKind("carrier-pigeon"); !errors.As(err, &uk) { t.Fatalf("err = %v", err) }
}

func TestAddress(t *testing.T) {
	if a := Address(transport.KindTCP, "localhost", 6565); a != "localhost:6565" { t.Fatalf("tcp = %s", a) }
	if a := Address(transport.KindTCP, "::1", 6565); a != "[::1]:6565" { t.Fatalf("ipv6 = %s", a) }
	if a := Address(transport.KindMem, "inproc://p", 6565); a != "inproc://p" { t.Fatalf("mem = %s", a) }
}
