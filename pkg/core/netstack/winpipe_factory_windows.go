//go:build windows

package netstack

import (
	"github.com/chocoteam/cpp-integration/pkg/transport"
	"github.com/chocoteam/cpp-integration/pkg/transport/winpipe"
)

func newWinPipeTransport() (transport.Transport, error) { return winpipe.New(), nil }
