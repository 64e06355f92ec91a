package core

import (
	"fmt"
	"net"
	"strconv"
)

// PortInUseError reports that the API port is held by another process.
type PortInUseError struct {
	Addr  string
	Cause error
}

func (e *PortInUseError) Error() string {
	return fmt.Sprintf("address %s is already in use; stop the other process or set PORT", e.Addr)
}

func (e *PortInUseError) Unwrap() error {
	return e.Cause
}

// ListenTCP opens the API listener. An occupied port is reported as
// *PortInUseError so startup can say what to change.
func ListenTCP(host string, port int) (net.Listener, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	listener, err := net.Listen("tcp", addr)
	if err == nil {
		return listener, nil
	}

	if !isAddrInUse(err) {
		return nil, err
	}
	return nil, &PortInUseError{Addr: addr, Cause: err}
}
