package core

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenTCP_PortInUse(t *testing.T) {
	first, err := ListenTCP("127.0.0.1", 0)
	require.NoError(t, err)
	defer first.Close()

	port := first.Addr().(*net.TCPAddr).Port
	_, err = ListenTCP("127.0.0.1", port)
	require.Error(t, err)

	var inUse *PortInUseError
	require.True(t, errors.As(err, &inUse))
	assert.Contains(t, err.Error(), "already in use")
	assert.Contains(t, inUse.Addr, "127.0.0.1:")
	assert.True(t, isAddrInUse(inUse.Cause))
}

func TestListenTCP_FreePort(t *testing.T) {
	ln, err := ListenTCP("127.0.0.1", 0)
	require.NoError(t, err)
	assert.NoError(t, ln.Close())
}
