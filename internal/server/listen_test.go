package server

import (
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenWithFallback_SkipsBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	ln, got, err := listenWithFallback(port, 10, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer ln.Close()

	assert.NotEqual(t, port, got)
	assert.Greater(t, got, port)
}

func TestListenWithFallback_GivesUp(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	_, _, err = listenWithFallback(port, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
