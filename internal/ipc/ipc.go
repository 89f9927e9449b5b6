// Package ipc locates and opens the local socket the clipmini daemon serves
// on. The CLI subcommands and the terminal menu dial it; nothing listens on
// the network.
//
// The socket carries both gRPC and HTTP/JSON; the daemon splits them with
// cmux.
package ipc

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

// EnvSocket overrides the socket path.
const EnvSocket = "CLIPMINI_SOCKET"

const socketName = "clipmini.sock"

// SocketPath returns the socket path: $CLIPMINI_SOCKET if set, otherwise a
// per-user runtime location (see socketDir).
func SocketPath() string {
	if s := os.Getenv(EnvSocket); s != "" {
		return s
	}
	return filepath.Join(socketDir(), socketName)
}

// Target returns the gRPC dial target for path.
func Target(path string) string {
	return "unix://" + path
}

// IsRunning reports whether a daemon appears to be listening on path. It
// does a cheap dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	c, err := Dial(ctx, path)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on path, removing a stale socket left by a
// crashed run. It refuses to start if another daemon is already listening.
func Listen(path string) (net.Listener, error) {
	if IsRunning(path) {
		return nil, fmt.Errorf("ipc: daemon already listening on %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ipc: %w", err)
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("ipc: %w", err)
	}
	return ln, nil
}

// Dial connects to the daemon socket.
func Dial(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
