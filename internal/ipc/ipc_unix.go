//go:build !windows

package ipc

import (
	"os"
	"path/filepath"
	"strconv"
)

// socketDir prefers $XDG_RUNTIME_DIR, which is per-user and cleared at
// logout, and falls back to a uid-qualified directory under $TMPDIR.
func socketDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "clipmini-"+strconv.Itoa(os.Getuid()))
}
