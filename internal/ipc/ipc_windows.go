//go:build windows

package ipc

import (
	"os"
	"path/filepath"
)

// socketDir uses the per-user local application data directory. Windows 10
// and later support AF_UNIX sockets on NTFS paths.
func socketDir() string {
	if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
		return filepath.Join(dir, "clipmini")
	}
	return filepath.Join(os.TempDir(), "clipmini")
}
