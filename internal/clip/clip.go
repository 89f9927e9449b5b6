// Package clip provides a unified interface to the system clipboard across
// platforms. Build constraints select the appropriate implementation:
//
//	clip_darwin.go  : macOS via golang.design/x/clipboard + cgo changeCount
//	clip_windows.go : Windows via golang.design/x/clipboard + AddClipboardFormatListener
//	clip_linux.go   : Linux via golang.design/x/clipboard, polling only
//	clip_other.go   : headless stub for everything else
//
// The in-memory backend (memory.go) is available everywhere and is used by
// tests and by "clipmini daemon --backend memory".
package clip

import (
	"fmt"
	"strings"
)

// Backend is the interface that all platform clipboard implementations satisfy.
// Only the text role of the clipboard selection is handled.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Types returns the MIME types (or platform type names) advertised for the
	// current selection. Returns nil, nil when the platform cannot tell.
	Types() ([]string, error)

	// ReadText returns the current clipboard text, or nil if there is none.
	ReadText() ([]byte, error)

	// WriteText replaces the clipboard text.
	WriteText(text string) error

	// Clear replaces the clipboard content with an explicit empty payload.
	Clear() error

	// Watch returns a channel that receives a signal whenever the clipboard
	// changes. The channel is never closed. On platforms without native change
	// notification (Linux X11/Wayland) this is implemented via polling.
	// Bursts of changes may coalesce into one signal.
	Watch() <-chan struct{}

	// Close releases any resources held by the backend.
	Close()
}

// Open returns the backend selected by kind: "auto" (the platform backend),
// "memory" or "headless".
func Open(kind string) (Backend, error) {
	switch strings.ToLower(kind) {
	case "", "auto":
		return New(), nil
	case "memory":
		return NewMemory(), nil
	case "headless", "none":
		return newHeadless(), nil
	default:
		return nil, fmt.Errorf("unknown clipboard backend %q", kind)
	}
}

// notify performs a non-blocking send on a watch channel.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
