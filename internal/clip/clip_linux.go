//go:build linux

package clip

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.design/x/clipboard"
)

const (
	linuxPollInterval = 250 * time.Millisecond
	typesTimeout      = 500 * time.Millisecond
)

type linuxBackend struct {
	watchCh   chan struct{}
	done      chan struct{}
	lastHash  [sha256.Size]byte
	typesCmd  []string
	sensitive atomic.Pointer[[]string]
}

// New returns the Linux clipboard backend, or a headless no-op backend if
// the display environment is unavailable (e.g. a headless server without X11
// or Wayland). clipboard.Init is called here rather than in init() so that
// CLI sub-commands that never watch the clipboard don't trigger the warning.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return newHeadless()
	}
	b := &linuxBackend{
		watchCh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
		typesCmd: typesCommand(),
	}
	go b.poll()
	return b
}

func (b *linuxBackend) Name() string { return "Linux clipboard (poll)" }

// SetSensitiveTypes makes the poller check the selection's types before
// reading it, so sensitive content is never read just to detect a change.
// Without wl-paste or xclip the types are unknown and the text is read.
func (b *linuxBackend) SetSensitiveTypes(types []string) {
	types = slices.Clone(types)
	b.sensitive.Store(&types)
}

func (b *linuxBackend) digest() [sha256.Size]byte {
	var sensitive []string
	if p := b.sensitive.Load(); p != nil {
		sensitive = *p
	}
	var types []string
	if len(sensitive) > 0 {
		types, _ = b.Types()
	}
	return selectionDigest(types, sensitive, func() []byte {
		return clipboard.Read(clipboard.FmtText)
	})
}

// poll compares digests rather than keeping the previous text around. The
// first tick only records the baseline.
func (b *linuxBackend) poll() {
	t := time.NewTicker(linuxPollInterval)
	defer t.Stop()
	primed := false
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			sum := b.digest()
			if !primed {
				b.lastHash, primed = sum, true
				continue
			}
			if sum != b.lastHash {
				b.lastHash = sum
				notify(b.watchCh)
			}
		}
	}
}

// Types lists the targets of the clipboard selection using wl-paste or xclip,
// whichever matches the session. Without either tool it returns nil.
func (b *linuxBackend) Types() ([]string, error) {
	if len(b.typesCmd) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), typesTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, b.typesCmd[0], b.typesCmd[1:]...).Output()
	if err != nil {
		// Both tools exit non-zero when the clipboard is empty.
		return nil, nil
	}
	var types []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			types = append(types, line)
		}
	}
	return types, nil
}

func (b *linuxBackend) ReadText() ([]byte, error) {
	return clipboard.Read(clipboard.FmtText), nil
}

func (b *linuxBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *linuxBackend) Clear() error {
	clipboard.Write(clipboard.FmtText, []byte{})
	return nil
}

func (b *linuxBackend) Watch() <-chan struct{} { return b.watchCh }
func (b *linuxBackend) Close()                 { close(b.done) }

func typesCommand() []string {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		if _, err := exec.LookPath("wl-paste"); err == nil {
			return []string{"wl-paste", "--list-types"}
		}
	}
	if _, err := exec.LookPath("xclip"); err == nil {
		return []string{"xclip", "-selection", "clipboard", "-o", "-t", "TARGETS"}
	}
	return nil
}
