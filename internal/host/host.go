// Package host owns the lifecycle of the history component. It mirrors the
// desktop session: the component exists only while the host is enabled and
// the session is unlocked, and it is torn down and rebuilt across those
// transitions with its state carried through a session.Store.
package host

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.klb.dev/clipmini/internal/clip"
	"go.klb.dev/clipmini/internal/hub"
	"go.klb.dev/clipmini/internal/indicator"
	"go.klb.dev/clipmini/internal/message"
	"go.klb.dev/clipmini/internal/prefs"
	"go.klb.dev/clipmini/internal/session"
)

// ErrLocked is returned by Indicator while no history component is running.
var ErrLocked = errors.New("history unavailable: session locked or disabled")

// ErrUnknownAction is returned by Apply for actions it does not recognise.
var ErrUnknownAction = errors.New("unknown session action")

// Options configures a Host.
type Options struct {
	Source *clip.Source
	Prefs  *prefs.Preferences
	Hub    *hub.Hub
	Policy session.Policy
}

// Host builds and destroys indicators as the session changes.
type Host struct {
	opts  Options
	store *session.Store

	mu      sync.Mutex
	ind     *indicator.Indicator
	enabled bool
	locked  bool
}

// New returns a disabled, unlocked Host. Call Enable to start capturing.
func New(opts Options) *Host {
	if opts.Hub == nil {
		opts.Hub = hub.New()
	}
	return &Host{opts: opts, store: session.NewStore(opts.Policy)}
}

// Hub returns the event hub indicators publish to.
func (h *Host) Hub() *hub.Hub { return h.opts.Hub }

// Store returns the session store.
func (h *Host) Store() *session.Store { return h.store }

// Enable starts the history component unless the session is locked.
func (h *Host) Enable() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enabled = true
	h.startLocked()
}

// Disable tears the component down as an ordinary disable.
func (h *Host) Disable() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enabled = false
	h.stopLocked(session.KindDisable)
}

// Lock tears the component down for a session lock.
func (h *Host) Lock() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.locked = true
	h.stopLocked(session.KindLock)
}

// Unlock rebuilds the component if the host is enabled.
func (h *Host) Unlock() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.locked = false
	h.startLocked()
}

// Close tears the component down for process exit.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enabled = false
	h.stopLocked(session.KindShutdown)
}

// Apply performs a session action received over RPC.
func (h *Host) Apply(action message.SessionAction) error {
	switch action {
	case message.SessionLock:
		h.Lock()
	case message.SessionUnlock:
		h.Unlock()
	case message.SessionDisable:
		h.Disable()
	case message.SessionEnable:
		h.Enable()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return nil
}

// Running reports whether a history component currently exists.
func (h *Host) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ind != nil
}

// Indicator returns the running component or ErrLocked.
func (h *Host) Indicator() (*indicator.Indicator, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ind == nil {
		return nil, ErrLocked
	}
	return h.ind, nil
}

func (h *Host) startLocked() {
	if h.ind != nil || !h.enabled || h.locked {
		return
	}
	h.ind = indicator.New(indicator.Options{
		Source: h.opts.Source,
		Prefs:  h.opts.Prefs,
		Hub:    h.opts.Hub,
		Store:  h.store,
	})
}

func (h *Host) stopLocked(kind session.Kind) {
	if h.ind == nil {
		return
	}
	h.ind.Destroy(kind)
	h.ind = nil
	h.opts.Hub.Reset(message.State{Locked: true, MaxSize: h.opts.Prefs.HistorySize()})
	slog.Info("history suspended", "kind", kind, "pending", h.store.Pending())
}
