// Package indicator is one activation of the clipboard history: it owns a
// history.Manager and the single goroutine that drives it. Clipboard
// changes, preference changes, and presentation requests are all posted onto
// that goroutine, so every manager operation runs to completion without
// interleaving.
//
// An Indicator is built when the host enables the component (restoring any
// state left in the session store) and destroyed when the host disables it
// (saving state according to the suspend kind).
package indicator

import (
	"context"
	"errors"
	"log/slog"

	"go.klb.dev/clipmini/internal/clip"
	"go.klb.dev/clipmini/internal/history"
	"go.klb.dev/clipmini/internal/hub"
	"go.klb.dev/clipmini/internal/message"
	"go.klb.dev/clipmini/internal/prefs"
	"go.klb.dev/clipmini/internal/session"
)

// ErrClosed is returned by operations on a destroyed Indicator.
var ErrClosed = errors.New("indicator: closed")

const opQueue = 64

// Options configures an Indicator. Source and Prefs are required.
type Options struct {
	Source *clip.Source
	Prefs  *prefs.Preferences
	// Hub receives history events. Optional.
	Hub *hub.Hub
	// Store carries state across destroy/rebuild. Optional.
	Store *session.Store
}

// Indicator drives a history.Manager from a single goroutine.
type Indicator struct {
	src   *clip.Source
	prefs *prefs.Preferences
	hub   *hub.Hub
	store *session.Store
	mgr   *history.Manager

	ops    chan func()
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// disconnect functions for signal subscriptions; touched only on the loop
	offs []func()
}

// New builds an Indicator, restores state from opts.Store, and starts its
// loop.
func New(opts Options) *Indicator {
	ctx, cancel := context.WithCancel(context.Background())
	i := &Indicator{
		src:    opts.Source,
		prefs:  opts.Prefs,
		hub:    opts.Hub,
		store:  opts.Store,
		mgr:    history.NewManager(opts.Source, opts.Prefs.HistorySize()),
		ops:    make(chan func(), opQueue),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// Changes made while no indicator was running are not history.
	drain(i.src.Changed())
	// Queued before the loop starts, so it runs before anything else.
	i.ops <- i.onResume

	go i.run()
	slog.Info("history indicator started", "backend", i.src.Name(), "max_size", i.mgr.MaxSize())
	return i
}

func (i *Indicator) run() {
	defer close(i.done)
	for {
		select {
		case <-i.ctx.Done():
			return
		case fn := <-i.ops:
			fn()
		case <-i.src.Changed():
			// Private mode skips the read entirely.
			if i.mgr.PrivateMode() {
				continue
			}
			i.readThen(i.mgr.OnClipboardChanged)
		}
	}
}

func drain(ch <-chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

// readThen reads the clipboard off the loop and applies the result on it.
// Reads are not ordered against each other; whichever resolves last wins.
func (i *Indicator) readThen(apply func(text string)) {
	go func() {
		text, _ := i.src.ReadText(i.ctx)
		i.post(func() { apply(text) })
	}()
}

// post queues fn on the loop without waiting for it. Dropped after Destroy.
func (i *Indicator) post(fn func()) {
	select {
	case i.ops <- fn:
	case <-i.ctx.Done():
	}
}

// do runs fn on the loop and waits for its result.
func (i *Indicator) do(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	select {
	case i.ops <- func() { errc <- fn() }:
	case <-i.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-i.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// onResume restores saved state and wires signal forwarding. Runs on the loop.
func (i *Indicator) onResume() {
	if i.store != nil {
		snap := i.store.Take()
		i.mgr.Restore(snap)
		if n := len(snap.History); n > 0 || snap.PrivateMode {
			slog.Info("session state restored", "entries", i.mgr.Len(), "private_mode", snap.PrivateMode)
		}
	}
	if !i.mgr.PrivateMode() {
		i.readThen(i.mgr.Resync)
	}

	i.offs = append(i.offs, i.prefs.HistorySizeChanged.Connect(func(n int) {
		i.post(func() {
			slog.Info("history size changed", "max_size", n)
			i.mgr.SetMaxSize(n)
			i.publish(message.Event{Kind: message.KindMaxSize, Index: i.mgr.MaxSize()})
		})
	}))
	// A change that landed between New and this subscription.
	if n := i.prefs.HistorySize(); n != i.mgr.MaxSize() {
		i.mgr.SetMaxSize(n)
	}

	if i.hub != nil {
		i.forwardEvents()
		i.hub.Reset(i.state())
	}
}

// forwardEvents connects manager signals to the hub. Runs on the loop.
func (i *Indicator) forwardEvents() {
	m := i.mgr
	i.offs = append(i.offs,
		m.Added.Connect(func(c history.Change) {
			i.publish(message.Event{Kind: message.KindAdded, Index: c.Index, Text: c.Entry.Text()})
		}),
		m.Removed.Connect(func(c history.Change) {
			i.publish(message.Event{Kind: message.KindRemoved, Index: c.Index, Text: c.Entry.Text()})
		}),
		m.Moved.Connect(func(mv history.Move) {
			i.publish(message.Event{Kind: message.KindMoved, From: mv.From, Index: mv.To, Text: mv.Entry.Text()})
		}),
		m.ActiveChanged.Connect(func(e *history.Entry) {
			i.publish(message.Event{Kind: message.KindActive, Index: i.indexOf(e)})
		}),
		m.PrivateModeChanged.Connect(func(on bool) {
			i.publish(message.Event{Kind: message.KindPrivate, PrivateMode: on})
		}),
	)
}

func (i *Indicator) publish(ev message.Event) {
	if i.hub != nil {
		i.hub.Publish(ev)
	}
}

func (i *Indicator) indexOf(e *history.Entry) int {
	if e == nil {
		return -1
	}
	for idx, x := range i.mgr.Entries() {
		if x == e {
			return idx
		}
	}
	return -1
}

// state builds the presentation view. Runs on the loop.
func (i *Indicator) state() message.State {
	entries := i.mgr.Entries()
	active := i.mgr.Active()
	st := message.State{
		Entries:     make([]message.Entry, len(entries)),
		PrivateMode: i.mgr.PrivateMode(),
		MaxSize:     i.mgr.MaxSize(),
	}
	for idx, e := range entries {
		st.Entries[idx] = message.Entry{Text: e.Text(), Active: e == active}
	}
	return st
}

// State returns the current history view.
func (i *Indicator) State(ctx context.Context) (message.State, error) {
	var st message.State
	err := i.do(ctx, func() error {
		st = i.state()
		return nil
	})
	return st, err
}

// Activate puts the entry holding text back on the clipboard.
func (i *Indicator) Activate(ctx context.Context, text string) error {
	return i.do(ctx, func() error {
		e := i.mgr.Find(text)
		if e == nil {
			return history.ErrNotFound
		}
		return i.mgr.Activate(e)
	})
}

// Delete removes the entry holding text.
func (i *Indicator) Delete(ctx context.Context, text string) error {
	return i.do(ctx, func() error {
		e := i.mgr.Find(text)
		if e == nil {
			return history.ErrNotFound
		}
		return i.mgr.Delete(e)
	})
}

// ClearAll removes every entry.
func (i *Indicator) ClearAll(ctx context.Context) error {
	return i.do(ctx, func() error {
		i.mgr.ClearAll()
		return nil
	})
}

// SetPrivateMode turns capture off (true) or back on (false). Turning it off
// re-reads the clipboard to find the active entry again.
func (i *Indicator) SetPrivateMode(ctx context.Context, enabled bool) error {
	return i.do(ctx, func() error {
		i.setPrivateMode(enabled)
		return nil
	})
}

// TogglePrivateMode flips private mode and returns the new state.
func (i *Indicator) TogglePrivateMode(ctx context.Context) (bool, error) {
	var on bool
	err := i.do(ctx, func() error {
		on = !i.mgr.PrivateMode()
		i.setPrivateMode(on)
		return nil
	})
	return on, err
}

func (i *Indicator) setPrivateMode(enabled bool) {
	was := i.mgr.PrivateMode()
	i.mgr.SetPrivateMode(enabled)
	if was && !enabled {
		i.readThen(i.mgr.Resync)
	}
}

// Destroy saves state into the session store for kind, stops the loop, and
// releases subscriptions. Safe to call more than once.
func (i *Indicator) Destroy(kind session.Kind) {
	err := i.do(context.Background(), func() error {
		if i.store != nil {
			i.store.Save(kind, i.mgr.Snapshot())
		}
		for _, off := range i.offs {
			off()
		}
		i.offs = nil
		return nil
	})
	if err != nil && !errors.Is(err, ErrClosed) {
		slog.Warn("indicator teardown", "err", err)
	}
	i.cancel()
	<-i.done
	if err == nil {
		slog.Info("history indicator stopped", "kind", kind)
	}
}
