package indicator

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipmini/internal/clip"
	"go.klb.dev/clipmini/internal/history"
	"go.klb.dev/clipmini/internal/hub"
	"go.klb.dev/clipmini/internal/message"
	"go.klb.dev/clipmini/internal/prefs"
	"go.klb.dev/clipmini/internal/session"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type fixture struct {
	mem   *clip.Memory
	src   *clip.Source
	prefs *prefs.Preferences
	hub   *hub.Hub
	store *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	p, err := prefs.Load(filepath.Join(t.TempDir(), "prefs.toml"))
	require.NoError(t, err)
	mem := clip.NewMemory()
	return &fixture{
		mem:   mem,
		src:   clip.NewSource(mem, nil),
		prefs: p,
		hub:   hub.New(),
		store: session.NewStore(session.Policy{Preserve: session.DefaultPreserve}),
	}
}

func (f *fixture) start(t *testing.T) *Indicator {
	t.Helper()
	ind := New(Options{Source: f.src, Prefs: f.prefs, Hub: f.hub, Store: f.store})
	t.Cleanup(func() { ind.Destroy(session.KindShutdown) })
	return ind
}

func texts(st message.State) []string {
	out := make([]string, len(st.Entries))
	for i, e := range st.Entries {
		out[i] = e.Text
	}
	return out
}

func eventuallyState(t *testing.T, ind *Indicator, want []string, active int) {
	t.Helper()
	require.Eventually(t, func() bool {
		st, err := ind.State(context.Background())
		if err != nil {
			return false
		}
		return slices.Equal(texts(st), want) && st.ActiveIndex() == active
	}, waitFor, tick)
}

// copyText simulates a copy and waits until the history has caught up, so
// consecutive copies are not coalesced into one read.
func copyText(t *testing.T, f *fixture, ind *Indicator, text string) {
	t.Helper()
	f.mem.Set(text)
	require.Eventually(t, func() bool {
		st, err := ind.State(context.Background())
		return err == nil && len(st.Entries) > 0 && st.Entries[0].Text == text && st.ActiveIndex() == 0
	}, waitFor, tick)
}

func TestIndicator_CapturesCopies(t *testing.T) {
	f := newFixture(t)
	ind := f.start(t)

	copyText(t, f, ind, "a")
	copyText(t, f, ind, "b")
	copyText(t, f, ind, "a")

	eventuallyState(t, ind, []string{"a", "b"}, 0)
}

func TestIndicator_ActivateAndDelete(t *testing.T) {
	f := newFixture(t)
	ind := f.start(t)
	ctx := context.Background()

	copyText(t, f, ind, "a")
	copyText(t, f, ind, "b")

	require.NoError(t, ind.Activate(ctx, "a"))
	eventuallyState(t, ind, []string{"a", "b"}, 0)
	got, _ := f.mem.Text()
	assert.Equal(t, "a", got)

	assert.ErrorIs(t, ind.Activate(ctx, "missing"), history.ErrNotFound)
	assert.ErrorIs(t, ind.Delete(ctx, "missing"), history.ErrNotFound)

	require.NoError(t, ind.Delete(ctx, "b"))
	eventuallyState(t, ind, []string{"a"}, 0)
	assert.Zero(t, f.mem.Clears())

	require.NoError(t, ind.Delete(ctx, "a"))
	eventuallyState(t, ind, []string{}, -1)
	assert.Equal(t, 1, f.mem.Clears())
}

func TestIndicator_ClearAll(t *testing.T) {
	f := newFixture(t)
	ind := f.start(t)

	copyText(t, f, ind, "a")
	copyText(t, f, ind, "b")

	require.NoError(t, ind.ClearAll(context.Background()))
	eventuallyState(t, ind, []string{}, -1)
	assert.Equal(t, 1, f.mem.Clears())
}

func TestIndicator_PrivateMode(t *testing.T) {
	f := newFixture(t)
	ind := f.start(t)
	ctx := context.Background()

	copyText(t, f, ind, "a")
	copyText(t, f, ind, "b")

	on, err := ind.TogglePrivateMode(ctx)
	require.NoError(t, err)
	assert.True(t, on)
	eventuallyState(t, ind, []string{"b", "a"}, -1)

	f.mem.Set("secret")
	assert.Never(t, func() bool {
		st, _ := ind.State(ctx)
		return slices.Contains(texts(st), "secret")
	}, 100*time.Millisecond, tick)

	// Back on while the clipboard still holds something the history has: it
	// becomes active again without being moved. The sleep lets the loop
	// consume the change notification while still private.
	f.mem.Set("a")
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, ind.SetPrivateMode(ctx, false))
	eventuallyState(t, ind, []string{"b", "a"}, 1)
}

func TestIndicator_HistorySizePreference(t *testing.T) {
	f := newFixture(t)
	ind := f.start(t)

	copyText(t, f, ind, "a")
	copyText(t, f, ind, "b")
	copyText(t, f, ind, "c")

	require.NoError(t, f.prefs.Set(prefs.KeyHistorySize, "2"))
	eventuallyState(t, ind, []string{"c", "b"}, 0)
	assert.Zero(t, f.mem.Clears())

	require.Eventually(t, func() bool { return f.hub.Latest().MaxSize == 2 }, waitFor, tick)
}

func TestIndicator_RestoresAcrossLock(t *testing.T) {
	f := newFixture(t)
	ind := New(Options{Source: f.src, Prefs: f.prefs, Hub: f.hub, Store: f.store})

	copyText(t, f, ind, "a")
	copyText(t, f, ind, "b")
	require.NoError(t, ind.SetPrivateMode(context.Background(), true))

	ind.Destroy(session.KindLock)
	assert.Equal(t, 2, f.store.Pending())

	ind = f.start(t)
	require.Eventually(t, func() bool {
		st, err := ind.State(context.Background())
		return err == nil && slices.Equal(texts(st), []string{"b", "a"}) && st.PrivateMode && st.ActiveIndex() == -1
	}, waitFor, tick)
	assert.Zero(t, f.store.Pending())
}

func TestIndicator_RestoreResyncsActive(t *testing.T) {
	f := newFixture(t)
	ind := New(Options{Source: f.src, Prefs: f.prefs, Hub: f.hub, Store: f.store})

	copyText(t, f, ind, "a")
	copyText(t, f, ind, "b")
	ind.Destroy(session.KindLock)

	ind = New(Options{Source: f.src, Prefs: f.prefs, Hub: f.hub, Store: f.store})
	eventuallyState(t, ind, []string{"b", "a"}, 0)
	ind.Destroy(session.KindLock)

	// Copied while locked: not captured, and not in the history.
	f.mem.Set("c")
	ind = f.start(t)
	eventuallyState(t, ind, []string{"b", "a"}, -1)

	f.mem.Set("a")
	eventuallyState(t, ind, []string{"a", "b"}, 0)
}

func TestIndicator_DisableDiscards(t *testing.T) {
	f := newFixture(t)
	ind := New(Options{Source: f.src, Prefs: f.prefs, Hub: f.hub, Store: f.store})

	copyText(t, f, ind, "a")
	require.NoError(t, ind.SetPrivateMode(context.Background(), true))
	ind.Destroy(session.KindDisable)

	ind = f.start(t)
	st, err := ind.State(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st.Entries)
	assert.False(t, st.PrivateMode)
}

func TestIndicator_ClosedOperations(t *testing.T) {
	f := newFixture(t)
	ind := New(Options{Source: f.src, Prefs: f.prefs, Store: f.store})
	ind.Destroy(session.KindShutdown)
	ind.Destroy(session.KindShutdown)

	ctx := context.Background()
	_, err := ind.State(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, ind.ClearAll(ctx), ErrClosed)
}

type recordingPeer struct {
	mu     sync.Mutex
	events []message.Event
}

func (p *recordingPeer) ID() string { return "rec" }

func (p *recordingPeer) Send(ev message.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPeer) kinds() []message.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]message.Kind, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Kind
	}
	return out
}

func TestIndicator_PublishesEvents(t *testing.T) {
	f := newFixture(t)
	peer := &recordingPeer{}
	f.hub.Register(peer)
	ind := f.start(t)

	copyText(t, f, ind, "a")

	require.Eventually(t, func() bool {
		return slices.Equal(peer.kinds(), []message.Kind{
			message.KindReset, // register
			message.KindReset, // indicator start
			message.KindAdded,
			message.KindActive,
		})
	}, waitFor, tick)

	latest := f.hub.Latest()
	assert.False(t, latest.Locked)
	assert.Equal(t, []string{"a"}, texts(latest))
	assert.Equal(t, 0, latest.ActiveIndex())
}
