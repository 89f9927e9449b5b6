// Package history implements the clipboard history manager: an ordered,
// de-duplicated, bounded list of text entries with most-recently-used
// ordering, an active-entry pointer, and a private mode that suspends capture.
//
// A Manager is not safe for concurrent use. All calls are expected to come
// from a single owner goroutine (see package indicator), which gives every
// operation run-to-completion semantics without locks.
package history

import (
	"errors"
	"log/slog"

	"go.klb.dev/clipmini/internal/logging"
	"go.klb.dev/clipmini/internal/notify"
)

// ErrNotFound is returned when an entry is not part of the history.
var ErrNotFound = errors.New("history: entry not found")

// Entry is one remembered clipboard text. Entries are immutable and are
// compared by identity; no two entries in a History share the same text.
type Entry struct {
	text string
}

// Text returns the entry's text.
func (e *Entry) Text() string { return e.text }

// Clipboard is the part of the clipboard the manager writes to.
type Clipboard interface {
	// WriteText replaces the clipboard text.
	WriteText(text string) error
	// Clear replaces the clipboard content with an explicit empty payload.
	Clear() error
}

// Change describes an entry that was added to or removed from the history.
type Change struct {
	Entry *Entry
	Index int
}

// Move describes an entry that changed position.
type Move struct {
	Entry *Entry
	From  int
	To    int
}

// Manager holds the history and reacts to clipboard and preference changes.
type Manager struct {
	clip    Clipboard
	entries []*Entry // index 0 is the most recent
	active  *Entry
	private bool
	maxSize int

	// Added fires after an entry is inserted.
	Added notify.Signal[Change]
	// Removed fires after an entry is deleted or evicted.
	Removed notify.Signal[Change]
	// Moved fires after an existing entry is promoted.
	Moved notify.Signal[Move]
	// ActiveChanged fires with the new active entry, or nil.
	ActiveChanged notify.Signal[*Entry]
	// PrivateModeChanged fires with the new private-mode state.
	PrivateModeChanged notify.Signal[bool]
}

// NewManager returns an empty Manager bounded to maxSize entries.
// maxSize values below 1 are treated as 1.
func NewManager(clip Clipboard, maxSize int) *Manager {
	return &Manager{
		clip:    clip,
		maxSize: max(maxSize, 1),
	}
}

// Entries returns the current entries, most recent first. The returned slice
// is a copy; the entries themselves are shared.
func (m *Manager) Entries() []*Entry {
	out := make([]*Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of entries.
func (m *Manager) Len() int { return len(m.entries) }

// Active returns the entry matching the current clipboard content, or nil.
func (m *Manager) Active() *Entry { return m.active }

// PrivateMode reports whether capture is suspended.
func (m *Manager) PrivateMode() bool { return m.private }

// MaxSize returns the current bound.
func (m *Manager) MaxSize() int { return m.maxSize }

// Find returns the entry holding text, or nil.
func (m *Manager) Find(text string) *Entry {
	if i := m.indexOfText(text); i >= 0 {
		return m.entries[i]
	}
	return nil
}

// OnClipboardChanged records text as the current clipboard content.
//
// Empty text clears the active pointer. Text already in the history is moved
// to the front; new text is inserted at the front after evicting from the
// tail to make room. Ignored entirely in private mode.
func (m *Manager) OnClipboardChanged(text string) {
	if m.private {
		return
	}
	if text == "" {
		m.setActive(nil)
		return
	}

	if i := m.indexOfText(text); i >= 0 {
		e := m.entries[i]
		if i > 0 {
			m.move(i, 0)
		}
		m.setActive(e)
		return
	}

	m.evict(m.maxSize - 1)
	e := &Entry{text: text}
	m.insert(0, e)
	m.setActive(e)
}

// Activate writes the entry's text to the clipboard. The history itself is
// updated when the resulting clipboard change comes back through
// OnClipboardChanged.
func (m *Manager) Activate(e *Entry) error {
	if m.indexOf(e) < 0 {
		return ErrNotFound
	}
	if err := m.clip.WriteText(e.text); err != nil {
		slog.Warn("clipboard write failed", "err", err)
	}
	return nil
}

// Delete removes e. Deleting the active entry also clears the live clipboard.
func (m *Manager) Delete(e *Entry) error {
	i := m.indexOf(e)
	if i < 0 {
		return ErrNotFound
	}
	m.remove(i)
	if m.active == e {
		if err := m.clip.Clear(); err != nil {
			slog.Warn("clipboard clear failed", "err", err)
		}
		m.setActive(nil)
	}
	return nil
}

// ClearAll deletes every entry.
func (m *Manager) ClearAll() {
	for len(m.entries) > 0 {
		_ = m.Delete(m.entries[0])
	}
}

// SetPrivateMode toggles capture. Enabling clears the active pointer and
// leaves the history untouched. After disabling, the caller is expected to
// read the clipboard and pass the result to Resync.
func (m *Manager) SetPrivateMode(enabled bool) {
	if m.private == enabled {
		return
	}
	if enabled {
		m.setActive(nil)
	}
	m.private = enabled
	slog.Info("private mode changed", "enabled", enabled)
	m.PrivateModeChanged.Emit(enabled)
}

// Resync points the active pointer at the entry holding text, if any.
// Unlike OnClipboardChanged it never inserts or reorders entries.
func (m *Manager) Resync(text string) {
	if m.private {
		return
	}
	if text == "" {
		m.setActive(nil)
		return
	}
	m.setActive(m.Find(text))
}

// SetMaxSize changes the bound, evicting from the tail when shrinking.
func (m *Manager) SetMaxSize(n int) {
	n = max(n, 1)
	if n == m.maxSize {
		return
	}
	m.maxSize = n
	m.evict(n)
}

func (m *Manager) indexOf(e *Entry) int {
	for i, x := range m.entries {
		if x == e {
			return i
		}
	}
	return -1
}

func (m *Manager) indexOfText(text string) int {
	for i, x := range m.entries {
		if x.text == text {
			return i
		}
	}
	return -1
}

func (m *Manager) insert(i int, e *Entry) {
	m.entries = append(m.entries, nil)
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = e
	slog.Debug("history entry added", "index", i, "len", len(m.entries), "preview", logging.Preview(e.text))
	m.Added.Emit(Change{Entry: e, Index: i})
}

func (m *Manager) remove(i int) *Entry {
	e := m.entries[i]
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	slog.Debug("history entry removed", "index", i, "len", len(m.entries))
	m.Removed.Emit(Change{Entry: e, Index: i})
	return e
}

func (m *Manager) move(from, to int) {
	e := m.entries[from]
	m.entries = append(m.entries[:from], m.entries[from+1:]...)
	m.entries = append(m.entries, nil)
	copy(m.entries[to+1:], m.entries[to:])
	m.entries[to] = e
	m.Moved.Emit(Move{Entry: e, From: from, To: to})
}

// evict removes entries from the tail until at most n remain. An evicted
// active entry only clears the pointer; the live clipboard is left alone.
func (m *Manager) evict(n int) {
	for len(m.entries) > max(n, 0) {
		e := m.remove(len(m.entries) - 1)
		if e == m.active {
			m.setActive(nil)
		}
	}
}

func (m *Manager) setActive(e *Entry) {
	if m.active == e {
		return
	}
	m.active = e
	m.ActiveChanged.Emit(e)
}
