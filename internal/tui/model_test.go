package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipmini/internal/message"
)

type fakeClient struct {
	state     message.State
	activated []string
	deleted   []string
	cleared   int
	toggled   int
	err       error
}

func (f *fakeClient) List(context.Context, *message.ListRequest) (*message.State, error) {
	st := f.state.Clone()
	return &st, f.err
}

func (f *fakeClient) Activate(_ context.Context, in *message.TextRequest) (*message.Empty, error) {
	f.activated = append(f.activated, in.Text)
	return &message.Empty{}, f.err
}

func (f *fakeClient) Delete(_ context.Context, in *message.TextRequest) (*message.Empty, error) {
	f.deleted = append(f.deleted, in.Text)
	return &message.Empty{}, f.err
}

func (f *fakeClient) ClearAll(context.Context, *message.ClearRequest) (*message.Empty, error) {
	f.cleared++
	return &message.Empty{}, f.err
}

func (f *fakeClient) SetPrivateMode(context.Context, *message.PrivateModeRequest) (*message.PrivateModeResponse, error) {
	f.toggled++
	return &message.PrivateModeResponse{Enabled: true}, f.err
}

func entries(texts ...string) []message.Entry {
	out := make([]message.Entry, len(texts))
	for i, t := range texts {
		out[i] = message.Entry{Text: t, Active: i == 0}
	}
	return out
}

// loaded returns a model that has received st, with the list focused.
func loaded(t *testing.T, c *fakeClient) Model {
	t.Helper()
	m := New(c, Options{})
	next, _ := m.Update(stateMsg{state: &c.state})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	require.False(t, m.search.Focused())
	return m
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// finish runs an operation command and feeds its result back.
func finish(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	done, ok := msg.(opDoneMsg)
	require.True(t, ok, "got %T", msg)
	next, cmd := m.Update(done)
	return next.(Model), cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_ActivateCloses(t *testing.T) {
	c := &fakeClient{state: message.State{Entries: entries("a", "b", "c")}}
	m := loaded(t, c)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd = finish(t, m, cmd)

	assert.Equal(t, []string{"b"}, c.activated)
	assert.True(t, isQuit(cmd))
}

func TestModel_SpaceActivatesFromList(t *testing.T) {
	c := &fakeClient{state: message.State{Entries: entries("a", "b")}}
	m := loaded(t, c)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	finish(t, m, cmd)

	assert.Equal(t, []string{"a"}, c.activated)
}

func TestModel_DeleteMovesFocus(t *testing.T) {
	c := &fakeClient{state: message.State{Entries: entries("a", "b", "c")}}
	m := loaded(t, c)

	// Deleting the last row moves the cursor up.
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDelete})
	assert.Equal(t, 1, m.cursor)
	m, cmd = finish(t, m, cmd)
	assert.Equal(t, []string{"c"}, c.deleted)
	assert.False(t, isQuit(cmd))

	// Without a watch stream, the menu re-lists after an operation.
	c.state.Entries = entries("a", "b")
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	m = next.(Model)

	// Deleting a middle row keeps the cursor, which lands on the next entry.
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyDelete})
	assert.Equal(t, 0, m.cursor)
	finish(t, m, cmd)
	assert.Equal(t, []string{"c", "a"}, c.deleted)
}

func TestModel_DeleteLastEntryCloses(t *testing.T) {
	c := &fakeClient{state: message.State{Entries: entries("only")}}
	m := loaded(t, c)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyDelete})
	_, cmd = finish(t, m, cmd)

	assert.Equal(t, []string{"only"}, c.deleted)
	assert.True(t, isQuit(cmd))
}

func TestModel_Search(t *testing.T) {
	c := &fakeClient{state: message.State{Entries: entries("Alpha", "beta", "gamma")}}
	m := New(c, Options{})
	next, _ := m.Update(stateMsg{state: &c.state})
	m = next.(Model)

	// The search field has focus on open.
	m, _ = press(t, m, runes("A"))
	assert.Equal(t, []string{"Alpha", "beta", "gamma"}, texts(m.visible()))

	m, _ = press(t, m, runes("l"))
	assert.Equal(t, []string{"Alpha"}, texts(m.visible()))
	assert.NotContains(t, m.View(), textNoMatch)

	m, _ = press(t, m, runes("zz"))
	assert.Empty(t, m.visible())
	assert.Contains(t, m.View(), textNoMatch)

	// esc clears a non-empty search, then closes.
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", m.search.Value())
	assert.Nil(t, cmd)
	_, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, isQuit(cmd))
}

func TestModel_SlashAndTypingFocusSearch(t *testing.T) {
	c := &fakeClient{state: message.State{Entries: entries("one", "two")}}
	m := loaded(t, c)

	m, _ = press(t, m, runes("/"))
	assert.True(t, m.search.Focused())
	assert.Equal(t, "", m.search.Value())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, runes("t"))
	assert.True(t, m.search.Focused())
	assert.Equal(t, "t", m.search.Value())
	assert.Equal(t, []string{"two"}, texts(m.visible()))
}

func TestModel_Placeholders(t *testing.T) {
	tests := []struct {
		name  string
		state message.State
		want  string
	}{
		{name: "empty", state: message.State{}, want: textEmpty},
		{name: "private", state: message.State{PrivateMode: true, Entries: entries("a")}, want: textPrivate},
		{name: "locked", state: message.State{Locked: true}, want: textLocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeClient{state: tt.state}
			m := New(c, Options{})
			next, _ := m.Update(stateMsg{state: &c.state})
			view := next.(Model).View()

			assert.Contains(t, view, tt.want)
			assert.NotContains(t, view, textSearch)
		})
	}
}

func TestModel_ClearHistoryOnlyWhenVisible(t *testing.T) {
	c := &fakeClient{state: message.State{PrivateMode: true, Entries: entries("a")}}
	m := loaded(t, c)

	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Nil(t, cmd)
	assert.Zero(t, c.cleared)

	c.state.PrivateMode = false
	m = loaded(t, c)
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	_, cmd = finish(t, m, cmd)
	assert.Equal(t, 1, c.cleared)
	assert.True(t, isQuit(cmd))
}

func TestModel_ConfiguredShortcuts(t *testing.T) {
	c := &fakeClient{state: message.State{Entries: entries("a")}}
	m := New(c, Options{Shortcuts: Shortcuts{TogglePrivate: "alt+p", ToggleMenu: "alt+v"}})
	next, _ := m.Update(stateMsg{state: &c.state})
	m = next.(Model)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p"), Alt: true})
	finish(t, m, cmd)
	assert.Equal(t, 1, c.toggled)

	_, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("v"), Alt: true})
	assert.True(t, isQuit(cmd))
}

func TestModel_Events(t *testing.T) {
	ch := make(chan message.Event, 4)
	c := &fakeClient{}
	m := New(c, Options{Events: ch})

	ch <- message.Event{Kind: message.KindReset, State: &message.State{Entries: entries("a")}}
	ch <- message.Event{Kind: message.KindAdded, Index: 0, Text: "b"}
	ch <- message.Event{Kind: message.KindActive, Index: 0}
	close(ch)

	cmd := waitForEvent(ch)
	for range 3 {
		next, nextCmd := m.Update(cmd())
		m = next.(Model)
		cmd = nextCmd
	}
	assert.Equal(t, []string{"b", "a"}, texts(m.state.Entries))
	assert.Equal(t, 0, m.state.ActiveIndex())

	// A closed stream falls back to listing.
	next, cmd := m.Update(cmd())
	m = next.(Model)
	assert.Nil(t, m.events)
	_, ok := cmd().(stateMsg)
	assert.True(t, ok)
}

func TestModel_ShowsErrors(t *testing.T) {
	c := &fakeClient{state: message.State{Entries: entries("a")}, err: errors.New("boom")}
	m := loaded(t, c)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd = finish(t, m, cmd)
	assert.Nil(t, cmd)
	assert.True(t, strings.Contains(m.View(), "boom"))
}

func texts(es []message.Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Text
	}
	return out
}
