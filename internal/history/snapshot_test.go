package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot_RoundTripKeepsOrder(t *testing.T) {
	src := NewManager(&fakeClipboard{}, 15)
	src.OnClipboardChanged("b")
	src.OnClipboardChanged("a")

	snap := src.Snapshot()
	assert.Equal(t, Snapshot{
		History: []SnapshotEntry{{Text: "a"}, {Text: "b"}},
	}, snap)

	dst := NewManager(&fakeClipboard{}, 15)
	dst.Restore(snap)

	assert.Equal(t, []string{"a", "b"}, texts(dst))
	assert.Nil(t, dst.Active())
	assert.False(t, dst.PrivateMode())
}

func TestRestore_ActiveFromClipboard(t *testing.T) {
	tests := []struct {
		name      string
		clipboard string
		want      string
	}{
		{name: "matches first", clipboard: "a", want: "a"},
		{name: "matches second", clipboard: "b", want: "b"},
		{name: "no match", clipboard: "z", want: ""},
		{name: "empty clipboard", clipboard: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(&fakeClipboard{}, 15)
			m.Restore(Snapshot{History: []SnapshotEntry{{Text: "a"}, {Text: "b"}}})
			m.Resync(tt.clipboard)

			assert.Equal(t, []string{"a", "b"}, texts(m))
			assert.Equal(t, tt.want, activeText(m))
		})
	}
}

func TestRestore_PrivateMode(t *testing.T) {
	m := NewManager(&fakeClipboard{}, 15)
	m.Restore(Snapshot{PrivateMode: true, History: []SnapshotEntry{{Text: "a"}}})

	assert.True(t, m.PrivateMode())
	m.OnClipboardChanged("x")
	assert.Equal(t, []string{"a"}, texts(m))
}

func TestRestore_SkipsDuplicatesAndTrims(t *testing.T) {
	m := NewManager(&fakeClipboard{}, 2)
	m.Restore(Snapshot{History: []SnapshotEntry{
		{Text: "a"}, {Text: "a"}, {Text: ""}, {Text: "b"}, {Text: "c"},
	}})

	assert.Equal(t, []string{"a", "b"}, texts(m))
}
