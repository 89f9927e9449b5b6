package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipmini/internal/history"
)

var snap = history.Snapshot{
	PrivateMode: true,
	History:     []history.SnapshotEntry{{Text: "a"}, {Text: "b"}},
}

func TestStore_LockPreservedAndTakenOnce(t *testing.T) {
	s := NewStore(Policy{Preserve: DefaultPreserve})
	s.Save(KindLock, snap)
	assert.Equal(t, 2, s.Pending())

	got := s.Take()
	assert.Equal(t, snap, got)

	again := s.Take()
	assert.Empty(t, again.History)
	assert.Equal(t, 0, s.Pending())
}

func TestStore_OtherKindsDiscard(t *testing.T) {
	for _, k := range []Kind{KindDisable, KindShutdown} {
		t.Run(string(k), func(t *testing.T) {
			s := NewStore(Policy{Preserve: DefaultPreserve})
			s.Save(KindLock, snap)
			s.Save(k, snap)

			got := s.Take()
			assert.False(t, got.PrivateMode)
			assert.Empty(t, got.History)
		})
	}
}

func TestStore_ConfigurablePreserve(t *testing.T) {
	s := NewStore(Policy{Preserve: []Kind{KindLock, KindDisable}})
	s.Save(KindDisable, snap)

	assert.Equal(t, snap, s.Take())
}

func TestStore_SaveCopiesHistory(t *testing.T) {
	s := NewStore(Policy{Preserve: DefaultPreserve})
	in := history.Snapshot{History: []history.SnapshotEntry{{Text: "a"}}}
	s.Save(KindLock, in)
	in.History[0].Text = "mutated"

	assert.Equal(t, "a", s.Take().History[0].Text)
}

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds([]string{"lock", " Disable ", ""})
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindLock, KindDisable}, kinds)

	_, err = ParseKinds([]string{"shutdown"})
	assert.Error(t, err)
}
