// Package session holds history state across a suspend boundary. The Store
// lives in the host process and outlives any single history component: the
// component saves into it when torn down and consumes it, exactly once, when
// rebuilt.
package session

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"go.klb.dev/clipmini/internal/history"
)

// Kind identifies why the history component is being torn down.
type Kind string

const (
	// KindLock is the session-lock transition.
	KindLock Kind = "lock"
	// KindDisable is an ordinary disable (reload, upgrade, user request).
	KindDisable Kind = "disable"
	// KindShutdown is process exit. Memory does not survive it, so it is
	// never preserved.
	KindShutdown Kind = "shutdown"
)

// DefaultPreserve keeps state only across a session lock.
var DefaultPreserve = []Kind{KindLock}

// ParseKinds converts config strings to Kinds.
func ParseKinds(ss []string) ([]Kind, error) {
	out := make([]Kind, 0, len(ss))
	for _, s := range ss {
		switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
		case KindLock, KindDisable:
			out = append(out, k)
		case "":
		default:
			return nil, fmt.Errorf("session: cannot preserve state on %q", s)
		}
	}
	return out, nil
}

// Policy decides which suspend kinds keep history.
type Policy struct {
	Preserve []Kind
}

// Preserves reports whether state saved for k should survive.
func (p Policy) Preserves(k Kind) bool {
	return k != KindShutdown && slices.Contains(p.Preserve, k)
}

// Store is the process-memory PersistedState.
type Store struct {
	mu     sync.Mutex
	policy Policy
	state  history.Snapshot
}

// NewStore returns an empty store governed by policy.
func NewStore(policy Policy) *Store {
	return &Store{policy: policy}
}

// Save records snap for the next Take. When the policy does not preserve
// kind, the history is discarded and private mode is reset.
func (s *Store) Save(kind Kind, snap history.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.policy.Preserves(kind) {
		s.state = history.Snapshot{}
		slog.Info("session state discarded", "kind", kind, "entries", len(snap.History))
		return
	}
	s.state = history.Snapshot{
		PrivateMode: snap.PrivateMode,
		History:     slices.Clone(snap.History),
	}
	slog.Info("session state saved", "kind", kind, "entries", len(snap.History), "private_mode", snap.PrivateMode)
}

// Take returns the saved state and clears the history part of it, so a
// second Take yields no entries. Private mode is carried until the next Save.
func (s *Store) Take() history.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	s.state.History = nil
	return out
}

// Pending reports how many entries are waiting to be restored.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.History)
}
