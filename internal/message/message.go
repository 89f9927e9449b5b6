// Package message defines the clipmini RPC messages.
//
// Messages travel as JSON, both over gRPC (see codec.go) and over the HTTP
// gateway, so every type here is a plain struct with json tags.
package message

import "slices"

// Entry is one history entry as seen by the presentation layer.
type Entry struct {
	Text   string `json:"text" yaml:"text"`
	Active bool   `json:"active,omitempty" yaml:"active,omitempty"`
}

// State is the full history view.
type State struct {
	Entries     []Entry `json:"entries" yaml:"entries"`
	PrivateMode bool    `json:"private_mode" yaml:"private_mode"`
	MaxSize     int     `json:"max_size" yaml:"max_size"`
	// Locked is true while the session is locked and the history component
	// is torn down.
	Locked bool `json:"locked,omitempty" yaml:"locked,omitempty"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Entries = slices.Clone(s.Entries)
	return s
}

// ActiveIndex returns the index of the active entry, or -1.
func (s State) ActiveIndex() int {
	for i, e := range s.Entries {
		if e.Active {
			return i
		}
	}
	return -1
}

// Kind identifies an Event.
type Kind string

const (
	KindAdded   Kind = "added"
	KindRemoved Kind = "removed"
	KindMoved   Kind = "moved"
	KindActive  Kind = "active"
	KindPrivate Kind = "private"
	KindMaxSize Kind = "max_size"
	KindReset   Kind = "reset"
)

// Event is one core → presentation notification.
type Event struct {
	Kind Kind `json:"kind"`

	// added/removed: position of the entry. moved: destination.
	// active: position of the new active entry, -1 for none.
	// max_size: the new bound.
	Index int    `json:"index"`
	From  int    `json:"from,omitempty"`
	Text  string `json:"text,omitempty"`

	PrivateMode bool `json:"private_mode,omitempty"`

	// reset: the full state.
	State *State `json:"state,omitempty"`
}

// Apply folds ev into s. Out-of-range indices are ignored.
func (s *State) Apply(ev Event) {
	switch ev.Kind {
	case KindAdded:
		if ev.Index >= 0 && ev.Index <= len(s.Entries) {
			s.Entries = slices.Insert(s.Entries, ev.Index, Entry{Text: ev.Text})
		}
	case KindRemoved:
		if ev.Index >= 0 && ev.Index < len(s.Entries) {
			s.Entries = slices.Delete(s.Entries, ev.Index, ev.Index+1)
		}
	case KindMoved:
		if ev.From >= 0 && ev.From < len(s.Entries) && ev.Index >= 0 && ev.Index < len(s.Entries) {
			e := s.Entries[ev.From]
			s.Entries = slices.Delete(s.Entries, ev.From, ev.From+1)
			s.Entries = slices.Insert(s.Entries, ev.Index, e)
		}
	case KindActive:
		for i := range s.Entries {
			s.Entries[i].Active = i == ev.Index
		}
	case KindPrivate:
		s.PrivateMode = ev.PrivateMode
	case KindMaxSize:
		s.MaxSize = ev.Index
	case KindReset:
		if ev.State != nil {
			*s = ev.State.Clone()
		} else {
			*s = State{}
		}
	}
}

// ListRequest asks for the current State.
type ListRequest struct{}

// TextRequest names an entry by its text.
type TextRequest struct {
	Text string `json:"text"`
}

// ClearRequest asks for every entry to be deleted.
type ClearRequest struct{}

// PrivateModeRequest sets or toggles private mode. Enabled is ignored when
// Toggle is set.
type PrivateModeRequest struct {
	Enabled bool `json:"enabled"`
	Toggle  bool `json:"toggle,omitempty"`
}

// PrivateModeResponse reports the resulting private-mode state.
type PrivateModeResponse struct {
	Enabled bool `json:"enabled"`
}

// SessionAction is a host lifecycle transition.
type SessionAction string

const (
	SessionLock    SessionAction = "lock"
	SessionUnlock  SessionAction = "unlock"
	SessionDisable SessionAction = "disable"
	SessionEnable  SessionAction = "enable"
)

// SessionRequest drives the suspend boundary.
type SessionRequest struct {
	Action SessionAction `json:"action"`
}

// WatchRequest subscribes to Events.
type WatchRequest struct{}

// Empty is the response of operations that return nothing.
type Empty struct{}
