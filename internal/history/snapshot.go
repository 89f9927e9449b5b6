package history

// SnapshotEntry is the saved form of one Entry.
type SnapshotEntry struct {
	Text string `json:"text"`
}

// Snapshot is the state carried across a suspend boundary.
type Snapshot struct {
	PrivateMode bool            `json:"private_mode"`
	History     []SnapshotEntry `json:"history"`
}

// Snapshot captures the history in order together with the private-mode flag.
func (m *Manager) Snapshot() Snapshot {
	s := Snapshot{
		PrivateMode: m.private,
		History:     make([]SnapshotEntry, len(m.entries)),
	}
	for i, e := range m.entries {
		s.History[i] = SnapshotEntry{Text: e.text}
	}
	return s
}

// Restore replays a snapshot into an empty manager. Entries are appended in
// saved order without the insert-with-eviction path; duplicates and empty
// texts are skipped, and the result is trimmed if the bound has shrunk since
// the snapshot was taken. The active pointer is left unset: callers resync it
// from the live clipboard when private mode is off.
func (m *Manager) Restore(s Snapshot) {
	for _, se := range s.History {
		if se.Text == "" || m.indexOfText(se.Text) >= 0 {
			continue
		}
		m.insert(len(m.entries), &Entry{text: se.Text})
	}
	m.evict(m.maxSize)
	m.SetPrivateMode(s.PrivateMode)
}
