package clip

import "sync"

// Memory is an in-process clipboard. Every write, clear, or Set counts as an
// ownership change and is signalled on Watch, the same way a desktop
// clipboard reports its own writes back to observers.
type Memory struct {
	mu      sync.Mutex
	text    []byte
	types   []string
	clears  int
	watchCh chan struct{}
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory {
	return &Memory{watchCh: make(chan struct{}, 16)}
}

// Set simulates another application copying text with the given advertised
// types.
func (m *Memory) Set(text string, types ...string) {
	m.mu.Lock()
	m.text = []byte(text)
	m.types = types
	m.mu.Unlock()
	notify(m.watchCh)
}

// Text returns the current content and whether any text is present.
func (m *Memory) Text() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.text), len(m.text) > 0
}

// Clears returns how many times Clear has been called.
func (m *Memory) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

func (m *Memory) Name() string { return "in-memory" }

func (m *Memory) Types() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.types) == 0 {
		return nil, nil
	}
	return append([]string(nil), m.types...), nil
}

func (m *Memory) ReadText() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.text) == 0 {
		return nil, nil
	}
	return append([]byte(nil), m.text...), nil
}

func (m *Memory) WriteText(text string) error {
	m.Set(text, "text/plain;charset=utf-8", "UTF8_STRING")
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	m.text = []byte{}
	m.types = nil
	m.clears++
	m.mu.Unlock()
	notify(m.watchCh)
	return nil
}

func (m *Memory) Watch() <-chan struct{} { return m.watchCh }
func (m *Memory) Close()                 {}
