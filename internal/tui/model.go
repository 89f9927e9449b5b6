package tui

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go.klb.dev/clipmini/internal/message"
)

const (
	defaultWidth = 60
	rpcTimeout   = 5 * time.Second
)

// Placeholder texts.
const (
	textEmpty   = "History is Empty"
	textPrivate = "Private Mode is On"
	textLocked  = "Session is Locked"
	textNoMatch = "No Matches"
	textSearch  = "Type to search..."
)

// Client is the part of the history service the menu calls.
type Client interface {
	List(context.Context, *message.ListRequest) (*message.State, error)
	Activate(context.Context, *message.TextRequest) (*message.Empty, error)
	Delete(context.Context, *message.TextRequest) (*message.Empty, error)
	ClearAll(context.Context, *message.ClearRequest) (*message.Empty, error)
	SetPrivateMode(context.Context, *message.PrivateModeRequest) (*message.PrivateModeResponse, error)
}

// Options configures the menu.
type Options struct {
	// Events, when set, keeps the menu live. The first event should be a
	// reset. Without it the menu re-lists after each operation.
	Events    <-chan message.Event
	Shortcuts Shortcuts
}

// Model is the Bubble Tea model for the history menu.
type Model struct {
	client Client
	events <-chan message.Event

	state  message.State
	loaded bool
	cursor int // index into visible()
	search textinput.Model
	keys   KeyMap
	help   help.Model
	labels *labeler
	width  int
	err    error
}

// stateMsg carries a full state from List.
type stateMsg struct {
	state *message.State
	err   error
}

// eventMsg carries one event from the watch stream.
type eventMsg struct {
	ev message.Event
}

// watchClosedMsg is sent when the event channel closes.
type watchClosedMsg struct{}

// opDoneMsg is sent when an operation completes.
type opDoneMsg struct {
	err   error
	close bool
}

// New returns the menu model.
func New(client Client, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = textSearch
	ti.Prompt = "/ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorBlue)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(colorBlue)
	ti.Focus()

	h := help.New()
	h.Styles.ShortKey = helpStyle
	h.Styles.ShortDesc = helpStyle
	h.Styles.ShortSeparator = helpStyle
	h.ShortSeparator = " • "

	return Model{
		client: client,
		events: opts.Events,
		search: ti,
		keys:   DefaultKeyMap(opts.Shortcuts),
		help:   h,
		labels: newLabeler(),
		width:  defaultWidth,
	}
}

// Init loads the history and, when live, starts reading events.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.events != nil {
		cmds = append(cmds, waitForEvent(m.events))
	} else {
		cmds = append(cmds, m.load())
	}
	return tea.Batch(cmds...)
}

func (m Model) load() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		st, err := client.List(ctx, &message.ListRequest{})
		return stateMsg{state: st, err: err}
	}
}

func waitForEvent(ch <-chan message.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return watchClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

// op runs fn against the client and reports completion.
func (m Model) op(close bool, fn func(ctx context.Context, c Client) error) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		return opDoneMsg{err: fn(ctx, client), close: close}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.search.Width = max(msg.Width-4, 10)
		return m, nil

	case stateMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.state = msg.state.Clone()
		m.loaded = true
		m.clampCursor()
		return m, nil

	case eventMsg:
		m.state.Apply(msg.ev)
		m.loaded = true
		m.clampCursor()
		return m, waitForEvent(m.events)

	case watchClosedMsg:
		m.events = nil
		return m, m.load()

	case opDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.close {
			return m, tea.Quit
		}
		if m.events == nil {
			return m, m.load()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	// Bindings that work regardless of focus.
	switch {
	case key.Matches(msg, m.keys.Close):
		return m, tea.Quit
	case key.Matches(msg, m.keys.TogglePrivate):
		return m, m.op(true, func(ctx context.Context, c Client) error {
			_, err := c.SetPrivateMode(ctx, &message.PrivateModeRequest{Toggle: true})
			return err
		})
	case key.Matches(msg, m.keys.ClearHistory):
		if !m.historyVisible() {
			return m, nil
		}
		return m, m.op(true, func(ctx context.Context, c Client) error {
			_, err := c.ClearAll(ctx, &message.ClearRequest{})
			return err
		})
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, m.keys.SwitchFocus):
		if m.search.Focused() {
			m.search.Blur()
			return m, nil
		}
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Escape):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.cursor = 0
			return m, nil
		}
		return m, tea.Quit
	case msg.Type == tea.KeyEnter:
		return m, m.activate()
	}

	if m.search.Focused() {
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			m.cursor = 0
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Activate):
		return m, m.activate()
	case key.Matches(msg, m.keys.Delete):
		return m, m.deleteSelected()
	case key.Matches(msg, m.keys.Search):
		if !m.historyVisible() {
			return m, nil
		}
		return m, m.search.Focus()
	case msg.Type == tea.KeyRunes && len(msg.Runes) > 0 && unicode.IsPrint(msg.Runes[0]) && m.historyVisible():
		// Typing in the list starts a search.
		cmd := m.search.Focus()
		m.search, _ = m.search.Update(msg)
		m.cursor = 0
		return m, cmd
	}
	return m, nil
}

func (m Model) activate() tea.Cmd {
	e, ok := m.selected()
	if !ok {
		return nil
	}
	return m.op(true, func(ctx context.Context, c Client) error {
		_, err := c.Activate(ctx, &message.TextRequest{Text: e.Text})
		return err
	})
}

// deleteSelected removes the cursor entry. Deleting the last remaining entry
// closes the menu. The cursor stays put, which moves focus to the next entry,
// or up when the deleted entry was the last visible one.
func (m *Model) deleteSelected() tea.Cmd {
	e, ok := m.selected()
	if !ok {
		return nil
	}
	closing := len(m.state.Entries) == 1
	if vis := m.visible(); m.cursor == len(vis)-1 && m.cursor > 0 {
		m.cursor--
	}
	return m.op(closing, func(ctx context.Context, c Client) error {
		_, err := c.Delete(ctx, &message.TextRequest{Text: e.Text})
		return err
	})
}

// historyVisible reports whether the history section is shown at all.
func (m Model) historyVisible() bool {
	return m.loaded && !m.state.Locked && !m.state.PrivateMode && len(m.state.Entries) > 0
}

// visible returns the entries matching the search, in history order.
func (m Model) visible() []message.Entry {
	if !m.historyVisible() {
		return nil
	}
	q := strings.ToLower(m.search.Value())
	if q == "" {
		return m.state.Entries
	}
	var out []message.Entry
	for _, e := range m.state.Entries {
		if strings.Contains(strings.ToLower(e.Text), q) {
			out = append(out, e)
		}
	}
	return out
}

func (m Model) selected() (message.Entry, bool) {
	vis := m.visible()
	if m.cursor < 0 || m.cursor >= len(vis) {
		return message.Entry{}, false
	}
	return vis[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	n := len(m.visible())
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
}

func (m *Model) clampCursor() {
	m.moveCursor(0)
}

// View renders the menu.
func (m Model) View() string {
	var b strings.Builder

	title := "Clipboard History"
	if m.state.PrivateMode {
		title += "  " + privateBadgeStyle.Render("private")
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	switch {
	case !m.loaded:
		b.WriteString(placeholderStyle.Render("Loading..."))
	case m.state.Locked:
		b.WriteString(placeholderStyle.Render(textLocked))
	case m.state.PrivateMode:
		b.WriteString(placeholderStyle.Render(textPrivate))
	case len(m.state.Entries) == 0:
		b.WriteString(placeholderStyle.Render(textEmpty))
	default:
		b.WriteString(" " + m.search.View())
		b.WriteString("\n\n")
		m.renderEntries(&b)
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderEntries(b *strings.Builder) {
	vis := m.visible()
	if len(vis) == 0 {
		b.WriteString(placeholderStyle.Render(textNoMatch))
		b.WriteString("\n")
		return
	}
	width := max(m.width-4, 1)
	for i, e := range vis {
		cursor, style := " ", normalStyle
		if i == m.cursor {
			cursor, style = selectedStyle.Render(iconCursor), selectedStyle
		}
		dot := " "
		if e.Active {
			dot = activeDotStyle.Render(iconDot)
		}
		b.WriteString(cursor + dot + " " + style.Render(m.labels.label(e.Text, width)))
		b.WriteString("\n")
	}
}
