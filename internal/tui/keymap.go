package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the menu bindings.
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Activate      key.Binding
	Delete        key.Binding
	Search        key.Binding
	SwitchFocus   key.Binding
	Escape        key.Binding
	TogglePrivate key.Binding
	ClearHistory  key.Binding
	Close         key.Binding
}

// Shortcuts are the user-configured accelerators, already mapped to
// terminal key names. Empty fields are unbound.
type Shortcuts struct {
	ToggleMenu    string
	TogglePrivate string
	ClearHistory  string
}

// DefaultKeyMap returns the bindings with sc added to the built-in keys.
func DefaultKeyMap(sc Shortcuts) KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+k"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+j"),
			key.WithHelp("↓", "down"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "paste"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete"),
			key.WithHelp("del", "delete"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		SwitchFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "list/search"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear/close"),
		),
		TogglePrivate: binding("private mode", "ctrl+p", sc.TogglePrivate),
		ClearHistory:  binding("clear history", "ctrl+l", sc.ClearHistory),
		Close:         binding("close", "ctrl+c", sc.ToggleMenu),
	}
}

func binding(help, builtin, configured string) key.Binding {
	keys := []string{builtin}
	if configured != "" && configured != builtin {
		keys = append(keys, configured)
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[len(keys)-1], help))
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Activate, k.Delete, k.Search, k.TogglePrivate, k.ClearHistory, k.Escape}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Activate, k.Delete},
		{k.Search, k.SwitchFocus, k.Escape},
		{k.TogglePrivate, k.ClearHistory, k.Close},
	}
}
