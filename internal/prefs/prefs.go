// Package prefs is the reactive preferences store: a small set of typed keys
// backed by a TOML file, with one change signal per key. Edits made by other
// processes (another clipmini invocation, a text editor) are picked up
// through a file watch.
package prefs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"go.klb.dev/clipmini/internal/notify"
)

// Keys.
const (
	KeyHistorySize               = "history-size"
	KeyToggleMenuShortcut        = "toggle-menu-shortcut"
	KeyTogglePrivateModeShortcut = "toggle-private-mode-shortcut"
	KeyClearHistoryShortcut      = "clear-history-shortcut"
)

// Bounds and defaults.
const (
	MinHistorySize     = 1
	MaxHistorySize     = 500
	DefaultHistorySize = 15

	DefaultToggleMenuShortcut = "<Super>z"
)

// Keys lists every preference key in display order.
var Keys = []string{
	KeyHistorySize,
	KeyToggleMenuShortcut,
	KeyTogglePrivateModeShortcut,
	KeyClearHistoryShortcut,
}

// ErrUnknownKey is returned by Get and Set for keys not in Keys.
var ErrUnknownKey = errors.New("unknown preference key")

type values struct {
	historySize   int
	toggleMenu    string
	togglePrivate string
	clearHistory  string
}

// Preferences holds the current values and notifies on change.
type Preferences struct {
	// mu guards v, which is not safe for concurrent use, and cur.
	mu      sync.Mutex
	v       *viper.Viper
	path    string
	cur     values
	watcher *fsnotify.Watcher

	HistorySizeChanged               notify.Signal[int]
	ToggleMenuShortcutChanged        notify.Signal[string]
	TogglePrivateModeShortcutChanged notify.Signal[string]
	ClearHistoryShortcutChanged      notify.Signal[string]
}

// DefaultPath returns $XDG_CONFIG_HOME/clipmini/prefs.toml (or the
// platform equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "clipmini", "prefs.toml")
}

// Load reads preferences from path. A missing file yields the defaults.
func Load(path string) (*Preferences, error) {
	if path == "" {
		path = DefaultPath()
	}
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("prefs: %w", err)
	}

	p := &Preferences{v: v, path: path}
	p.cur = p.read()
	return p, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault(KeyHistorySize, DefaultHistorySize)
	v.SetDefault(KeyToggleMenuShortcut, DefaultToggleMenuShortcut)
	v.SetDefault(KeyTogglePrivateModeShortcut, "")
	v.SetDefault(KeyClearHistoryShortcut, "")
	return v
}

// Path returns the backing file.
func (p *Preferences) Path() string { return p.path }

// Watch starts following the backing file for changes made elsewhere. The
// directory is watched rather than the file so that editors which replace
// the file, and a file created after startup, are both seen. Each change
// goes through Reload.
func (p *Preferences) Watch() error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("prefs: watch: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("prefs: watch %s: %w", dir, err)
	}

	p.mu.Lock()
	if p.watcher != nil {
		p.mu.Unlock()
		_ = w.Close()
		return nil
	}
	p.watcher = w
	p.mu.Unlock()

	go p.follow(w)
	return nil
}

func (p *Preferences) follow(w *fsnotify.Watcher) {
	name := filepath.Clean(p.path)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			slog.Debug("prefs file changed", "path", ev.Name, "op", ev.Op.String())
			if err := p.Reload(); err != nil {
				// Usually a half-written file; the next write event retries.
				slog.Warn("prefs reload failed", "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("prefs watch error", "err", err)
		}
	}
}

// Close stops following the backing file.
func (p *Preferences) Close() error {
	p.mu.Lock()
	w := p.watcher
	p.watcher = nil
	p.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}

// Reload re-reads the backing file and emits signals for changed keys.
func (p *Preferences) Reload() error {
	p.mu.Lock()
	err := p.v.ReadInConfig()
	p.mu.Unlock()
	if err != nil && !isNotExist(err) {
		return fmt.Errorf("prefs: %w", err)
	}
	p.apply()
	return nil
}

// HistorySize returns the history bound, clamped to [MinHistorySize, MaxHistorySize].
func (p *Preferences) HistorySize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur.historySize
}

// ToggleMenuShortcut returns the accelerator that opens or closes the menu.
func (p *Preferences) ToggleMenuShortcut() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur.toggleMenu
}

// TogglePrivateModeShortcut returns the accelerator that toggles private
// mode, or "" when unassigned.
func (p *Preferences) TogglePrivateModeShortcut() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur.togglePrivate
}

// ClearHistoryShortcut returns the accelerator that clears the history, or
// "" when unassigned.
func (p *Preferences) ClearHistoryShortcut() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur.clearHistory
}

// Get returns the value of key formatted as a string.
func (p *Preferences) Get(key string) (string, error) {
	switch key {
	case KeyHistorySize:
		return strconv.Itoa(p.HistorySize()), nil
	case KeyToggleMenuShortcut:
		return p.ToggleMenuShortcut(), nil
	case KeyTogglePrivateModeShortcut:
		return p.TogglePrivateModeShortcut(), nil
	case KeyClearHistoryShortcut:
		return p.ClearHistoryShortcut(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set validates value, writes it to the backing file, and emits the change.
// Out-of-range history sizes are refused.
func (p *Preferences) Set(key, value string) error {
	var v any
	switch key {
	case KeyHistorySize:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if n < MinHistorySize || n > MaxHistorySize {
			return fmt.Errorf("%s: %d out of range [%d, %d]", key, n, MinHistorySize, MaxHistorySize)
		}
		v = n
	case KeyToggleMenuShortcut, KeyTogglePrivateModeShortcut, KeyClearHistoryShortcut:
		v = strings.TrimSpace(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	p.mu.Lock()
	err := p.write(key, v)
	p.mu.Unlock()
	if err != nil {
		return err
	}
	p.apply()
	return nil
}

// write persists key=value and re-reads the file. The edit is made on a
// scratch viper so that p.v carries no override that would mask later
// changes to the file. Must be called with p.mu held.
func (p *Preferences) write(key string, value any) error {
	scratch := newViper(p.path)
	if err := scratch.ReadInConfig(); err != nil && !isNotExist(err) {
		return fmt.Errorf("prefs: %w", err)
	}
	scratch.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}
	if err := scratch.WriteConfigAs(p.path); err != nil {
		return fmt.Errorf("prefs: write %s: %w", p.path, err)
	}
	if err := p.v.ReadInConfig(); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}
	return nil
}

// apply recomputes the cached values and emits a signal per changed key.
func (p *Preferences) apply() {
	p.mu.Lock()
	old := p.cur
	p.cur = p.read()
	cur := p.cur
	p.mu.Unlock()

	if cur.historySize != old.historySize {
		p.HistorySizeChanged.Emit(cur.historySize)
	}
	if cur.toggleMenu != old.toggleMenu {
		p.ToggleMenuShortcutChanged.Emit(cur.toggleMenu)
	}
	if cur.togglePrivate != old.togglePrivate {
		p.TogglePrivateModeShortcutChanged.Emit(cur.togglePrivate)
	}
	if cur.clearHistory != old.clearHistory {
		p.ClearHistoryShortcutChanged.Emit(cur.clearHistory)
	}
}

func (p *Preferences) read() values {
	return values{
		historySize:   clampHistorySize(p.v.GetInt(KeyHistorySize)),
		toggleMenu:    shortcut(p.v.Get(KeyToggleMenuShortcut)),
		togglePrivate: shortcut(p.v.Get(KeyTogglePrivateModeShortcut)),
		clearHistory:  shortcut(p.v.Get(KeyClearHistoryShortcut)),
	}
}

func clampHistorySize(n int) int {
	if n < MinHistorySize || n > MaxHistorySize {
		c := min(max(n, MinHistorySize), MaxHistorySize)
		slog.Warn("prefs: history-size out of range, clamping", "value", n, "using", c)
		return c
	}
	return n
}

// shortcut accepts either a single accelerator string or a list whose first
// element is used, the form desktop keybinding schemas store.
func shortcut(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case []string:
		if len(s) > 0 {
			return strings.TrimSpace(s[0])
		}
	case []any:
		if len(s) > 0 {
			if str, ok := s[0].(string); ok {
				return strings.TrimSpace(str)
			}
		}
	}
	return ""
}

func isNotExist(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)
}
