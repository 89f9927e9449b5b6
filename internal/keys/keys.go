// Package keys parses desktop accelerator strings such as "<Control><Shift>x"
// and maps them onto the key names the terminal menu receives.
package keys

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Modifier is a bit set of accelerator modifiers.
type Modifier uint8

const (
	Ctrl Modifier = 1 << iota
	Alt
	Shift
	Super
)

// ErrEmpty is returned by Parse for an empty accelerator.
var ErrEmpty = errors.New("keys: empty accelerator")

// Accel is a parsed accelerator.
type Accel struct {
	Mods Modifier
	// Key is the key name as written, e.g. "z", "Delete", "F5".
	Key string
}

var modifierNames = map[string]Modifier{
	"control": Ctrl,
	"ctrl":    Ctrl,
	"primary": Ctrl,
	"alt":     Alt,
	"mod1":    Alt,
	"meta":    Alt,
	"shift":   Shift,
	"super":   Super,
	"hyper":   Super,
	"mod4":    Super,
}

// Parse reads a GTK-style accelerator: zero or more <Modifier> groups
// followed by a key name.
func Parse(s string) (Accel, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Accel{}, ErrEmpty
	}
	var a Accel
	for strings.HasPrefix(s, "<") {
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return Accel{}, fmt.Errorf("keys: unterminated modifier in %q", s)
		}
		name := strings.ToLower(s[1:end])
		m, ok := modifierNames[name]
		if !ok {
			return Accel{}, fmt.Errorf("keys: unknown modifier %q", s[1:end])
		}
		a.Mods |= m
		s = s[end+1:]
	}
	if s == "" {
		return Accel{}, fmt.Errorf("keys: accelerator has no key")
	}
	a.Key = s
	return a, nil
}

var namedKeys = map[string]string{
	"delete":    "delete",
	"backspace": "backspace",
	"return":    "enter",
	"enter":     "enter",
	"kp_enter":  "enter",
	"escape":    "esc",
	"tab":       "tab",
	"space":     " ",
	"up":        "up",
	"down":      "down",
	"left":      "left",
	"right":     "right",
	"home":      "home",
	"end":       "end",
	"page_up":   "pgup",
	"page_down": "pgdown",
	"insert":    "insert",
}

// TeaKey returns the key string a terminal reports for a, in the form
// bubbletea's KeyMsg.String produces. ok is false when a terminal cannot
// deliver the combination (Super, or Ctrl with a non-letter).
func (a Accel) TeaKey() (key string, ok bool) {
	if a.Mods&Super != 0 {
		return "", false
	}

	base, ok := baseKey(a.Key)
	if !ok {
		return "", false
	}

	single := utf8.RuneCountInString(base) == 1 && base != " "
	switch {
	case a.Mods&Ctrl != 0:
		if !single || base[0] < 'a' || base[0] > 'z' {
			return "", false
		}
		// Terminals fold Ctrl+Shift+x into Ctrl+x.
		key = "ctrl+" + base
	case a.Mods&Shift != 0 && single:
		key = strings.ToUpper(base)
	case a.Mods&Shift != 0:
		key = "shift+" + base
	default:
		key = base
	}
	if a.Mods&Alt != 0 {
		key = "alt+" + key
	}
	return key, true
}

func baseKey(name string) (string, bool) {
	lower := strings.ToLower(name)
	if k, ok := namedKeys[lower]; ok {
		return k, true
	}
	if len(lower) >= 2 && lower[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(lower[1:], "%d", &n); err == nil && n >= 1 && n <= 20 {
			return fmt.Sprintf("f%d", n), true
		}
	}
	if utf8.RuneCountInString(name) == 1 {
		return lower, true
	}
	return "", false
}

// Label renders a for help text, e.g. "ctrl+shift+x" or "super+z".
func (a Accel) Label() string {
	var parts []string
	for _, m := range []struct {
		bit  Modifier
		name string
	}{{Super, "super"}, {Ctrl, "ctrl"}, {Alt, "alt"}, {Shift, "shift"}} {
		if a.Mods&m.bit != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, strings.ToLower(a.Key)), "+")
}

// TeaKey parses accel and maps it in one step. It returns "" and false for an
// empty, malformed, or unrepresentable accelerator.
func TeaKey(accel string) (string, bool) {
	a, err := Parse(accel)
	if err != nil {
		return "", false
	}
	return a.TeaKey()
}
