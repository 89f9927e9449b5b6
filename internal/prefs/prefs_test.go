package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "missing", "prefs.toml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultHistorySize, p.HistorySize())
	assert.Equal(t, DefaultToggleMenuShortcut, p.ToggleMenuShortcut())
	assert.Equal(t, "", p.TogglePrivateModeShortcut())
	assert.Equal(t, "", p.ClearHistoryShortcut())
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	writeFile(t, path, `
history-size = 40
toggle-menu-shortcut = ["<Control><Alt>v"]
clear-history-shortcut = "<Control>Delete"
`)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 40, p.HistorySize())
	assert.Equal(t, "<Control><Alt>v", p.ToggleMenuShortcut())
	assert.Equal(t, "<Control>Delete", p.ClearHistoryShortcut())
}

func TestLoad_ClampsHistorySize(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{body: "history-size = 0", want: MinHistorySize},
		{body: "history-size = -4", want: MinHistorySize},
		{body: "history-size = 9000", want: MaxHistorySize},
		{body: "history-size = 500", want: 500},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prefs.toml")
			writeFile(t, path, tt.body)

			p, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.HistorySize())
		})
	}
}

func TestSet_PersistsAndEmits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "prefs.toml")
	p, err := Load(path)
	require.NoError(t, err)

	var sizes []int
	p.HistorySizeChanged.Connect(func(n int) { sizes = append(sizes, n) })

	require.NoError(t, p.Set(KeyHistorySize, "20"))
	require.NoError(t, p.Set(KeyHistorySize, "20"))
	assert.Equal(t, []int{20}, sizes, "unchanged values do not emit")

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, reloaded.HistorySize())
}

func TestSet_RejectsInvalid(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "prefs.toml"))
	require.NoError(t, err)

	assert.Error(t, p.Set(KeyHistorySize, "0"))
	assert.Error(t, p.Set(KeyHistorySize, "501"))
	assert.Error(t, p.Set(KeyHistorySize, "many"))

	err = p.Set("colour", "blue")
	assert.True(t, errors.Is(err, ErrUnknownKey))
	assert.Equal(t, DefaultHistorySize, p.HistorySize())
}

func TestReload_ExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	writeFile(t, path, "history-size = 10\n")
	p, err := Load(path)
	require.NoError(t, err)

	var size int
	var private string
	p.HistorySizeChanged.Connect(func(n int) { size = n })
	p.TogglePrivateModeShortcutChanged.Connect(func(s string) { private = s })

	writeFile(t, path, "history-size = 3\ntoggle-private-mode-shortcut = \"<Super>p\"\n")
	require.NoError(t, p.Reload())

	assert.Equal(t, 3, size)
	assert.Equal(t, "<Super>p", private)
}

func TestGet(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "prefs.toml"))
	require.NoError(t, err)

	v, err := p.Get(KeyHistorySize)
	require.NoError(t, err)
	assert.Equal(t, "15", v)

	_, err = p.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestWatch_ExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "prefs.toml")
	p, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, p.Watch())
	t.Cleanup(func() { _ = p.Close() })

	writeFile(t, path, "history-size = 8\nclear-history-shortcut = \"<Control>l\"\n")
	require.Eventually(t, func() bool {
		return p.HistorySize() == 8 && p.ClearHistoryShortcut() == "<Control>l"
	}, 5*time.Second, 10*time.Millisecond)
}

// Set runs while the watcher reloads the file Set itself writes; run with -race.
func TestWatch_ConcurrentSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	p, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, p.Watch())
	t.Cleanup(func() { _ = p.Close() })

	for i := range 50 {
		require.NoError(t, p.Set(KeyHistorySize, strconv.Itoa(10+i)))
		_, err := p.Get(KeyHistorySize)
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool { return p.HistorySize() == 59 }, 5*time.Second, 10*time.Millisecond)

	// A value set in-process does not mask later edits to the file.
	writeFile(t, path, "history-size = 7\n")
	require.Eventually(t, func() bool { return p.HistorySize() == 7 }, 5*time.Second, 10*time.Millisecond)
}

func TestClose_Idempotent(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "prefs.toml"))
	require.NoError(t, err)
	assert.NoError(t, p.Close())

	require.NoError(t, p.Watch())
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}
