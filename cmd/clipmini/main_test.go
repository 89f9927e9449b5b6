package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"go.klb.dev/clipmini/internal/ipc"
	"go.klb.dev/clipmini/internal/message"
)

func run(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

// startDaemon runs "clipmini daemon" on a private socket with the in-memory
// clipboard and returns the socket path.
func startDaemon(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(ipc.EnvSocket, "")
	socket := filepath.Join(dir, "d.sock")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := run(t, ctx, "daemon",
			"--socket", socket,
			"--backend", "memory",
			"--prefs", filepath.Join(dir, "prefs.toml"),
			"--log-format", "json",
			"--log-level", "error",
		)
		done <- err
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
	})

	require.Eventually(t, func() bool { return ipc.IsRunning(socket) }, 5*time.Second, 20*time.Millisecond)
	return socket
}

func TestCLI_AgainstDaemon(t *testing.T) {
	socket := startDaemon(t)
	ctx := context.Background()

	out, err := run(t, ctx, "list", "--socket", socket, "-o", "json")
	require.NoError(t, err)
	var st message.State
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Empty(t, st.Entries)
	assert.Equal(t, 15, st.MaxSize)
	assert.False(t, st.Locked)

	out, err = run(t, ctx, "private", "on", "--socket", socket)
	require.NoError(t, err)
	assert.Equal(t, "on\n", out)

	out, err = run(t, ctx, "private", "--socket", socket)
	require.NoError(t, err)
	assert.Equal(t, "on\n", out)

	out, err = run(t, ctx, "private", "toggle", "--socket", socket)
	require.NoError(t, err)
	assert.Equal(t, "off\n", out)

	_, err = run(t, ctx, "activate", "0", "--socket", socket)
	assert.ErrorContains(t, err, "out of range")

	_, err = run(t, ctx, "session", "lock", "--socket", socket)
	require.NoError(t, err)
	out, err = run(t, ctx, "list", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "Session is locked.")

	_, err = run(t, ctx, "clear", "--socket", socket)
	assert.Error(t, err)

	_, err = run(t, ctx, "session", "unlock", "--socket", socket)
	require.NoError(t, err)
	_, err = run(t, ctx, "clear", "--socket", socket)
	assert.NoError(t, err)
}

func TestCLI_HTTPOnSameSocket(t *testing.T) {
	socket := startDaemon(t)

	client := &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			return ipc.Dial(ctx, socket)
		},
	}}
	resp, err := client.Get("http://clipmini/v1/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st message.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, 15, st.MaxSize)
}

func TestCLI_NoDaemon(t *testing.T) {
	_, err := run(t, context.Background(), "list", "--socket", filepath.Join(t.TempDir(), "none.sock"))
	assert.ErrorContains(t, err, "no clipmini daemon")
}

func TestCLI_Prefs(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "prefs.toml")
	ctx := context.Background()

	_, err := run(t, ctx, "prefs", "set", "history-size", "30", "--prefs", path)
	require.NoError(t, err)

	out, err := run(t, ctx, "prefs", "get", "history-size", "--prefs", path)
	require.NoError(t, err)
	assert.Equal(t, "30\n", out)

	_, err = run(t, ctx, "prefs", "set", "history-size", "0", "--prefs", path)
	assert.Error(t, err)

	out, err = run(t, ctx, "prefs", "list", "--prefs", path)
	require.NoError(t, err)
	assert.Contains(t, out, "toggle-menu-shortcut")
	assert.Contains(t, out, "<Super>z")
}

func TestPrintState(t *testing.T) {
	st := &message.State{
		Entries: []message.Entry{{Text: "  two\nlines", Active: true}, {Text: "one"}},
		MaxSize: 15,
	}

	var b bytes.Buffer
	require.NoError(t, printState(&b, st, "table"))
	lines := strings.Split(b.String(), "\n")
	assert.Contains(t, lines[2], "*")
	assert.Contains(t, lines[2], "␣␣two lines")
	assert.Contains(t, b.String(), "2/15 entries")

	b.Reset()
	require.NoError(t, printState(&b, st, "yaml"))
	var back message.State
	require.NoError(t, yaml.Unmarshal(b.Bytes(), &back))
	assert.Equal(t, *st, back)

	b.Reset()
	require.NoError(t, printState(&b, &message.State{PrivateMode: true}, "table"))
	assert.Equal(t, "Private mode is on.\n", b.String())

	assert.Error(t, printState(&b, st, "xml"))
}

func TestMenuKey(t *testing.T) {
	assert.Equal(t, "", menuKey("toggle-menu-shortcut", "<Super>z"))
	assert.Equal(t, "ctrl+h", menuKey("clear-history-shortcut", "<Control>h"))
	assert.Equal(t, "", menuKey("clear-history-shortcut", ""))
}
