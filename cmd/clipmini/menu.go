package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipmini/internal/grpcservice"
	"go.klb.dev/clipmini/internal/keys"
	"go.klb.dev/clipmini/internal/message"
	"go.klb.dev/clipmini/internal/prefs"
	"go.klb.dev/clipmini/internal/tui"
)

func newMenuCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Open the interactive history menu",
		Long: `Opens the history menu in the terminal. Type to search; enter pastes the
selected entry onto the clipboard and closes the menu.

Bind "clipmini menu" to your toggle-menu shortcut in a terminal emulator
launcher. The toggle-private-mode and clear-history shortcuts from the
preferences file also work inside the menu.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runMenu(cmd, v) },
	}

	cmd.Flags().Bool("alt-screen", false, "draw the menu on the alternate screen")
	addPrefsFlag(cmd)
	addClientFlags(cmd)

	return cmd
}

func runMenu(cmd *cobra.Command, v *viper.Viper) error {
	c, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer c.Close()

	sc := tui.Shortcuts{}
	if p, err := prefs.Load(v.GetString("prefs")); err != nil {
		slog.Warn("menu: preferences unavailable, using built-in keys", "err", err)
	} else {
		sc.ToggleMenu = menuKey(prefs.KeyToggleMenuShortcut, p.ToggleMenuShortcut())
		sc.TogglePrivate = menuKey(prefs.KeyTogglePrivateModeShortcut, p.TogglePrivateModeShortcut())
		sc.ClearHistory = menuKey(prefs.KeyClearHistoryShortcut, p.ClearHistoryShortcut())
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	events, err := pumpEvents(ctx, c)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	}
	if v.GetBool("alt-screen") {
		opts = append(opts, tea.WithAltScreen())
	}

	m := tui.New(c, tui.Options{Events: events, Shortcuts: sc})
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// menuKey maps a configured accelerator onto a terminal key. Accelerators a
// terminal cannot deliver (anything with Super) are left unbound.
func menuKey(name, accel string) string {
	if accel == "" {
		return ""
	}
	k, ok := keys.TeaKey(accel)
	if !ok {
		slog.Debug("menu: shortcut not available in a terminal", "pref", name, "accel", accel)
		return ""
	}
	return k
}

// pumpEvents subscribes to the daemon and forwards events until ctx ends or
// the stream fails. The channel is closed when forwarding stops, which makes
// the menu fall back to polling.
func pumpEvents(ctx context.Context, c *grpcservice.Client) (<-chan message.Event, error) {
	stream, err := c.Watch(ctx, &message.WatchRequest{})
	if err != nil {
		return nil, err
	}
	ch := make(chan message.Event, 16)
	go func() {
		defer close(ch)
		for {
			ev, err := stream.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) && status.Code(err) != codes.Canceled {
					slog.Debug("menu: watch stream ended", "err", err)
				}
				return
			}
			select {
			case ch <- *ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
