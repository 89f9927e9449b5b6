// clipmini: clipboard text history.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/clipmini/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clipmini",
		Short: "Clipboard text history",
		Long: `clipmini keeps a short, most-recently-used history of text copied to the
system clipboard and lets you put any entry back.

Run "clipmini daemon" once per login session. Use "clipmini menu" (bind it to
a hotkey in a terminal) or the list/activate/delete/clear/private commands to
work with the history.

Config file search order (first found wins):
  /etc/clipmini/clipmini.toml
  $HOME/.config/clipmini/clipmini.toml
  path supplied via --config

All flags can be set via CLIPMINI_<FLAG> env vars or config-file keys.
See "clipmini daemon --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newDaemonCmd(),
		newMenuCmd(),
		newListCmd(),
		newActivateCmd(),
		newDeleteCmd(),
		newClearCmd(),
		newPasteCmd(),
		newPrivateCmd(),
		newSessionCmd(),
		newWatchCmd(),
		newPrefsCmd(),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clipmini %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(os.Stderr, format, level)
}
