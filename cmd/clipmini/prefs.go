package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipmini/internal/prefs"
)

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Read and change preferences",
		Long: `Reads and writes the preferences file. A running daemon follows the file,
so changes take effect immediately.

Keys:
  history-size                  number of entries kept (1-500, default 15)
  toggle-menu-shortcut          accelerator that opens the menu (default <Super>z)
  toggle-private-mode-shortcut  accelerator that toggles private mode
  clear-history-shortcut        accelerator that clears the history`,
	}
	cmd.AddCommand(newPrefsListCmd(), newPrefsGetCmd(), newPrefsSetCmd())
	return cmd
}

// prefsCommand builds a prefs subcommand that loads the preferences file
// before running fn.
func prefsCommand(use, short string, args cobra.PositionalArgs, fn func(*cobra.Command, *prefs.Preferences, []string) error) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    args,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := prefs.Load(v.GetString("prefs"))
			if err != nil {
				return err
			}
			return fn(cmd, p, args)
		},
	}
	addPrefsFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func newPrefsListCmd() *cobra.Command {
	return prefsCommand("list", "Show every preference", cobra.NoArgs,
		func(cmd *cobra.Command, p *prefs.Preferences, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 0, 2, ' ', 0)
			for _, k := range prefs.Keys {
				val, err := p.Get(k)
				if err != nil {
					return err
				}
				if val == "" {
					val = "-"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", k, val)
			}
			_, _ = fmt.Fprintf(tw, "\nfile: %s\n", p.Path())
			return tw.Flush()
		})
}

func newPrefsGetCmd() *cobra.Command {
	cmd := prefsCommand("get <key>", "Print one preference", cobra.ExactArgs(1),
		func(cmd *cobra.Command, p *prefs.Preferences, args []string) error {
			val, err := p.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		})
	cmd.ValidArgs = prefs.Keys
	return cmd
}

func newPrefsSetCmd() *cobra.Command {
	cmd := prefsCommand("set <key> <value>", "Change one preference", cobra.ExactArgs(2),
		func(_ *cobra.Command, p *prefs.Preferences, args []string) error {
			return p.Set(args[0], args[1])
		})
	cmd.ValidArgs = prefs.Keys
	return cmd
}
