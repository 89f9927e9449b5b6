package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipmini/internal/message"
)

func newActivateCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "activate [index]",
		Short: "Put a history entry back on the clipboard",
		Long: `Makes the entry at index (as shown by "clipmini list") the clipboard
content again. The entry moves to the top of the history.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialDaemon(v)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := requestContext(cmd.Context(), v)
			defer cancel()

			text, err := resolveEntry(ctx, c, args, v.GetString("text"))
			if err != nil {
				return err
			}
			if _, err := c.Activate(ctx, &message.TextRequest{Text: text}); err != nil {
				return fmt.Errorf("activate: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("text", "", "select the entry by its exact text instead of by index")
	addClientFlags(cmd)

	return cmd
}

func newDeleteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "delete [index]",
		Aliases: []string{"rm"},
		Short:   "Remove a history entry",
		Long: `Removes the entry at index from the history. Deleting the entry that is
currently on the clipboard also clears the clipboard.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialDaemon(v)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := requestContext(cmd.Context(), v)
			defer cancel()

			text, err := resolveEntry(ctx, c, args, v.GetString("text"))
			if err != nil {
				return err
			}
			if _, err := c.Delete(ctx, &message.TextRequest{Text: text}); err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("text", "", "select the entry by its exact text instead of by index")
	addClientFlags(cmd)

	return cmd
}

func newClearCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "clear",
		Short:   "Delete every history entry",
		Long:    `Empties the history and clears the clipboard.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := dialDaemon(v)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := requestContext(cmd.Context(), v)
			defer cancel()

			if _, err := c.ClearAll(ctx, &message.ClearRequest{}); err != nil {
				return fmt.Errorf("clear: %w", err)
			}
			return nil
		},
	}

	addClientFlags(cmd)
	return cmd
}

func newPrivateCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "private [on|off|toggle]",
		Short: "Show or change private mode",
		Long: `While private mode is on, copies are not recorded and the history is
hidden. Turning it off picks up whatever is on the clipboard at that moment.
Without an argument the current setting is printed.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off", "toggle"},
		PreRunE:   func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialDaemon(v)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := requestContext(cmd.Context(), v)
			defer cancel()

			if len(args) == 0 {
				st, err := c.List(ctx, &message.ListRequest{})
				if err != nil {
					return fmt.Errorf("private: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), onOff(st.PrivateMode))
				return nil
			}

			req := &message.PrivateModeRequest{}
			switch strings.ToLower(args[0]) {
			case "on", "true", "1":
				req.Enabled = true
			case "off", "false", "0":
			case "toggle":
				req.Toggle = true
			default:
				return fmt.Errorf("expected on, off or toggle, got %q", args[0])
			}
			resp, err := c.SetPrivateMode(ctx, req)
			if err != nil {
				return fmt.Errorf("private: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), onOff(resp.Enabled))
			return nil
		},
	}

	addClientFlags(cmd)
	return cmd
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func newSessionCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "session <lock|unlock|disable|enable>",
		Short: "Drive the daemon's session state",
		Long: `Tells the daemon about a session transition. "lock" and "disable" tear
the history down; "unlock" and "enable" rebuild it. Whether history survives
depends on the daemon's --preserve-on setting (by default only across lock).

Hook "lock"/"unlock" into your screen locker.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"lock", "unlock", "disable", "enable"},
		PreRunE:   func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialDaemon(v)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := requestContext(cmd.Context(), v)
			defer cancel()

			action := message.SessionAction(strings.ToLower(args[0]))
			if _, err := c.Session(ctx, &message.SessionRequest{Action: action}); err != nil {
				return fmt.Errorf("session %s: %w", action, err)
			}
			return nil
		},
	}

	addClientFlags(cmd)
	return cmd
}
