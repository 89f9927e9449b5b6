package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipmini/internal/message"
)

func newPasteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "paste [index]",
		Short: "Print a history entry to stdout (like pbpaste)",
		Long: `Writes the text of the entry at index to stdout, unmodified. Without an
index the entry currently on the clipboard is printed. Nothing is printed
(exit 0) when there is no such entry.

  clipmini paste 2 | wc -c`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runPaste(cmd, v, args) },
	}

	addClientFlags(cmd)
	return cmd
}

func runPaste(cmd *cobra.Command, v *viper.Viper, args []string) error {
	c, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := requestContext(cmd.Context(), v)
	defer cancel()

	if len(args) > 0 {
		text, err := resolveEntry(ctx, c, args, "")
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), text)
		return err
	}

	st, err := c.List(ctx, &message.ListRequest{})
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	if st.Locked || st.PrivateMode {
		return nil
	}
	if i := st.ActiveIndex(); i >= 0 {
		_, err = io.WriteString(cmd.OutOrStdout(), st.Entries[i].Text)
	}
	return err
}
