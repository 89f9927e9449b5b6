package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"go.klb.dev/clipmini/internal/message"
	"go.klb.dev/clipmini/internal/tui"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the clipboard history",
		Long: `Prints the history, most recent first. The entry currently on the
clipboard is marked with "*". Indexes shown here are accepted by activate
and delete.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runList(cmd, v) },
	}

	cmd.Flags().StringP("output", "o", "table", "output format: table|json|yaml")
	addClientFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, v *viper.Viper) error {
	c, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := requestContext(cmd.Context(), v)
	defer cancel()

	st, err := c.List(ctx, &message.ListRequest{})
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	return printState(cmd.OutOrStdout(), st, v.GetString("output"))
}

const labelWidth = 60

func printState(w io.Writer, st *message.State, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(st); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	switch {
	case st.Locked:
		_, err := fmt.Fprintln(w, "Session is locked.")
		return err
	case st.PrivateMode:
		_, err := fmt.Fprintln(w, "Private mode is on.")
		return err
	case len(st.Entries) == 0:
		_, err := fmt.Fprintln(w, "History is empty.")
		return err
	}

	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "\tINDEX\tTEXT\n")
	_, _ = fmt.Fprintf(tw, "\t-----\t----\n")
	for i, e := range st.Entries {
		marker := ""
		if e.Active {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", marker, i, tui.Label(e.Text, labelWidth))
	}
	_, _ = fmt.Fprintf(tw, "\n%d/%d entries\n", len(st.Entries), st.MaxSize)
	return tw.Flush()
}
