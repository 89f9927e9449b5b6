package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipmini/internal/message"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream history changes as JSON lines",
		Long: `Prints one JSON object per history change until interrupted. The first
line is a "reset" event carrying the full state.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runWatch(cmd, v) },
	}

	addClientFlags(cmd)
	return cmd
}

func runWatch(cmd *cobra.Command, v *viper.Viper) error {
	c, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer c.Close()

	stream, err := c.Watch(cmd.Context(), &message.WatchRequest{})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for {
		ev, err := stream.Recv()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), status.Code(err) == codes.Canceled:
			return nil
		default:
			return fmt.Errorf("watch: %w", err)
		}
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
}
