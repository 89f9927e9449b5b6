package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/viper"

	"go.klb.dev/clipmini/internal/grpcservice"
	"go.klb.dev/clipmini/internal/ipc"
	"go.klb.dev/clipmini/internal/message"
)

// dialDaemon connects to the daemon named by --socket. It fails fast when
// nothing is listening rather than leaving the first RPC to time out.
func dialDaemon(v *viper.Viper) (*grpcservice.Client, error) {
	socket := v.GetString("socket")
	if !ipc.IsRunning(socket) {
		return nil, fmt.Errorf("no clipmini daemon on %s (start one with \"clipmini daemon\")", socket)
	}
	return grpcservice.Dial(ipc.Target(socket))
}

// requestContext bounds a single CLI request by --timeout.
func requestContext(parent context.Context, v *viper.Viper) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, v.GetDuration("timeout"))
}

// resolveEntry turns an index argument (or the --text flag) into entry text.
func resolveEntry(ctx context.Context, c *grpcservice.Client, args []string, text string) (string, error) {
	if text != "" {
		return text, nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("need an entry index or --text")
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid index %q", args[0])
	}
	st, err := c.List(ctx, &message.ListRequest{})
	if err != nil {
		return "", err
	}
	if st.Locked {
		return "", fmt.Errorf("session is locked")
	}
	if i < 0 || i >= len(st.Entries) {
		return "", fmt.Errorf("index %d out of range (history has %d entries)", i, len(st.Entries))
	}
	return st.Entries[i].Text, nil
}
