package grpcservice

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.klb.dev/clipmini/internal/message"
)

// Client is a HistoryService client.
type Client struct {
	cc   grpc.ClientConnInterface
	conn *grpc.ClientConn
}

// Dial connects to target (for example "unix:///run/user/1000/clipmini.sock").
// The connection is lazy; the first call establishes it.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(message.CodecName)),
	}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{cc: conn, conn: conn}, nil
}

// NewClient wraps an existing connection. Calls still select the JSON codec.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close releases the connection if Dial created it.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any) (*Resp, error) {
	out := new(Resp)
	if err := c.cc.Invoke(ctx, method, in, out, grpc.CallContentSubtype(message.CodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns the current history view.
func (c *Client) List(ctx context.Context, in *message.ListRequest) (*message.State, error) {
	return invoke[message.State](ctx, c, ListMethod, in)
}

// Activate puts the entry holding in.Text back on the clipboard.
func (c *Client) Activate(ctx context.Context, in *message.TextRequest) (*message.Empty, error) {
	return invoke[message.Empty](ctx, c, ActivateMethod, in)
}

// Delete removes the entry holding in.Text.
func (c *Client) Delete(ctx context.Context, in *message.TextRequest) (*message.Empty, error) {
	return invoke[message.Empty](ctx, c, DeleteMethod, in)
}

// ClearAll removes every entry.
func (c *Client) ClearAll(ctx context.Context, in *message.ClearRequest) (*message.Empty, error) {
	return invoke[message.Empty](ctx, c, ClearAllMethod, in)
}

// SetPrivateMode sets or toggles private mode.
func (c *Client) SetPrivateMode(ctx context.Context, in *message.PrivateModeRequest) (*message.PrivateModeResponse, error) {
	return invoke[message.PrivateModeResponse](ctx, c, SetPrivateModeMethod, in)
}

// Session performs a lock/unlock/disable/enable transition.
func (c *Client) Session(ctx context.Context, in *message.SessionRequest) (*message.Empty, error) {
	return invoke[message.Empty](ctx, c, SessionMethod, in)
}

// WatchClient receives history events.
type WatchClient struct {
	grpc.ClientStream
}

// Recv blocks for the next event.
func (w *WatchClient) Recv() (*message.Event, error) {
	ev := new(message.Event)
	if err := w.ClientStream.RecvMsg(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Watch subscribes to history events. The stream ends when ctx is cancelled.
func (c *Client) Watch(ctx context.Context, in *message.WatchRequest) (*WatchClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], WatchMethod, grpc.CallContentSubtype(message.CodecName))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &WatchClient{stream}, nil
}
