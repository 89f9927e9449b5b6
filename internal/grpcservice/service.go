// Package grpcservice implements the HistoryService gRPC server and client.
//
// Messages are the plain structs in package message, carried with the JSON
// codec registered there; clients select it with the "json" content subtype.
package grpcservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipmini/internal/history"
	"go.klb.dev/clipmini/internal/host"
	"go.klb.dev/clipmini/internal/hub"
	"go.klb.dev/clipmini/internal/indicator"
	"go.klb.dev/clipmini/internal/message"
)

const watchBuffer = 64

// Host is what the service needs from the session host.
type Host interface {
	Indicator() (*indicator.Indicator, error)
	Apply(message.SessionAction) error
	Hub() *hub.Hub
}

// Service implements HistoryServer.
type Service struct {
	h       Host
	watches atomic.Uint64
}

// New returns a Service backed by h.
func New(h Host) *Service {
	return &Service{h: h}
}

// List implements HistoryService.List. While the session is locked it
// returns the last published state, which has Locked set.
func (s *Service) List(ctx context.Context, _ *message.ListRequest) (*message.State, error) {
	ind, err := s.h.Indicator()
	if errors.Is(err, host.ErrLocked) {
		st := s.h.Hub().Latest()
		return &st, nil
	}
	if err != nil {
		return nil, toStatus(err)
	}
	st, err := ind.State(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &st, nil
}

// Activate implements HistoryService.Activate.
func (s *Service) Activate(ctx context.Context, req *message.TextRequest) (*message.Empty, error) {
	if req.Text == "" {
		return nil, status.Error(codes.InvalidArgument, "text is required")
	}
	ind, err := s.h.Indicator()
	if err != nil {
		return nil, toStatus(err)
	}
	if err := ind.Activate(ctx, req.Text); err != nil {
		return nil, toStatus(err)
	}
	return &message.Empty{}, nil
}

// Delete implements HistoryService.Delete.
func (s *Service) Delete(ctx context.Context, req *message.TextRequest) (*message.Empty, error) {
	if req.Text == "" {
		return nil, status.Error(codes.InvalidArgument, "text is required")
	}
	ind, err := s.h.Indicator()
	if err != nil {
		return nil, toStatus(err)
	}
	if err := ind.Delete(ctx, req.Text); err != nil {
		return nil, toStatus(err)
	}
	return &message.Empty{}, nil
}

// ClearAll implements HistoryService.ClearAll.
func (s *Service) ClearAll(ctx context.Context, _ *message.ClearRequest) (*message.Empty, error) {
	ind, err := s.h.Indicator()
	if err != nil {
		return nil, toStatus(err)
	}
	if err := ind.ClearAll(ctx); err != nil {
		return nil, toStatus(err)
	}
	return &message.Empty{}, nil
}

// SetPrivateMode implements HistoryService.SetPrivateMode.
func (s *Service) SetPrivateMode(ctx context.Context, req *message.PrivateModeRequest) (*message.PrivateModeResponse, error) {
	ind, err := s.h.Indicator()
	if err != nil {
		return nil, toStatus(err)
	}
	on := req.Enabled
	if req.Toggle {
		on, err = ind.TogglePrivateMode(ctx)
	} else {
		err = ind.SetPrivateMode(ctx, on)
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &message.PrivateModeResponse{Enabled: on}, nil
}

// Session implements HistoryService.Session.
func (s *Service) Session(ctx context.Context, req *message.SessionRequest) (*message.Empty, error) {
	slog.Info("session action", "action", req.Action, "from", addrFromCtx(ctx))
	if err := s.h.Apply(req.Action); err != nil {
		return nil, toStatus(err)
	}
	return &message.Empty{}, nil
}

// Watch implements HistoryService.Watch. The first event is always a reset
// carrying the full state. A watcher that falls behind is disconnected with
// ResourceExhausted and is expected to re-subscribe.
func (s *Service) Watch(_ *message.WatchRequest, stream WatchStream) error {
	id := fmt.Sprintf("%s/watch/%d", addrFromCtx(stream.Context()), s.watches.Add(1))
	wp := &watchPeer{id: id, ch: make(chan message.Event, watchBuffer)}

	hb := s.h.Hub()
	hb.Register(wp)
	defer hb.Unregister(wp)

	for {
		select {
		case <-stream.Context().Done():
			return nil
		case ev := <-wp.ch:
			if wp.lagged.Load() {
				return status.Error(codes.ResourceExhausted, "watcher fell behind")
			}
			if err := stream.Send(&ev); err != nil {
				return err
			}
		}
	}
}

// toStatus maps package errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, host.ErrLocked), errors.Is(err, indicator.ErrClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, history.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, host.ErrUnknownAction):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func addrFromCtx(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if a := p.Addr.String(); a != "" {
			return a
		}
	}
	return "local"
}

// watchPeer is a transient hub.Peer backed by a Watch stream.
type watchPeer struct {
	id     string
	ch     chan message.Event
	lagged atomic.Bool
}

func (p *watchPeer) ID() string { return p.id }

func (p *watchPeer) Send(ev message.Event) {
	select {
	case p.ch <- ev:
	default:
		if !p.lagged.Swap(true) {
			slog.Warn("watch peer channel full, disconnecting", "peer", p.id)
		}
	}
}
