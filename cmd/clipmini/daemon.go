package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soheilhy/cmux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"go.klb.dev/clipmini/internal/clip"
	"go.klb.dev/clipmini/internal/gateway"
	"go.klb.dev/clipmini/internal/grpcservice"
	"go.klb.dev/clipmini/internal/host"
	"go.klb.dev/clipmini/internal/hub"
	"go.klb.dev/clipmini/internal/ipc"
	"go.klb.dev/clipmini/internal/prefs"
	"go.klb.dev/clipmini/internal/session"
)

func newDaemonCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Watch the clipboard and serve the history",
		Long: `Starts the clipmini daemon. It follows the system clipboard, keeps the
text history in memory and serves it on a local socket (gRPC and HTTP/JSON).

SIGHUP re-reads the preferences file. Send "clipmini session lock" from your
screen locker to drop the history view while the session is locked; it comes
back on "clipmini session unlock".

Config file search order:
  /etc/clipmini/clipmini.toml
  $HOME/.config/clipmini/clipmini.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → CLIPMINI_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runDaemon(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.String("socket", ipc.SocketPath(), "socket to serve on")
	f.String("backend", "auto", "clipboard backend: auto|memory|headless")
	f.StringSlice("sensitive-types", clip.DefaultSensitiveTypes, "clipboard types that mark a secret; such copies are never recorded")
	f.StringSlice("preserve-on", []string{string(session.KindLock)}, "suspend kinds that keep the history: lock,disable")
	addPrefsFlag(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(ctx context.Context, v *viper.Viper) error {
	setupLogging(v)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	preserve, err := session.ParseKinds(v.GetStringSlice("preserve-on"))
	if err != nil {
		return err
	}

	p, err := prefs.Load(v.GetString("prefs"))
	if err != nil {
		return err
	}
	if err := p.Watch(); err != nil {
		slog.Warn("prefs: not following file changes", "err", err)
	}
	defer func() { _ = p.Close() }()

	backend, err := clip.Open(v.GetString("backend"))
	if err != nil {
		return err
	}
	defer backend.Close()

	socket := v.GetString("socket")
	ln, err := ipc.Listen(socket)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(socket) }()

	h := host.New(host.Options{
		Source: clip.NewSource(backend, v.GetStringSlice("sensitive-types")),
		Prefs:  p,
		Hub:    hub.New(),
		Policy: session.Policy{Preserve: preserve},
	})
	h.Enable()
	defer h.Close()

	slog.Info("clipmini daemon starting",
		"version", Version,
		"socket", socket,
		"backend", backend.Name(),
		"prefs", p.Path(),
		"history_size", p.HistorySize(),
		"preserve_on", preserve,
	)

	svc := grpcservice.New(h)
	gwMux, err := gateway.NewMux(svc)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("gateway: %w", err)
	}

	// gRPC clients send "application/grpc+json"; match on the prefix.
	m := cmux.New(ln)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldPrefixSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.HTTP1Fast())

	gs := grpc.NewServer()
	grpcservice.RegisterHistoryServer(gs, svc)
	hs := &http.Server{Handler: gwMux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 3)
	go func() { errc <- serveGRPC(gs, grpcL) }()
	go func() { errc <- serveHTTPGateway(hs, httpL) }()
	go func() { errc <- m.Serve() }()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-hup:
			if err := p.Reload(); err != nil {
				slog.Warn("prefs reload failed", "err", err)
			} else {
				slog.Info("prefs reloaded", "history_size", p.HistorySize())
			}
		case err := <-errc:
			shutdown(gs, hs)
			if isClosed(err) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		case <-ctx.Done():
			slog.Info("clipmini daemon stopping")
			shutdown(gs, hs)
			_ = ln.Close()
			return nil
		}
	}
}

func serveGRPC(gs *grpc.Server, ln net.Listener) error {
	return gs.Serve(ln)
}

// serveHTTPGateway runs an HTTP/1.1 server on ln serving the REST gateway.
func serveHTTPGateway(hs *http.Server, ln net.Listener) error {
	err := hs.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func shutdown(gs *grpc.Server, hs *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// Watch streams never end on their own, so there is no graceful stop.
	gs.Stop()
	_ = hs.Shutdown(ctx)
}

func isClosed(err error) bool {
	return err == nil || errors.Is(err, net.ErrClosed) || errors.Is(err, cmux.ErrListenerClosed) || errors.Is(err, grpc.ErrServerStopped)
}
