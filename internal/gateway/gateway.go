// Package gateway exposes the history service as HTTP/JSON on a grpc-gateway
// runtime mux. Entries are addressed by their position in the list, as a
// menu shows them; the handler resolves the position to the entry's text
// against the current list before calling the service.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipmini/internal/grpcservice"
	"go.klb.dev/clipmini/internal/message"
)

// NewMux returns a ServeMux routing the /v1 endpoints to svc.
func NewMux(svc grpcservice.History) (*gwruntime.ServeMux, error) {
	mux := gwruntime.NewServeMux(
		gwruntime.WithMarshalerOption(gwruntime.MIMEWildcard, &gwruntime.JSONBuiltin{}),
	)
	g := &gateway{svc: svc, mux: mux}

	routes := []struct {
		method, path string
		h            gwruntime.HandlerFunc
	}{
		{http.MethodGet, "/v1/history", g.list},
		{http.MethodDelete, "/v1/history", g.clear},
		{http.MethodPost, "/v1/history/{index}/activate", g.activate},
		{http.MethodDelete, "/v1/history/{index}", g.delete},
		{http.MethodPut, "/v1/private-mode", g.privateMode},
		{http.MethodPost, "/v1/session/{action}", g.session},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.path, r.h); err != nil {
			return nil, fmt.Errorf("gateway: %s %s: %w", r.method, r.path, err)
		}
	}
	return mux, nil
}

type gateway struct {
	svc grpcservice.History
	mux *gwruntime.ServeMux
}

func (g *gateway) list(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	st, err := g.svc.List(r.Context(), &message.ListRequest{})
	g.respond(w, r, st, err)
}

func (g *gateway) clear(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	resp, err := g.svc.ClearAll(r.Context(), &message.ClearRequest{})
	g.respond(w, r, resp, err)
}

func (g *gateway) activate(w http.ResponseWriter, r *http.Request, params map[string]string) {
	text, err := g.resolve(r.Context(), params["index"])
	if err != nil {
		g.fail(w, r, err)
		return
	}
	resp, err := g.svc.Activate(r.Context(), &message.TextRequest{Text: text})
	g.respond(w, r, resp, err)
}

func (g *gateway) delete(w http.ResponseWriter, r *http.Request, params map[string]string) {
	text, err := g.resolve(r.Context(), params["index"])
	if err != nil {
		g.fail(w, r, err)
		return
	}
	resp, err := g.svc.Delete(r.Context(), &message.TextRequest{Text: text})
	g.respond(w, r, resp, err)
}

func (g *gateway) privateMode(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req message.PrivateModeRequest
	inbound, _ := gwruntime.MarshalerForRequest(g.mux, r)
	if err := inbound.NewDecoder(r.Body).Decode(&req); err != nil {
		g.fail(w, r, status.Errorf(codes.InvalidArgument, "body: %v", err))
		return
	}
	resp, err := g.svc.SetPrivateMode(r.Context(), &req)
	g.respond(w, r, resp, err)
}

func (g *gateway) session(w http.ResponseWriter, r *http.Request, params map[string]string) {
	req := &message.SessionRequest{Action: message.SessionAction(params["action"])}
	resp, err := g.svc.Session(r.Context(), req)
	g.respond(w, r, resp, err)
}

// resolve maps a list position to the text of the entry there.
func (g *gateway) resolve(ctx context.Context, raw string) (string, error) {
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return "", status.Errorf(codes.InvalidArgument, "bad index %q", raw)
	}
	st, err := g.svc.List(ctx, &message.ListRequest{})
	if err != nil {
		return "", err
	}
	if st.Locked {
		return "", status.Error(codes.Unavailable, "session locked")
	}
	if idx >= len(st.Entries) {
		return "", status.Errorf(codes.NotFound, "no entry at index %d", idx)
	}
	return st.Entries[idx].Text, nil
}

func (g *gateway) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		g.fail(w, r, err)
		return
	}
	_, outbound := gwruntime.MarshalerForRequest(g.mux, r)
	buf, err := outbound.Marshal(v)
	if err != nil {
		g.fail(w, r, status.Error(codes.Internal, err.Error()))
		return
	}
	w.Header().Set("Content-Type", outbound.ContentType(v))
	_, _ = w.Write(buf)
}

func (g *gateway) fail(w http.ResponseWriter, r *http.Request, err error) {
	_, outbound := gwruntime.MarshalerForRequest(g.mux, r)
	gwruntime.HTTPError(r.Context(), g.mux, outbound, w, r, err)
}
