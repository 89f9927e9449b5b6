// Package hub fans history events out to watchers.
// It is transport-agnostic: watchers register, receive events via Send, and
// the history component publishes. The hub also keeps the folded state so a
// watcher registering late starts from a full snapshot.
package hub

import (
	"log/slog"
	"sync"

	"go.klb.dev/clipmini/internal/message"
)

// Peer is anything that can receive history events from the hub.
type Peer interface {
	ID() string
	// Send delivers an event to the peer. Must be non-blocking.
	Send(message.Event)
}

// Hub routes history events to all registered peers.
type Hub struct {
	mu    sync.RWMutex
	peers map[string]Peer
	state message.State
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{
		peers: make(map[string]Peer),
		state: message.State{Locked: true},
	}
}

// Register adds a peer and immediately delivers the current state as a
// reset event. Every later event reaches the peer after that reset.
func (h *Hub) Register(p Peer) {
	h.mu.Lock()
	h.peers[p.ID()] = p
	st := h.state.Clone()
	total := len(h.peers)
	p.Send(message.Event{Kind: message.KindReset, State: &st})
	h.mu.Unlock()

	slog.Info("watcher registered", "peer", p.ID(), "total", total)
}

// Unregister removes a peer from the hub.
func (h *Hub) Unregister(p Peer) {
	h.mu.Lock()
	delete(h.peers, p.ID())
	total := len(h.peers)
	h.mu.Unlock()

	slog.Info("watcher unregistered", "peer", p.ID(), "total", total)
}

// Publish folds ev into the current state and fans it out to every peer.
// Delivery happens under the lock so that each peer sees events in the
// order they were folded.
func (h *Hub) Publish(ev message.Event) {
	h.mu.Lock()
	h.state.Apply(ev)
	for _, p := range h.peers {
		p.Send(ev)
	}
	h.mu.Unlock()

	LogEvent(ev)
}

// Reset replaces the state wholesale and tells every peer.
func (h *Hub) Reset(st message.State) {
	st = st.Clone()
	h.Publish(message.Event{Kind: message.KindReset, State: &st})
}

// Latest returns a copy of the current state.
func (h *Hub) Latest() message.State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.Clone()
}

// Peers returns the number of registered peers.
func (h *Hub) Peers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}
