package hub

import (
	"context"
	"log/slog"

	"go.klb.dev/clipmini/internal/logging"
	"go.klb.dev/clipmini/internal/message"
)

// LogEvent logs a history event at DEBUG, with a text preview for events
// that carry text.
func LogEvent(ev message.Event) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	switch ev.Kind {
	case message.KindAdded, message.KindMoved:
		slog.Debug("history event", "kind", ev.Kind, "index", ev.Index, "preview", logging.Preview(ev.Text))
	case message.KindReset:
		n := 0
		if ev.State != nil {
			n = len(ev.State.Entries)
		}
		slog.Debug("history event", "kind", ev.Kind, "entries", n)
	default:
		slog.Debug("history event", "kind", ev.Kind, "index", ev.Index)
	}
}
