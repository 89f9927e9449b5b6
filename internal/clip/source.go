package clip

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"slices"
	"strings"
)

// DefaultSensitiveTypes are the type markers password managers attach to
// secrets they place on the clipboard.
var DefaultSensitiveTypes = []string{
	"x-kde-passwordManagerHint",
	"org.nspasteboard.ConcealedType",
	"ExcludeClipboardContentFromMonitorProcessing",
}

// Source is the text view of a Backend used by the history. It skips reads
// entirely when the selection carries a sensitive type marker.
type Source struct {
	b         Backend
	sensitive []string
}

// sensitiveAware is implemented by backends whose change detection reads the
// selection; they use the list to avoid reading sensitive content.
type sensitiveAware interface {
	SetSensitiveTypes(types []string)
}

// NewSource wraps b. A nil sensitive list means DefaultSensitiveTypes.
func NewSource(b Backend, sensitive []string) *Source {
	if sensitive == nil {
		sensitive = DefaultSensitiveTypes
	}
	if sa, ok := b.(sensitiveAware); ok {
		sa.SetSensitiveTypes(sensitive)
	}
	return &Source{b: b, sensitive: sensitive}
}

// sensitiveType returns the first of types found in sensitive.
func sensitiveType(types, sensitive []string) (string, bool) {
	for _, t := range types {
		if slices.Contains(sensitive, t) {
			return t, true
		}
	}
	return "", false
}

// selectionDigest fingerprints the selection for change detection. When the
// type list marks the selection sensitive, only the type list is hashed and
// read is not called.
func selectionDigest(types, sensitive []string, read func() []byte) [sha256.Size]byte {
	if _, ok := sensitiveType(types, sensitive); ok {
		return sha256.Sum256([]byte("types\x00" + strings.Join(types, "\x00")))
	}
	return sha256.Sum256(read())
}

// Name returns the backend name.
func (s *Source) Name() string { return s.b.Name() }

// Changed signals clipboard ownership changes. Each receive should be
// followed by exactly one ReadText.
func (s *Source) Changed() <-chan struct{} { return s.b.Watch() }

// ReadText returns the clipboard text. ok is false when there is no text,
// when the backend fails, or when the selection is marked sensitive.
func (s *Source) ReadText(ctx context.Context) (text string, ok bool) {
	if ctx.Err() != nil {
		return "", false
	}
	types, err := s.b.Types()
	if err != nil {
		slog.Debug("clipboard types unavailable", "err", err)
	}
	if t, ok := sensitiveType(types, s.sensitive); ok {
		slog.Debug("clipboard content marked sensitive, skipping", "type", t)
		return "", false
	}

	data, err := s.b.ReadText()
	if err != nil {
		slog.Warn("clipboard read failed", "err", err)
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// WriteText replaces the clipboard text.
func (s *Source) WriteText(text string) error { return s.b.WriteText(text) }

// Clear empties the clipboard with an explicit empty payload.
func (s *Source) Clear() error { return s.b.Clear() }
