package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
)

const labelCacheSize = 512

// truncate shortens s to max runes, replacing the tail with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

// markBoundaryWhitespace replaces leading and trailing whitespace runs with
// visible markers: ␣ per space, ⇥ per tab, ↵ per newline. mark styles each
// run of markers.
func markBoundaryWhitespace(s string, mark func(string) string) string {
	body := strings.TrimFunc(s, unicode.IsSpace)
	if body == "" {
		return markRun(s, mark)
	}
	start := strings.Index(s, body)
	lead, trail := s[:start], s[start+len(body):]
	return markRun(lead, mark) + body + markRun(trail, mark)
}

func markRun(ws string, mark func(string) string) string {
	var out, run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			out.WriteString(mark(run.String()))
			run.Reset()
		}
	}
	for _, r := range ws {
		switch r {
		case ' ':
			run.WriteString("␣")
		case '\t':
			run.WriteString("⇥")
		case '\n':
			run.WriteString("↵")
		default:
			flush()
			out.WriteRune(r)
		}
	}
	flush()
	return out.String()
}

// shrinkWhitespace collapses every remaining whitespace run to one space.
func shrinkWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// formatLabel renders one menu line: truncate to max, mark the boundary
// whitespace, then collapse interior whitespace.
func formatLabel(text string, max int, mark func(string) string) string {
	return shrinkWhitespace(markBoundaryWhitespace(truncate(text, max), mark))
}

// Label renders text as a single unstyled line of at most max runes, the way
// the menu shows it.
func Label(text string, max int) string {
	return formatLabel(text, max, func(s string) string { return s })
}

type labelKey struct {
	text  string
	width int
}

// labeler caches formatted labels; history entries are re-rendered on every
// frame and can be long.
type labeler struct {
	cache *lru.Cache[labelKey, string]
	mark  func(string) string
}

func newLabeler() *labeler {
	cache, _ := lru.New[labelKey, string](labelCacheSize)
	return &labeler{
		cache: cache,
		mark:  func(s string) string { return markerStyle.Render(s) },
	}
}

func (l *labeler) label(text string, width int) string {
	k := labelKey{text: text, width: width}
	if s, ok := l.cache.Get(k); ok {
		return s
	}
	s := formatLabel(text, width, l.mark)
	l.cache.Add(k, s)
	return s
}
