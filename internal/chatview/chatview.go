// Package chatview turns a channel's message history into the lines visible
// in a fixed-size, scrollable pane.
package chatview

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/atomicstack/termcord/internal/chat"
)

// chrome is the number of rows of the pane taken by its border.
const chrome = 2

// Format renders one message as a single logical line.
func Format(m chat.Message) string {
	return m.Author + ": " + m.Body
}

// Sanitize makes text received from the backend safe to paint. Escape
// sequences are removed, tabs become spaces, carriage returns are dropped and
// any other control character is replaced with U+FFFD. Newlines are kept.
func Sanitize(s string) string {
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	parts := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "\t", " ")
		part = strings.ReplaceAll(part, "\r", "")
		parts[i] = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) {
				return utf8.RuneError
			}
			return r
		}, ansi.Strip(part))
	}
	return strings.Join(parts, "\n")
}

// SingleLine is Sanitize with newlines folded into spaces.
func SingleLine(s string) string {
	return strings.ReplaceAll(Sanitize(s), "\n", " ")
}

// Wrap sanitizes s and hard-wraps it into segments no wider than width
// terminal cells. It breaks between grapheme clusters, never at word
// boundaries. Embedded newlines start a new segment. A cluster wider than
// width gets a segment to itself.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	s = Sanitize(s)
	var (
		lines []string
		line  strings.Builder
		used  int
	)
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		used = 0
	}

	state := -1
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		if cluster == "\n" {
			flush()
			continue
		}
		w := runewidth.StringWidth(cluster)
		if used > 0 && used+w > width {
			flush()
		}
		line.WriteString(cluster)
		used += w
	}
	flush()
	return lines
}

// Lines formats and wraps every message, oldest first.
func Lines(messages []chat.Message, width int) []string {
	if width <= 0 {
		return nil
	}
	var out []string
	for _, m := range messages {
		out = append(out, Wrap(Format(m), width)...)
	}
	return out
}

// Window returns the half-open range [start, end) of n wrapped lines shown in
// a pane height rows tall when scrolled scroll lines back from the newest.
func Window(n, height, scroll int) (start, end int) {
	visible := height - chrome
	if visible <= 0 || n <= 0 {
		return 0, 0
	}
	if scroll < 0 {
		scroll = 0
	}
	start = clamp(n-(visible+scroll), 0, n)
	end = clamp(n-scroll, 0, n)
	return start, end
}

// Render returns the lines of messages visible in a pane height rows tall
// (border included) and width cells wide, scrolled scroll lines back from the
// newest. At most height-2 lines are returned.
func Render(messages []chat.Message, height, width, scroll int) []string {
	if height <= chrome || width <= 0 {
		return nil
	}
	lines := Lines(messages, width)
	start, end := Window(len(lines), height, scroll)
	if start >= end {
		return nil
	}
	return lines[start:end]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
