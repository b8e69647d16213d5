package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/atomicstack/termcord/internal/chat"
	"github.com/atomicstack/termcord/internal/chatview"
	"github.com/atomicstack/termcord/internal/format/table"
	"github.com/atomicstack/termcord/internal/state"
)

const (
	minSidebarWidth = 16
	maxSidebarWidth = 28

	// below this width the sidebar is dropped
	sidebarCutoff = 48

	// composer line and footer
	bottomRows = 2

	transcriptAuthor = "*"
)

type layout struct {
	sidebarWidth int
	mainWidth    int
	paneHeight   int
}

func computeLayout(width, height int) layout {
	var l layout
	if width >= sidebarCutoff {
		l.sidebarWidth = width / 4
		if l.sidebarWidth < minSidebarWidth {
			l.sidebarWidth = minSidebarWidth
		}
		if l.sidebarWidth > maxSidebarWidth {
			l.sidebarWidth = maxSidebarWidth
		}
	}
	l.mainWidth = width - l.sidebarWidth
	l.paneHeight = height - bottomRows
	if l.paneHeight < 0 {
		l.paneHeight = 0
	}
	return l
}

func (s *Screen) render(sess *state.Session) string {
	main := lipgloss.JoinVertical(lipgloss.Left, s.renderPane(sess), s.renderComposerLine(sess))
	body := main
	if s.layout.sidebarWidth > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, s.renderSidebar(sess), main)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, s.renderFooter(sess))
}

// paneMessages returns what the message pane shows: the selected channel's
// history, or the transcript when no channel is selected.
func paneMessages(sess *state.Session) ([]chat.Message, bool) {
	if ch := sess.CurrentChannel(); ch != nil {
		return ch.Messages, false
	}
	msgs := make([]chat.Message, len(sess.Transcript))
	for i, line := range sess.Transcript {
		msgs[i] = chat.Message{Author: transcriptAuthor, Body: line.Text, Sent: line.At}
	}
	return msgs, true
}

func (s *Screen) renderPane(sess *state.Session) string {
	height := s.layout.paneHeight
	innerWidth := s.layout.mainWidth - 2
	innerHeight := height - 2
	if innerWidth <= 0 || innerHeight <= 0 {
		return strings.Repeat("\n", max(height-1, 0))
	}

	msgs, fallback := paneMessages(sess)
	lines := chatview.Render(msgs, height, innerWidth, sess.ScrollOffset)
	textStyle := s.styles.Message
	if fallback {
		textStyle = s.styles.Transcript
	}
	// Newest line sits just above the composer.
	rows := make([]string, innerHeight)
	offset := innerHeight - len(lines)
	for i, line := range lines {
		rows[offset+i] = textStyle.Render(line)
	}

	box := s.styles.Pane
	if sess.Mode() == state.ModeTextInput {
		box = s.styles.PaneFocused
	}
	return box.Width(innerWidth).Height(innerHeight).Render(strings.Join(rows, "\n"))
}

func (s *Screen) renderComposerLine(sess *state.Session) string {
	width := s.layout.mainWidth
	switch sess.Mode() {
	case state.ModeTextInput:
		prompt := s.styles.ComposerPrompt.Render("> ")
		if sess.UnderlyingMode() == state.ModeCommand {
			prompt = s.styles.CommandPrompt.Render(": ")
		}
		return prompt + s.composerText(&sess.Composer, width-lipgloss.Width(prompt))
	case state.ModeExiting:
		return s.styles.Transcript.Render(truncate.StringWithTail("logging out…", uint(width), "…"))
	default:
		return truncate.StringWithTail(s.help.ShortHelpView(s.keys.Help(sess.Mode())), uint(width), "…")
	}
}

// composerText renders the buffer with a block caret, scrolled horizontally
// so the caret stays within avail cells.
func (s *Screen) composerText(c *state.Composer, avail int) string {
	if avail <= 1 {
		return ""
	}
	runes := []rune(c.Text())
	pos := c.Cursor()
	start := 0
	for start < pos && runewidth.StringWidth(string(runes[start:pos]))+1 > avail {
		start++
	}
	before := string(runes[start:pos])
	caret := " "
	after := ""
	if pos < len(runes) {
		caret = string(runes[pos])
		after = string(runes[pos+1:])
	}
	rest := avail - runewidth.StringWidth(before) - runewidth.StringWidth(caret)
	after = runewidth.Truncate(after, max(rest, 0), "")
	s.caret.SetChar(caret)
	return s.styles.Composer.Render(before) + s.caret.View() + s.styles.Composer.Render(after)
}

func (s *Screen) renderSidebar(sess *state.Session) string {
	width := s.layout.sidebarWidth
	height := s.layout.paneHeight + 1
	inner := width - 1
	mode := sess.Mode()

	lines := []string{s.styles.SidebarHeader.Render(truncate.StringWithTail("Servers", uint(inner), "…"))}
	if len(sess.Servers) == 0 {
		lines = append(lines, s.styles.SidebarEmpty.Render(truncate.StringWithTail("connecting…", uint(inner), "…")))
	} else {
		rows := make([][]string, len(sess.Servers))
		for i, srv := range sess.Servers {
			rows[i] = []string{marker(i == sess.ActiveServer), chatview.SingleLine(srv.Info.Name)}
		}
		for i, row := range table.Fit(rows, nil, 1, inner) {
			lines = append(lines, s.sidebarRow(row, i == sess.ActiveServer, mode == state.ModeServerSelect))
		}
	}

	lines = append(lines, "", s.styles.SidebarHeader.Render(truncate.StringWithTail("Channels", uint(inner), "…")))
	srv := sess.CurrentServer()
	switch {
	case srv == nil:
	case len(srv.Channels) == 0:
		lines = append(lines, s.styles.SidebarEmpty.Render(truncate.StringWithTail("no channels", uint(inner), "…")))
	default:
		rows := make([][]string, len(srv.Channels))
		for i, ch := range srv.Channels {
			count := ""
			if n := len(ch.Messages); n > 0 {
				count = strconv.Itoa(n)
			}
			rows[i] = []string{marker(i == srv.ActiveChannel), ch.Info.Kind.Glyph() + chatview.SingleLine(ch.Info.Name), count}
		}
		aligns := []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignRight}
		for i, row := range table.Fit(rows, aligns, 1, inner) {
			lines = append(lines, s.sidebarRow(row, i == srv.ActiveChannel, mode == state.ModeChannelSelect))
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (s *Screen) sidebarRow(row string, active, focused bool) string {
	switch {
	case active && focused:
		return s.styles.SidebarFocused.Render(row)
	case active:
		return s.styles.SidebarActive.Render(row)
	default:
		return s.styles.SidebarItem.Render(row)
	}
}

func marker(active bool) string {
	if active {
		return "▸"
	}
	return " "
}

func (s *Screen) renderFooter(sess *state.Session) string {
	width := s.width
	mode := sess.Mode()
	badgeStyle := s.styles.FooterMode
	if mode == state.ModeExiting {
		badgeStyle = s.styles.FooterExiting
	}
	parts := []string{badgeStyle.Render(" " + strings.ToUpper(mode.String()) + " ")}

	if srv := sess.CurrentServer(); srv != nil {
		location := chatview.SingleLine(srv.Info.Name)
		if ch := srv.CurrentChannel(); ch != nil {
			location += " › " + ch.Info.Kind.Glyph() + chatview.SingleLine(ch.Info.Name)
		}
		parts = append(parts, s.styles.Footer.Render(" "+location))
	}
	if sess.ScrollOffset > 0 {
		parts = append(parts, s.styles.FooterScrolled.Render(fmt.Sprintf(" ↑%d", sess.ScrollOffset)))
	}
	if n := len(sess.Transcript); n > 0 {
		parts = append(parts, s.styles.FooterTranscript.Render("  "+chatview.SingleLine(sess.Transcript[n-1].Text)))
	}

	line := truncate.StringWithTail(strings.Join(parts, ""), uint(width), "…")
	if pad := width - lipgloss.Width(line); pad > 0 {
		line += s.styles.Footer.Render(strings.Repeat(" ", pad))
	}
	return line
}
