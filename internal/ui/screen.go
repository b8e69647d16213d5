package ui

import (
	"sync"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"

	"github.com/atomicstack/termcord/internal/logging/events"
	"github.com/atomicstack/termcord/internal/state"
	"github.com/atomicstack/termcord/internal/theme"
	"github.com/atomicstack/termcord/internal/ui/input"
)

// SizeFunc reports the terminal's current size.
type SizeFunc func() (width, height int, err error)

// Frame is one rendered screen. Seq grows with every paint so stale frames
// can be recognised.
type Frame struct {
	Seq    uint64
	Text   string
	Width  int
	Height int
}

// ScreenOptions configure a Screen.
type ScreenOptions struct {
	// Width and Height pin the screen size when positive.
	Width  int
	Height int
	// Size is queried by Poll to notice resizes.
	Size SizeFunc
	Keys input.KeyMap
}

// Screen owns everything about the terminal that painting depends on. It is
// safe for concurrent use; paint while holding the session lock so the frame
// matches the state it was drawn from.
type Screen struct {
	mu sync.Mutex

	styles *theme.Styles
	keys   input.KeyMap
	help   help.Model
	caret  cursor.Model
	size   SizeFunc

	fixedWidth  bool
	fixedHeight bool
	width       int
	height      int

	// size of the previous frame and the layout computed for it
	lastWidth  int
	lastHeight int
	layout     layout

	seq uint64
}

// NewScreen returns a screen with the default theme.
func NewScreen(opts ScreenOptions) *Screen {
	keys := opts.Keys
	if len(keys.Quit.Keys()) == 0 {
		keys = input.DefaultKeyMap()
	}
	s := &Screen{
		styles: theme.Default(),
		keys:   keys,
		help:   help.New(),
		caret:  newCaret(),
		size:   opts.Size,
	}
	if opts.Width > 0 {
		s.width = opts.Width
		s.fixedWidth = true
	}
	if opts.Height > 0 {
		s.height = opts.Height
		s.fixedHeight = true
	}
	return s
}

// newCaret returns a focused, non-blinking cursor. Frames are painted on
// demand, so a blink tick would have nothing to redraw.
func newCaret() cursor.Model {
	styles := theme.Default()
	c := cursor.New()
	c.Style = styles.Cursor.Copy()
	c.TextStyle = styles.Composer.Copy()
	c.SetMode(cursor.CursorStatic)
	c.Focus()
	c.SetChar(" ")
	return c
}

// Resize records a new terminal size and reports whether it differs from
// the previous one. Pinned dimensions are left alone.
func (s *Screen) Resize(width, height int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resizeLocked(width, height)
}

func (s *Screen) resizeLocked(width, height int) bool {
	changed := false
	if !s.fixedWidth && width != s.width {
		s.width = width
		changed = true
	}
	if !s.fixedHeight && height != s.height {
		s.height = height
		changed = true
	}
	return changed
}

// Poll queries the terminal size and reports whether it changed since the
// last recorded size.
func (s *Screen) Poll() bool {
	if s.size == nil {
		return false
	}
	width, height, err := s.size()
	if err != nil || width <= 0 || height <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resizeLocked(width, height)
}

// Size returns the size the next frame will be painted at.
func (s *Screen) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Paint renders sess. The layout is recomputed only when the size differs
// from the previous frame's.
func (s *Screen) Paint(sess *state.Session) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	frame := Frame{Seq: s.seq, Width: s.width, Height: s.height}
	if s.width <= 0 || s.height <= 0 {
		return frame
	}
	if s.width != s.lastWidth || s.height != s.lastHeight {
		s.layout = computeLayout(s.width, s.height)
		s.lastWidth, s.lastHeight = s.width, s.height
		s.help.Width = s.layout.mainWidth
		events.Render.Relayout(s.width, s.height)
	}
	frame.Text = s.render(sess)
	return frame
}
