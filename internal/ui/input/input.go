// Package input maps key presses onto session mutations and backend
// commands according to the active mode.
package input

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/termcord/internal/backend"
	"github.com/atomicstack/termcord/internal/logging/events"
	"github.com/atomicstack/termcord/internal/state"
)

// ScrollStep is the number of lines one scroll key moves the viewport.
const ScrollStep = 5

// Outcome is what handling one key produced.
type Outcome struct {
	// Commands are to be posted to the backend, in order, once the session
	// lock is released.
	Commands []backend.Command
	// Handled is false when the key is not bound in the active mode.
	Handled bool
	// Exiting is set on the key that moved the session into ModeExiting.
	Exiting bool
	// ForceQuit asks for an immediate exit without waiting for the backend.
	ForceQuit bool
}

// Dispatcher interprets keys against a session.
type Dispatcher struct {
	keys KeyMap
}

// New returns a dispatcher using keys.
func New(keys KeyMap) *Dispatcher {
	return &Dispatcher{keys: keys}
}

// Keys returns the dispatcher's bindings.
func (d *Dispatcher) Keys() KeyMap {
	return d.keys
}

// Handle applies msg to s. The caller must hold exclusive access to s.
func (d *Dispatcher) Handle(s *state.Session, msg tea.KeyMsg) Outcome {
	mode := s.Mode()
	if key.Matches(msg, d.keys.Quit) {
		if mode == state.ModeExiting {
			return Outcome{Handled: true, ForceQuit: true}
		}
		return d.exit(s)
	}

	var out Outcome
	switch mode {
	case state.ModeNormal:
		out = d.handleNormal(s, msg)
	case state.ModeTextInput:
		out = d.handleTextInput(s, msg)
	case state.ModeServerSelect, state.ModeChannelSelect:
		out = d.handleSelect(s, msg)
	case state.ModeCommand:
		out = d.handleCommandMode(s, msg)
	case state.ModeExiting:
		return Outcome{Handled: true}
	}
	if !out.Handled {
		events.Mode.UnboundKey(mode.String(), msg.String())
		s.Log("unbound key %q in %s mode", msg.String(), mode)
	}
	return out
}

func push(s *state.Session, m state.Mode) {
	from := s.Mode()
	s.SwitchMode(m)
	events.Mode.Push(from.String(), m.String(), s.ModeDepth())
}

func pop(s *state.Session) state.Mode {
	from := s.Mode()
	to := s.PrevMode()
	events.Mode.Pop(from.String(), to.String(), s.ModeDepth())
	return to
}

func (d *Dispatcher) exit(s *state.Session) Outcome {
	s.Composer.Reset()
	push(s, state.ModeExiting)
	return Outcome{
		Commands: []backend.Command{backend.Logout{}},
		Handled:  true,
		Exiting:  true,
	}
}

func (d *Dispatcher) handleNormal(s *state.Session, msg tea.KeyMsg) Outcome {
	switch {
	case key.Matches(msg, d.keys.Compose):
		push(s, state.ModeTextInput)
	case key.Matches(msg, d.keys.Command):
		push(s, state.ModeCommand)
		push(s, state.ModeTextInput)
	case key.Matches(msg, d.keys.Servers):
		push(s, state.ModeServerSelect)
	case key.Matches(msg, d.keys.Channels):
		push(s, state.ModeChannelSelect)
	case key.Matches(msg, d.keys.ScrollUp):
		s.ScrollUp(ScrollStep)
	case key.Matches(msg, d.keys.ScrollDown):
		s.ScrollDown(ScrollStep)
	default:
		return Outcome{}
	}
	return Outcome{Handled: true}
}

func (d *Dispatcher) handleSelect(s *state.Session, msg tea.KeyMsg) Outcome {
	servers := s.Mode() == state.ModeServerSelect
	switch {
	case key.Matches(msg, d.keys.Next):
		if servers {
			s.NextServer()
		} else {
			s.NextChannel()
		}
	case key.Matches(msg, d.keys.Prev):
		if servers {
			s.PrevServer()
		} else {
			s.PrevChannel()
		}
	case key.Matches(msg, d.keys.Swap):
		from := s.Mode()
		to := state.ModeServerSelect
		if servers {
			to = state.ModeChannelSelect
		}
		s.ReplaceMode(to)
		events.Mode.Swap(from.String(), to.String())
	case key.Matches(msg, d.keys.Cancel), key.Matches(msg, d.keys.Confirm):
		pop(s)
	default:
		return Outcome{}
	}
	return Outcome{Handled: true}
}

func (d *Dispatcher) handleCommandMode(s *state.Session, msg tea.KeyMsg) Outcome {
	switch {
	case key.Matches(msg, d.keys.CommandQuit):
		return d.exit(s)
	case key.Matches(msg, d.keys.Cancel):
		pop(s)
	case key.Matches(msg, d.keys.Reenter):
		push(s, state.ModeTextInput)
	default:
		return Outcome{}
	}
	return Outcome{Handled: true}
}

func (d *Dispatcher) handleTextInput(s *state.Session, msg tea.KeyMsg) Outcome {
	c := &s.Composer
	switch {
	case key.Matches(msg, d.keys.Submit):
		return d.submit(s)
	case key.Matches(msg, d.keys.Cancel):
		c.Reset()
		if pop(s) == state.ModeCommand {
			pop(s)
		}
		return Outcome{Handled: true}
	case key.Matches(msg, d.keys.Backspace):
		edited(c, "backspace", c.DeleteBackward())
		return Outcome{Handled: true}
	case key.Matches(msg, d.keys.DeleteWord):
		edited(c, "word-backspace", c.DeleteWordBackward())
		return Outcome{Handled: true}
	case key.Matches(msg, d.keys.Left):
		edited(c, "cursor", c.MoveLeft())
		return Outcome{Handled: true}
	case key.Matches(msg, d.keys.Right):
		edited(c, "cursor", c.MoveRight())
		return Outcome{Handled: true}
	case key.Matches(msg, d.keys.WordLeft):
		edited(c, "cursor-word", c.MoveWordBackward())
		return Outcome{Handled: true}
	case key.Matches(msg, d.keys.WordRight):
		edited(c, "cursor-word", c.MoveWordForward())
		return Outcome{Handled: true}
	case key.Matches(msg, d.keys.Home):
		edited(c, "cursor", c.MoveStart())
		return Outcome{Handled: true}
	case key.Matches(msg, d.keys.End):
		edited(c, "cursor", c.MoveEnd())
		return Outcome{Handled: true}
	}

	switch msg.Type {
	case tea.KeyRunes:
		if msg.Alt {
			return Outcome{}
		}
		text := printable(msg.Runes)
		if text == "" {
			return Outcome{}
		}
		edited(c, "insert", c.Insert(text))
		return Outcome{Handled: true}
	case tea.KeySpace:
		edited(c, "insert", c.Insert(" "))
		return Outcome{Handled: true}
	}
	return Outcome{}
}

func edited(c *state.Composer, op string, changed bool) {
	if changed {
		events.Composer.Edit(op, c.Len(), c.Cursor())
	}
}

// printable drops control characters, folding newlines and tabs from pastes
// into spaces.
func printable(runes []rune) string {
	var b strings.Builder
	for _, r := range runes {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// submit commits the composer to whatever the text-entry level was opened
// for: a chat message from normal mode, a command line from command mode.
func (d *Dispatcher) submit(s *state.Session) Outcome {
	text := s.Composer.Text()
	if pop(s) == state.ModeCommand {
		s.Composer.Reset()
		return d.runCommand(s, text)
	}
	return d.send(s, text)
}

func (d *Dispatcher) send(s *state.Session, text string) Outcome {
	if strings.TrimSpace(text) == "" {
		s.Composer.Reset()
		return Outcome{Handled: true}
	}
	ch := s.CurrentChannel()
	if ch == nil {
		s.Log("no channel selected; message kept in the composer")
		return Outcome{Handled: true}
	}
	s.Composer.Reset()
	s.ResetScroll()
	events.Composer.Submit(string(ch.Info.ID), len([]rune(text)))
	return Outcome{
		Commands: []backend.Command{backend.SendMessage{ChannelID: ch.Info.ID, Text: text}},
		Handled:  true,
	}
}

// runCommand executes line while s is in ModeCommand.
func (d *Dispatcher) runCommand(s *state.Session, line string) Outcome {
	line = strings.TrimSpace(line)
	events.Command.Execute(line)
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "":
		pop(s)
		return Outcome{Handled: true}
	case "q", "quit":
		return d.exit(s)
	case "join", "j":
		if !s.SelectChannelByName(arg) {
			s.Log("no channel matches %q", arg)
		}
		pop(s)
		return Outcome{Handled: true}
	case "server":
		if !s.SelectServerByName(arg) {
			s.Log("no server matches %q", arg)
		}
		pop(s)
		return Outcome{Handled: true}
	}
	pop(s)
	return Outcome{
		Commands: []backend.Command{backend.Echo{Text: line}},
		Handled:  true,
	}
}
