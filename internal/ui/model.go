package ui

import (
	"reflect"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/termcord/internal/backend"
	"github.com/atomicstack/termcord/internal/logging"
	"github.com/atomicstack/termcord/internal/logging/events"
	"github.com/atomicstack/termcord/internal/state"
	"github.com/atomicstack/termcord/internal/ui/command"
	"github.com/atomicstack/termcord/internal/ui/input"
)

// DefaultShutdownTimeout bounds the wait for the backend to acknowledge a
// logout.
const DefaultShutdownTimeout = 3 * time.Second

type msgHandler func(tea.Msg) tea.Cmd

// frameMsg carries a frame painted outside the update loop.
type frameMsg struct {
	frame Frame
}

// logoutAckMsg tells the model the backend acknowledged the logout.
type logoutAckMsg struct{}

// backendClosedMsg tells the model the event stream ended without an ack.
type backendClosedMsg struct{}

type shutdownTimeoutMsg struct {
	waited time.Duration
}

// Options configure a Model.
type Options struct {
	ShutdownTimeout time.Duration
	Keys            input.KeyMap
}

// Model implements tea.Model. It owns no chat state: keys are applied to the
// shared store and the view is whichever frame was painted last.
type Model struct {
	store  *state.Store
	screen *Screen
	bus    *command.Bus
	input  *input.Dispatcher

	frame           Frame
	exiting         bool
	quitting        bool
	shutdownTimeout time.Duration

	handlers map[reflect.Type]msgHandler
}

// NewModel wires a model to the shared store and screen. Commands produced
// by key presses are posted through bus.
func NewModel(store *state.Store, screen *Screen, bus *command.Bus, opts Options) *Model {
	keys := opts.Keys
	if len(keys.Quit.Keys()) == 0 {
		keys = input.DefaultKeyMap()
	}
	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	m := &Model{
		store:           store,
		screen:          screen,
		bus:             bus,
		input:           input.New(keys),
		shutdownTimeout: timeout,
	}
	m.registerHandlers()
	return m
}

// Init asks the backend for the server list and paints the first frame.
func (m *Model) Init() tea.Cmd {
	m.bus.Dispatch(backend.ListServers{})
	m.repaint()
	return nil
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

// View returns the most recent frame.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	return m.frame.Text
}

// Exiting reports whether a logout is in flight.
func (m *Model) Exiting() bool {
	return m.exiting
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):         m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):  m.handleWindowSizeMsg,
		reflect.TypeOf(frameMsg{}):           m.handleFrameMsg,
		reflect.TypeOf(logoutAckMsg{}):       m.handleLogoutAckMsg,
		reflect.TypeOf(backendClosedMsg{}):   m.handleBackendClosedMsg,
		reflect.TypeOf(shutdownTimeoutMsg{}): m.handleShutdownTimeoutMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	var out input.Outcome
	var frame Frame
	if err := m.store.Do(func(s *state.Session) {
		out = m.input.Handle(s, key)
		frame = m.screen.Paint(s)
	}); err != nil {
		return nil
	}
	m.bus.Dispatch(out.Commands...)
	m.accept(frame)

	switch {
	case out.ForceQuit:
		events.App.Stop("forced")
		return m.quit()
	case out.Exiting:
		m.exiting = true
		timeout := m.shutdownTimeout
		return tea.Tick(timeout, func(time.Time) tea.Msg {
			return shutdownTimeoutMsg{waited: timeout}
		})
	}
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if m.screen.Resize(size.Width, size.Height) {
		m.repaint()
	}
	return nil
}

func (m *Model) handleFrameMsg(msg tea.Msg) tea.Cmd {
	if fm, ok := msg.(frameMsg); ok {
		m.accept(fm.frame)
	}
	return nil
}

func (m *Model) handleLogoutAckMsg(tea.Msg) tea.Cmd {
	events.App.Stop("logout acknowledged")
	return m.quit()
}

func (m *Model) handleShutdownTimeoutMsg(msg tea.Msg) tea.Cmd {
	if m.quitting {
		return nil
	}
	waited := m.shutdownTimeout
	if tm, ok := msg.(shutdownTimeoutMsg); ok {
		waited = tm.waited
	}
	logging.Warn("logout not acknowledged, exiting anyway")
	events.App.ShutdownTimeout(waited.String())
	return m.quit()
}

func (m *Model) handleBackendClosedMsg(tea.Msg) tea.Cmd {
	if m.exiting {
		events.App.Stop("backend closed")
		return m.quit()
	}
	logging.Warn("backend connection closed")
	var frame Frame
	_ = m.store.Do(func(s *state.Session) {
		s.Log("backend connection closed")
		frame = m.screen.Paint(s)
	})
	m.accept(frame)
	return nil
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	return tea.Quit
}

func (m *Model) repaint() {
	var frame Frame
	if err := m.store.Do(func(s *state.Session) {
		frame = m.screen.Paint(s)
	}); err != nil {
		return
	}
	m.accept(frame)
}

// accept keeps f unless a newer frame has already been shown.
func (m *Model) accept(f Frame) {
	if f.Seq >= m.frame.Seq {
		m.frame = f
	}
}
