package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/termcord/internal/backend"
	"github.com/atomicstack/termcord/internal/data/dispatcher"
	"github.com/atomicstack/termcord/internal/logging"
	"github.com/atomicstack/termcord/internal/state"
	"github.com/atomicstack/termcord/internal/ui/command"
)

// DefaultPollInterval is how long the event loop waits for a backend event
// before checking the terminal size.
const DefaultPollInterval = 25 * time.Millisecond

// EventSource publishes backend events. The channel closes when the backend
// stops.
type EventSource interface {
	Events() <-chan backend.Event
}

// EventLoop applies backend events to the shared session and hands the
// resulting frames to the program.
type EventLoop struct {
	store      *state.Store
	screen     *Screen
	source     EventSource
	bus        *command.Bus
	dispatcher *dispatcher.Dispatcher
	send       func(tea.Msg)
	poll       time.Duration
}

// NewEventLoop builds a loop. send is normally tea.Program.Send.
func NewEventLoop(store *state.Store, screen *Screen, source EventSource, bus *command.Bus, send func(tea.Msg), poll time.Duration) *EventLoop {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	if send == nil {
		send = func(tea.Msg) {}
	}
	return &EventLoop{
		store:      store,
		screen:     screen,
		source:     source,
		bus:        bus,
		dispatcher: dispatcher.New(),
		send:       send,
		poll:       poll,
	}
}

// Run blocks until the backend acknowledges a logout, the event channel
// closes, or ctx is cancelled.
func (l *EventLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	evts := l.source.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-evts:
			if !ok {
				l.send(backendClosedMsg{})
				return nil
			}
			if l.apply(evt) {
				l.send(logoutAckMsg{})
				return nil
			}
		case <-ticker.C:
			if l.screen.Poll() {
				l.repaint()
			}
		}
	}
}

// apply runs one event through the dispatcher and reports whether it was
// the logout acknowledgement.
func (l *EventLoop) apply(evt backend.Event) bool {
	var res dispatcher.Result
	var frame Frame
	if err := l.store.Do(func(s *state.Session) {
		res = l.dispatcher.Handle(s, evt)
		frame = l.screen.Paint(s)
	}); err != nil {
		logging.Error(err)
		return false
	}
	l.bus.Dispatch(res.Commands...)
	l.send(frameMsg{frame: frame})
	return res.LoggedOut
}

func (l *EventLoop) repaint() {
	var frame Frame
	if err := l.store.Do(func(s *state.Session) {
		frame = l.screen.Paint(s)
	}); err != nil {
		return
	}
	l.send(frameMsg{frame: frame})
}
