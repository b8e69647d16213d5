package command

import (
	"sync"

	"github.com/atomicstack/termcord/internal/backend"
	"github.com/atomicstack/termcord/internal/logging/events"
)

// Mailbox accepts commands for the backend without blocking.
type Mailbox interface {
	Post(backend.Command)
}

// Bus delivers outbound commands to the backend mailbox in order.
type Bus struct {
	mailbox Mailbox
}

// New initialises a command bus. A nil mailbox drops every command.
func New(mailbox Mailbox) *Bus {
	return &Bus{mailbox: mailbox}
}

// Dispatch posts cmds in order while emitting trace logs. Call it after
// releasing the session lock.
func (b *Bus) Dispatch(cmds ...backend.Command) {
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		if b == nil || b.mailbox == nil {
			events.Command.Skip(cmd.Name())
			continue
		}
		events.Command.Queue(cmd.Name())
		b.mailbox.Post(cmd)
	}
}

// Recorder is a Mailbox that keeps every posted command.
type Recorder struct {
	mu   sync.Mutex
	cmds []backend.Command
}

func (r *Recorder) Post(cmd backend.Command) {
	r.mu.Lock()
	r.cmds = append(r.cmds, cmd)
	r.mu.Unlock()
}

// Commands returns a copy of the posted commands.
func (r *Recorder) Commands() []backend.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]backend.Command(nil), r.cmds...)
}

// Reset forgets every posted command.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.cmds = nil
	r.mu.Unlock()
}
