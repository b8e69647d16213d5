package dispatcher

import (
	"github.com/atomicstack/termcord/internal/backend"
	"github.com/atomicstack/termcord/internal/logging/events"
	"github.com/atomicstack/termcord/internal/state"
)

// Result reports what an event changed and which commands it calls for.
type Result struct {
	ServersUpdated  bool
	ChannelsUpdated bool
	MessageStored   bool
	MessageDropped  bool
	Echoed          bool
	LoggedOut       bool

	// Commands must be posted to the bridge after the session lock is
	// released.
	Commands []backend.Command
}

// Dispatcher applies bridge events to a session.
type Dispatcher struct{}

func New() *Dispatcher {
	return &Dispatcher{}
}

// Handle applies evt to s. The caller must hold exclusive access to s.
func (d *Dispatcher) Handle(s *state.Session, evt backend.Event) Result {
	var res Result
	switch e := evt.(type) {
	case backend.ServerList:
		res.Commands = s.SetServers(e.Servers)
		res.ServersUpdated = true
		active := ""
		if srv := s.CurrentServer(); srv != nil {
			active = srv.Info.Name
		}
		events.Session.ServersSet(len(s.Servers), active)
	case backend.ChannelList:
		if s.SetChannels(e.ServerID, e.Channels) {
			res.ChannelsUpdated = true
			events.Session.ChannelsSet(string(e.ServerID), len(e.Channels))
		} else {
			events.Session.ChannelsOrphaned(string(e.ServerID))
		}
	case backend.MessageArrived:
		msg := e.Message
		if s.StoreMessage(msg) {
			res.MessageStored = true
			events.Session.MessageStored(string(msg.ChannelID), msg.ID)
		} else {
			res.MessageDropped = true
			events.Session.MessageDropped(string(msg.ChannelID), msg.ID)
			s.Log("dropped message from %s for unknown channel %s", msg.Author, msg.ChannelID)
		}
	case backend.EchoReply:
		s.Log("echo: %s", e.Text)
		res.Echoed = true
	case backend.LogoutAcknowledged:
		s.Log("logged out")
		res.LoggedOut = true
	}
	return res
}
