package state

import (
	"fmt"
	"time"

	"github.com/atomicstack/termcord/internal/backend"
	"github.com/atomicstack/termcord/internal/chat"
)

// Channel is one channel and the messages received for it this session.
type Channel struct {
	Info     chat.ChannelInfo
	Messages []chat.Message
}

// Server is one server, its channels and the channel selection within it.
// ActiveChannel is 0 when there are no channels.
type Server struct {
	Info          chat.ServerInfo
	Channels      []*Channel
	ActiveChannel int
}

// SystemMessage is a line of the diagnostic transcript.
type SystemMessage struct {
	Text string
	At   time.Time
}

// Session is the whole client-side state. It is not safe for concurrent
// use; share it through a Store.
type Session struct {
	Servers      []*Server
	ActiveServer int
	Composer     Composer
	ScrollOffset int
	Transcript   []SystemMessage
	// HistoryLimit caps each channel's message history. Zero keeps
	// everything.
	HistoryLimit int

	modes ModeStack
	now   func() time.Time
}

// NewSession returns an empty session in ModeNormal.
func NewSession() *Session {
	return &Session{now: time.Now}
}

// Mode returns the active mode.
func (s *Session) Mode() Mode {
	return s.modes.Current()
}

// ModeDepth returns the number of modes waiting on the stack.
func (s *Session) ModeDepth() int {
	return s.modes.Depth()
}

// SwitchMode pushes the active mode and makes m active.
func (s *Session) SwitchMode(m Mode) {
	s.modes.Push(m)
}

// PrevMode pops back to the previous mode and returns it.
func (s *Session) PrevMode() Mode {
	return s.modes.Pop()
}

// UnderlyingMode returns the mode PrevMode would return to.
func (s *Session) UnderlyingMode() Mode {
	return s.modes.Peek()
}

// ReplaceMode swaps the active mode in place.
func (s *Session) ReplaceMode(m Mode) {
	s.modes.Replace(m)
}

// CurrentServer returns the selected server, or nil when there are none.
func (s *Session) CurrentServer() *Server {
	if s.ActiveServer < 0 || s.ActiveServer >= len(s.Servers) {
		return nil
	}
	return s.Servers[s.ActiveServer]
}

// CurrentChannel returns the selected channel of the selected server, or
// nil.
func (s *Session) CurrentChannel() *Channel {
	srv := s.CurrentServer()
	if srv == nil {
		return nil
	}
	return srv.CurrentChannel()
}

// CurrentChannel returns the selected channel, or nil.
func (srv *Server) CurrentChannel() *Channel {
	if srv.ActiveChannel < 0 || srv.ActiveChannel >= len(srv.Channels) {
		return nil
	}
	return srv.Channels[srv.ActiveChannel]
}

func (s *Session) NextServer() {
	if n := len(s.Servers); n > 0 {
		s.ActiveServer = (s.ActiveServer + 1) % n
		s.ScrollOffset = 0
	}
}

func (s *Session) PrevServer() {
	if n := len(s.Servers); n > 0 {
		s.ActiveServer = (s.ActiveServer - 1 + n) % n
		s.ScrollOffset = 0
	}
}

func (s *Session) NextChannel() {
	srv := s.CurrentServer()
	if srv == nil {
		return
	}
	if n := len(srv.Channels); n > 0 {
		srv.ActiveChannel = (srv.ActiveChannel + 1) % n
		s.ScrollOffset = 0
	} else {
		srv.ActiveChannel = 0
	}
}

func (s *Session) PrevChannel() {
	srv := s.CurrentServer()
	if srv == nil {
		return
	}
	if n := len(srv.Channels); n > 0 {
		srv.ActiveChannel = (srv.ActiveChannel - 1 + n) % n
		s.ScrollOffset = 0
	} else {
		srv.ActiveChannel = 0
	}
}

// SetServers replaces the server list with list in reverse order and returns
// one ListChannels command per server, in the order list was received. Servers that were already known keep
// their channels and messages, and the selection follows the previously
// selected server when it is still present.
func (s *Session) SetServers(list []chat.ServerInfo) []backend.Command {
	var activeID chat.ServerID
	hadActive := false
	if cur := s.CurrentServer(); cur != nil {
		activeID, hadActive = cur.Info.ID, true
	}
	known := make(map[chat.ServerID]*Server, len(s.Servers))
	for _, srv := range s.Servers {
		known[srv.Info.ID] = srv
	}

	servers := make([]*Server, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		info := list[i]
		srv, ok := known[info.ID]
		if ok {
			srv.Info = info
		} else {
			srv = &Server{Info: info}
		}
		servers = append(servers, srv)
	}
	cmds := make([]backend.Command, 0, len(list))
	for _, info := range list {
		cmds = append(cmds, backend.ListChannels{ServerID: info.ID})
	}

	s.Servers = servers
	s.ActiveServer = 0
	if hadActive {
		for i, srv := range servers {
			if srv.Info.ID == activeID {
				s.ActiveServer = i
				break
			}
		}
	}
	return cmds
}

// SetChannels replaces the channels of the server owning them. It reports
// false and changes nothing when no server has that id.
func (s *Session) SetChannels(owner chat.ServerID, list []chat.ChannelInfo) bool {
	for _, srv := range s.Servers {
		if srv.Info.ID != owner {
			continue
		}
		known := make(map[chat.ChannelID]*Channel, len(srv.Channels))
		for _, ch := range srv.Channels {
			known[ch.Info.ID] = ch
		}
		channels := make([]*Channel, 0, len(list))
		for _, info := range list {
			ch, ok := known[info.ID]
			if ok {
				ch.Info = info
			} else {
				ch = &Channel{Info: info}
			}
			channels = append(channels, ch)
		}
		srv.Channels = channels
		if srv.ActiveChannel >= len(channels) || srv.ActiveChannel < 0 {
			srv.ActiveChannel = 0
		}
		return true
	}
	return false
}

// StoreMessage appends msg to the channel it was sent to. It reports false
// when no known channel matches.
func (s *Session) StoreMessage(msg chat.Message) bool {
	for _, srv := range s.Servers {
		for _, ch := range srv.Channels {
			if ch.Info.ID != msg.ChannelID {
				continue
			}
			ch.Messages = append(ch.Messages, msg)
			if s.HistoryLimit > 0 && len(ch.Messages) > s.HistoryLimit {
				trimmed := make([]chat.Message, s.HistoryLimit)
				copy(trimmed, ch.Messages[len(ch.Messages)-s.HistoryLimit:])
				ch.Messages = trimmed
			}
			return true
		}
	}
	return false
}

// ScrollUp moves the viewport n lines further into history.
func (s *Session) ScrollUp(n int) {
	s.ScrollOffset += n
}

// ResetScroll returns the viewport to the newest message.
func (s *Session) ResetScroll() {
	s.ScrollOffset = 0
}

// ScrollDown moves the viewport n lines toward the newest message, stopping
// at the bottom.
func (s *Session) ScrollDown(n int) {
	s.ScrollOffset -= n
	if s.ScrollOffset < 0 {
		s.ScrollOffset = 0
	}
}

// Log appends a line to the diagnostic transcript.
func (s *Session) Log(format string, args ...interface{}) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	s.Transcript = append(s.Transcript, SystemMessage{
		Text: fmt.Sprintf(format, args...),
		At:   now(),
	})
}

// SelectServerByName selects the server whose name best matches query.
func (s *Session) SelectServerByName(query string) bool {
	names := make([]string, len(s.Servers))
	for i, srv := range s.Servers {
		names[i] = srv.Info.Name
	}
	idx := bestMatch(names, query)
	if idx < 0 {
		return false
	}
	if idx != s.ActiveServer {
		s.ScrollOffset = 0
	}
	s.ActiveServer = idx
	return true
}

// SelectChannelByName selects the channel of the current server whose name
// best matches query.
func (s *Session) SelectChannelByName(query string) bool {
	srv := s.CurrentServer()
	if srv == nil {
		return false
	}
	names := make([]string, len(srv.Channels))
	for i, ch := range srv.Channels {
		names[i] = ch.Info.Name
	}
	idx := bestMatch(names, query)
	if idx < 0 {
		return false
	}
	if idx != srv.ActiveChannel {
		s.ScrollOffset = 0
	}
	srv.ActiveChannel = idx
	return true
}
