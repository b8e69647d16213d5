package backend

import "github.com/atomicstack/termcord/internal/chat"

// Command is a request posted to the bridge by the client core. The set is
// closed: only the types in this file implement it.
type Command interface {
	Name() string
	command()
}

// Event is a notification published by the bridge. The set is closed.
type Event interface {
	Name() string
	event()
}

// ListServers asks for the servers visible to the logged-in user.
type ListServers struct{}

// ListChannels asks for the channels of one server.
type ListChannels struct {
	ServerID chat.ServerID
}

// SendMessage posts Text to a channel.
type SendMessage struct {
	ChannelID chat.ChannelID
	Text      string
}

// Echo is a loopback request answered with an EchoReply carrying the same text.
type Echo struct {
	Text string
}

// Logout closes the backend session. The bridge answers with
// LogoutAcknowledged and then stops.
type Logout struct{}

func (ListServers) Name() string  { return "list_servers" }
func (ListChannels) Name() string { return "list_channels" }
func (SendMessage) Name() string  { return "send_message" }
func (Echo) Name() string         { return "echo" }
func (Logout) Name() string       { return "logout" }

func (ListServers) command()  {}
func (ListChannels) command() {}
func (SendMessage) command()  {}
func (Echo) command()         {}
func (Logout) command()       {}

// ServerList answers ListServers.
type ServerList struct {
	Servers []chat.ServerInfo
}

// ChannelList answers ListChannels.
type ChannelList struct {
	ServerID chat.ServerID
	Channels []chat.ChannelInfo
}

// MessageArrived carries a message pushed by the event stream.
type MessageArrived struct {
	Message chat.Message
}

// EchoReply answers Echo.
type EchoReply struct {
	Text string
}

// LogoutAcknowledged is the last event the bridge publishes.
type LogoutAcknowledged struct{}

func (ServerList) Name() string         { return "server_list" }
func (ChannelList) Name() string        { return "channel_list" }
func (MessageArrived) Name() string     { return "message_arrived" }
func (EchoReply) Name() string          { return "echo_reply" }
func (LogoutAcknowledged) Name() string { return "logout_acknowledged" }

func (ServerList) event()         {}
func (ChannelList) event()        {}
func (MessageArrived) event()     {}
func (EchoReply) event()          {}
func (LogoutAcknowledged) event() {}
