package backend

import (
	"context"

	"github.com/atomicstack/termcord/internal/chat"
)

// Provider performs request/response calls against a chat service.
type Provider interface {
	Servers(ctx context.Context) ([]chat.ServerInfo, error)
	Channels(ctx context.Context, server chat.ServerID) ([]chat.ChannelInfo, error)
	Send(ctx context.Context, channel chat.ChannelID, text string) error
	Logout(ctx context.Context) error
}

// Connector authenticates against a chat service and opens its event stream.
// A Connect failure is fatal to startup.
type Connector interface {
	Connect(ctx context.Context) (Stream, error)
}

// Stream delivers messages pushed by the chat service. Recv errors other
// than ctx cancellation are treated as transient by the bridge.
type Stream interface {
	Recv(ctx context.Context) (chat.Message, error)
	Close() error
}
