// Package chat holds the identifiers and value types shared by the backend
// bridge, the session state and the viewport.
package chat

import (
	"fmt"
	"time"
)

// ServerID is the backend's opaque identifier for a server.
type ServerID string

// ChannelID is the backend's opaque identifier for a channel.
type ChannelID string

// ServerInfo identifies a server as reported by the backend.
type ServerInfo struct {
	ID   ServerID
	Name string
}

// ChannelKind distinguishes the channel flavours a server can expose.
type ChannelKind int

const (
	KindText ChannelKind = iota
	KindVoice
	KindCategory
)

func (k ChannelKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindVoice:
		return "voice"
	case KindCategory:
		return "category"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Glyph is the single-cell prefix drawn before a channel name.
func (k ChannelKind) Glyph() string {
	switch k {
	case KindVoice:
		return "~"
	case KindCategory:
		return ">"
	default:
		return "#"
	}
}

// ChannelInfo identifies a channel within a server.
type ChannelInfo struct {
	ID   ChannelID
	Name string
	Kind ChannelKind
}

// Message is a single chat message. ChannelID routes it to its channel.
type Message struct {
	ID        string
	Author    string
	Body      string
	ChannelID ChannelID
	Sent      time.Time
}
