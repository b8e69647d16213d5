// Package backendtest provides an in-memory chat service for exercising the
// bridge and the layers above it without a real backend.
package backendtest

import (
	"context"
	"errors"
	"sync"

	"github.com/atomicstack/termcord/internal/backend"
	"github.com/atomicstack/termcord/internal/chat"
)

// ErrStreamClosed is returned by Recv after Close.
var ErrStreamClosed = errors.New("backendtest: stream closed")

// Sent records one SendMessage reaching the provider.
type Sent struct {
	ChannelID chat.ChannelID
	Text      string
}

// Provider is a scripted backend.Provider and backend.Connector.
type Provider struct {
	mu        sync.Mutex
	servers   []chat.ServerInfo
	channels  map[chat.ServerID][]chat.ChannelInfo
	sent      []Sent
	loggedOut int
	failNext  map[string]error

	Stream *Stream
}

// NewProvider returns an empty provider with an open stream.
func NewProvider() *Provider {
	return &Provider{
		channels: make(map[chat.ServerID][]chat.ChannelInfo),
		failNext: make(map[string]error),
		Stream:   NewStream(),
	}
}

// AddServer registers a server and its channels.
func (p *Provider) AddServer(info chat.ServerInfo, channels ...chat.ChannelInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.servers = append(p.servers, info)
	p.channels[info.ID] = append([]chat.ChannelInfo(nil), channels...)
}

// FailNext makes the next request of the named kind ("servers", "channels",
// "send", "logout") return err.
func (p *Provider) FailNext(kind string, err error) {
	p.mu.Lock()
	p.failNext[kind] = err
	p.mu.Unlock()
}

func (p *Provider) takeFailure(kind string) error {
	err := p.failNext[kind]
	delete(p.failNext, kind)
	return err
}

func (p *Provider) Servers(ctx context.Context) ([]chat.ServerInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeFailure("servers"); err != nil {
		return nil, err
	}
	return append([]chat.ServerInfo(nil), p.servers...), nil
}

func (p *Provider) Channels(ctx context.Context, server chat.ServerID) ([]chat.ChannelInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeFailure("channels"); err != nil {
		return nil, err
	}
	return append([]chat.ChannelInfo(nil), p.channels[server]...), nil
}

func (p *Provider) Send(ctx context.Context, channel chat.ChannelID, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeFailure("send"); err != nil {
		return err
	}
	p.sent = append(p.sent, Sent{ChannelID: channel, Text: text})
	return nil
}

func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loggedOut++
	return p.takeFailure("logout")
}

// Connect returns the provider's stream.
func (p *Provider) Connect(ctx context.Context) (backend.Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeFailure("connect"); err != nil {
		return nil, err
	}
	return p.Stream, nil
}

// SentMessages returns a copy of every message that reached Send.
func (p *Provider) SentMessages() []Sent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Sent(nil), p.sent...)
}

// Logouts reports how many times Logout was called.
func (p *Provider) Logouts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loggedOut
}

type delivery struct {
	msg chat.Message
	err error
}

// Stream is a backend.Stream fed by Push and Fail.
type Stream struct {
	ch     chan delivery
	closed chan struct{}
	once   sync.Once
}

// NewStream returns an open stream.
func NewStream() *Stream {
	return &Stream{ch: make(chan delivery, 32), closed: make(chan struct{})}
}

// Push queues msg for the next Recv.
func (s *Stream) Push(msg chat.Message) {
	s.ch <- delivery{msg: msg}
}

// Fail queues a read error for the next Recv.
func (s *Stream) Fail(err error) {
	s.ch <- delivery{err: err}
}

func (s *Stream) Recv(ctx context.Context) (chat.Message, error) {
	select {
	case <-ctx.Done():
		return chat.Message{}, ctx.Err()
	case <-s.closed:
		return chat.Message{}, ErrStreamClosed
	case d := <-s.ch:
		return d.msg, d.err
	}
}

func (s *Stream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// Closed reports whether Close has been called.
func (s *Stream) Closed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

var (
	_ backend.Provider  = (*Provider)(nil)
	_ backend.Connector = (*Provider)(nil)
	_ backend.Stream    = (*Stream)(nil)
)
