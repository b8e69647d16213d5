package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atomicstack/termcord/internal/logging"
	"github.com/atomicstack/termcord/internal/logging/events"
)

const (
	defaultRetryDelay      = time.Second
	defaultRequestInterval = 100 * time.Millisecond
	defaultEventBuffer     = 64
)

// Options tune a Bridge. Zero values select the defaults.
type Options struct {
	// RetryDelay is the fixed pause after a failed stream read.
	RetryDelay time.Duration
	// RequestInterval is the minimum spacing between provider requests.
	// Negative disables throttling.
	RequestInterval time.Duration
	// EventBuffer is the capacity of the events channel.
	EventBuffer int
}

func (o Options) withDefaults() Options {
	if o.RetryDelay <= 0 {
		o.RetryDelay = defaultRetryDelay
	}
	if o.RequestInterval < 0 {
		o.RequestInterval = 0
	} else if o.RequestInterval == 0 {
		o.RequestInterval = defaultRequestInterval
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = defaultEventBuffer
	}
	return o
}

// Bridge is the actor standing between the client core and a chat service.
// Commands are posted to its mailbox; results and pushed messages come back
// on Events. Two goroutines run until Logout is handled or Stop is called:
// one drains the mailbox, the other reads the event stream.
type Bridge struct {
	provider Provider
	stream   Stream
	opts     Options
	throttle *throttle

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	mu     sync.Mutex
	queue  []Command
	closed bool
	wake   chan struct{}

	events chan Event
	done   chan struct{}
	err    error
}

// NewBridge starts a bridge over an already connected stream. The bridge
// owns stream and closes it on exit.
func NewBridge(parent context.Context, provider Provider, stream Stream, opts Options) *Bridge {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(parent)
	group, gctx := errgroup.WithContext(ctx)
	b := &Bridge{
		provider: provider,
		stream:   stream,
		opts:     opts,
		throttle: newThrottle(opts.RequestInterval),
		ctx:      gctx,
		cancel:   cancel,
		group:    group,
		wake:     make(chan struct{}, 1),
		events:   make(chan Event, opts.EventBuffer),
		done:     make(chan struct{}),
	}

	group.Go(func() error { return b.monitor(gctx) })
	group.Go(func() error {
		err := b.serve(gctx)
		// Logout ends the session; take the stream reader down with us.
		cancel()
		return err
	})

	go func() {
		err := group.Wait()
		if cerr := b.stream.Close(); cerr != nil {
			logging.Error(fmt.Errorf("close event stream: %w", cerr))
		}
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		b.err = err
		close(b.events)
		close(b.done)
	}()

	return b
}

// Post enqueues cmd without blocking. Commands are handled in the order
// they were posted. Posts after shutdown are dropped.
func (b *Bridge) Post(cmd Command) {
	if cmd == nil {
		return
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		events.Bridge.Dropped(cmd.Name())
		return
	}
	b.queue = append(b.queue, cmd)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Events returns the channel of bridge events. It is closed once both
// bridge goroutines have exited.
func (b *Bridge) Events() <-chan Event {
	return b.events
}

// Stop cancels the bridge without the logout handshake.
func (b *Bridge) Stop() {
	b.cancel()
}

// Wait blocks until the bridge has shut down and returns the first
// non-cancellation error, if any.
func (b *Bridge) Wait() error {
	<-b.done
	return b.err
}

func (b *Bridge) drain() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	cmds := b.queue
	b.queue = nil
	return cmds
}

func (b *Bridge) shutdownMailbox() {
	b.mu.Lock()
	b.closed = true
	dropped := b.queue
	b.queue = nil
	b.mu.Unlock()
	for _, cmd := range dropped {
		events.Bridge.Dropped(cmd.Name())
	}
}

func (b *Bridge) serve(ctx context.Context) error {
	defer b.shutdownMailbox()
	for {
		select {
		case <-ctx.Done():
			events.Bridge.Stopped("cancelled")
			return nil
		case <-b.wake:
		}
		for _, cmd := range b.drain() {
			if b.handle(ctx, cmd) {
				events.Bridge.Stopped("logout")
				return nil
			}
		}
	}
}

// handle runs one command and reports whether the bridge should stop.
func (b *Bridge) handle(ctx context.Context, cmd Command) bool {
	events.Bridge.Command(cmd.Name())
	switch c := cmd.(type) {
	case ListServers:
		if b.throttle.wait(ctx) != nil {
			return false
		}
		servers, err := b.provider.Servers(ctx)
		if err != nil {
			b.requestFailed(cmd, err)
			return false
		}
		b.emit(ctx, ServerList{Servers: servers})
	case ListChannels:
		if b.throttle.wait(ctx) != nil {
			return false
		}
		channels, err := b.provider.Channels(ctx, c.ServerID)
		if err != nil {
			b.requestFailed(cmd, err)
			return false
		}
		b.emit(ctx, ChannelList{ServerID: c.ServerID, Channels: channels})
	case SendMessage:
		if b.throttle.wait(ctx) != nil {
			return false
		}
		if err := b.provider.Send(ctx, c.ChannelID, c.Text); err != nil {
			b.requestFailed(cmd, err)
		}
	case Echo:
		b.emit(ctx, EchoReply{Text: c.Text})
	case Logout:
		if err := b.provider.Logout(ctx); err != nil {
			b.requestFailed(cmd, err)
		}
		b.emit(ctx, LogoutAcknowledged{})
		return true
	default:
		logging.Error(fmt.Errorf("bridge: unhandled command %T", cmd))
	}
	return false
}

func (b *Bridge) requestFailed(cmd Command, err error) {
	events.Bridge.RequestFailed(cmd.Name(), err)
	logging.Error(fmt.Errorf("%s: %w", cmd.Name(), err))
}

// monitor reads the event stream until ctx is done. Read errors are
// logged and retried after a fixed delay.
func (b *Bridge) monitor(ctx context.Context) error {
	for {
		msg, err := b.stream.Recv(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			events.Bridge.StreamRetry(err, b.opts.RetryDelay)
			logging.Error(fmt.Errorf("event stream: %w", err))
			if !sleep(ctx, b.opts.RetryDelay) {
				return nil
			}
			continue
		}
		if !b.emit(ctx, MessageArrived{Message: msg}) {
			return nil
		}
	}
}

func (b *Bridge) emit(ctx context.Context, evt Event) bool {
	select {
	case <-ctx.Done():
		return false
	case b.events <- evt:
		events.Bridge.Event(evt.Name())
		return true
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
