package backend_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/atomicstack/termcord/internal/backend"
	"github.com/atomicstack/termcord/internal/backend/backendtest"
	"github.com/atomicstack/termcord/internal/chat"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startBridge(t *testing.T, provider *backendtest.Provider) *backend.Bridge {
	t.Helper()
	stream, err := provider.Connect(context.Background())
	require.NoError(t, err)
	b := backend.NewBridge(context.Background(), provider, stream, backend.Options{
		RetryDelay:      10 * time.Millisecond,
		RequestInterval: -1,
	})
	t.Cleanup(func() {
		b.Stop()
		_ = b.Wait()
	})
	return b
}

func nextEvent(t *testing.T, b *backend.Bridge) backend.Event {
	t.Helper()
	select {
	case evt, ok := <-b.Events():
		require.True(t, ok, "events channel closed early")
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bridge event")
		return nil
	}
}

func TestBridgeAnswersListRequests(t *testing.T) {
	provider := backendtest.NewProvider()
	provider.AddServer(chat.ServerInfo{ID: "s1", Name: "alpha"},
		chat.ChannelInfo{ID: "s1/general", Name: "general"},
		chat.ChannelInfo{ID: "s1/random", Name: "random"},
	)
	b := startBridge(t, provider)

	b.Post(backend.ListServers{})
	b.Post(backend.ListChannels{ServerID: "s1"})

	servers, ok := nextEvent(t, b).(backend.ServerList)
	require.True(t, ok, "first event should be a server list")
	assert.Equal(t, []chat.ServerInfo{{ID: "s1", Name: "alpha"}}, servers.Servers)

	channels, ok := nextEvent(t, b).(backend.ChannelList)
	require.True(t, ok, "second event should be a channel list")
	assert.Equal(t, chat.ServerID("s1"), channels.ServerID)
	assert.Len(t, channels.Channels, 2)
}

func TestBridgeSendsInPostedOrder(t *testing.T) {
	provider := backendtest.NewProvider()
	b := startBridge(t, provider)

	for _, text := range []string{"one", "two", "three"} {
		b.Post(backend.SendMessage{ChannelID: "s1/general", Text: text})
	}
	b.Post(backend.Echo{Text: "sync"})
	require.Equal(t, backend.EchoReply{Text: "sync"}, nextEvent(t, b))

	sent := provider.SentMessages()
	require.Len(t, sent, 3)
	assert.Equal(t, "one", sent[0].Text)
	assert.Equal(t, "two", sent[1].Text)
	assert.Equal(t, "three", sent[2].Text)
}

func TestBridgeRequestFailureEmitsNothing(t *testing.T) {
	provider := backendtest.NewProvider()
	provider.AddServer(chat.ServerInfo{ID: "s1", Name: "alpha"})
	provider.FailNext("servers", errors.New("rate limited"))
	b := startBridge(t, provider)

	b.Post(backend.ListServers{})
	b.Post(backend.Echo{Text: "after failure"})
	assert.Equal(t, backend.EchoReply{Text: "after failure"}, nextEvent(t, b))

	b.Post(backend.ListServers{})
	_, ok := nextEvent(t, b).(backend.ServerList)
	assert.True(t, ok, "retrying the request should succeed")
}

func TestBridgeRetriesStreamErrors(t *testing.T) {
	provider := backendtest.NewProvider()
	b := startBridge(t, provider)

	provider.Stream.Fail(errors.New("connection reset"))
	provider.Stream.Fail(errors.New("connection reset"))
	provider.Stream.Push(chat.Message{ID: "m1", Author: "ann", Body: "still here", ChannelID: "s1/general"})

	arrived, ok := nextEvent(t, b).(backend.MessageArrived)
	require.True(t, ok, "expected a message after transient errors")
	assert.Equal(t, "still here", arrived.Message.Body)
}

func TestBridgeLogoutHandshake(t *testing.T) {
	provider := backendtest.NewProvider()
	b := startBridge(t, provider)

	b.Post(backend.Logout{})
	assert.Equal(t, backend.LogoutAcknowledged{}, nextEvent(t, b))

	select {
	case _, ok := <-b.Events():
		assert.False(t, ok, "no events may follow the logout acknowledgement")
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after logout")
	}
	require.NoError(t, b.Wait())
	assert.Equal(t, 1, provider.Logouts())
	assert.True(t, provider.Stream.Closed())

	b.Post(backend.ListServers{})
	assert.Equal(t, 1, provider.Logouts())
}

func TestBridgeStopClosesEvents(t *testing.T) {
	provider := backendtest.NewProvider()
	b := startBridge(t, provider)

	b.Stop()
	require.NoError(t, b.Wait())
	_, ok := <-b.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, provider.Logouts())
}
