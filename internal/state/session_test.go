package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/termcord/internal/backend"
	"github.com/atomicstack/termcord/internal/chat"
)

func serverInfos(ids ...string) []chat.ServerInfo {
	out := make([]chat.ServerInfo, len(ids))
	for i, id := range ids {
		out[i] = chat.ServerInfo{ID: chat.ServerID(id), Name: id}
	}
	return out
}

func TestSetServersReversesAndRequestsChannels(t *testing.T) {
	s := NewSession()
	cmds := s.SetServers(serverInfos("A", "B"))

	require.Len(t, s.Servers, 2)
	assert.Equal(t, chat.ServerID("B"), s.Servers[0].Info.ID)
	assert.Equal(t, chat.ServerID("A"), s.Servers[1].Info.ID)
	assert.Equal(t, 0, s.ActiveServer)
	assert.Equal(t, []backend.Command{
		backend.ListChannels{ServerID: "A"},
		backend.ListChannels{ServerID: "B"},
	}, cmds)

	assert.True(t, s.SetChannels("A", []chat.ChannelInfo{{ID: "c1", Name: "general"}}))
	assert.Len(t, s.Servers[1].Channels, 1)
	assert.Empty(t, s.Servers[0].Channels)

	assert.False(t, s.SetChannels("Z", []chat.ChannelInfo{{ID: "c9", Name: "ghost"}}))
	assert.Len(t, s.Servers[1].Channels, 1)
	assert.Empty(t, s.Servers[0].Channels)
}

func TestSetServersKeepsKnownServers(t *testing.T) {
	s := NewSession()
	s.SetServers(serverInfos("A", "B", "C"))
	require.True(t, s.SetChannels("A", []chat.ChannelInfo{{ID: "a1", Name: "general"}}))
	require.True(t, s.StoreMessage(chat.Message{ID: "m", ChannelID: "a1", Body: "kept"}))
	s.ActiveServer = 2 // A

	s.SetServers(serverInfos("A", "D"))
	require.Len(t, s.Servers, 2)
	assert.Equal(t, chat.ServerID("A"), s.CurrentServer().Info.ID, "selection follows the server id")
	require.Len(t, s.CurrentServer().Channels, 1)
	assert.Equal(t, "kept", s.CurrentServer().Channels[0].Messages[0].Body)
}

func TestServerNavigationWraps(t *testing.T) {
	for n := 1; n <= 5; n++ {
		s := NewSession()
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("s%d", i)
		}
		s.SetServers(serverInfos(ids...))
		for start := 0; start < n; start++ {
			s.ActiveServer = start
			for i := 0; i < n; i++ {
				s.NextServer()
			}
			assert.Equal(t, start, s.ActiveServer, "n=%d next*n", n)
			for i := 0; i < n; i++ {
				s.PrevServer()
			}
			assert.Equal(t, start, s.ActiveServer, "n=%d prev*n", n)
		}
		s.ActiveServer = n - 1
		s.NextServer()
		assert.Equal(t, 0, s.ActiveServer)
		s.PrevServer()
		assert.Equal(t, n-1, s.ActiveServer)
	}
}

func TestNavigationOnEmptySessionIsNoop(t *testing.T) {
	s := NewSession()
	assert.NotPanics(t, func() {
		s.NextServer()
		s.PrevServer()
		s.NextChannel()
		s.PrevChannel()
	})
	assert.Equal(t, 0, s.ActiveServer)
	assert.Nil(t, s.CurrentServer())
	assert.Nil(t, s.CurrentChannel())

	s.SetServers(serverInfos("A"))
	s.NextChannel()
	assert.Equal(t, 0, s.CurrentServer().ActiveChannel)
	assert.Nil(t, s.CurrentChannel())
}

func TestChannelNavigationWrapsAndResetsScroll(t *testing.T) {
	s := NewSession()
	s.SetServers(serverInfos("A"))
	s.SetChannels("A", []chat.ChannelInfo{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}})
	s.ScrollOffset = 10

	s.PrevChannel()
	assert.Equal(t, chat.ChannelID("a3"), s.CurrentChannel().Info.ID)
	assert.Equal(t, 0, s.ScrollOffset)
	s.NextChannel()
	assert.Equal(t, chat.ChannelID("a1"), s.CurrentChannel().Info.ID)
}

func TestStoreMessageRoutesByChannel(t *testing.T) {
	s := NewSession()
	s.SetServers(serverInfos("A", "B"))
	s.SetChannels("A", []chat.ChannelInfo{{ID: "a1"}})
	s.SetChannels("B", []chat.ChannelInfo{{ID: "b1"}, {ID: "b2"}})

	assert.True(t, s.StoreMessage(chat.Message{ChannelID: "b2", Body: "one"}))
	assert.True(t, s.StoreMessage(chat.Message{ChannelID: "b2", Body: "two"}))
	assert.False(t, s.StoreMessage(chat.Message{ChannelID: "zz", Body: "lost"}))

	b := s.Servers[0]
	require.Equal(t, chat.ServerID("B"), b.Info.ID)
	require.Len(t, b.Channels[1].Messages, 2)
	assert.Equal(t, "one", b.Channels[1].Messages[0].Body)
	assert.Equal(t, "two", b.Channels[1].Messages[1].Body)
	assert.Empty(t, b.Channels[0].Messages)
}

func TestHistoryLimitDropsOldest(t *testing.T) {
	s := NewSession()
	s.HistoryLimit = 2
	s.SetServers(serverInfos("A"))
	s.SetChannels("A", []chat.ChannelInfo{{ID: "a1"}})
	for _, body := range []string{"1", "2", "3"} {
		s.StoreMessage(chat.Message{ChannelID: "a1", Body: body})
	}
	msgs := s.CurrentChannel().Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "2", msgs[0].Body)
	assert.Equal(t, "3", msgs[1].Body)
}

func TestScrollNeverNegative(t *testing.T) {
	s := NewSession()
	s.ScrollUp(5)
	s.ScrollDown(3)
	assert.Equal(t, 2, s.ScrollOffset)
	s.ScrollDown(5)
	assert.Equal(t, 0, s.ScrollOffset)
}

func TestSelectByName(t *testing.T) {
	s := NewSession()
	s.SetServers([]chat.ServerInfo{{ID: "1", Name: "gophers"}, {ID: "2", Name: "rustaceans"}})
	s.SetChannels("1", []chat.ChannelInfo{{ID: "g1", Name: "general"}, {ID: "g2", Name: "generics"}})

	assert.True(t, s.SelectServerByName("goph"))
	assert.Equal(t, "gophers", s.CurrentServer().Info.Name)
	assert.True(t, s.SelectChannelByName("GENERICS"))
	assert.Equal(t, "generics", s.CurrentChannel().Info.Name)
	assert.True(t, s.SelectChannelByName("gnrl"))
	assert.Equal(t, "general", s.CurrentChannel().Info.Name)
	assert.False(t, s.SelectChannelByName("voice"))
	assert.False(t, s.SelectServerByName(""))
}

func TestLogAppendsTranscript(t *testing.T) {
	s := NewSession()
	s.Log("dropped message for %s", "c9")
	require.Len(t, s.Transcript, 1)
	assert.Equal(t, "dropped message for c9", s.Transcript[0].Text)
	assert.False(t, s.Transcript[0].At.IsZero())
}

func TestStoreRecoversPanics(t *testing.T) {
	store := NewStore(nil)
	err := store.Do(func(s *Session) {
		var srv *Server
		_ = srv.Channels
	})
	assert.Error(t, err)

	// The lock must have been released.
	ran := false
	require.NoError(t, store.Do(func(s *Session) { ran = true }))
	assert.True(t, ran)
}

func TestResetScroll(t *testing.T) {
	s := NewSession()
	s.ScrollUp(15)
	s.ResetScroll()
	assert.Equal(t, 0, s.ScrollOffset)
}
