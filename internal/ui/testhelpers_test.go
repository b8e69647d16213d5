package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/atomicstack/termcord/internal/chat"
	"github.com/atomicstack/termcord/internal/state"
	"github.com/atomicstack/termcord/internal/ui/command"
)

func seededSession() *state.Session {
	s := state.NewSession()
	s.SetServers([]chat.ServerInfo{{ID: "B", Name: "beta"}, {ID: "A", Name: "alpha"}})
	s.SetChannels("A", []chat.ChannelInfo{
		{ID: "A/general", Name: "general", Kind: chat.KindText},
		{ID: "A/voice", Name: "hangout", Kind: chat.KindVoice},
	})
	s.StoreMessage(chat.Message{ID: "m1", Author: "ann", Body: "hello there", ChannelID: "A/general"})
	return s
}

type fixture struct {
	store    *state.Store
	screen   *Screen
	recorder *command.Recorder
	bus      *command.Bus
}

func newFixture(s *state.Session, width, height int) *fixture {
	rec := &command.Recorder{}
	return &fixture{
		store:    state.NewStore(s),
		screen:   NewScreen(ScreenOptions{Width: width, Height: height}),
		recorder: rec,
		bus:      command.New(rec),
	}
}

func (f *fixture) harness(timeout time.Duration) *Harness {
	return NewHarness(NewModel(f.store, f.screen, f.bus, Options{ShutdownTimeout: timeout}))
}

func plainLines(t *testing.T, view string) []string {
	t.Helper()
	return strings.Split(ansi.Strip(view), "\n")
}
