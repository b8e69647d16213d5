package input

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/termcord/internal/backend"
	"github.com/atomicstack/termcord/internal/chat"
	"github.com/atomicstack/termcord/internal/logging"
	"github.com/atomicstack/termcord/internal/state"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func newSession() *state.Session {
	s := state.NewSession()
	s.SetServers([]chat.ServerInfo{{ID: "B", Name: "beta"}, {ID: "A", Name: "alpha"}})
	s.SetChannels("A", []chat.ChannelInfo{{ID: "A/general", Name: "general"}, {ID: "A/random", Name: "random"}})
	s.SetChannels("B", []chat.ChannelInfo{{ID: "B/lobby", Name: "lobby"}})
	return s
}

// press feeds keys in order and collects every command they produced.
func press(d *Dispatcher, s *state.Session, keys ...tea.KeyMsg) ([]backend.Command, Outcome) {
	var cmds []backend.Command
	var last Outcome
	for _, k := range keys {
		last = d.Handle(s, k)
		cmds = append(cmds, last.Commands...)
	}
	return cmds, last
}

func TestComposeAndSend(t *testing.T) {
	d := New(DefaultKeyMap())
	s := newSession()

	cmds, _ := press(d, s, runes("i"), runes("h"), runes("i"), keyOf(tea.KeyEnter))

	require.Len(t, cmds, 1)
	assert.Equal(t, backend.SendMessage{ChannelID: "A/general", Text: "hi"}, cmds[0])
	assert.Equal(t, "", s.Composer.Text())
	assert.Equal(t, state.ModeNormal, s.Mode())
	assert.Equal(t, 0, s.ModeDepth())
}

func TestQuitCommand(t *testing.T) {
	d := New(DefaultKeyMap())
	s := newSession()

	cmds, out := press(d, s, runes(":"), runes("q"), keyOf(tea.KeyEnter))

	assert.Equal(t, []backend.Command{backend.Logout{}}, cmds)
	assert.True(t, out.Exiting)
	assert.Equal(t, state.ModeExiting, s.Mode())

	// Further keys change nothing and emit nothing.
	more, _ := press(d, s, runes("i"), keyOf(tea.KeyEnter), runes(":"))
	assert.Empty(t, more)
	assert.Equal(t, state.ModeExiting, s.Mode())
}

func TestEscapeFromCommandReturnsToNormal(t *testing.T) {
	d := New(DefaultKeyMap())
	s := newSession()

	press(d, s, runes(":"))
	assert.Equal(t, state.ModeTextInput, s.Mode())
	assert.Equal(t, 2, s.ModeDepth())

	press(d, s, runes("x"), keyOf(tea.KeyEsc))
	assert.Equal(t, state.ModeNormal, s.Mode())
	assert.Equal(t, 0, s.ModeDepth())
	assert.Equal(t, "", s.Composer.Text())
}

func TestUnknownCommandEchoes(t *testing.T) {
	d := New(DefaultKeyMap())
	s := newSession()

	cmds, _ := press(d, s, runes(":"), runes("frob"), keyOf(tea.KeySpace), runes("x"), keyOf(tea.KeyEnter))
	assert.Equal(t, []backend.Command{backend.Echo{Text: "frob x"}}, cmds)
	assert.Equal(t, state.ModeNormal, s.Mode())
	assert.Equal(t, 0, s.ModeDepth())
}

func TestJoinCommandSelectsChannel(t *testing.T) {
	d := New(DefaultKeyMap())
	s := newSession()

	cmds, _ := press(d, s, runes(":"), runes("join rand"), keyOf(tea.KeyEnter))
	assert.Empty(t, cmds)
	assert.Equal(t, "random", s.CurrentChannel().Info.Name)

	press(d, s, runes(":"), runes("server bet"), keyOf(tea.KeyEnter))
	assert.Equal(t, "beta", s.CurrentServer().Info.Name)

	press(d, s, runes(":"), runes("join nothing-like-it"), keyOf(tea.KeyEnter))
	require.NotEmpty(t, s.Transcript)
	assert.Contains(t, s.Transcript[len(s.Transcript)-1].Text, "no channel matches")
}

func TestSelectModes(t *testing.T) {
	d := New(DefaultKeyMap())
	s := newSession()
	require.Equal(t, "alpha", s.CurrentServer().Info.Name)

	press(d, s, runes("s"))
	assert.Equal(t, state.ModeServerSelect, s.Mode())
	press(d, s, runes("j"))
	assert.Equal(t, "beta", s.CurrentServer().Info.Name)
	press(d, s, runes("j"))
	assert.Equal(t, "alpha", s.CurrentServer().Info.Name, "next wraps to the first server")
	press(d, s, runes("k"))
	assert.Equal(t, "beta", s.CurrentServer().Info.Name, "prev wraps to the last server")

	press(d, s, keyOf(tea.KeyTab))
	assert.Equal(t, state.ModeChannelSelect, s.Mode())
	press(d, s, runes("k"))
	assert.Equal(t, "lobby", s.CurrentChannel().Info.Name)

	press(d, s, keyOf(tea.KeyEsc))
	assert.Equal(t, state.ModeNormal, s.Mode())
	assert.Equal(t, 0, s.ModeDepth())
}

func TestScrollKeys(t *testing.T) {
	d := New(DefaultKeyMap())
	s := newSession()

	press(d, s, keyOf(tea.KeyCtrlU), keyOf(tea.KeyCtrlU))
	assert.Equal(t, 10, s.ScrollOffset)
	press(d, s, keyOf(tea.KeyCtrlD))
	assert.Equal(t, 5, s.ScrollOffset)
	press(d, s, keyOf(tea.KeyCtrlD), keyOf(tea.KeyCtrlD))
	assert.Equal(t, 0, s.ScrollOffset)
}

func TestInterruptStartsHandshakeThenForces(t *testing.T) {
	d := New(DefaultKeyMap())
	s := newSession()

	cmds, out := press(d, s, runes("i"), runes("draft"), keyOf(tea.KeyCtrlC))
	assert.Equal(t, []backend.Command{backend.Logout{}}, cmds)
	assert.True(t, out.Exiting)
	assert.False(t, out.ForceQuit)

	cmds, out = press(d, s, keyOf(tea.KeyCtrlC))
	assert.Empty(t, cmds)
	assert.True(t, out.ForceQuit)
}

func TestSendWithoutChannelKeepsDraft(t *testing.T) {
	d := New(DefaultKeyMap())
	s := state.NewSession()

	cmds, _ := press(d, s, runes("i"), runes("hello"), keyOf(tea.KeyEnter))
	assert.Empty(t, cmds)
	assert.Equal(t, "hello", s.Composer.Text())
	assert.Equal(t, state.ModeNormal, s.Mode())
	require.Len(t, s.Transcript, 1)
}

func TestEmptySubmitSendsNothing(t *testing.T) {
	d := New(DefaultKeyMap())
	s := newSession()
	cmds, _ := press(d, s, runes("i"), keyOf(tea.KeySpace), keyOf(tea.KeyEnter))
	assert.Empty(t, cmds)
	assert.Equal(t, "", s.Composer.Text())
}

func TestComposerEditingKeys(t *testing.T) {
	d := New(DefaultKeyMap())
	s := newSession()

	press(d, s, runes("i"), runes("helo"), keyOf(tea.KeyLeft), runes("l"), keyOf(tea.KeyEnd), keyOf(tea.KeyBackspace))
	assert.Equal(t, "hell", s.Composer.Text())
	assert.Equal(t, 4, s.Composer.Cursor())

	press(d, s, keyOf(tea.KeySpace), runes("world"), keyOf(tea.KeyCtrlW))
	assert.Equal(t, "hell ", s.Composer.Text())

	press(d, s, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a\nb"), Paste: true})
	assert.Equal(t, "hell a b", s.Composer.Text())
}

func TestUnboundKeyIsLogged(t *testing.T) {
	d := New(DefaultKeyMap())
	s := newSession()

	out := d.Handle(s, runes("z"))
	assert.False(t, out.Handled)
	assert.Equal(t, state.ModeNormal, s.Mode())
	require.Len(t, s.Transcript, 1)
	assert.Contains(t, s.Transcript[0].Text, `"z"`)
}

func TestRandomKeySequencesKeepStackSane(t *testing.T) {
	pool := []tea.KeyMsg{
		runes("i"), runes(":"), runes("s"), runes("c"), runes("j"), runes("k"), runes("x"),
		keyOf(tea.KeyEnter), keyOf(tea.KeyEsc), keyOf(tea.KeyTab), keyOf(tea.KeyBackspace),
		keyOf(tea.KeyCtrlU), keyOf(tea.KeyCtrlD),
	}
	rng := rand.New(rand.NewSource(7))
	d := New(DefaultKeyMap())
	for run := 0; run < 50; run++ {
		s := newSession()
		for i := 0; i < 200; i++ {
			out := d.Handle(s, pool[rng.Intn(len(pool))])
			for _, cmd := range out.Commands {
				_, isLogout := cmd.(backend.Logout)
				assert.False(t, isLogout, "no key in the pool quits")
			}
			require.GreaterOrEqual(t, s.ModeDepth(), 0)
			require.GreaterOrEqual(t, s.ScrollOffset, 0)
			require.LessOrEqual(t, s.Composer.Cursor(), s.Composer.Len())
		}
	}
}

func TestHelpListsBindingsPerMode(t *testing.T) {
	keys := DefaultKeyMap()
	assert.NotEmpty(t, keys.Help(state.ModeNormal))
	assert.NotEmpty(t, keys.Help(state.ModeTextInput))
	assert.Empty(t, keys.Help(state.ModeExiting))
}

func TestTraceOmitsDraftText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	logging.Configure(path)
	logging.SetTraceEnabled(true)
	t.Cleanup(func() {
		logging.SetTraceEnabled(false)
		logging.Close()
	})

	d := New(DefaultKeyMap())
	s := newSession()
	press(d, s, runes("i"), runes("hunter2"), keyOf(tea.KeyBackspace))
	logging.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	log := string(data)
	assert.Contains(t, log, "composer.insert")
	assert.Contains(t, log, "composer.backspace")
	assert.False(t, strings.Contains(log, "hunter"), "draft text leaked into the trace log")
}
