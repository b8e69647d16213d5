package input

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/atomicstack/termcord/internal/state"
)

// KeyMap lists every binding the dispatcher understands.
type KeyMap struct {
	Quit key.Binding

	Compose    key.Binding
	Command    key.Binding
	Servers    key.Binding
	Channels   key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding

	Submit     key.Binding
	Cancel     key.Binding
	Backspace  key.Binding
	DeleteWord key.Binding
	Left       key.Binding
	Right      key.Binding
	WordLeft   key.Binding
	WordRight  key.Binding
	Home       key.Binding
	End        key.Binding

	Next    key.Binding
	Prev    key.Binding
	Swap    key.Binding
	Confirm key.Binding

	CommandQuit key.Binding
	Reenter     key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

		Compose:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "compose")),
		Command:    key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Servers:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "servers")),
		Channels:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "channels")),
		ScrollUp:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "older")),
		ScrollDown: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "newer")),

		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Backspace:  key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
		DeleteWord: key.NewBinding(key.WithKeys("ctrl+w")),
		Left:       key.NewBinding(key.WithKeys("left", "ctrl+b")),
		Right:      key.NewBinding(key.WithKeys("right", "ctrl+f")),
		WordLeft:   key.NewBinding(key.WithKeys("alt+b")),
		WordRight:  key.NewBinding(key.WithKeys("alt+f")),
		Home:       key.NewBinding(key.WithKeys("home", "ctrl+a")),
		End:        key.NewBinding(key.WithKeys("end", "ctrl+e")),

		Next:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "next")),
		Prev:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "prev")),
		Swap:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "swap list")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "done")),

		CommandQuit: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Reenter:     key.NewBinding(key.WithKeys(":", "i"), key.WithHelp(":", "edit")),
	}
}

// Help returns the bindings worth advertising in mode.
func (k KeyMap) Help(mode state.Mode) []key.Binding {
	switch mode {
	case state.ModeNormal:
		return []key.Binding{k.Compose, k.Command, k.Servers, k.Channels, k.ScrollUp, k.ScrollDown, k.Quit}
	case state.ModeTextInput:
		return []key.Binding{k.Submit, k.Cancel}
	case state.ModeServerSelect, state.ModeChannelSelect:
		return []key.Binding{k.Next, k.Prev, k.Swap, k.Cancel}
	case state.ModeCommand:
		return []key.Binding{k.CommandQuit, k.Reenter, k.Cancel}
	default:
		return nil
	}
}
