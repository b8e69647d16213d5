package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	SidebarHeader    *lipgloss.Style
	SidebarItem      *lipgloss.Style
	SidebarActive    *lipgloss.Style
	SidebarFocused   *lipgloss.Style
	SidebarEmpty     *lipgloss.Style
	Pane             *lipgloss.Style
	PaneFocused      *lipgloss.Style
	Message          *lipgloss.Style
	Transcript       *lipgloss.Style
	ComposerPrompt   *lipgloss.Style
	CommandPrompt    *lipgloss.Style
	Composer         *lipgloss.Style
	Cursor           *lipgloss.Style
	Footer           *lipgloss.Style
	FooterMode       *lipgloss.Style
	FooterExiting    *lipgloss.Style
	FooterScrolled   *lipgloss.Style
	FooterTranscript *lipgloss.Style
}

var defaultStyles = Styles{
	SidebarHeader: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	SidebarItem: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	SidebarActive: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
	),
	SidebarFocused: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	SidebarEmpty: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	),
	Pane: ptr(
		lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")),
	),
	PaneFocused: ptr(
		lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("33")),
	),
	Message: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	),
	Transcript: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Italic(true),
	),
	ComposerPrompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	CommandPrompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	),
	Composer: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
	),
	Cursor: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("33")),
	),
	Footer: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")).Background(lipgloss.Color("236")),
	),
	FooterMode: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("33")).Bold(true),
	),
	FooterExiting: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("196")).Bold(true),
	),
	FooterScrolled: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Background(lipgloss.Color("236")),
	),
	FooterTranscript: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Background(lipgloss.Color("236")).Italic(true),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
