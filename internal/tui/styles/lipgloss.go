// Package styles defines the TUI palettes and lipgloss styles.
package styles

import "github.com/charmbracelet/lipgloss"

// Styles contains lipgloss styles derived from theme tokens.
type Styles struct {
	Theme   Theme
	Title   lipgloss.Style
	Text    lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Panel   lipgloss.Style
	Focus   lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// One style per playback phase.
	PhaseIdle    lipgloss.Style
	PhaseIntro   lipgloss.Style
	PhaseReply   lipgloss.Style
	PhaseSilent  lipgloss.Style
	PhaseWaiting lipgloss.Style
}

// DefaultStyles builds styles from the default theme.
func DefaultStyles() Styles {
	return BuildStyles(DefaultTheme)
}

// BuildStyles converts theme tokens into lipgloss styles.
func BuildStyles(theme Theme) Styles {
	tokens := theme.Tokens
	fg := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}

	return Styles{
		Theme:   theme,
		Title:   fg(tokens.Accent).Bold(true),
		Text:    fg(tokens.Text),
		Muted:   fg(tokens.TextMuted),
		Accent:  fg(tokens.Accent),
		Panel:   fg(tokens.Text).Padding(1, 2).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(tokens.Border)),
		Focus:   fg(tokens.Focus).Bold(true),
		Warning: fg(tokens.Warning),
		Error:   fg(tokens.Error),

		PhaseIdle:    fg(tokens.TextMuted),
		PhaseIntro:   fg(tokens.Success),
		PhaseReply:   fg(tokens.Info),
		PhaseSilent:  fg(tokens.TextMuted).Italic(true),
		PhaseWaiting: fg(tokens.Warning).Bold(true),
	}
}
