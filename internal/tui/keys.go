package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PlayPause key.Binding
	Next      key.Binding
	Previous  key.Binding
	Respond   key.Binding
	Mode      key.Binding
	AutoVoice key.Binding
	Navigate  key.Binding
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "play/pause")),
		Next:      key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next")),
		Previous:  key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "previous")),
		Respond:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "respond")),
		Mode:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "responsorial/solo")),
		AutoVoice: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto voice")),
		Navigate:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to")),
		Up:        key.NewBinding(key.WithKeys("up", "k")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		Select:    key.NewBinding(key.WithKeys("enter")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Next, k.Previous, k.Respond, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Next, k.Previous, k.Respond},
		{k.Mode, k.AutoVoice, k.Navigate},
		{k.Help, k.Quit},
	}
}
