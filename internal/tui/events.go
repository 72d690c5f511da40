package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/santorosario/rosario/internal/player"
)

// StatusMsg carries a controller status into the program.
type StatusMsg player.Status

// StatusBridge forwards controller updates to the TUI. It keeps only the
// latest status so a slow render never blocks the controller.
type StatusBridge struct {
	updates chan player.Status
}

// NewStatusBridge creates a bridge; pass it as the controller's Publisher.
func NewStatusBridge() *StatusBridge {
	return &StatusBridge{updates: make(chan player.Status, 1)}
}

// Publish implements player.Publisher.
func (b *StatusBridge) Publish(status player.Status) {
	for {
		select {
		case b.updates <- status:
			return
		default:
		}
		select {
		case <-b.updates:
		default:
		}
	}
}

// waitForStatus blocks until the next update.
func (b *StatusBridge) waitForStatus() tea.Cmd {
	return func() tea.Msg {
		return StatusMsg(<-b.updates)
	}
}
