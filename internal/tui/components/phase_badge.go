// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/santorosario/rosario/internal/player"
	"github.com/santorosario/rosario/internal/tui/styles"
)

// RenderPhaseBadge renders the playback state with icon and color.
func RenderPhaseBadge(styleSet styles.Styles, status player.Status) string {
	icon, label, style := phaseDescriptor(styleSet, status)
	return style.Render(fmt.Sprintf("%s %s", icon, label))
}

func phaseDescriptor(styleSet styles.Styles, status player.Status) (string, string, lipgloss.Style) {
	if status.Finished {
		return "+", "Completado", styleSet.Accent
	}
	if status.Error != "" && status.Phase == player.PhaseIdle {
		return "!", "Audio no disponible", styleSet.Error
	}
	if !status.Playing {
		return "||", "En pausa", styleSet.PhaseIdle
	}

	switch status.Phase {
	case player.PhaseIntro:
		return ">", "Guía", styleSet.PhaseIntro
	case player.PhaseReplyAudible:
		return "<", "Respuesta", styleSet.PhaseReply
	case player.PhaseReplySilent:
		return "~", "Respuesta (en silencio)", styleSet.PhaseSilent
	case player.PhaseWaitingManualReply:
		return "?", "Su respuesta", styleSet.PhaseWaiting
	default:
		return "-", "En espera", styleSet.PhaseIdle
	}
}
