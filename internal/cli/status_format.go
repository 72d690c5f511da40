package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/santorosario/rosario/internal/player"
)

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

func colorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return terminalDetector()
}

func colorize(text, color string) string {
	if color == "" || !colorEnabled() {
		return text
	}
	return color + text + colorReset
}

func formatPlaybackState(status player.Status) string {
	label, color := statusLabelForPlayback(status)
	return colorize(formatStatusLabel(label, status.Phase.String()), color)
}

func statusLabelForPlayback(status player.Status) (string, string) {
	switch {
	case status.Finished:
		return "DONE", colorGreen
	case status.Error != "":
		return "ERR", colorRed
	case !status.Playing:
		return "PAUSED", colorYellow
	}
	switch status.Phase {
	case player.PhaseWaitingManualReply:
		return "WAIT", colorMagenta
	default:
		return "PLAY", colorCyan
	}
}

func formatStatusLabel(label, status string) string {
	normalized := strings.TrimSpace(status)
	if normalized != "" {
		normalized = strings.ReplaceAll(normalized, "_", " ")
	}
	if normalized == "" {
		return label
	}
	return fmt.Sprintf("%s %s", label, normalized)
}

// formatStatusLines renders a status for human output.
func formatStatusLines(status player.Status) []string {
	lines := []string{
		fmt.Sprintf("State:    %s", formatPlaybackState(status)),
		fmt.Sprintf("Step:     %d/%d", min(status.Cursor+1, status.Total), status.Total),
	}
	if status.Title != "" {
		lines = append(lines, fmt.Sprintf("Segment:  %s", status.Title))
	}
	lines = append(lines,
		fmt.Sprintf("Mode:     %s", status.Mode()),
		fmt.Sprintf("Voice:    %s", yesNo(status.AutoVoiceReply)),
	)
	if status.Error != "" {
		lines = append(lines, fmt.Sprintf("Error:    %s", status.Error))
	}
	return lines
}
