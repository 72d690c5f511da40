// Package tui implements the Rosario terminal player.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/santorosario/rosario/internal/models"
	"github.com/santorosario/rosario/internal/player"
	"github.com/santorosario/rosario/internal/sequences"
	"github.com/santorosario/rosario/internal/tui/components"
	"github.com/santorosario/rosario/internal/tui/styles"
)

// Controller is the part of the player the TUI drives.
type Controller interface {
	TogglePlay()
	Next()
	Previous()
	RespondNow()
	JumpTo(index int)
	ToggleResponsorial()
	ToggleAutoVoiceReply()
	Status() player.Status
	NavigationPoints() []sequences.NavigationPoint
}

// Config configures the TUI.
type Config struct {
	Controller Controller
	Bridge     *StatusBridge
	// Theme selects the palette by name.
	Theme string
	// Autoplay starts playback when the program opens.
	Autoplay bool
}

// Run launches the player and blocks until the user quits.
func Run(cfg Config) error {
	if cfg.Controller == nil {
		return fmt.Errorf("controller is required")
	}
	program := tea.NewProgram(newModel(cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

type model struct {
	ctrl     Controller
	bridge   *StatusBridge
	autoplay bool

	styles   styles.Styles
	keys     keyMap
	help     help.Model
	progress progress.Model

	status   player.Status
	nav      []sequences.NavigationPoint
	navOpen  bool
	navIndex int

	width       int
	height      int
	lastUpdated time.Time
}

const (
	minWidth  = 50
	minHeight = 14
)

func newModel(cfg Config) model {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 40

	return model{
		ctrl:        cfg.Controller,
		bridge:      cfg.Bridge,
		autoplay:    cfg.Autoplay,
		styles:      styles.BuildStyles(styles.ThemeByName(cfg.Theme)),
		keys:        defaultKeyMap(),
		help:        help.New(),
		progress:    bar,
		status:      cfg.Controller.Status(),
		nav:         cfg.Controller.NavigationPoints(),
		lastUpdated: time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.bridge != nil {
		cmds = append(cmds, m.bridge.waitForStatus())
	}
	if m.autoplay && !m.status.Playing {
		ctrl := m.ctrl
		cmds = append(cmds, func() tea.Msg {
			ctrl.TogglePlay()
			return nil
		})
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatusMsg:
		m.status = player.Status(msg)
		m.lastUpdated = time.Now()
		if m.bridge != nil {
			return m, m.bridge.waitForStatus()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = clamp(msg.Width-10, 10, 60)
		return m, nil

	case tea.KeyMsg:
		if m.navOpen {
			return m.updateNavigation(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.PlayPause):
		m.ctrl.TogglePlay()
	case key.Matches(msg, m.keys.Next):
		m.ctrl.Next()
	case key.Matches(msg, m.keys.Previous):
		m.ctrl.Previous()
	case key.Matches(msg, m.keys.Respond):
		m.ctrl.RespondNow()
	case key.Matches(msg, m.keys.Mode):
		m.ctrl.ToggleResponsorial()
	case key.Matches(msg, m.keys.AutoVoice):
		m.ctrl.ToggleAutoVoiceReply()
	case key.Matches(msg, m.keys.Navigate):
		m.nav = m.ctrl.NavigationPoints()
		if len(m.nav) > 0 {
			m.navOpen = true
			m.navIndex = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	default:
		return m, nil
	}
	m.status = m.ctrl.Status()
	return m, nil
}

func (m model) updateNavigation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.navIndex > 0 {
			m.navIndex--
		}
	case key.Matches(msg, m.keys.Down):
		if m.navIndex < len(m.nav)-1 {
			m.navIndex++
		}
	case key.Matches(msg, m.keys.Select):
		m.ctrl.JumpTo(m.nav[m.navIndex].Index)
		m.navOpen = false
		m.status = m.ctrl.Status()
	case msg.String() == "esc", key.Matches(msg, m.keys.Navigate):
		m.navOpen = false
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	if m.width > 0 && m.height > 0 && (m.width < minWidth || m.height < minHeight) {
		return joinLines([]string{
			m.styles.Warning.Render(fmt.Sprintf("Terminal too small (%dx%d).", m.width, m.height)),
			m.styles.Muted.Render(fmt.Sprintf("Resize to at least %dx%d.", minWidth, minHeight)),
		}) + "\n"
	}

	lines := []string{m.styles.Title.Render(m.title()), ""}
	if m.navOpen {
		lines = append(lines, m.navigationLines()...)
	} else {
		lines = append(lines, m.nowPlayingLines()...)
	}
	lines = append(lines, "", m.help.View(m.keys))
	return joinLines(lines) + "\n"
}

func (m model) title() string {
	if m.status.Theme.Valid() {
		return "Santo Rosario · Misterios " + m.status.Theme.Label()
	}
	return "Santo Rosario"
}

func (m model) nowPlayingLines() []string {
	text := m.status.Text
	if text == "" {
		text = " "
	}
	lines := []string{
		m.styles.Panel.Render(text),
		m.styles.Muted.Render("[" + m.status.Image + "]"),
		"",
		components.RenderPhaseBadge(m.styles, m.status),
		m.progress.ViewAs(m.status.Progress()),
		m.styles.Muted.Render(m.stepLine()),
		m.styles.Muted.Render(m.modeLine()),
	}
	if m.status.Error != "" {
		lines = append(lines, m.styles.Error.Render(m.status.Error))
	}
	return lines
}

func (m model) stepLine() string {
	if m.status.Finished || m.status.Total == 0 {
		return fmt.Sprintf("%d segmentos", m.status.Total)
	}
	return fmt.Sprintf("Paso %d de %d", m.status.Cursor+1, m.status.Total)
}

func (m model) modeLine() string {
	mode := "Solo"
	if m.status.Mode() == models.PrayerModeResponsorial {
		mode = "Responsorial"
	}
	voice := "no"
	if m.status.AutoVoiceReply {
		voice = "sí"
	}
	return fmt.Sprintf("Modo: %s | Voz automática: %s | Velocidad: %.2gx", mode, voice, m.status.Rate)
}

func (m model) navigationLines() []string {
	lines := []string{m.styles.Accent.Render("Ir a:")}
	for i, point := range m.nav {
		line := fmt.Sprintf("  %s (%d)", point.Label, point.Index+1)
		if i == m.navIndex {
			line = m.styles.Focus.Render("> " + strings.TrimPrefix(line, "  "))
		} else {
			line = m.styles.Text.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", m.styles.Muted.Render("enter select | esc close"))
	return lines
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
