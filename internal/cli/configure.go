package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/santorosario/rosario/internal/models"
	"github.com/santorosario/rosario/internal/tui/styles"
)

func init() {
	rootCmd.AddCommand(configureCmd)
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Edit the recitation interactively",
	Long:  "Choose the optional prayers, the prayer mode, automatic replies, speed and theme in a form.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if IsNonInteractive() {
			return &PreflightError{
				Message:  "configure requires an interactive terminal",
				Hint:     "Use settings set for scripted changes",
				NextStep: "rosario settings set creed=true",
			}
		}
		return updateSettings(context.Background(), func(settings *models.Settings) error {
			values := newConfigureValues(*settings)
			if err := configureForm(values).Run(); err != nil {
				return err
			}
			return values.apply(settings)
		})
	},
}

// configureValues holds the form state.
type configureValues struct {
	options  []string
	mode     string
	auto     bool
	rate     string
	theme    string
	defaults bool
}

func newConfigureValues(settings models.Settings) *configureValues {
	return &configureValues{
		options: settings.Configuration.EnabledKeys(),
		mode:    string(settings.Mode),
		auto:    settings.AutoVoiceReply,
		rate:    strconv.FormatFloat(settings.EffectiveRate(), 'g', -1, 64),
		theme:   string(settings.Theme),
	}
}

func (v *configureValues) apply(settings *models.Settings) error {
	if v.defaults {
		*settings = models.DefaultSettings()
		return nil
	}

	var cfg models.Configuration
	for _, key := range v.options {
		if err := cfg.SetOption(key, true); err != nil {
			return err
		}
	}
	settings.Configuration = cfg

	mode, err := models.ParsePrayerMode(v.mode)
	if err != nil {
		return err
	}
	settings.Mode = mode
	settings.AutoVoiceReply = v.auto

	rate, err := strconv.ParseFloat(v.rate, 64)
	if err != nil {
		return fmt.Errorf("playback rate: %w", err)
	}
	settings.PlaybackRate = rate

	settings.Theme = ""
	if v.theme != "" {
		theme, err := models.ParseTheme(v.theme)
		if err != nil {
			return err
		}
		settings.Theme = theme
	}
	return nil
}

func configureForm(v *configureValues) *huh.Form {
	optionChoices := make([]huh.Option[string], 0, len(models.ConfigurationOptions()))
	for _, option := range models.ConfigurationOptions() {
		optionChoices = append(optionChoices, huh.NewOption(option.Label, option.Key))
	}

	themeChoices := []huh.Option[string]{huh.NewOption("Según el día", "")}
	for _, theme := range models.AllThemes() {
		themeChoices = append(themeChoices, huh.NewOption(theme.Label(), string(theme)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Oraciones").
				Description("El bloque de los misterios siempre se reza.").
				Options(optionChoices...).
				Value(&v.options),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Modo").
				Options(
					huh.NewOption("Solo", string(models.PrayerModeSolo)),
					huh.NewOption("Responsorial", string(models.PrayerModeResponsorial)),
				).
				Value(&v.mode),
			huh.NewConfirm().
				Title("Respuesta automática").
				Value(&v.auto),
			huh.NewSelect[string]().
				Title("Velocidad").
				Options(
					huh.NewOption("0.75x", "0.75"),
					huh.NewOption("1x", "1"),
					huh.NewOption("1.25x", "1.25"),
					huh.NewOption("1.5x", "1.5"),
				).
				Value(&v.rate),
			huh.NewSelect[string]().
				Title("Misterios").
				Options(themeChoices...).
				Value(&v.theme),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("¿Restaurar valores por defecto?").
				Affirmative("Sí").
				Negative("No").
				Value(&v.defaults),
		),
	).WithTheme(rosarioHuhTheme()).WithShowHelp(false)
}

func rosarioHuhTheme() *huh.Theme {
	tokens := styles.ThemeByName(GetConfig().TUI.Theme).Tokens
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Accent)).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.TextMuted))
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Accent))
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Success))
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text))
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)).Background(lipgloss.Color(tokens.Accent)).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.TextMuted)).Padding(0, 1)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.TextMuted))
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.TextMuted))
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.TextMuted))
	return t
}
