package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/santorosario/rosario/internal/db"
	"github.com/santorosario/rosario/internal/events"
	"github.com/santorosario/rosario/internal/models"
	"github.com/santorosario/rosario/internal/sequences"
)

var settingsProfile string

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)

	settingsSetCmd.Flags().StringVar(&settingsProfile, "profile", "", "apply a configuration profile before the given keys")
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change saved settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show saved settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		settings, err := db.NewSettingsRepository(database).Load(context.Background())
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, settings)
		}
		return writeTable(os.Stdout, []string{"KEY", "VALUE"}, settingsRows(settings))
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key=value...]",
	Short: "Change saved settings",
	Long: `Change saved settings. Keys: mode (solo|responsorial), auto_voice_reply,
playback_rate, theme (empty for the weekday theme), and every configuration
option (creed, visita, initial_prayers, intro_prayers, trinity, litanies,
final_prayers, petitions).`,
	Example: "  rosario settings set mode=responsorial creed=true playback_rate=1.25",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && settingsProfile == "" {
			return fmt.Errorf("nothing to set; pass key=value pairs or --profile")
		}
		return updateSettings(context.Background(), func(settings *models.Settings) error {
			if settingsProfile != "" {
				profiles, err := loadProfiles()
				if err != nil {
					return err
				}
				profile, err := sequences.FindProfile(profiles, settingsProfile)
				if err != nil {
					return err
				}
				*settings = profile.Apply(*settings)
			}
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("invalid assignment %q (expected key=value)", arg)
				}
				if err := applySettingValue(settings, key, value); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateSettings(context.Background(), func(settings *models.Settings) error {
			*settings = models.DefaultSettings()
			return nil
		})
	},
}

// updateSettings loads, edits, validates, saves and logs the settings.
func updateSettings(ctx context.Context, edit func(*models.Settings) error) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	repo := db.NewSettingsRepository(database)
	settings, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := edit(&settings); err != nil {
		return err
	}
	if err := repo.Save(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := events.LogSettingsUpdated(ctx, db.NewEventRepository(database), settings); err != nil {
		logger.Warn().Err(err).Msg("failed to record settings change")
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(os.Stdout, settings)
	}
	fmt.Println("Settings saved.")
	return nil
}

func applySettingValue(settings *models.Settings, key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	switch key {
	case "mode":
		mode, err := models.ParsePrayerMode(value)
		if err != nil {
			return err
		}
		settings.Mode = mode
	case "auto_voice_reply", "auto_voice":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		settings.AutoVoiceReply = enabled
	case "playback_rate", "rate":
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		settings.PlaybackRate = rate
	case "theme":
		if value == "" {
			settings.Theme = ""
			return nil
		}
		theme, err := models.ParseTheme(value)
		if err != nil {
			return err
		}
		settings.Theme = theme
	default:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return settings.Configuration.SetOption(key, enabled)
	}
	return nil
}

func settingsRows(settings models.Settings) [][]string {
	theme := "weekday"
	if settings.Theme != "" {
		theme = settings.Theme.Label()
	}
	rows := [][]string{
		{"mode", string(settings.Mode)},
		{"auto_voice_reply", yesNo(settings.AutoVoiceReply)},
		{"playback_rate", strconv.FormatFloat(settings.EffectiveRate(), 'g', -1, 64)},
		{"theme", theme},
	}

	for _, option := range models.ConfigurationOptions() {
		rows = append(rows, []string{option.Key, yesNo(option.Get(settings.Configuration))})
	}
	return rows
}
