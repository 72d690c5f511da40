package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/santorosario/rosario/internal/db"
	"github.com/santorosario/rosario/internal/models"
	"github.com/santorosario/rosario/internal/sequences"
)

var (
	sequenceTheme   string
	sequenceProfile string
	sequenceDate    string
	profilesTags    []string
)

func init() {
	rootCmd.AddCommand(sequenceCmd)
	rootCmd.AddCommand(mysteriesCmd)
	rootCmd.AddCommand(navigationCmd)
	rootCmd.AddCommand(profilesCmd)

	for _, cmd := range []*cobra.Command{sequenceCmd, mysteriesCmd, navigationCmd} {
		addSequenceFlags(cmd.Flags())
	}
	profilesCmd.Flags().StringSliceVar(&profilesTags, "tag", nil, "filter by tag (repeatable)")
}

func addSequenceFlags(fs *pflag.FlagSet) {
	fs.StringVar(&sequenceTheme, "theme", "", "mystery theme (gozosos, dolorosos, gloriosos, luminosos)")
	fs.StringVar(&sequenceProfile, "profile", "", "configuration profile to use instead of saved settings")
	fs.StringVar(&sequenceDate, "date", "", "pick the theme for this date (YYYY-MM-DD)")
}

var sequenceCmd = &cobra.Command{
	Use:   "sequence",
	Short: "Print the prayer sequence",
	Long:  "Build the sequence from the saved configuration (or a profile) and the day's theme, and print its enabled segments.",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadPlaybackSettings(cmd.Context())
		if err != nil {
			return err
		}
		seq := sequences.Build(settings.Configuration, settings.Theme)

		if IsJSONOutput() || IsJSONLOutput() {
			if IsJSONLOutput() {
				return WriteOutput(os.Stdout, seq.EnabledSegments())
			}
			return WriteOutput(os.Stdout, sequenceOutput{
				ID:          seq.ID,
				Theme:       seq.Theme,
				Fingerprint: sequences.Fingerprint(seq),
				Segments:    seq.EnabledSegments(),
			})
		}

		fmt.Printf("Misterios %s (%s)\n\n", seq.Theme.Label(), sequences.Fingerprint(seq)[:12])
		rows := make([][]string, 0, len(seq.Segments))
		for i, segment := range seq.EnabledSegments() {
			rows = append(rows, formatSegmentRow(i, segment))
		}
		return writeTable(os.Stdout, []string{"#", "KIND", "TITLE", "INTRO", "REPLY"}, rows)
	},
}

type sequenceOutput struct {
	ID          string           `json:"id"`
	Theme       models.Theme     `json:"theme"`
	Fingerprint string           `json:"fingerprint"`
	Segments    []models.Segment `json:"segments"`
}

var mysteriesCmd = &cobra.Command{
	Use:   "mysteries",
	Short: "List the mysteries of the day",
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, err := resolveTheme(sequenceTheme, sequenceDate, "", time.Now())
		if err != nil {
			return err
		}
		mysteries := models.MysteriesFor(theme)

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, mysteries)
		}

		fmt.Printf("Misterios %s\n\n", theme.Label())
		rows := make([][]string, 0, len(mysteries))
		for _, mystery := range mysteries {
			rows = append(rows, []string{strconv.Itoa(mystery.Number), mystery.Title, mystery.Description})
		}
		return writeTable(os.Stdout, []string{"#", "TITLE", "DESCRIPTION"}, rows)
	},
}

var navigationCmd = &cobra.Command{
	Use:   "navigation",
	Short: "List jump targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadPlaybackSettings(cmd.Context())
		if err != nil {
			return err
		}
		points := sequences.NavigationPoints(sequences.Build(settings.Configuration, settings.Theme))

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, points)
		}

		rows := make([][]string, 0, len(points))
		for _, point := range points {
			rows = append(rows, []string{strconv.Itoa(point.Index), point.Label})
		}
		return writeTable(os.Stdout, []string{"INDEX", "LABEL"}, rows)
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List configuration profiles",
	Long:  "List builtin and user configuration profiles. User profiles shadow builtins of the same name.",
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := loadProfiles()
		if err != nil {
			return err
		}
		profiles = filterProfiles(profiles, profilesTags)

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, profiles)
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles found.")
			return nil
		}

		rows := make([][]string, 0, len(profiles))
		for _, profile := range profiles {
			rows = append(rows, []string{
				profile.Name,
				profileSourceLabel(profile.Source),
				formatList(profile.Include),
				profile.Description,
			})
		}
		return writeTable(os.Stdout, []string{"NAME", "SOURCE", "INCLUDES", "DESCRIPTION"}, rows)
	},
}

// loadPlaybackSettings returns the saved settings with the --profile,
// --theme and --date flags applied and the theme resolved.
func loadPlaybackSettings(ctx context.Context) (models.Settings, error) {
	return loadProfileSettings(ctx, sequenceProfile)
}

// loadProfileSettings reads the saved settings, applies the named profile
// and resolves the theme from the command flags.
func loadProfileSettings(ctx context.Context, profileName string) (models.Settings, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	database, err := openDatabase()
	if err != nil {
		return models.Settings{}, err
	}
	defer database.Close()

	settings, err := db.NewSettingsRepository(database).Load(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	if profileName != "" {
		profiles, err := loadProfiles()
		if err != nil {
			return models.Settings{}, err
		}
		profile, err := sequences.FindProfile(profiles, profileName)
		if err != nil {
			return models.Settings{}, &PreflightError{
				Message:  err.Error(),
				Hint:     "List available profiles",
				NextStep: "rosario profiles",
				Err:      err,
			}
		}
		settings = profile.Apply(settings)
	}

	theme, err := resolveTheme(sequenceTheme, sequenceDate, settings.Theme, time.Now())
	if err != nil {
		return models.Settings{}, err
	}
	settings.Theme = theme
	return settings, nil
}

func loadProfiles() ([]*sequences.Profile, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	profiles, err := sequences.LoadProfilesFromSearchPaths(cwd, GetConfig().Profiles.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return profiles, nil
}

// resolveTheme picks the theme from the flag, then the date flag, then the
// saved override, then today's weekday.
func resolveTheme(flagTheme, flagDate string, saved models.Theme, now time.Time) (models.Theme, error) {
	if strings.TrimSpace(flagTheme) != "" {
		return models.ParseTheme(flagTheme)
	}
	if strings.TrimSpace(flagDate) != "" {
		date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(flagDate), time.Local)
		if err != nil {
			return "", fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", flagDate)
		}
		return models.ThemeForDate(date), nil
	}
	if saved.Valid() {
		return saved, nil
	}
	return models.ThemeForDate(now), nil
}

func filterProfiles(items []*sequences.Profile, tags []string) []*sequences.Profile {
	if len(tags) == 0 {
		return items
	}
	wanted := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		wanted[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}

	var out []*sequences.Profile
	for _, item := range items {
		for _, tag := range item.Tags {
			if _, ok := wanted[strings.ToLower(tag)]; ok {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

func profileSourceLabel(source string) string {
	if source == "" || source == "builtin" {
		return "builtin"
	}
	return "user"
}

func formatSegmentRow(index int, segment models.Segment) []string {
	reply := segment.ReplyAudio
	if reply == "" {
		reply = "-"
	}
	intro := segment.IntroAudio
	if intro == "" {
		intro = "-"
	}
	return []string{strconv.Itoa(index), segment.Kind.Label(), segment.Title, intro, reply}
}

func formatList(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
