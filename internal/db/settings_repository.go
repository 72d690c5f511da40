package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/santorosario/rosario/internal/models"
)

const (
	settingMode           = "mode"
	settingAutoVoiceReply = "auto_voice_reply"
	settingPlaybackRate   = "playback_rate"
	settingTheme          = "theme"
	settingConfiguration  = "configuration"
)

// SettingsRepository persists user preferences as key/value rows.
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Load returns the stored settings, falling back to defaults for missing or
// unreadable keys.
func (r *SettingsRepository) Load(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()

	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return settings, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, fmt.Errorf("failed to scan setting: %w", err)
		}
		if err := applySetting(&settings, key, value); err != nil {
			r.db.logger.Warn().Err(err).Str("key", key).Msg("ignoring stored setting")
		}
	}
	if err := rows.Err(); err != nil {
		return settings, fmt.Errorf("error iterating settings: %w", err)
	}

	return settings, nil
}

// Save validates and stores every setting in one transaction.
func (r *SettingsRepository) Save(ctx context.Context, settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	configuration, err := json.Marshal(settings.Configuration)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	values := map[string]string{
		settingMode:           string(settings.Mode),
		settingAutoVoiceReply: strconv.FormatBool(settings.AutoVoiceReply),
		settingPlaybackRate:   strconv.FormatFloat(settings.PlaybackRate, 'f', -1, 64),
		settingTheme:          string(settings.Theme),
		settingConfiguration:  string(configuration),
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value, now); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	return tx.Commit()
}

func applySetting(settings *models.Settings, key, value string) error {
	switch key {
	case settingMode:
		mode, err := models.ParsePrayerMode(value)
		if err != nil {
			return err
		}
		settings.Mode = mode
	case settingAutoVoiceReply:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		settings.AutoVoiceReply = enabled
	case settingPlaybackRate:
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		settings.PlaybackRate = rate
	case settingTheme:
		if value == "" {
			settings.Theme = ""
			return nil
		}
		theme, err := models.ParseTheme(value)
		if err != nil {
			return err
		}
		settings.Theme = theme
	case settingConfiguration:
		var cfg models.Configuration
		if err := json.Unmarshal([]byte(value), &cfg); err != nil {
			return err
		}
		settings.Configuration = cfg
	default:
		return fmt.Errorf("unknown setting")
	}
	return nil
}
