package models

import (
	"fmt"
	"strings"
)

// PrayerMode selects between call-and-response and solo recitation.
type PrayerMode string

const (
	PrayerModeResponsorial PrayerMode = "responsorial"
	PrayerModeSolo         PrayerMode = "solo"
)

// ParsePrayerMode accepts "responsorial" or "solo".
func ParsePrayerMode(value string) (PrayerMode, error) {
	switch PrayerMode(strings.ToLower(strings.TrimSpace(value))) {
	case PrayerModeResponsorial:
		return PrayerModeResponsorial, nil
	case PrayerModeSolo:
		return PrayerModeSolo, nil
	default:
		return "", fmt.Errorf("unknown prayer mode %q", value)
	}
}

// Rate bounds accepted by settings.
const (
	MinPlaybackRate = 0.5
	MaxPlaybackRate = 2.0
)

// Settings are the persisted user preferences read by playback.
type Settings struct {
	Mode           PrayerMode    `json:"mode"`
	AutoVoiceReply bool          `json:"auto_voice_reply"`
	PlaybackRate   float64       `json:"playback_rate"`
	Configuration  Configuration `json:"configuration"`

	// Theme overrides the weekday theme when set.
	Theme Theme `json:"theme,omitempty"`
}

// DefaultSettings returns solo mode at normal speed with the default
// configuration.
func DefaultSettings() Settings {
	return Settings{
		Mode:           PrayerModeSolo,
		AutoVoiceReply: true,
		PlaybackRate:   1.0,
		Configuration:  DefaultConfiguration(),
	}
}

// Responsorial reports whether the mode is responsorial.
func (s Settings) Responsorial() bool {
	return s.Mode == PrayerModeResponsorial
}

// EffectiveRate returns the playback rate, treating non-positive values as 1.0.
func (s Settings) EffectiveRate() float64 {
	return NormalizeRate(s.PlaybackRate)
}

// NormalizeRate maps non-positive rates to 1.0.
func NormalizeRate(rate float64) float64 {
	if rate <= 0 {
		return 1.0
	}
	return rate
}

// Validate checks the settings.
func (s *Settings) Validate() error {
	validation := &ValidationErrors{}
	if s.Mode != PrayerModeResponsorial && s.Mode != PrayerModeSolo {
		validation.AddMessage("mode", "mode must be responsorial or solo")
	}
	if s.PlaybackRate < MinPlaybackRate || s.PlaybackRate > MaxPlaybackRate {
		validation.AddMessage("playback_rate", fmt.Sprintf("playback rate must be between %.1f and %.1f", MinPlaybackRate, MaxPlaybackRate))
	}
	if s.Theme != "" && !s.Theme.Valid() {
		validation.AddMessage("theme", "unknown theme")
	}
	return validation.Err()
}
