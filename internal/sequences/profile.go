package sequences

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santorosario/rosario/internal/models"
)

// ErrProfileNotFound is returned when no profile matches a name.
var ErrProfileNotFound = errors.New("profile not found")

// Profile is a named configuration preset loaded from YAML.
type Profile struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Include     []string `yaml:"include"`
	Theme       string   `yaml:"theme,omitempty"`
	Mode        string   `yaml:"mode,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Source      string   `yaml:"-"` // file path or "builtin"
}

// Configuration returns the configuration enabling exactly the included
// options.
func (p *Profile) Configuration() models.Configuration {
	var cfg models.Configuration
	for _, key := range p.Include {
		_ = cfg.SetOption(key, true)
	}
	return cfg
}

// ResolveTheme returns the profile theme, or fallback when unset.
func (p *Profile) ResolveTheme(fallback models.Theme) models.Theme {
	if p.Theme == "" {
		return fallback
	}
	theme, err := models.ParseTheme(p.Theme)
	if err != nil {
		return fallback
	}
	return theme
}

// Apply copies the profile's configuration and optional mode and theme
// onto settings.
func (p *Profile) Apply(settings models.Settings) models.Settings {
	settings.Configuration = p.Configuration()
	if p.Mode != "" {
		if mode, err := models.ParsePrayerMode(p.Mode); err == nil {
			settings.Mode = mode
		}
	}
	if p.Theme != "" {
		if theme, err := models.ParseTheme(p.Theme); err == nil {
			settings.Theme = theme
		}
	}
	return settings
}

// FindProfile returns the profile with the given name (case-insensitive).
func FindProfile(profiles []*Profile, name string) (*Profile, error) {
	name = strings.TrimSpace(name)
	for _, profile := range profiles {
		if strings.EqualFold(profile.Name, name) {
			return profile, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
}
