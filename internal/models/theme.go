// Package models defines the core types of the rosary recitation.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Theme selects which group of five mysteries is recited.
type Theme string

const (
	ThemeJoyful    Theme = "joyful"
	ThemeSorrowful Theme = "sorrowful"
	ThemeGlorious  Theme = "glorious"
	ThemeLuminous  Theme = "luminous"
)

// AllThemes lists the themes in display order.
func AllThemes() []Theme {
	return []Theme{ThemeJoyful, ThemeSorrowful, ThemeGlorious, ThemeLuminous}
}

// Label returns the Spanish name of the mystery group.
func (t Theme) Label() string {
	switch t {
	case ThemeJoyful:
		return "Gozosos"
	case ThemeSorrowful:
		return "Dolorosos"
	case ThemeGlorious:
		return "Gloriosos"
	case ThemeLuminous:
		return "Luminosos"
	default:
		return string(t)
	}
}

// AudioKey is the lowercase label used in announcement audio names.
func (t Theme) AudioKey() string {
	return strings.ToLower(t.Label())
}

// Valid reports whether t is one of the four known themes.
func (t Theme) Valid() bool {
	switch t {
	case ThemeJoyful, ThemeSorrowful, ThemeGlorious, ThemeLuminous:
		return true
	default:
		return false
	}
}

// ParseTheme accepts either the identifier ("joyful") or the Spanish label
// ("Gozosos"), case-insensitively.
func ParseTheme(value string) (Theme, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, theme := range AllThemes() {
		if normalized == string(theme) || normalized == theme.AudioKey() {
			return theme, nil
		}
	}
	return "", fmt.Errorf("unknown theme %q", value)
}

// ThemeForWeekday returns the traditional mystery group for a weekday.
func ThemeForWeekday(day time.Weekday) Theme {
	switch day {
	case time.Monday, time.Saturday:
		return ThemeJoyful
	case time.Tuesday, time.Friday:
		return ThemeSorrowful
	case time.Thursday:
		return ThemeLuminous
	default:
		return ThemeGlorious
	}
}

// ThemeForDate returns the mystery group for the local weekday of t.
func ThemeForDate(t time.Time) Theme {
	return ThemeForWeekday(t.Weekday())
}
