package sequences

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/santorosario/rosario/internal/models"
)

// LoadProfile reads a single profile from disk.
func LoadProfile(path string) (*Profile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("profile path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	profile, err := parseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	profile.Source = path
	return profile, nil
}

// LoadProfilesFromDir loads all profiles from a directory. A missing
// directory yields no profiles.
func LoadProfilesFromDir(dir string) ([]*Profile, error) {
	if strings.TrimSpace(dir) == "" {
		return []*Profile{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Profile{}, nil
		}
		return nil, fmt.Errorf("read profiles dir %s: %w", dir, err)
	}

	profiles := make([]*Profile, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		profile, err := LoadProfile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})

	return profiles, nil
}

func parseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, err
	}

	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return nil, fmt.Errorf("profile name is required")
	}
	profile.Description = strings.TrimSpace(profile.Description)

	var scratch models.Configuration
	seen := make(map[string]struct{})
	include := make([]string, 0, len(profile.Include))
	for _, raw := range profile.Include {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
		if key == "" {
			continue
		}
		if _, exists := seen[key]; exists {
			return nil, fmt.Errorf("duplicate profile option %q", key)
		}
		if err := scratch.SetOption(key, true); err != nil {
			return nil, err
		}
		seen[key] = struct{}{}
		include = append(include, key)
	}
	profile.Include = include

	profile.Theme = strings.TrimSpace(profile.Theme)
	if profile.Theme != "" {
		if _, err := models.ParseTheme(profile.Theme); err != nil {
			return nil, err
		}
	}

	profile.Mode = strings.TrimSpace(profile.Mode)
	if profile.Mode != "" {
		if _, err := models.ParsePrayerMode(profile.Mode); err != nil {
			return nil, err
		}
	}

	return &profile, nil
}
