package sequences

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// LoadBuiltinProfiles returns the profiles bundled with the binary.
func LoadBuiltinProfiles() ([]*Profile, error) {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin profiles: %w", err)
	}

	profiles := make([]*Profile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin profile %s: %w", entry.Name(), err)
		}
		profile, err := parseProfile(data)
		if err != nil {
			return nil, fmt.Errorf("parse builtin profile %s: %w", entry.Name(), err)
		}
		profile.Source = "builtin"
		profiles = append(profiles, profile)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})

	return profiles, nil
}
