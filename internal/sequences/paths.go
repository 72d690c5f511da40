package sequences

import (
	"os"
	"path/filepath"
)

// ProfileSearchPaths returns profile directories in precedence order. Extra
// directories come first.
func ProfileSearchPaths(projectDir string, extra ...string) []string {
	paths := make([]string, 0, len(extra)+3)
	for _, dir := range extra {
		if dir != "" {
			paths = append(paths, dir)
		}
	}
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ".rosario", "profiles"))
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "rosario", "profiles"))
	}

	paths = append(paths, filepath.Join(string(filepath.Separator), "usr", "share", "rosario", "profiles"))
	return paths
}

// LoadProfilesFromSearchPaths loads profiles from the search paths with
// first-hit precedence, then fills in builtins not shadowed by name.
func LoadProfilesFromSearchPaths(projectDir string, extra ...string) ([]*Profile, error) {
	seen := make(map[string]*Profile)
	order := make([]string, 0)

	for _, path := range ProfileSearchPaths(projectDir, extra...) {
		profiles, err := LoadProfilesFromDir(path)
		if err != nil {
			return nil, err
		}
		for _, profile := range profiles {
			if _, exists := seen[profile.Name]; exists {
				continue
			}
			seen[profile.Name] = profile
			order = append(order, profile.Name)
		}
	}

	builtins, err := LoadBuiltinProfiles()
	if err != nil {
		return nil, err
	}
	for _, profile := range builtins {
		if _, exists := seen[profile.Name]; exists {
			continue
		}
		seen[profile.Name] = profile
		order = append(order, profile.Name)
	}

	resolved := make([]*Profile, 0, len(order))
	for _, name := range order {
		resolved = append(resolved, seen[name])
	}
	return resolved, nil
}
