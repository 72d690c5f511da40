package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Library maps logical audio references to files under a media directory.
type Library struct {
	Dir string
	// Extension is appended to refs that have none, e.g. ".m4a".
	Extension string
}

// Resolve returns the file path for ref, or ErrNotFound.
func (l Library) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if strings.Contains(ref, "..") || filepath.IsAbs(ref) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	name := ref
	if filepath.Ext(name) == "" && l.Extension != "" {
		name += "." + strings.TrimPrefix(l.Extension, ".")
	}

	path := filepath.Join(l.Dir, filepath.FromSlash(name))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return path, nil
}

// Missing returns the refs that do not resolve, preserving order and
// dropping duplicates.
func (l Library) Missing(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	var missing []string
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		if _, err := l.Resolve(ref); err != nil {
			missing = append(missing, ref)
		}
	}
	return missing
}
