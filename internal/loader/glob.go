package loader

import (
	"github.com/bmatcuk/doublestar/v4"
)

// ExpandGlobs resolves glob patterns (including recursive ** patterns) into
// a deduplicated list of file paths, preserving pattern order. A pattern
// that matches nothing is kept as a literal path so that opening it later
// surfaces a proper load failure instead of silently skipping it.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			add(pattern)
			continue
		}
		for _, m := range matches {
			add(m)
		}
	}

	return paths, nil
}
