package driver

import (
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Discover returns the token documents under dir matching any include
// pattern and no exclude pattern. Patterns are slash-separated and relative
// to dir. The result is sorted and free of duplicates.
func Discover(fsys afero.Fs, dir string, include, exclude []string) ([]string, error) {
	for _, pattern := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.WithDetails(errors.New("invalid glob pattern"), "pattern", pattern)
		}
	}

	base := fsys
	if dir != "" && dir != "." {
		base = afero.NewBasePathFs(fsys, dir)
	}
	root := afero.NewIOFS(base)

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range include {
		matches, err := doublestar.Glob(root, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("globbing %s: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || excluded(m, exclude) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}

	sort.Strings(files)
	for i, f := range files {
		files[i] = filepath.Join(dir, filepath.FromSlash(f))
	}
	return files, nil
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
