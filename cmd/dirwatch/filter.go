package main

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// filter discards events whose paths match ignore patterns. Patterns are
// matched against the slash-separated path relative to the watch root.
type filter struct {
	// patterns are the ignore patterns.
	patterns []string
}

// newFilter validates ignore patterns and creates a filter.
func newFilter(patterns []string) (*filter, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid ignore pattern: %s", pattern)
		}
	}
	return &filter{patterns: patterns}, nil
}

// ignored returns whether or not an event for path (relative to directory)
// should be discarded for a watch rooted at root.
func (f *filter) ignored(root, directory, path string) bool {
	// If there are no patterns, then nothing is ignored.
	if len(f.patterns) == 0 {
		return false
	}

	// Compute the path relative to the watch root. Events are always reported
	// within the root, so failure here indicates a path we can't classify.
	relative, err := filepath.Rel(root, filepath.Join(directory, path))
	if err != nil {
		return false
	}
	relative = filepath.ToSlash(relative)

	// Check patterns.
	for _, pattern := range f.patterns {
		if match, _ := doublestar.Match(pattern, relative); match {
			return true
		}
	}
	return false
}
