package filesystem

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrProjectDirectoryNotFound indicates that no ancestor directory contained
// the requested marker.
var ErrProjectDirectoryNotFound = errors.New("project directory not found")

// FindProjectDirectory searches start and each of its ancestors for a directory
// containing an entry with the specified marker name (e.g. "go.mod" or ".git")
// and returns the first such directory.
func FindProjectDirectory(start, marker string) (string, error) {
	// Normalize the starting point.
	directory, err := Normalize(start)
	if err != nil {
		return "", err
	}

	// Walk upward until we find the marker or reach the filesystem root.
	for {
		if _, err := os.Lstat(filepath.Join(directory, marker)); err == nil {
			return directory, nil
		} else if !os.IsNotExist(err) {
			return "", errors.Wrap(err, "unable to query marker")
		}
		parent := filepath.Dir(directory)
		if parent == directory {
			return "", ErrProjectDirectoryNotFound
		}
		directory = parent
	}
}

// AbsolutePath resolves relative against base, returning a clean absolute
// path. If relative is already absolute, it's returned in cleaned form.
func AbsolutePath(base, relative string) (string, error) {
	if filepath.IsAbs(relative) {
		return filepath.Clean(relative), nil
	}
	base, err := Normalize(base)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, relative), nil
}
