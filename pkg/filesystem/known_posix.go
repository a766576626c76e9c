//go:build !windows

package filesystem

import (
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// KnownDirectoryPath computes the path to a well-known directory. It does not
// verify that the directory exists.
func KnownDirectoryPath(directory KnownDirectory) (string, error) {
	// Handle system-wide directories, which don't depend on the user.
	if directory == KnownDirectoryCommonApplicationData {
		if runtime.GOOS == "darwin" {
			return "/Library/Application Support", nil
		}
		return "/var/lib", nil
	}

	// Compute the home directory.
	home, err := homeDirectory()
	if err != nil {
		return "", err
	}

	// Compute the result.
	switch directory {
	case KnownDirectoryHome:
		return home, nil
	case KnownDirectoryDesktop:
		return filepath.Join(home, "Desktop"), nil
	case KnownDirectoryDownloads:
		return filepath.Join(home, "Downloads"), nil
	case KnownDirectoryUserApplicationData:
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support"), nil
		}
		return filepath.Join(home, ".config"), nil
	default:
		return "", errors.New("unknown directory")
	}
}
