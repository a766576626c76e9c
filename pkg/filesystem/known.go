package filesystem

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/pkg/errors"
)

// KnownDirectory identifies a well-known, per-platform directory.
type KnownDirectory uint8

const (
	// KnownDirectoryHome is the current user's home directory.
	KnownDirectoryHome KnownDirectory = iota
	// KnownDirectoryDesktop is the current user's desktop directory.
	KnownDirectoryDesktop
	// KnownDirectoryDownloads is the current user's downloads directory.
	KnownDirectoryDownloads
	// KnownDirectoryUserApplicationData is the per-user application data (or
	// configuration) directory.
	KnownDirectoryUserApplicationData
	// KnownDirectoryCommonApplicationData is the system-wide application data
	// directory.
	KnownDirectoryCommonApplicationData
)

// String provides a human-readable representation of a known directory.
func (d KnownDirectory) String() string {
	switch d {
	case KnownDirectoryHome:
		return "home"
	case KnownDirectoryDesktop:
		return "desktop"
	case KnownDirectoryDownloads:
		return "downloads"
	case KnownDirectoryUserApplicationData:
		return "user application data"
	case KnownDirectoryCommonApplicationData:
		return "common application data"
	default:
		return "unknown"
	}
}

// homeDirectory computes the current user's home directory, preferring the
// environment and falling back to the user database.
func homeDirectory() (string, error) {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home, nil
	}
	currentUser, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "unable to lookup current user")
	} else if currentUser.HomeDir == "" {
		return "", errors.New("unable to determine home directory")
	}
	return currentUser.HomeDir, nil
}

// ExecutablePath returns the path of the current executable with any symbolic
// links resolved.
func ExecutablePath() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", errors.Wrap(err, "unable to compute executable path")
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return path, nil
}

// SetWorkingDirectoryToExecutableDirectory changes the process working
// directory to the directory containing the current executable.
func SetWorkingDirectoryToExecutableDirectory() error {
	path, err := ExecutablePath()
	if err != nil {
		return err
	}
	if err := os.Chdir(filepath.Dir(path)); err != nil {
		return errors.Wrap(err, "unable to change working directory")
	}
	return nil
}
