package configuration

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mutagen-io/dirwatch/pkg/filesystem"
)

const (
	// directoryName is the name of the configuration directory within the
	// user application data directory.
	directoryName = "dirwatch"
	// fileName is the name of the configuration file.
	fileName = "dirwatch.yml"
)

// DefaultPath returns the path of the default configuration file. It does not
// verify that the file exists.
func DefaultPath() (string, error) {
	// Compute the user application data directory.
	root, err := filesystem.KnownDirectoryPath(filesystem.KnownDirectoryUserApplicationData)
	if err != nil {
		return "", errors.Wrap(err, "unable to compute application data directory")
	}

	// Success.
	return filepath.Join(root, directoryName, fileName), nil
}
