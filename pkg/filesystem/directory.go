package filesystem

import (
	"os"

	"github.com/pkg/errors"
)

// DirectoryContentsByPath returns the contents of the directory at the
// specified path. The ordering of the contents is non-deterministic. Symbolic
// links are reported as such and not followed.
func DirectoryContentsByPath(path string) ([]os.FileInfo, error) {
	// Open the directory and ensure its closure.
	directory, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open directory")
	}
	defer directory.Close()

	// Grab the directory contents.
	contents, err := directory.Readdir(0)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read directory contents")
	}

	// Success.
	return contents, nil
}

// IsDirectory returns whether or not the specified path refers to a directory,
// following any symbolic links. Non-existence is not treated as an error, it
// simply yields false. Any other metadata query failure is returned.
func IsDirectory(path string) (bool, error) {
	metadata, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "unable to query path metadata")
	}
	return metadata.IsDir(), nil
}
