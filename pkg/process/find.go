package process

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// ErrCommandNotFound indicates that FindCommand was unable to locate a command.
var ErrCommandNotFound = errors.New("unable to locate command")

// FindCommand searches for a command with the specified name within the
// specified list of directories. It's similar to os/exec.LookPath, except that
// it allows one to manually specify paths, and it uses a slightly simpler
// lookup mechanism.
func FindCommand(name string, paths []string) (string, error) {
	// Iterate through the directories.
	for _, path := range paths {
		// Skip empty entries, which would otherwise resolve relative to the
		// working directory.
		if path == "" {
			continue
		}

		// Compute the target name.
		target := filepath.Join(path, ExecutableName(name, runtime.GOOS))

		// Check if the target exists and has the correct type.
		if metadata, err := os.Stat(target); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", errors.Wrap(err, "unable to query file metadata")
		} else if metadata.Mode()&os.ModeType != 0 {
			continue
		} else {
			return target, nil
		}
	}

	// Failure.
	return "", ErrCommandNotFound
}

// FindCommandInPath searches for a command in the directories listed in the
// PATH environment variable.
func FindCommandInPath(name string) (string, error) {
	return FindCommand(name, filepath.SplitList(os.Getenv("PATH")))
}
