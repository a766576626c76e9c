package filesystem

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// splitTildePath splits a path that begins with a tilde into its username
// component (which may be empty) and the remainder following the first path
// separator. On Windows, both forward slashes and backslashes are separators.
func splitTildePath(path string) (string, string) {
	for i := 1; i < len(path); i++ {
		if os.IsPathSeparator(path[i]) {
			return path[1:i], path[i+1:]
		}
	}
	return path[1:], ""
}

// tildeExpand attempts tilde expansion of paths beginning with ~/ or
// ~<username>/. On Windows, it additionally supports ~\ and ~<username>\.
func tildeExpand(path string) (string, error) {
	// Only process relevant paths.
	if path == "" || path[0] != '~' {
		return path, nil
	}

	// Divide the path into its username and subpath portions.
	username, remaining := splitTildePath(path)

	// Compute the relevant home directory. If the username is empty, then we
	// use the current user's home directory, otherwise we need to do a lookup.
	var homeDirectory string
	if username == "" {
		if h, err := os.UserHomeDir(); err != nil {
			return "", errors.Wrap(err, "unable to compute path to home directory")
		} else {
			homeDirectory = h
		}
	} else {
		if u, err := user.Lookup(username); err != nil {
			return "", errors.Wrap(err, "unable to lookup user")
		} else {
			homeDirectory = u.HomeDir
		}
	}

	// Compute the full path.
	return filepath.Join(homeDirectory, remaining), nil
}

// Normalize normalizes a path, expanding home directory tildes, converting it
// to an absolute path, and cleaning the result.
func Normalize(path string) (string, error) {
	// Expand any leading tilde.
	path, err := tildeExpand(path)
	if err != nil {
		return "", errors.Wrap(err, "unable to perform tilde expansion")
	}

	// Convert to an absolute path. This will also invoke filepath.Clean.
	path, err = filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(err, "unable to compute absolute path")
	}

	// Success.
	return path, nil
}

// IsWithin returns whether or not path is equal to or a descendant of parent.
// Both paths must be clean and absolute. The comparison is performed on whole
// path components, so /a/b is within /a but /ab is not.
func IsWithin(path, parent string) bool {
	// Handle the trivial case.
	if path == parent {
		return true
	}

	// Compute the prefix that descendants must carry. Filesystem roots (such
	// as / or C:\) already end with a separator.
	prefix := parent
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}

	// Check for the prefix.
	return strings.HasPrefix(path, prefix)
}
