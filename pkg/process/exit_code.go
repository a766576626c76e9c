package process

import (
	"os/exec"

	"github.com/pkg/errors"
)

const (
	// posixShellCommandNotFoundExitCode is the exit code returned by POSIX
	// shells when the provided command isn't found.
	posixShellCommandNotFoundExitCode = 127
)

// ExitCodeForError extracts the process exit code from an error returned by
// os/exec.Cmd's Run or Wait methods.
func ExitCodeForError(err error) (int, error) {
	if err == nil {
		return 0, errors.New("nil error")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, errors.New("error is not an exit error")
	}
	return exitErr.ExitCode(), nil
}

// IsPOSIXShellCommandNotFound returns whether or not an exit code represents a
// "command not found" error from a POSIX shell.
func IsPOSIXShellCommandNotFound(code int) bool {
	return code == posixShellCommandNotFoundExitCode
}
