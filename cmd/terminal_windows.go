package cmd

import (
	"context"
	"os"

	"github.com/pkg/errors"

	isatty "github.com/mattn/go-isatty"

	"github.com/mutagen-io/dirwatch/pkg/environment"
	"github.com/mutagen-io/dirwatch/pkg/filesystem"
	"github.com/mutagen-io/dirwatch/pkg/process"
)

// HandleTerminalCompatibility automatically restarts the current process inside
// a terminal compatibility emulator if necessary. It currently only handles the
// case of mintty consoles requiring a relaunch of the current command inside
// winpty.
func HandleTerminalCompatibility() {
	// If we're not running inside a mintty-based terminal, then there's nothing
	// that we need to do.
	if !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return
	}

	// Locate winpty.
	winpty, err := process.FindCommandInPath("winpty")
	if err != nil {
		Fatal(errors.New("running inside mintty terminal and unable to locate winpty"))
	}

	// Compute the path to the current executable.
	executable, err := filesystem.ExecutablePath()
	if err != nil {
		Fatal(errors.Wrap(err, "running inside mintty terminal and unable to locate current executable"))
	}

	// Relaunch inside winpty and terminate with its exit code. Output isn't
	// captured, so the child shares our console.
	arguments := append([]string{executable}, os.Args[1:]...)
	result, err := process.Execute(context.Background(), process.StartInfo{
		Path:               winpty,
		Arguments:          arguments,
		Environment:        environment.CopyCurrent(),
		InheritEnvironment: false,
		WaitForExit:        true,
	})
	if err != nil {
		Fatal(errors.Wrap(err, "unable to relaunch inside winpty"))
	}
	exit(result.ExitCode)
}
