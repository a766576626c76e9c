// Package process provides facilities for launching child processes and
// interpreting their results.
package process

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/mutagen-io/dirwatch/pkg/environment"
)

// StartInfo describes a process to launch.
type StartInfo struct {
	// Path is the path to the executable. If it contains no path separators,
	// it's resolved using the PATH environment variable.
	Path string
	// Arguments are the process arguments, excluding the executable name.
	Arguments []string
	// Environment specifies environment variables for the process. When
	// InheritEnvironment is true, these take precedence over inherited values.
	Environment map[string]string
	// InheritEnvironment indicates whether or not the process should inherit
	// the current process' environment.
	InheritEnvironment bool
	// WaitForExit indicates whether or not Execute should wait for the process
	// to exit. If false, the process is started detached and Execute returns
	// immediately after launch.
	WaitForExit bool
	// ReadOutput indicates whether or not standard output and standard error
	// should be captured. It only has an effect if WaitForExit is true. If
	// false, the process shares the standard streams of the current process.
	ReadOutput bool
}

// ExitInfo describes the result of process execution.
type ExitInfo struct {
	// ExitCode is the exit code of the process. It's zero for processes that
	// weren't waited on.
	ExitCode int
	// Output is the captured standard output of the process, if requested.
	Output string
	// ErrorOutput is the captured standard error of the process, if requested.
	ErrorOutput string
}

// environmentFor computes the environment for a process.
func environmentFor(info StartInfo) []string {
	if info.InheritEnvironment {
		return environment.FromMap(environment.Merge(environment.Current, info.Environment))
	}
	return environment.FromMap(info.Environment)
}

// Execute launches a process. A non-zero exit code is not considered an error.
// An error is returned only if the process can't be started or waited on. The
// context only governs processes that are waited on, killing them if it's
// cancelled before they exit.
func Execute(ctx context.Context, info StartInfo) (*ExitInfo, error) {
	// Validate the executable path.
	if info.Path == "" {
		return nil, errors.New("empty executable path")
	}

	// Handle detached launches.
	if !info.WaitForExit {
		process := exec.Command(info.Path, info.Arguments...)
		process.Env = environmentFor(info)
		process.SysProcAttr = DetachedProcessAttributes()
		if err := process.Start(); err != nil {
			return nil, errors.Wrap(err, "unable to start process")
		}
		if err := process.Process.Release(); err != nil {
			return nil, errors.Wrap(err, "unable to release process")
		}
		return &ExitInfo{}, nil
	}

	// Create the process.
	process := exec.CommandContext(ctx, info.Path, info.Arguments...)
	process.Env = environmentFor(info)

	// Set up output capture if requested, otherwise share our streams.
	var output, errorOutput bytes.Buffer
	if info.ReadOutput {
		process.Stdout = &output
		process.Stderr = &errorOutput
	} else {
		process.Stdin = os.Stdin
		process.Stdout = os.Stdout
		process.Stderr = os.Stderr
	}

	// Run the process and extract its exit code.
	result := &ExitInfo{}
	if err := process.Run(); err != nil {
		if process.ProcessState == nil {
			return nil, errors.Wrap(err, "unable to start process")
		} else if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "process terminated")
		} else if code, codeErr := ExitCodeForError(err); codeErr != nil {
			return nil, errors.Wrap(err, "unable to wait for process")
		} else {
			result.ExitCode = code
		}
	}

	// Store output.
	if info.ReadOutput {
		result.Output = output.String()
		result.ErrorOutput = errorOutput.String()
	}

	// Success.
	return result, nil
}
