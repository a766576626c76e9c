package main

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mutagen-io/dirwatch/pkg/environment"
	"github.com/mutagen-io/dirwatch/pkg/filesystem/watching"
	"github.com/mutagen-io/dirwatch/pkg/logging"
	"github.com/mutagen-io/dirwatch/pkg/process"
)

const (
	// eventEnvironmentVariable is the environment variable containing the
	// event kind for hook commands.
	eventEnvironmentVariable = "DIRWATCH_EVENT"
	// directoryEnvironmentVariable is the environment variable containing the
	// directory in which the event occurred.
	directoryEnvironmentVariable = "DIRWATCH_DIRECTORY"
	// pathEnvironmentVariable is the environment variable containing the path
	// of the affected entry relative to the directory.
	pathEnvironmentVariable = "DIRWATCH_PATH"

	// hookQueueCapacity is the maximum number of pending hook invocations.
	// Events arriving while the queue is full are dropped with a warning.
	hookQueueCapacity = 1024
)

// hookInvocation is a pending hook execution for a single event.
type hookInvocation struct {
	// kind is the event kind.
	kind watching.EventKind
	// directory is the directory in which the event occurred.
	directory string
	// path is the affected entry relative to directory.
	path string
}

// hook is a command executed for each delivered event.
type hook struct {
	// path is the resolved executable path.
	path string
	// arguments are the command arguments.
	arguments []string
	// environment contains additional environment variables, usually loaded
	// from an environment file.
	environment map[string]string
	// logger is the hook logger.
	logger *logging.Logger
	// execute is the process execution function.
	execute func(context.Context, process.StartInfo) (*process.ExitInfo, error)
	// queue carries pending invocations to the execution Goroutine.
	queue chan hookInvocation
	// done is closed when the execution Goroutine exits.
	done chan struct{}
}

// newHook parses a whitespace-separated command specification and resolves its
// executable. A bare executable name is looked up in the PATH.
func newHook(specification string, environment map[string]string, logger *logging.Logger) (*hook, error) {
	// Split the specification.
	fields := strings.Fields(specification)
	if len(fields) == 0 {
		return nil, errors.New("empty command specification")
	}

	// Resolve the executable.
	path := fields[0]
	if !strings.ContainsRune(path, filepath.Separator) && !strings.ContainsRune(path, '/') {
		resolved, err := process.FindCommandInPath(path)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to resolve command (%s)", path)
		}
		path = resolved
	}

	// Success.
	return &hook{
		path:        path,
		arguments:   fields[1:],
		environment: environment,
		logger:      logger,
		execute:     process.Execute,
	}, nil
}

// startInfo computes the process start information for an event.
func (h *hook) startInfo(kind watching.EventKind, directory, path string) process.StartInfo {
	return process.StartInfo{
		Path:      h.path,
		Arguments: h.arguments,
		Environment: environment.Merge(h.environment, map[string]string{
			eventEnvironmentVariable:     kind.String(),
			directoryEnvironmentVariable: directory,
			pathEnvironmentVariable:      path,
		}),
		InheritEnvironment: true,
		WaitForExit:        true,
		ReadOutput:         true,
	}
}

// start launches the Goroutine that executes queued invocations in order. It
// exits once ctx is cancelled, terminating any command in progress.
func (h *hook) start(ctx context.Context) {
	h.queue = make(chan hookInvocation, hookQueueCapacity)
	h.done = make(chan struct{})
	go func() {
		defer close(h.done)
		for {
			select {
			case <-ctx.Done():
				return
			case invocation := <-h.queue:
				h.run(ctx, invocation.kind, invocation.directory, invocation.path)
			}
		}
	}()
}

// dispatch queues an invocation without blocking. It must only be called
// after start.
func (h *hook) dispatch(kind watching.EventKind, directory, path string) {
	select {
	case h.queue <- hookInvocation{kind, directory, path}:
	default:
		h.logger.Warnf("Command queue full, dropping %s event for %s", kind, filepath.Join(directory, path))
	}
}

// wait blocks until the execution Goroutine started by start has exited.
func (h *hook) wait() {
	<-h.done
}

// forward writes captured command output to a logging writer, terminating any
// final partial line so that it isn't lost.
func forward(output string, destination io.Writer) {
	if output == "" {
		return
	}
	if !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	destination.Write([]byte(output))
}

// run executes the hook for an event and logs its output. Failures are logged
// rather than returned since they shouldn't terminate watching.
func (h *hook) run(ctx context.Context, kind watching.EventKind, directory, path string) {
	result, err := h.execute(ctx, h.startInfo(kind, directory, path))
	if err != nil {
		if ctx.Err() == nil {
			h.logger.Warn(errors.Wrap(err, "unable to run command"))
		}
		return
	}
	forward(result.Output, h.logger.Writer(logging.LevelInfo))
	forward(result.ErrorOutput, h.logger.Writer(logging.LevelWarn))
	if result.ExitCode != 0 {
		if process.IsPOSIXShellCommandNotFound(result.ExitCode) {
			h.logger.Warnf("Command reported command not found (exit code %d)", result.ExitCode)
		} else {
			h.logger.Debugf("Command exited with code %d", result.ExitCode)
		}
	}
}
