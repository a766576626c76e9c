package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/mutagen-io/dirwatch/cmd"
	"github.com/mutagen-io/dirwatch/pkg/configuration"
	"github.com/mutagen-io/dirwatch/pkg/dirwatch"
	"github.com/mutagen-io/dirwatch/pkg/environment"
	"github.com/mutagen-io/dirwatch/pkg/filesystem"
	"github.com/mutagen-io/dirwatch/pkg/filesystem/watching"
	"github.com/mutagen-io/dirwatch/pkg/logging"
	"github.com/mutagen-io/dirwatch/pkg/must"
)

// eventColors maps event kinds to their display colors.
var eventColors = map[watching.EventKind]func(string, ...interface{}) string{
	watching.EventKindCreate: color.GreenString,
	watching.EventKindDelete: color.RedString,
	watching.EventKindRename: color.YellowString,
	watching.EventKindModify: color.CyanString,
}

// formatEvent formats an event for display.
func formatEvent(kind watching.EventKind, directory, path string) string {
	label := fmt.Sprintf("%-6s", kind)
	if colorize, ok := eventColors[kind]; ok {
		label = colorize(label)
	}
	return fmt.Sprintf("%s %s", label, filepath.Join(directory, path))
}

// statistics tracks event counts for a watch session.
type statistics struct {
	// delivered is the number of delivered events.
	delivered uint64
	// ignored is the number of events discarded by ignore patterns.
	ignored uint64
	// overflows is the number of detected native queue overflows.
	overflows uint64
}

// summary formats a human-readable summary of the statistics.
func (s *statistics) summary() string {
	result := fmt.Sprintf("%s events delivered, %s ignored",
		humanize.Comma(int64(s.delivered)),
		humanize.Comma(int64(s.ignored)),
	)
	if s.overflows > 0 {
		result += fmt.Sprintf(", %s %s",
			humanize.Comma(int64(s.overflows)),
			plural(s.overflows, "overflow", "overflows"),
		)
	}
	return result
}

// plural selects a singular or plural noun based on a count.
func plural(count uint64, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// projectConfigurationName is the name of project-local configuration files.
const projectConfigurationName = ".dirwatch.yml"

// locateConfiguration determines the configuration file to use. An explicitly
// specified path takes precedence, followed by a project configuration file in
// the working directory or one of its ancestors, followed by the default path.
// For project configurations, the project directory is returned as well.
func locateConfiguration(specified string) (string, string, error) {
	// Handle explicit specifications.
	if specified != "" {
		return specified, "", nil
	}

	// Search for a project configuration.
	workingDirectory, err := os.Getwd()
	if err != nil {
		return "", "", errors.Wrap(err, "unable to determine working directory")
	}
	project, err := filesystem.FindProjectDirectory(workingDirectory, projectConfigurationName)
	if err == nil {
		return filepath.Join(project, projectConfigurationName), project, nil
	} else if err != filesystem.ErrProjectDirectoryNotFound {
		return "", "", errors.Wrap(err, "unable to search for project configuration")
	}

	// Fall back to the default path.
	path, err := configurationPath("")
	return path, "", err
}

// loadWatchConfiguration loads the configuration file and applies command line
// overrides.
func loadWatchConfiguration(command *cobra.Command, arguments []string) (*configuration.Configuration, error) {
	// Load the configuration file.
	path, project, err := locateConfiguration(watchConfiguration.configuration)
	if err != nil {
		return nil, err
	}
	result, err := configuration.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load configuration")
	}

	// Resolve relative paths in project configurations against the project
	// directory. Tilde paths are left for normalization.
	if project != "" {
		for i, w := range result.Watches {
			if strings.HasPrefix(w.Path, "~") {
				continue
			}
			if result.Watches[i].Path, err = filesystem.AbsolutePath(project, w.Path); err != nil {
				return nil, errors.Wrap(err, "unable to resolve watch path")
			}
		}
		if result.EnvironmentFile != "" && !strings.HasPrefix(result.EnvironmentFile, "~") {
			if result.EnvironmentFile, err = filesystem.AbsolutePath(project, result.EnvironmentFile); err != nil {
				return nil, errors.Wrap(err, "unable to resolve environment file path")
			}
		}
	}

	// Enable debug logging by default if requested through the environment.
	if dirwatch.DebugEnabled && result.Logging.Level < logging.LevelDebug {
		result.Logging.Level = logging.LevelDebug
	}

	// Apply overrides.
	flags := command.Flags()
	if flags.Changed("log-level") {
		result.Logging.Level = watchConfiguration.logLevel.level
	}
	if flags.Changed("interval") {
		result.Update.Interval = watchConfiguration.interval
	}
	if flags.Changed("env-file") {
		result.EnvironmentFile = watchConfiguration.environmentFile
	}
	result.Ignore = append(result.Ignore, watchConfiguration.ignore...)

	// Command line paths replace configured watches.
	if len(arguments) > 0 {
		result.Watches = nil
		for _, argument := range arguments {
			result.Watches = append(result.Watches, configuration.Watch{
				Path:      argument,
				Recursive: watchConfiguration.recursive,
				Exec:      watchConfiguration.exec,
			})
		}
	} else if watchConfiguration.exec != "" {
		for i := range result.Watches {
			result.Watches[i].Exec = watchConfiguration.exec
		}
	}

	// Validate the result.
	if len(result.Watches) == 0 {
		return nil, errors.New("no watch paths specified")
	} else if err := result.EnsureValid(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	// Success.
	return result, nil
}

func watchMain(command *cobra.Command, arguments []string) error {
	// Switch to the executable directory if requested.
	if watchConfiguration.executableDirectory {
		if err := filesystem.SetWorkingDirectoryToExecutableDirectory(); err != nil {
			return err
		}
	}

	// Load configuration.
	config, err := loadWatchConfiguration(command, arguments)
	if err != nil {
		return err
	}

	// Create the logger.
	logger := logging.NewLogger(config.Logging.Level, os.Stderr)

	// Create the ignore filter.
	filter, err := newFilter(config.Ignore)
	if err != nil {
		return err
	}

	// Load any environment file.
	var hookEnvironment map[string]string
	if config.EnvironmentFile != "" {
		path, err := filesystem.Normalize(config.EnvironmentFile)
		if err != nil {
			return errors.Wrap(err, "unable to normalize environment file path")
		}
		if hookEnvironment, err = environment.LoadFile(path); err != nil {
			return errors.Wrap(err, "unable to load environment file")
		}
	}

	// Create a context that's cancelled by termination signals. We do this
	// before creating the watcher so that hook commands are terminated with
	// us.
	ctx, cancel := signal.NotifyContext(context.Background(), cmd.TerminationSignals...)
	defer cancel()

	// Set up the status line if standard error is a terminal.
	var statusLine *cmd.StatusLinePrinter
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		statusLine = &cmd.StatusLinePrinter{UseStandardError: true}
	}

	// Create the watcher and defer its closure.
	var stats statistics
	watcher, err := watching.NewDirectoryWatcher(
		watching.WithLogger(logger.Sublogger("watching")),
		watching.WithMaximumReadsPerUpdate(config.Update.MaximumReads),
		watching.WithOverflowHandler(func() {
			stats.overflows++
			if statusLine != nil {
				statusLine.Clear()
			}
			cmd.Warning("Event queue overflowed, some changes may not have been reported")
		}),
	)
	if err != nil {
		return errors.Wrap(err, "unable to create directory watcher")
	}
	defer must.Close(watcher, logger)

	// Establish watches.
	ids := make([]watching.WatchID, 0, len(config.Watches))
	for _, w := range config.Watches {
		// Compute the watch root for ignore matching.
		root, err := filesystem.Normalize(w.Path)
		if err != nil {
			return errors.Wrapf(err, "unable to normalize watch path (%s)", w.Path)
		}

		// Create any hook.
		var h *hook
		if w.Exec != "" {
			if h, err = newHook(w.Exec, hookEnvironment, logger.Sublogger("exec")); err != nil {
				return err
			}
			h.start(ctx)
			defer func(h *hook) {
				cancel()
				h.wait()
			}(h)
		}

		// Create the callback.
		callback := func(kind watching.EventKind, directory, path string) {
			if filter.ignored(root, directory, path) {
				stats.ignored++
				return
			}
			stats.delivered++
			if statusLine != nil {
				statusLine.Clear()
			}
			fmt.Fprintln(color.Output, formatEvent(kind, directory, path))
			if h != nil {
				h.dispatch(kind, directory, path)
			}
		}

		// Add the watch.
		id := watcher.AddWatch(root, w.Recursive, callback)
		if id == watching.InvalidWatchID {
			return errors.Errorf("unable to watch %s", root)
		}
		ids = append(ids, id)
		logger.Infof("Watching %s", root)
	}

	// Drive updates until termination.
	ticker := time.NewTicker(config.Update.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if statusLine != nil {
				statusLine.BreakIfNonEmpty()
			}
			fmt.Fprintln(color.Error, stats.summary())
			return nil
		case <-ticker.C:
			watcher.Update()
			if statusLine != nil {
				statusLine.Print(statusMessage(watcher, ids, &stats))
			}
		}
	}
}

// statusMessage computes the status line for a set of watches.
func statusMessage(watcher *watching.DirectoryWatcher, ids []watching.WatchID, stats *statistics) string {
	var active, handles int
	for _, id := range ids {
		if watcher.Watching(id) {
			active++
			handles += watcher.HandleCount(id)
		}
	}
	return fmt.Sprintf("Watching %d %s (%s native %s), %s events",
		active, plural(uint64(active), "root", "roots"),
		humanize.Comma(int64(handles)), plural(uint64(handles), "handle", "handles"),
		humanize.Comma(int64(stats.delivered)),
	)
}

var watchCommand = &cobra.Command{
	Use:   "watch [<path>...]",
	Short: "Watch directories and report changes",
	Run:   cmd.Mainify(watchMain),
}

var watchConfiguration struct {
	// help indicates whether or not help information should be shown for the
	// command.
	help bool
	// recursive indicates whether or not command line watches are recursive.
	recursive bool
	// interval is the update interval.
	interval time.Duration
	// configuration is the configuration file path.
	configuration string
	// ignore are additional ignore patterns.
	ignore []string
	// exec is the command to run for each event.
	exec string
	// environmentFile is the environment file for executed commands.
	environmentFile string
	// logLevel is the log level.
	logLevel levelFlag
	// executableDirectory indicates whether or not relative paths should be
	// resolved against the executable's directory.
	executableDirectory bool
}

func init() {
	// Grab a handle for the command line flags and add help.
	flags := watchCommand.Flags()
	addHelpFlag(flags, &watchConfiguration.help)

	// Wire up watch flags.
	flags.BoolVarP(&watchConfiguration.recursive, "recursive", "r", false, "Watch subdirectories")
	flags.DurationVar(&watchConfiguration.interval, "interval", configuration.DefaultUpdateInterval, "Specify the update interval")
	flags.StringVar(&watchConfiguration.configuration, "config", "", "Specify the configuration file path")
	flags.StringArrayVar(&watchConfiguration.ignore, "ignore", nil, "Ignore paths matching a doublestar pattern (relative to the watch root)")
	flags.StringVar(&watchConfiguration.exec, "exec", "", "Run a command for each event")
	flags.StringVar(&watchConfiguration.environmentFile, "env-file", "", "Load additional command environment variables from a file")
	flags.Var(&watchConfiguration.logLevel, "log-level", "Set the log level (disabled|error|warn|info|debug|trace)")
	flags.BoolVar(&watchConfiguration.executableDirectory, "executable-directory", false, "Resolve relative paths against the executable's directory")
}
