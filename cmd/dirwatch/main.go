package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mutagen-io/dirwatch/cmd"
)

func rootMain(command *cobra.Command, _ []string) error {
	// If no commands were given, then print help information and bail. We don't
	// have to worry about warning about arguments being present here (which
	// would be incorrect usage) because arguments can't even reach this point
	// (they will be mistaken for subcommands and a error will be displayed).
	command.Help()

	// Success.
	return nil
}

var rootCommand = &cobra.Command{
	Use:          "dirwatch",
	Short:        "dirwatch reports changes within directory hierarchies",
	RunE:         rootMain,
	SilenceUsage: true,
}

var rootConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Disable Cobra's command sorting behavior. By default, it sorts commands
	// alphabetically in the help output.
	cobra.EnableCommandSorting = false

	// Disable Cobra's use of mousetrap. It refuses to run when the executable
	// is launched from Explorer, which is how configured watches may be
	// started at login.
	cobra.MousetrapHelpText = ""

	// Grab a handle for the command line flags.
	flags := rootCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")

	// Register commands.
	rootCommand.AddCommand(
		watchCommand,
		configCommand,
		versionCommand,
	)
}

func main() {
	// Check if a terminal compatibility relaunch is required.
	if !cmd.PerformingShellCompletion {
		cmd.HandleTerminalCompatibility()
	}

	// Execute the root command.
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
