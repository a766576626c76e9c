package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mutagen-io/dirwatch/cmd"
	"github.com/mutagen-io/dirwatch/pkg/dirwatch"
	"github.com/mutagen-io/dirwatch/pkg/filesystem/watching"
)

func versionMain(_ *cobra.Command, _ []string) error {
	// Print version information.
	fmt.Println(dirwatch.Version)

	// Print the native backend if requested.
	if versionConfiguration.backend || dirwatch.DebugEnabled {
		fmt.Println("Backend:", watching.NativeBackendName)
	}

	// Success.
	return nil
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run:   cmd.Mainify(versionMain),
}

var versionConfiguration struct {
	// help indicates whether or not help information should be shown for the
	// command.
	help bool
	// backend indicates whether or not the native watching backend should be
	// shown.
	backend bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := versionCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&versionConfiguration.help, "help", "h", false, "Show help information")

	// Wire up version flags.
	flags.BoolVar(&versionConfiguration.backend, "backend", false, "Show the native watching backend")
}
