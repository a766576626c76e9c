package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/mutagen-io/dirwatch/cmd"
	"github.com/mutagen-io/dirwatch/pkg/configuration"
	"github.com/mutagen-io/dirwatch/pkg/logging"
)

// configurationPath returns the path specified on the command line or the
// default configuration path.
func configurationPath(specified string) (string, error) {
	if specified != "" {
		return specified, nil
	}
	path, err := configuration.DefaultPath()
	if err != nil {
		return "", errors.Wrap(err, "unable to compute default configuration path")
	}
	return path, nil
}

// ensureParentDirectory creates the parent directory of a path if it doesn't
// exist.
func ensureParentDirectory(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(err, "unable to create configuration directory")
	}
	return nil
}

func configMain(command *cobra.Command, _ []string) error {
	// Print help information.
	command.Help()

	// Success.
	return nil
}

var configCommand = &cobra.Command{
	Use:          "config",
	Short:        "Manage the dirwatch configuration file",
	RunE:         configMain,
	SilenceUsage: true,
}

var configConfiguration struct {
	// help indicates whether or not help information should be shown for the
	// command.
	help bool
}

func configInitMain(_ *cobra.Command, _ []string) error {
	// Compute the target path.
	path, err := configurationPath(configInitConfiguration.path)
	if err != nil {
		return err
	}

	// Refuse to overwrite an existing file unless forced.
	if !configInitConfiguration.force {
		if _, err := os.Lstat(path); err == nil {
			return errors.Errorf("configuration file already exists: %s", path)
		} else if !os.IsNotExist(err) {
			return errors.Wrap(err, "unable to check configuration file")
		}
	}

	// Ensure that the parent directory exists.
	if err := ensureParentDirectory(path); err != nil {
		return err
	}

	// Write the default configuration.
	logger := logging.NewLogger(logging.LevelWarn, os.Stderr)
	if err := configuration.Default().Save(path, logger); err != nil {
		return errors.Wrap(err, "unable to write configuration")
	}

	// Inform the user.
	fmt.Println("Created configuration file:", path)

	// Success.
	return nil
}

var configInitCommand = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	Run:   cmd.Mainify(configInitMain),
}

var configInitConfiguration struct {
	// help indicates whether or not help information should be shown for the
	// command.
	help bool
	// path is the configuration file path.
	path string
	// force indicates whether or not an existing file should be overwritten.
	force bool
}

func configPathMain(_ *cobra.Command, _ []string) error {
	// Compute and print the default path.
	path, err := configurationPath("")
	if err != nil {
		return err
	}
	fmt.Println(path)

	// Success.
	return nil
}

var configPathCommand = &cobra.Command{
	Use:   "path",
	Short: "Show the default configuration file path",
	Args:  cobra.NoArgs,
	Run:   cmd.Mainify(configPathMain),
}

var configPathConfiguration struct {
	// help indicates whether or not help information should be shown for the
	// command.
	help bool
}

func init() {
	// Configure the root config command.
	addHelpFlag(configCommand.Flags(), &configConfiguration.help)
	configCommand.AddCommand(configInitCommand, configPathCommand)

	// Configure the init command.
	flags := configInitCommand.Flags()
	addHelpFlag(flags, &configInitConfiguration.help)
	flags.StringVar(&configInitConfiguration.path, "path", "", "Specify the configuration file path")
	flags.BoolVar(&configInitConfiguration.force, "force", false, "Overwrite an existing configuration file")

	// Configure the path command.
	addHelpFlag(configPathCommand.Flags(), &configPathConfiguration.help)
}
