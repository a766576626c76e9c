package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/mutagen-io/dirwatch/pkg/logging"
)

// levelFlag is a pflag.Value that parses log level names.
type levelFlag struct {
	// level is the parsed level.
	level logging.Level
}

// String implements pflag.Value.String.
func (f *levelFlag) String() string {
	return f.level.String()
}

// Set implements pflag.Value.Set.
func (f *levelFlag) Set(value string) error {
	level, ok := logging.NameToLevel(value)
	if !ok {
		return errors.Errorf("invalid log level: %s", value)
	}
	f.level = level
	return nil
}

// Type implements pflag.Value.Type.
func (f *levelFlag) Type() string {
	return "level"
}

// addHelpFlag manually adds a help flag to override the default message. Cobra
// will still implement its logic automatically. It also disables alphabetical
// sorting of flags in help output.
func addHelpFlag(flags *pflag.FlagSet, help *bool) {
	flags.SortFlags = false
	flags.BoolVarP(help, "help", "h", false, "Show help information")
}
