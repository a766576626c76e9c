package cmd

import (
	"github.com/spf13/cobra"
)

// Mainify wraps an error-returning Cobra entry point and generates a standard
// Cobra entry point. This allows entry points to rely on defer-based cleanup
// (such as closing a directory watcher), which wouldn't occur if the entry
// point terminated the process itself.
func Mainify(entry func(*cobra.Command, []string) error) func(*cobra.Command, []string) {
	return func(command *cobra.Command, arguments []string) {
		if err := entry(command, arguments); err != nil {
			Fatal(err)
		}
	}
}
