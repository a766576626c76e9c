package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// PerformingShellCompletion indicates whether or not one of Cobra's hidden
// shell completion commands is being used. Terminal compatibility handling is
// skipped in that case since completion output is consumed by the shell.
var PerformingShellCompletion bool

func init() {
	PerformingShellCompletion = len(os.Args) > 1 &&
		(os.Args[1] == cobra.ShellCompRequestCmd ||
			os.Args[1] == cobra.ShellCompNoDescRequestCmd)
}
