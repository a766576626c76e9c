package cmd

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	// warningLabel is the colorized label for warnings.
	warningLabel = color.YellowString("Warning:")
	// errorLabel is the colorized label for errors.
	errorLabel = color.RedString("Error:")
)

// Warning prints a warning message to standard error.
func Warning(message string) {
	fmt.Fprintln(color.Error, warningLabel, message)
}

// Error prints an error message to standard error.
func Error(err error) {
	fmt.Fprintln(color.Error, errorLabel, err)
}

// Fatal prints an error message to standard error and then terminates the
// process with an error exit code.
func Fatal(err error) {
	Error(err)
	exit(1)
}
