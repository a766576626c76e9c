package cmd

import (
	"os"
)

// osExit is the process termination function.
var osExit = os.Exit

// exit terminates the process. It's a variable so that tests can intercept
// termination.
var exit = osExit
