package dirwatch

import (
	"os"
)

// DebugEnabled controls whether or not debugging is enabled for dirwatch. It is
// set automatically based on the DIRWATCH_DEBUG environment variable.
var DebugEnabled bool

func init() {
	// Check whether or not debugging should be enabled.
	DebugEnabled = os.Getenv("DIRWATCH_DEBUG") == "1"
}
