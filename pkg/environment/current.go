// Package environment provides utilities for working with process environment
// variables.
package environment

import (
	"os"
)

// Current is a parsed version of the current environment, computed at process
// startup. It should not be modified. Use CopyCurrent for a mutable copy.
var Current map[string]string

func init() {
	// Parse the current environment. If it contains malformed entries (which
	// the Go runtime shouldn't produce), fall back to lenient conversion.
	if parsed, err := Parse(os.Environ()); err == nil {
		Current = parsed
	} else {
		Current = ToMap(os.Environ())
		delete(Current, "")
	}
}

// CopyCurrent returns a mutable copy of the current environment.
func CopyCurrent() map[string]string {
	result := make(map[string]string, len(Current))
	for k, v := range Current {
		result[k] = v
	}
	return result
}
