// Package must provides helpers for operations whose failures can't be
// meaningfully handled by the caller but are still worth reporting.
package must

import (
	"io"
	"os"

	"github.com/mutagen-io/dirwatch/pkg/logging"
)

// Close closes c, logging any failure as a warning.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("Unable to close: %s", err.Error())
	}
}

// OSRemove removes the named file, logging any failure as a warning.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("Unable to remove '%s': %s", name, err.Error())
	}
}
