// Package encoding provides helpers for loading and saving encoded files.
package encoding

import (
	"os"

	"github.com/pkg/errors"

	"github.com/mutagen-io/dirwatch/pkg/filesystem"
	"github.com/mutagen-io/dirwatch/pkg/logging"
)

// LoadAndUnmarshal provides the underlying loading and unmarshaling
// functionality for the encoding package. It reads the data at the specified
// path and then invokes the specified unmarshaling callback (usually a closure)
// to decode the data. Non-existence errors are passed through unwrapped.
func LoadAndUnmarshal(path string, unmarshal func([]byte) error) error {
	// Grab the file contents.
	data, err := filesystem.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return errors.Wrap(err, "unable to load file")
	}

	// Perform the unmarshaling.
	if err := unmarshal(data); err != nil {
		return errors.Wrap(err, "unable to unmarshal data")
	}

	// Success.
	return nil
}

// MarshalAndSave provides the underlying marshaling and saving functionality
// for the encoding package. It invokes the specified marshaling callback
// (usually a closure) and writes the result atomically to the specified path.
// The data is saved with read/write permissions for the user only. Any
// failure to clean up after an unsuccessful write is reported to logger.
func MarshalAndSave(path string, logger *logging.Logger, marshal func() ([]byte, error)) error {
	// Marshal the value.
	data, err := marshal()
	if err != nil {
		return errors.Wrap(err, "unable to marshal value")
	}

	// Write the file atomically with secure file permissions.
	if err := filesystem.WriteFileAtomic(path, data, 0600, logger); err != nil {
		return errors.Wrap(err, "unable to write encoded data")
	}

	// Success.
	return nil
}
