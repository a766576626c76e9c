package must

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/mutagen-io/dirwatch/pkg/logging"
)

// failingCloser is an io.Closer that always fails.
type failingCloser struct{}

// Close implements io.Closer.Close.
func (failingCloser) Close() error {
	return errors.New("close failed")
}

// TestCloseFailureLogged tests that Close logs closure failures.
func TestCloseFailureLogged(t *testing.T) {
	buffer := &bytes.Buffer{}
	Close(failingCloser{}, logging.NewLogger(logging.LevelWarn, buffer))
	if !strings.Contains(buffer.String(), "close failed") {
		t.Error("closure failure not logged:", buffer.String())
	}
}

// TestOSRemove tests that OSRemove removes files and logs failures.
func TestOSRemove(t *testing.T) {
	buffer := &bytes.Buffer{}
	logger := logging.NewLogger(logging.LevelWarn, buffer)

	// Create and remove a file.
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal("unable to create test file:", err)
	}
	OSRemove(path, logger)
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Error("file not removed")
	}
	if buffer.Len() != 0 {
		t.Error("successful removal produced log output")
	}

	// Removing it again should log a warning.
	OSRemove(path, logger)
	if !strings.Contains(buffer.String(), "Unable to remove") {
		t.Error("removal failure not logged")
	}
}
