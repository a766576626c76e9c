//go:build !linux && !windows

package watching

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/mutagen-io/dirwatch/pkg/logging"
)

// TestClassifyOperation tests fsnotify operation classification and
// precedence.
func TestClassifyOperation(t *testing.T) {
	// Set up test cases.
	testCases := []struct {
		operation fsnotify.Op
		expected  EventKind
		ok        bool
	}{
		{fsnotify.Create, EventKindCreate, true},
		{fsnotify.Remove, EventKindDelete, true},
		{fsnotify.Rename, EventKindRename, true},
		{fsnotify.Write, EventKindModify, true},
		{fsnotify.Chmod, EventKindModify, true},
		{fsnotify.Create | fsnotify.Write, EventKindCreate, true},
		{fsnotify.Remove | fsnotify.Rename, EventKindDelete, true},
		{0, 0, false},
	}

	// Process test cases.
	for _, testCase := range testCases {
		kind, ok := classifyOperation(testCase.operation)
		if ok != testCase.ok {
			t.Errorf("classification status for %v (%t) does not match expected (%t)",
				testCase.operation, ok, testCase.ok,
			)
		} else if ok && kind != testCase.expected {
			t.Errorf("classification for %v (%s) does not match expected (%s)",
				testCase.operation, kind, testCase.expected,
			)
		}
	}
}

// TestPortableUnwatchUnwatched tests that removing a watch that fsnotify
// doesn't hold isn't treated as an error.
func TestPortableUnwatchUnwatched(t *testing.T) {
	b, err := newBackend(nil)
	if err != nil {
		t.Fatal("unable to create backend:", err)
	}
	defer b.close()
	if err := b.(*portableBackend).unwatch(t.TempDir()); err != nil {
		t.Error("unwatch of unwatched directory failed:", err)
	}
}

// TestPortableTranslateDroppedWatch tests that a removal event for a directory
// whose fsnotify watch is already gone invalidates its registration without
// logging a removal failure.
func TestPortableTranslateDroppedWatch(t *testing.T) {
	// Create a backend with a debug logger.
	buffer := &bytes.Buffer{}
	generic, err := newBackend(logging.NewLogger(logging.LevelDebug, buffer))
	if err != nil {
		t.Fatal("unable to create backend:", err)
	}
	defer generic.close()
	b := generic.(*portableBackend)

	// Register a directory and then drop its fsnotify watch directly.
	directory := t.TempDir()
	token, err := b.register(directory, false)
	if err != nil {
		t.Fatal("unable to register directory:", err)
	}
	if err := b.watcher.Remove(directory); err != nil {
		t.Fatal("unable to remove fsnotify watch:", err)
	}

	// Translate a removal event for the directory.
	events := b.translate(fsnotify.Event{Name: directory, Op: fsnotify.Remove}, nil)
	var invalidated bool
	for _, e := range events {
		if e.token == token && e.invalidated {
			invalidated = true
		}
	}
	if !invalidated {
		t.Error("registration was not invalidated")
	}
	if strings.Contains(buffer.String(), "unable to remove fsnotify watch") {
		t.Error("dropped watch removal was logged as a failure:", buffer.String())
	}
}
