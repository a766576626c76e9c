package watching

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

// TestClassifyInotifyMask tests inotify mask classification and precedence.
func TestClassifyInotifyMask(t *testing.T) {
	// Set up test cases.
	testCases := []struct {
		mask     uint32
		expected EventKind
		ok       bool
	}{
		{unix.IN_CREATE, EventKindCreate, true},
		{unix.IN_CREATE | unix.IN_ISDIR, EventKindCreate, true},
		{unix.IN_DELETE, EventKindDelete, true},
		{unix.IN_ATTRIB, EventKindModify, true},
		{unix.IN_MODIFY, EventKindModify, true},
		{unix.IN_MOVED_FROM, EventKindRename, true},
		{unix.IN_MOVED_TO | unix.IN_ISDIR, EventKindRename, true},
		{unix.IN_CREATE | unix.IN_MODIFY, EventKindCreate, true},
		{unix.IN_DELETE | unix.IN_ATTRIB, EventKindDelete, true},
		{unix.IN_MODIFY | unix.IN_MOVED_TO, EventKindModify, true},
		{unix.IN_CLOSE_WRITE, 0, false},
		{unix.IN_DELETE_SELF, 0, false},
	}

	// Process test cases.
	for _, testCase := range testCases {
		kind, ok := classifyInotifyMask(testCase.mask)
		if ok != testCase.ok {
			t.Errorf("classification status for mask 0x%x (%t) does not match expected (%t)",
				testCase.mask, ok, testCase.ok,
			)
		} else if ok && kind != testCase.expected {
			t.Errorf("classification for mask 0x%x (%s) does not match expected (%s)",
				testCase.mask, kind, testCase.expected,
			)
		}
	}
}

// TestInotifyRoundTrip tests a create, write, and rename sequence against the
// inotify backend, verifying tree reconciliation afterward.
func TestInotifyRoundTrip(t *testing.T) {
	// Create a watcher and a watch on an empty directory.
	root := t.TempDir()
	watcher := newNativeWatcher(t)
	var r recorder
	id := watcher.AddWatch(root, true, r.record)
	if id == InvalidWatchID {
		t.Fatal("unable to establish watch")
	}
	x, z := filepath.Join(root, "x"), filepath.Join(root, "z")

	// Create a subdirectory.
	if err := os.Mkdir(x, 0700); err != nil {
		t.Fatal("unable to create directory:", err)
	}
	waitFor(t, watcher, "directory creation", sawPath(&r, x))

	// Create a file within it.
	file := filepath.Join(x, "y.txt")
	if err := os.WriteFile(file, []byte("y"), 0600); err != nil {
		t.Fatal("unable to write file:", err)
	}
	waitFor(t, watcher, "file creation", sawPath(&r, file))

	// Rename the subdirectory.
	if err := os.Rename(x, z); err != nil {
		t.Fatal("unable to rename directory:", err)
	}
	waitFor(t, watcher, "directory rename", sawPath(&r, z))

	// Verify that both sides of the rename were reported as renames.
	var renamedFrom, renamedTo bool
	for _, e := range r.events {
		if e.kind == EventKindRename && e.directory == root {
			renamedFrom = renamedFrom || e.path == "x"
			renamedTo = renamedTo || e.path == "z"
		}
	}
	if !renamedFrom || !renamedTo {
		t.Error("rename not reported on both sides:", r.events)
	}

	// Verify reconciliation.
	tree := watcher.registry.watches[id]
	if _, ok := tree.tokensByDirectory[x]; ok {
		t.Error("old directory still registered")
	} else if _, ok := tree.tokensByDirectory[z]; !ok {
		t.Error("renamed directory not registered")
	}
	if count := watcher.HandleCount(id); count != 2 {
		t.Error("watch has unexpected handle count:", count)
	}
	if err := watcher.registry.checkConsistency(); err != nil {
		t.Error("registry inconsistent:", err)
	}
}

// TestInotifyDeletion tests that deleting a covered subdirectory releases its
// registration.
func TestInotifyDeletion(t *testing.T) {
	// Create a test hierarchy, a watcher, and a watch.
	root := t.TempDir()
	a := filepath.Join(root, "a")
	if err := os.MkdirAll(filepath.Join(a, "b"), 0700); err != nil {
		t.Fatal("unable to create directories:", err)
	}
	watcher := newNativeWatcher(t)
	var r recorder
	id := watcher.AddWatch(root, true, r.record)
	if id == InvalidWatchID {
		t.Fatal("unable to establish watch")
	} else if count := watcher.HandleCount(id); count != 3 {
		t.Fatal("watch has unexpected handle count:", count)
	}

	// Delete the subdirectory and wait for coverage to shrink.
	if err := os.RemoveAll(a); err != nil {
		t.Fatal("unable to remove directory:", err)
	}
	waitFor(t, watcher, "contraction", func() bool {
		return watcher.HandleCount(id) == 1
	})
	if err := watcher.registry.checkConsistency(); err != nil {
		t.Error("registry inconsistent:", err)
	}
}

// TestInotifySharedWatchDescriptor tests that two watches on the same
// directory, which share a kernel watch descriptor, are independent.
func TestInotifySharedWatchDescriptor(t *testing.T) {
	// Create a watcher and two watches on the same directory.
	root := t.TempDir()
	watcher := newNativeWatcher(t)
	var first, second recorder
	firstID := watcher.AddWatch(root, false, first.record)
	secondID := watcher.AddWatch(root, false, second.record)
	if firstID == InvalidWatchID || secondID == InvalidWatchID {
		t.Fatal("unable to establish watches")
	}

	// Remove the first watch and verify that the second still works.
	watcher.RemoveWatch(firstID)
	file := filepath.Join(root, "file")
	if err := os.WriteFile(file, nil, 0600); err != nil {
		t.Fatal("unable to write file:", err)
	}
	waitFor(t, watcher, "file event", sawPath(&second, file))
	if len(first.events) != 0 {
		t.Error("events delivered to removed watch:", first.events)
	}
}
