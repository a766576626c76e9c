package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

// TestFindProjectDirectory tests marker-based ancestor search.
func TestFindProjectDirectory(t *testing.T) {
	// Create a project with a marker and a nested directory.
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0700); err != nil {
		t.Fatal("unable to create directories:", err)
	}
	marker := ".dirwatch-project-marker"
	if err := os.WriteFile(filepath.Join(root, marker), nil, 0600); err != nil {
		t.Fatal("unable to create marker:", err)
	}

	// Search from the nested directory.
	found, err := FindProjectDirectory(nested, marker)
	if err != nil {
		t.Fatal("unable to find project directory:", err)
	}
	expected, err := Normalize(root)
	if err != nil {
		t.Fatal("unable to normalize root:", err)
	}
	if found != expected {
		t.Error("project directory does not match expected:", found, "!=", expected)
	}

	// Search for a marker that doesn't exist.
	if _, err := FindProjectDirectory(nested, ".dirwatch-missing-marker"); err != ErrProjectDirectoryNotFound {
		t.Error("unexpected result for missing marker:", err)
	}
}

// TestAbsolutePath tests relative path resolution.
func TestAbsolutePath(t *testing.T) {
	base := t.TempDir()
	if path, err := AbsolutePath(base, filepath.Join("x", "..", "y")); err != nil {
		t.Fatal("unable to resolve path:", err)
	} else if expected := filepath.Join(base, "y"); path != expected {
		t.Error("resolved path does not match expected:", path, "!=", expected)
	}
	if path, err := AbsolutePath(base, base); err != nil {
		t.Fatal("unable to resolve path:", err)
	} else if path != filepath.Clean(base) {
		t.Error("absolute path modified unexpectedly:", path)
	}
}
