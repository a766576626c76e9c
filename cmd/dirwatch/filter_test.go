package main

import (
	"path/filepath"
	"testing"
)

// TestNewFilterInvalidPattern tests that invalid patterns are rejected.
func TestNewFilterInvalidPattern(t *testing.T) {
	if _, err := newFilter([]string{"[unterminated"}); err == nil {
		t.Error("invalid pattern accepted")
	}
}

// TestFilterIgnored tests ignore matching relative to the watch root.
func TestFilterIgnored(t *testing.T) {
	// Create a filter.
	filter, err := newFilter([]string{"**/*.tmp", ".git/**", "build"})
	if err != nil {
		t.Fatal("unable to create filter:", err)
	}

	// Set up test cases.
	root := filepath.Join(t.TempDir(), "root")
	testCases := []struct {
		directory string
		path      string
		expected  bool
	}{
		{root, "file.tmp", true},
		{filepath.Join(root, "a", "b"), "file.tmp", true},
		{root, "file.txt", false},
		{filepath.Join(root, ".git"), "HEAD", true},
		{filepath.Join(root, ".git", "refs"), "main", true},
		{root, "build", true},
		{filepath.Join(root, "src"), "build", false},
	}

	// Process test cases.
	for _, testCase := range testCases {
		if ignored := filter.ignored(root, testCase.directory, testCase.path); ignored != testCase.expected {
			t.Errorf("ignore status for %s in %s (%t) does not match expected (%t)",
				testCase.path, testCase.directory, ignored, testCase.expected,
			)
		}
	}
}

// TestFilterEmpty tests that an empty filter ignores nothing.
func TestFilterEmpty(t *testing.T) {
	filter, err := newFilter(nil)
	if err != nil {
		t.Fatal("unable to create filter:", err)
	}
	root := t.TempDir()
	if filter.ignored(root, root, "anything") {
		t.Error("empty filter ignored path")
	}
}
