package watching

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/mutagen-io/dirwatch/pkg/filesystem"
)

// watchTree is the state of a single watch: its immutable parameters and the
// set of native registrations covering its directory hierarchy.
type watchTree struct {
	// id is the watch identifier.
	id WatchID
	// root is the absolute, clean watch root.
	root string
	// recursive indicates whether or not subdirectories are covered.
	recursive bool
	// callback is the event delivery function.
	callback Callback
	// directoriesByToken maps each owned registration to its directory.
	directoriesByToken map[nativeToken]string
	// tokensByDirectory is the inverse of directoriesByToken.
	tokensByDirectory map[string]nativeToken
}

// newWatchTree creates an empty watch tree.
func newWatchTree(id WatchID, root string, recursive bool, callback Callback) *watchTree {
	return &watchTree{
		id:                 id,
		root:               root,
		recursive:          recursive,
		callback:           callback,
		directoriesByToken: make(map[nativeToken]string),
		tokensByDirectory:  make(map[string]nativeToken),
	}
}

// maintained indicates whether or not the tree's registration set changes in
// response to events. Trees backed by a subtree registration are covered by
// their root registration alone.
func (t *watchTree) maintained(r *registry) bool {
	return t.recursive && !r.backend.subtree()
}

// expand registers directory (if it isn't already registered) and then every
// directory beneath it, depth-first. Entries that vanish during expansion are
// skipped silently and registration failures are logged and cause the failed
// directory's subtree to be skipped. Symbolic links beneath directory are
// never followed. It returns the number of new registrations.
func (t *watchTree) expand(r *registry, directory string) int {
	// Create the visitor that registers each directory.
	var registered int
	visit := func(path string, info os.FileInfo, err error) error {
		// Ignore non-directory content.
		if info != nil && !info.IsDir() {
			return nil
		}

		// Register the directory if necessary. A directory that disappeared
		// since it was observed is a lost race, not a failure.
		if _, ok := t.tokensByDirectory[path]; !ok {
			if registerErr := r.register(t, path); registerErr != nil {
				if isDirectory, _ := filesystem.IsDirectory(path); isDirectory {
					r.logger.Debugf("Skipping subdirectory %s: %v", path, registerErr)
				}
				return filepath.SkipDir
			}
			registered++
		}

		// Report enumeration failures.
		if err != nil && !os.IsNotExist(errors.Cause(err)) {
			r.logger.Debugf("Unable to enumerate %s: %v", path, err)
		}
		return nil
	}

	// Handle the directory itself, which may be reached through a symbolic
	// link if it's a watch root.
	if visit(directory, nil, nil) == filepath.SkipDir {
		return 0
	}

	// Walk subdirectories. The visitor never fails, so walk errors can't
	// occur.
	contents, err := filesystem.DirectoryContentsByPath(directory)
	if err != nil {
		visit(directory, nil, err)
		return registered
	}
	for _, c := range contents {
		if c.IsDir() {
			filesystem.Walk(filepath.Join(directory, c.Name()), visit)
		}
	}

	// Done.
	return registered
}

// contract releases the registration for directory and for every registered
// directory beneath it. Matching is performed on whole path components. It
// returns the number of released registrations.
func (t *watchTree) contract(r *registry, directory string) int {
	// Collect matching directories, ordered so that descendants are released
	// before their parents.
	var matches []string
	for d := range t.tokensByDirectory {
		if filesystem.IsWithin(d, directory) {
			matches = append(matches, d)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))

	// Release the registrations.
	for _, d := range matches {
		r.release(t, t.tokensByDirectory[d], true)
	}
	return len(matches)
}

// apply performs tree maintenance for a notification. Creations and renames
// expand the tree at the affected path (which only succeeds if it's a
// directory), while deletions and renames contract it.
func (t *watchTree) apply(r *registry, n notification) {
	// Modifications never affect the registration set.
	if n.kind == EventKindModify || n.path == "" {
		return
	}

	// Compute the affected absolute path.
	path := filepath.Join(n.directory, n.path)

	// Contract if the entry went away. A rename into the tree may also replace
	// an existing directory, so renames always contract first.
	if n.kind == EventKindDelete || n.kind == EventKindRename {
		if released := t.contract(r, path); released > 0 {
			r.logger.Tracef("Released %d registration(s) under %s", released, path)
		}
	}

	// Expand if the entry appeared and is a directory (but not a symbolic link
	// to one).
	if n.kind == EventKindCreate || n.kind == EventKindRename {
		if metadata, err := os.Lstat(path); err == nil && metadata.IsDir() {
			if registered := t.expand(r, path); registered > 0 {
				r.logger.Tracef("Established %d registration(s) under %s", registered, path)
			}
		}
	}
}
