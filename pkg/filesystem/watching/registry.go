package watching

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/mutagen-io/dirwatch/pkg/logging"
)

// registry owns the watch trees of a DirectoryWatcher along with the index
// used to route native events to them.
type registry struct {
	// backend is the native notification backend.
	backend backend
	// logger is the registry logger.
	logger *logging.Logger
	// watches maps watch identifiers to their trees.
	watches map[WatchID]*watchTree
	// index maps every live registration to the watch that owns it.
	index map[nativeToken]WatchID
	// nextID is the identifier that will be assigned to the next watch.
	nextID WatchID
}

// newRegistry creates a new empty registry.
func newRegistry(backend backend, logger *logging.Logger) *registry {
	return &registry{
		backend: backend,
		logger:  logger,
		watches: make(map[WatchID]*watchTree),
		index:   make(map[nativeToken]WatchID),
	}
}

// register establishes a native registration for directory and records it in
// both the tree and the index.
func (r *registry) register(t *watchTree, directory string) error {
	token, err := r.backend.register(directory, t.recursive)
	if err != nil {
		return errors.Wrap(ErrRegistrationFailed, err.Error())
	}
	t.directoriesByToken[token] = directory
	t.tokensByDirectory[directory] = token
	r.index[token] = t.id
	return nil
}

// release removes a registration from both the tree and the index. If native
// is true, then the backend registration is also released. Otherwise the
// registration is assumed to have been invalidated by the operating system.
func (r *registry) release(t *watchTree, token nativeToken, native bool) {
	directory, ok := t.directoriesByToken[token]
	if !ok {
		return
	}
	delete(t.directoriesByToken, token)
	delete(t.tokensByDirectory, directory)
	delete(r.index, token)
	if native {
		if err := r.backend.deregister(token); err != nil {
			r.logger.Debugf("Unable to release registration for %s: %v", directory, err)
		}
	}
}

// create establishes a new watch rooted at the specified directory, which
// must be absolute and clean. Identifiers are only consumed by successful
// watches.
func (r *registry) create(root string, recursive bool, callback Callback) (WatchID, error) {
	// Create the tree and register its root.
	t := newWatchTree(r.nextID, root, recursive, callback)
	if err := r.register(t, root); err != nil {
		return InvalidWatchID, err
	}

	// Record the watch.
	r.watches[t.id] = t
	r.nextID++

	// Perform initial expansion for maintained trees.
	if t.maintained(r) {
		if registered := t.expand(r, root); registered > 0 {
			r.logger.Tracef("Established %d subdirectory registration(s) under %s", registered, root)
		}
	}

	// Success.
	return t.id, nil
}

// remove releases a watch and all of its registrations. Unknown identifiers
// are ignored.
func (r *registry) remove(id WatchID) {
	t, ok := r.watches[id]
	if !ok {
		return
	}
	for _, token := range t.sortedTokens() {
		r.release(t, token, true)
	}
	delete(r.watches, id)
}

// removeAll releases every watch in ascending identifier order.
func (r *registry) removeAll() {
	ids := make([]int, 0, len(r.watches))
	for id := range r.watches {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		r.remove(WatchID(id))
	}
}

// resolve maps raw events onto their owning watches, capturing the reporting
// directory of each and suppressing duplicates. Events for unknown
// registrations are discarded. Invalidations are applied immediately.
func (r *registry) resolve(events []rawEvent) *batch {
	result := newBatch()
	for _, e := range events {
		id, ok := r.index[e.token]
		if !ok {
			continue
		}
		t := r.watches[id]
		if e.invalidated {
			r.logger.Debugf("Registration for %s invalidated", t.directoriesByToken[e.token])
			r.release(t, e.token, false)
			continue
		}
		result.add(notification{
			id:        id,
			kind:      e.kind,
			directory: t.directoriesByToken[e.token],
			path:      e.path,
			token:     e.token,
		})
	}
	return result
}

// sortedTokens returns the tree's registrations in ascending order.
func (t *watchTree) sortedTokens() []nativeToken {
	tokens := make([]nativeToken, 0, len(t.directoriesByToken))
	for token := range t.directoriesByToken {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
	return tokens
}

// checkConsistency verifies that every indexed registration is owned by
// exactly one live watch and that every registration owned by a live watch is
// indexed exactly once.
func (r *registry) checkConsistency() error {
	// Verify the index against the trees.
	for token, id := range r.index {
		t, ok := r.watches[id]
		if !ok {
			return errors.Errorf("registration %d indexed to missing watch %d", token, id)
		} else if _, ok := t.directoriesByToken[token]; !ok {
			return errors.Errorf("registration %d not owned by watch %d", token, id)
		}
	}

	// Verify the trees against the index and themselves.
	var owned int
	for id, t := range r.watches {
		if t.id != id {
			return errors.Errorf("watch %d recorded under identifier %d", t.id, id)
		} else if len(t.directoriesByToken) != len(t.tokensByDirectory) {
			return errors.Errorf("watch %d has inconsistent registration maps", id)
		}
		for token, directory := range t.directoriesByToken {
			if t.tokensByDirectory[directory] != token {
				return errors.Errorf("watch %d has mismatched registration for %s", id, directory)
			} else if indexed, ok := r.index[token]; !ok || indexed != id {
				return errors.Errorf("registration %d of watch %d not indexed", token, id)
			}
		}
		owned += len(t.directoriesByToken)
	}
	if owned != len(r.index) {
		return errors.Errorf("index size (%d) does not match owned registrations (%d)", len(r.index), owned)
	}

	// Success.
	return nil
}
