package watching

import (
	"github.com/pkg/errors"

	"github.com/mutagen-io/dirwatch/pkg/filesystem"
	"github.com/mutagen-io/dirwatch/pkg/logging"
)

// DirectoryWatcher maps watch requests onto native change notification
// registrations, keeps recursive watches covering their directory hierarchies
// as those hierarchies change, and delivers deduplicated events to watch
// callbacks. All processing happens inside Update, which never blocks.
//
// DirectoryWatcher is not safe for concurrent use. Callbacks are invoked
// synchronously from Update and may call back into the watcher.
type DirectoryWatcher struct {
	// logger is the watcher logger.
	logger *logging.Logger
	// maximumReadsPerUpdate bounds the native reads in each Update call.
	maximumReadsPerUpdate int
	// overflowHandler is the optional overflow callback.
	overflowHandler func()
	// backend is the native notification backend.
	backend backend
	// registry holds the watch state.
	registry *registry
	// closed indicates whether or not the watcher has been closed.
	closed bool
}

// NewDirectoryWatcher creates a new directory watcher using the native
// backend for the current platform.
func NewDirectoryWatcher(opts ...Option) (*DirectoryWatcher, error) {
	o := newOptions(opts)
	backend, err := newBackend(o.logger.Sublogger(NativeBackendName))
	if err != nil {
		return nil, errors.Wrap(err, "unable to initialize native backend")
	}
	return newDirectoryWatcherWithBackend(backend, o), nil
}

// newDirectoryWatcherWithBackend creates a directory watcher on top of an
// existing backend.
func newDirectoryWatcherWithBackend(backend backend, o *options) *DirectoryWatcher {
	return &DirectoryWatcher{
		logger:                o.logger,
		maximumReadsPerUpdate: o.maximumReadsPerUpdate,
		overflowHandler:       o.overflowHandler,
		backend:               backend,
		registry:              newRegistry(backend, o.logger),
	}
}

// AddWatch establishes a watch on directory, which may be relative or begin
// with a tilde. If recursive is true, then every subdirectory is covered as
// well, including those created after the watch is established. It returns
// InvalidWatchID if the watcher is closed, the callback is nil, the path
// doesn't refer to a directory, or the directory can't be registered. The
// watch still succeeds if individual subdirectories can't be registered.
func (w *DirectoryWatcher) AddWatch(directory string, recursive bool, callback Callback) WatchID {
	// Validate the watcher state and arguments.
	if w.closed {
		w.logger.Debug("Watch requested on closed watcher")
		return InvalidWatchID
	} else if callback == nil {
		w.logger.Warnf("Watch requested on %s without callback", directory)
		return InvalidWatchID
	}

	// Normalize the path and ensure that it refers to a directory.
	root, err := filesystem.Normalize(directory)
	if err != nil {
		w.logger.Warnf("Unable to normalize watch path %s: %v", directory, err)
		return InvalidWatchID
	}
	if isDirectory, err := filesystem.IsDirectory(root); err != nil {
		w.logger.Warnf("Unable to query watch path %s: %v", root, err)
		return InvalidWatchID
	} else if !isDirectory {
		w.logger.Warnf("Watch path %s does not exist or is not a directory", root)
		return InvalidWatchID
	}

	// Create the watch.
	id, err := w.registry.create(root, recursive, callback)
	if err != nil {
		w.logger.Warnf("Unable to watch %s: %v", root, err)
		return InvalidWatchID
	}
	w.logger.Debugf("Watch %d established on %s with %d registration(s)",
		id, root, w.HandleCount(id),
	)
	return id
}

// RemoveWatch removes a watch and releases all of its native registrations.
// Once it returns, the watch's callback won't be invoked again. Unknown or
// already removed identifiers are ignored.
func (w *DirectoryWatcher) RemoveWatch(id WatchID) {
	if w.closed {
		return
	}
	w.registry.remove(id)
}

// Update processes pending native events. It checks for events without
// blocking, drains at most the configured number of native reads, and then
// performs tree maintenance and callback dispatch for each resulting
// notification in order. When no events are pending it returns immediately.
func (w *DirectoryWatcher) Update() {
	// Ignore updates on closed watchers.
	if w.closed {
		return
	}

	// Poll the backend.
	events, overflow, err := w.backend.poll(w.maximumReadsPerUpdate)
	if err != nil {
		w.logger.Warnf("Unable to read native events: %v", err)
	}
	if overflow {
		w.logger.Warnf("Native event queue overflowed, changes may have been lost")
		if w.overflowHandler != nil {
			w.overflowHandler()
		}
	}
	if len(events) == 0 {
		return
	}

	// Resolve events to notifications.
	notifications := w.registry.resolve(events).notifications

	// Perform maintenance and dispatch. Callbacks may remove watches (or close
	// the watcher), so each watch is looked up anew.
	for _, n := range notifications {
		if w.closed {
			return
		}
		t, ok := w.registry.watches[n.id]
		if !ok {
			continue
		}
		if t.maintained(w.registry) {
			t.apply(w.registry, n)
		}
		t.callback(n.kind, n.directory, n.path)
	}
}

// Close removes all watches, in ascending identifier order, and releases the
// native backend. After Close, AddWatch returns InvalidWatchID and the other
// methods do nothing. Close is idempotent.
func (w *DirectoryWatcher) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.registry.removeAll()
	if err := w.backend.close(); err != nil {
		return errors.Wrap(err, "unable to close native backend")
	}
	return nil
}

// Watching returns whether or not id refers to a registered watch.
func (w *DirectoryWatcher) Watching(id WatchID) bool {
	_, ok := w.registry.watches[id]
	return ok
}

// HandleCount returns the number of native registrations held by a watch. It
// returns 0 for unknown watches.
func (w *DirectoryWatcher) HandleCount(id WatchID) int {
	if t, ok := w.registry.watches[id]; ok {
		return len(t.directoriesByToken)
	}
	return 0
}
