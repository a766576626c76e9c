//go:build !linux && !windows

package watching

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"golang.org/x/text/unicode/norm"

	"github.com/mutagen-io/dirwatch/pkg/logging"
)

// NativeBackendName is the name of the native notification backend.
const NativeBackendName = "fsnotify"

// classifyOperation converts an fsnotify operation to an event kind. The
// checks are performed in order of precedence.
func classifyOperation(operation fsnotify.Op) (EventKind, bool) {
	switch {
	case operation.Has(fsnotify.Create):
		return EventKindCreate, true
	case operation.Has(fsnotify.Remove):
		return EventKindDelete, true
	case operation.Has(fsnotify.Rename):
		return EventKindRename, true
	case operation.Has(fsnotify.Write) || operation.Has(fsnotify.Chmod):
		return EventKindModify, true
	default:
		return 0, false
	}
}

// portableBackend implements backend on top of fsnotify (kqueue on BSD
// systems, FEN on illumos). fsnotify reads native events on an internal
// goroutine, so polling is a non-blocking drain of its channels.
type portableBackend struct {
	// logger is the backend logger.
	logger *logging.Logger
	// watcher is the underlying fsnotify watcher.
	watcher *fsnotify.Watcher
	// nextToken is the next registration token.
	nextToken nativeToken
	// directoriesByToken maps registrations to their directories.
	directoriesByToken map[nativeToken]string
	// tokensByDirectory maps directories to their registrations. fsnotify
	// tracks watches by path, so multiple registrations may share one.
	tokensByDirectory map[string][]nativeToken
}

// newBackend creates a new fsnotify backend.
func newBackend(logger *logging.Logger) (backend, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "unable to create fsnotify watcher")
	}
	return &portableBackend{
		logger:             logger,
		watcher:            watcher,
		directoriesByToken: make(map[nativeToken]string),
		tokensByDirectory:  make(map[string][]nativeToken),
	}, nil
}

// subtree implements backend.subtree.
func (b *portableBackend) subtree() bool {
	return false
}

// register implements backend.register.
func (b *portableBackend) register(directory string, _ bool) (nativeToken, error) {
	if len(b.tokensByDirectory[directory]) == 0 {
		if err := b.watcher.Add(directory); err != nil {
			return 0, errors.Wrap(err, "unable to add fsnotify watch")
		}
	}
	token := b.nextToken
	b.nextToken++
	b.directoriesByToken[token] = directory
	b.tokensByDirectory[directory] = append(b.tokensByDirectory[directory], token)
	return token, nil
}

// forget removes a registration from the backend's bookkeeping and returns
// whether or not it was the last registration for its directory.
func (b *portableBackend) forget(token nativeToken) (string, bool) {
	directory, ok := b.directoriesByToken[token]
	if !ok {
		return "", false
	}
	delete(b.directoriesByToken, token)
	tokens := b.tokensByDirectory[directory]
	for i, t := range tokens {
		if t == token {
			tokens = append(tokens[:i], tokens[i+1:]...)
			break
		}
	}
	if len(tokens) > 0 {
		b.tokensByDirectory[directory] = tokens
		return directory, false
	}
	delete(b.tokensByDirectory, directory)
	return directory, true
}

// unwatch removes the fsnotify watch for a directory. Watches that fsnotify
// has already dropped aren't treated as errors.
func (b *portableBackend) unwatch(directory string) error {
	if err := b.watcher.Remove(directory); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
		return errors.Wrap(err, "unable to remove fsnotify watch")
	}
	return nil
}

// deregister implements backend.deregister.
func (b *portableBackend) deregister(token nativeToken) error {
	if directory, last := b.forget(token); last {
		return b.unwatch(directory)
	}
	return nil
}

// poll implements backend.poll.
func (b *portableBackend) poll(maximumReads int) ([]rawEvent, bool, error) {
	var events []rawEvent
	var overflow bool
	for reads := 0; reads < maximumReads; reads++ {
		select {
		case event, ok := <-b.watcher.Events:
			if !ok {
				return events, overflow, errors.New("fsnotify event channel closed")
			}
			events = b.translate(event, events)
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return events, overflow, errors.New("fsnotify error channel closed")
			} else if errors.Is(err, fsnotify.ErrEventOverflow) {
				overflow = true
			} else {
				b.logger.Debugf("fsnotify error: %v", err)
			}
		default:
			return events, overflow, nil
		}
	}
	return events, overflow, nil
}

// translate converts an fsnotify event to raw events, appending them to
// events. Names are reported in NFC form.
func (b *portableBackend) translate(event fsnotify.Event, events []rawEvent) []rawEvent {
	// If the event refers to a registered directory that went away, then
	// fsnotify has dropped its watch and the registrations are invalidated.
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if tokens := b.tokensByDirectory[event.Name]; len(tokens) > 0 {
			for _, token := range append([]nativeToken(nil), tokens...) {
				b.forget(token)
				events = append(events, rawEvent{token: token, invalidated: true})
			}
			if err := b.unwatch(event.Name); err != nil {
				b.logger.Debugf("%v (%s)", err, event.Name)
			}
		}
	}

	// Classify the event.
	kind, ok := classifyOperation(event.Op)
	if !ok {
		return events
	}

	// Record the event for every registration of the parent directory.
	directory, name := filepath.Dir(event.Name), norm.NFC.String(filepath.Base(event.Name))
	for _, token := range b.tokensByDirectory[directory] {
		events = append(events, rawEvent{token: token, kind: kind, path: name})
	}
	return events
}

// close implements backend.close.
func (b *portableBackend) close() error {
	b.directoriesByToken = make(map[nativeToken]string)
	b.tokensByDirectory = make(map[string][]nativeToken)
	if err := b.watcher.Close(); err != nil {
		return errors.Wrap(err, "unable to close fsnotify watcher")
	}
	return nil
}
