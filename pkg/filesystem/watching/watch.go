// Package watching provides a recursive directory watcher built on the native
// change notification facilities of each platform. Watches are driven by the
// caller through DirectoryWatcher.Update, which never blocks.
package watching

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrRegistrationFailed indicates that a directory couldn't be registered
	// with the native notification backend.
	ErrRegistrationFailed = errors.New("native registration failed")
	// ErrWatcherClosed indicates that an operation was attempted on a closed
	// watcher.
	ErrWatcherClosed = errors.New("watcher closed")
)

// EventKind is the canonical classification of a filesystem change.
type EventKind uint8

const (
	// EventKindCreate indicates that an entry was created.
	EventKindCreate EventKind = iota
	// EventKindDelete indicates that an entry was removed.
	EventKindDelete
	// EventKindRename indicates that an entry was moved away from or into a
	// directory. Each side of a move is reported separately.
	EventKindRename
	// EventKindModify indicates that the contents or attributes of an entry
	// changed.
	EventKindModify
)

// String provides a human-readable representation of an event kind.
func (k EventKind) String() string {
	switch k {
	case EventKindCreate:
		return "create"
	case EventKindDelete:
		return "delete"
	case EventKindRename:
		return "rename"
	case EventKindModify:
		return "modify"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.MarshalText.
func (k EventKind) MarshalText() ([]byte, error) {
	switch k {
	case EventKindCreate, EventKindDelete, EventKindRename, EventKindModify:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown event kind: %d", k)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.UnmarshalText.
func (k *EventKind) UnmarshalText(textBytes []byte) error {
	switch text := string(textBytes); text {
	case "create":
		*k = EventKindCreate
	case "delete":
		*k = EventKindDelete
	case "rename":
		*k = EventKindRename
	case "modify":
		*k = EventKindModify
	default:
		return errors.Errorf("unknown event kind specification: %s", text)
	}
	return nil
}

// Callback is the event delivery function for a watch. The directory argument
// is the directory whose native registration reported the change (which, for
// recursive watches, may be a subdirectory of the watch root) and path is the
// affected entry relative to that directory.
type Callback func(kind EventKind, directory, path string)

// WatchID identifies a registered watch. Identifiers are unique within a
// DirectoryWatcher and are only valid while the watch is registered.
type WatchID int

// InvalidWatchID is returned by AddWatch when a watch can't be established.
const InvalidWatchID WatchID = -1

const (
	// DefaultMaximumReadsPerUpdate is the default bound on the number of
	// native buffer reads performed by a single Update call.
	DefaultMaximumReadsPerUpdate = 64
)
