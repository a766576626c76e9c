package watching

import (
	"sort"
	"unsafe"

	"github.com/pkg/errors"

	"golang.org/x/sys/windows"

	"github.com/mutagen-io/dirwatch/pkg/logging"
	"github.com/mutagen-io/dirwatch/pkg/must"
)

const (
	// NativeBackendName is the name of the native notification backend.
	NativeBackendName = "ReadDirectoryChangesW"

	// readDirectoryChangesBufferSize is the size of the result buffer for each
	// outstanding request.
	readDirectoryChangesBufferSize = 32 * 1024
	// readDirectoryChangesFilter is the set of changes that requests report.
	readDirectoryChangesFilter = windows.FILE_NOTIFY_CHANGE_FILE_NAME |
		windows.FILE_NOTIFY_CHANGE_DIR_NAME |
		windows.FILE_NOTIFY_CHANGE_ATTRIBUTES |
		windows.FILE_NOTIFY_CHANGE_SIZE |
		windows.FILE_NOTIFY_CHANGE_LAST_WRITE |
		windows.FILE_NOTIFY_CHANGE_CREATION
	// readDirectoryChangesCancellationTimeout is the maximum time, in
	// milliseconds, to wait for a cancelled request to complete.
	readDirectoryChangesCancellationTimeout = 5000
)

// classifyFileAction converts a ReadDirectoryChangesW action to an event kind.
func classifyFileAction(action uint32) (EventKind, bool) {
	switch action {
	case windows.FILE_ACTION_ADDED:
		return EventKindCreate, true
	case windows.FILE_ACTION_REMOVED:
		return EventKindDelete, true
	case windows.FILE_ACTION_MODIFIED:
		return EventKindModify, true
	case windows.FILE_ACTION_RENAMED_OLD_NAME, windows.FILE_ACTION_RENAMED_NEW_NAME:
		return EventKindRename, true
	default:
		return 0, false
	}
}

// readDirectoryChangesRequest is a directory handle with its outstanding
// overlapped request.
type readDirectoryChangesRequest struct {
	// directory is the registered directory.
	directory string
	// recursive indicates whether or not the request covers the subtree.
	recursive bool
	// handle is the directory handle.
	handle windows.Handle
	// overlapped is the overlapped I/O state. Its event is manual-reset.
	overlapped windows.Overlapped
	// buffer is the result buffer. It must outlive any outstanding request.
	buffer []byte
}

// arm issues a new asynchronous change request.
func (r *readDirectoryChangesRequest) arm() error {
	if err := windows.ResetEvent(r.overlapped.HEvent); err != nil {
		return errors.Wrap(err, "unable to reset completion event")
	}
	if err := windows.ReadDirectoryChanges(
		r.handle,
		&r.buffer[0],
		uint32(len(r.buffer)),
		r.recursive,
		readDirectoryChangesFilter,
		nil,
		&r.overlapped,
		0,
	); err != nil {
		return errors.Wrap(err, "unable to request directory changes")
	}
	return nil
}

// readDirectoryChangesBackend implements backend using one overlapped
// ReadDirectoryChangesW request per registration. Each request covers its
// directory's entire subtree when registered recursively.
type readDirectoryChangesBackend struct {
	// logger is the backend logger.
	logger *logging.Logger
	// nextToken is the next registration token.
	nextToken nativeToken
	// requests maps registrations to their requests.
	requests map[nativeToken]*readDirectoryChangesRequest
	// abandoned holds requests whose cancellation didn't complete in time.
	// Their buffers may still be written by the system, so they're retained
	// for the lifetime of the backend.
	abandoned []*readDirectoryChangesRequest
}

// newBackend creates a new ReadDirectoryChangesW backend.
func newBackend(logger *logging.Logger) (backend, error) {
	return &readDirectoryChangesBackend{
		logger:   logger,
		requests: make(map[nativeToken]*readDirectoryChangesRequest),
	}, nil
}

// subtree implements backend.subtree.
func (b *readDirectoryChangesBackend) subtree() bool {
	return true
}

// register implements backend.register.
func (b *readDirectoryChangesBackend) register(directory string, recursive bool) (nativeToken, error) {
	// Open the directory.
	path, err := windows.UTF16PtrFromString(directory)
	if err != nil {
		return 0, errors.Wrap(err, "unable to convert path")
	}
	handle, err := windows.CreateFile(
		path,
		windows.FILE_LIST_DIRECTORY,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OVERLAPPED,
		0,
	)
	if err != nil {
		return 0, errors.Wrap(err, "unable to open directory")
	}

	// Create the completion event.
	event, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		must.CloseWindowsHandle(handle, b.logger)
		return 0, errors.Wrap(err, "unable to create completion event")
	}

	// Create and arm the request.
	request := &readDirectoryChangesRequest{
		directory: directory,
		recursive: recursive,
		handle:    handle,
		buffer:    make([]byte, readDirectoryChangesBufferSize),
	}
	request.overlapped.HEvent = event
	if err := request.arm(); err != nil {
		must.CloseWindowsHandle(handle, b.logger)
		must.CloseWindowsHandle(event, b.logger)
		return 0, err
	}

	// Record the request.
	token := b.nextToken
	b.nextToken++
	b.requests[token] = request
	return token, nil
}

// release cancels any outstanding operation on a request, waits (with a
// bound) for the cancellation to complete, and closes the request handles.
func (b *readDirectoryChangesBackend) release(request *readDirectoryChangesRequest) {
	// Cancel the request. ERROR_NOT_FOUND indicates that nothing was
	// outstanding.
	if err := windows.CancelIoEx(request.handle, &request.overlapped); err != nil && err != windows.ERROR_NOT_FOUND {
		b.logger.Debugf("Unable to cancel request for %s: %v", request.directory, err)
	}

	// Wait for the cancellation to complete.
	status, err := windows.WaitForSingleObject(request.overlapped.HEvent, readDirectoryChangesCancellationTimeout)
	if err != nil || status != windows.WAIT_OBJECT_0 {
		b.logger.Warnf("Cancellation of request for %s did not complete", request.directory)
		b.abandoned = append(b.abandoned, request)
	}

	// Close handles.
	must.CloseWindowsHandle(request.handle, b.logger)
	must.CloseWindowsHandle(request.overlapped.HEvent, b.logger)
}

// deregister implements backend.deregister.
func (b *readDirectoryChangesBackend) deregister(token nativeToken) error {
	request, ok := b.requests[token]
	if !ok {
		return nil
	}
	delete(b.requests, token)
	b.release(request)
	return nil
}

// sortedTokens returns the live registrations in ascending order.
func (b *readDirectoryChangesBackend) sortedTokens() []nativeToken {
	tokens := make([]nativeToken, 0, len(b.requests))
	for token := range b.requests {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
	return tokens
}

// poll implements backend.poll.
func (b *readDirectoryChangesBackend) poll(maximumReads int) ([]rawEvent, bool, error) {
	var events []rawEvent
	var overflow bool
	var reads int
	for _, token := range b.sortedTokens() {
		// Enforce the read bound.
		if reads >= maximumReads {
			break
		}

		// Check for completion without blocking.
		request := b.requests[token]
		if status, err := windows.WaitForSingleObject(request.overlapped.HEvent, 0); err != nil || status != windows.WAIT_OBJECT_0 {
			continue
		}
		reads++

		// Collect the result. A failed request means that the directory is no
		// longer accessible (e.g. it was deleted), so the registration is
		// invalidated.
		var transferred uint32
		if err := windows.GetOverlappedResult(request.handle, &request.overlapped, &transferred, false); err != nil {
			if err != windows.ERROR_NOTIFY_ENUM_DIR {
				b.logger.Debugf("Request for %s failed: %v", request.directory, err)
				delete(b.requests, token)
				b.release(request)
				events = append(events, rawEvent{token: token, invalidated: true})
				continue
			}
			overflow = true
		} else if transferred == 0 {
			overflow = true
		} else {
			events = b.parse(token, request.buffer[:transferred], events)
		}

		// Re-arm the request.
		if err := request.arm(); err != nil {
			b.logger.Warnf("Unable to re-arm request for %s: %v", request.directory, err)
			delete(b.requests, token)
			b.release(request)
			events = append(events, rawEvent{token: token, invalidated: true})
		}
	}
	return events, overflow, nil
}

// parse decodes a buffer of FILE_NOTIFY_INFORMATION records, appending the
// results to events.
func (b *readDirectoryChangesBackend) parse(token nativeToken, buffer []byte, events []rawEvent) []rawEvent {
	for offset := uint32(0); int(offset) < len(buffer); {
		// Decode the record.
		information := (*windows.FileNotifyInformation)(unsafe.Pointer(&buffer[offset]))
		name := windows.UTF16ToString(unsafe.Slice(&information.FileName, information.FileNameLength/2))

		// Classify and record the event.
		if kind, ok := classifyFileAction(information.Action); ok {
			events = append(events, rawEvent{token: token, kind: kind, path: name})
		} else {
			b.logger.Tracef("Ignoring file action %d", information.Action)
		}

		// Advance to the next record.
		if information.NextEntryOffset == 0 {
			break
		}
		offset += information.NextEntryOffset
	}
	return events
}

// close implements backend.close.
func (b *readDirectoryChangesBackend) close() error {
	for _, token := range b.sortedTokens() {
		b.release(b.requests[token])
		delete(b.requests, token)
	}
	return nil
}
