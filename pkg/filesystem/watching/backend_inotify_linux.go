package watching

import (
	"bytes"
	"unsafe"

	"github.com/pkg/errors"

	"golang.org/x/sys/unix"

	"github.com/mutagen-io/dirwatch/pkg/logging"
)

const (
	// NativeBackendName is the name of the native notification backend.
	NativeBackendName = "inotify"

	// inotifyMask is the set of inotify events requested for each directory.
	inotifyMask = unix.IN_ATTRIB | unix.IN_CREATE | unix.IN_DELETE |
		unix.IN_MODIFY | unix.IN_MOVED_FROM | unix.IN_MOVED_TO
	// inotifyReadBufferSize is the size of the buffer used for each read from
	// the inotify queue.
	inotifyReadBufferSize = 64 * 1024
)

// classifyInotifyMask converts an inotify event mask to an event kind. The
// checks are performed in order of precedence. It returns false for masks
// with no canonical classification.
func classifyInotifyMask(mask uint32) (EventKind, bool) {
	switch {
	case mask&unix.IN_CREATE != 0:
		return EventKindCreate, true
	case mask&unix.IN_DELETE != 0:
		return EventKindDelete, true
	case mask&(unix.IN_ATTRIB|unix.IN_MODIFY) != 0:
		return EventKindModify, true
	case mask&(unix.IN_MOVED_FROM|unix.IN_MOVED_TO) != 0:
		return EventKindRename, true
	default:
		return 0, false
	}
}

// inotifyBackend implements backend using a single non-blocking inotify
// instance shared by all registrations.
type inotifyBackend struct {
	// logger is the backend logger.
	logger *logging.Logger
	// descriptor is the inotify file descriptor.
	descriptor int
	// buffer is the read buffer.
	buffer []byte
	// nextToken is the next registration token.
	nextToken nativeToken
	// watchDescriptorsByToken maps registrations to watch descriptors.
	watchDescriptorsByToken map[nativeToken]int32
	// tokensByWatchDescriptor maps watch descriptors to registrations. The
	// kernel returns the same watch descriptor for every registration of a
	// given directory, so multiple registrations may share one.
	tokensByWatchDescriptor map[int32][]nativeToken
}

// newBackend creates a new inotify backend.
func newBackend(logger *logging.Logger) (backend, error) {
	descriptor, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "unable to initialize inotify")
	}
	return &inotifyBackend{
		logger:                  logger,
		descriptor:              descriptor,
		buffer:                  make([]byte, inotifyReadBufferSize),
		watchDescriptorsByToken: make(map[nativeToken]int32),
		tokensByWatchDescriptor: make(map[int32][]nativeToken),
	}, nil
}

// subtree implements backend.subtree.
func (b *inotifyBackend) subtree() bool {
	return false
}

// register implements backend.register.
func (b *inotifyBackend) register(directory string, _ bool) (nativeToken, error) {
	watchDescriptor, err := unix.InotifyAddWatch(b.descriptor, directory, inotifyMask|unix.IN_ONLYDIR)
	if err != nil {
		return 0, errors.Wrap(err, "unable to add inotify watch")
	}
	token := b.nextToken
	b.nextToken++
	b.watchDescriptorsByToken[token] = int32(watchDescriptor)
	b.tokensByWatchDescriptor[int32(watchDescriptor)] = append(
		b.tokensByWatchDescriptor[int32(watchDescriptor)], token,
	)
	return token, nil
}

// deregister implements backend.deregister.
func (b *inotifyBackend) deregister(token nativeToken) error {
	// Look up the watch descriptor. If it's gone, then the kernel already
	// invalidated the registration.
	watchDescriptor, ok := b.watchDescriptorsByToken[token]
	if !ok {
		return nil
	}
	delete(b.watchDescriptorsByToken, token)

	// Remove the token from the watch descriptor's registrations. The watch
	// descriptor itself is only removed once its last registration goes.
	tokens := b.tokensByWatchDescriptor[watchDescriptor]
	for i, t := range tokens {
		if t == token {
			tokens = append(tokens[:i], tokens[i+1:]...)
			break
		}
	}
	if len(tokens) > 0 {
		b.tokensByWatchDescriptor[watchDescriptor] = tokens
		return nil
	}
	delete(b.tokensByWatchDescriptor, watchDescriptor)

	// Remove the kernel watch. EINVAL indicates that the kernel has already
	// dropped it and queued an IN_IGNORED that we haven't read yet.
	if _, err := unix.InotifyRmWatch(b.descriptor, uint32(watchDescriptor)); err != nil && err != unix.EINVAL {
		return errors.Wrap(err, "unable to remove inotify watch")
	}
	return nil
}

// poll implements backend.poll.
func (b *inotifyBackend) poll(maximumReads int) ([]rawEvent, bool, error) {
	// Perform a zero-timeout readiness check.
	descriptors := []unix.PollFd{{Fd: int32(b.descriptor), Events: unix.POLLIN}}
	if ready, err := unix.Poll(descriptors, 0); err != nil {
		if err == unix.EINTR {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "unable to poll inotify descriptor")
	} else if ready == 0 || descriptors[0].Revents&unix.POLLIN == 0 {
		return nil, false, nil
	}

	// Drain the queue.
	var events []rawEvent
	var overflow bool
	for reads := 0; reads < maximumReads; reads++ {
		count, err := unix.Read(b.descriptor, b.buffer)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				break
			}
			return events, overflow, errors.Wrap(err, "unable to read inotify events")
		} else if count < unix.SizeofInotifyEvent {
			break
		}
		events, overflow = b.parse(b.buffer[:count], events, overflow)
	}

	// Done.
	return events, overflow, nil
}

// parse decodes a buffer of inotify events, appending the results to events.
// It also reports whether or not an overflow was observed.
func (b *inotifyBackend) parse(buffer []byte, events []rawEvent, overflow bool) ([]rawEvent, bool) {
	for offset := 0; offset+unix.SizeofInotifyEvent <= len(buffer); {
		// Decode the fixed-size header.
		header := (*unix.InotifyEvent)(unsafe.Pointer(&buffer[offset]))
		offset += unix.SizeofInotifyEvent

		// Decode the NUL-padded name, if any.
		var name string
		if header.Len > 0 {
			end := offset + int(header.Len)
			if end > len(buffer) {
				break
			}
			nameBytes := buffer[offset:end]
			if terminator := bytes.IndexByte(nameBytes, 0); terminator >= 0 {
				nameBytes = nameBytes[:terminator]
			}
			name = string(nameBytes)
			offset = end
		}

		// Handle queue overflow, which isn't tied to any watch descriptor.
		if header.Mask&unix.IN_Q_OVERFLOW != 0 {
			overflow = true
			continue
		}

		// Look up the registrations for the watch descriptor. Events for
		// released watch descriptors are discarded.
		tokens, ok := b.tokensByWatchDescriptor[header.Wd]
		if !ok {
			continue
		}

		// Handle kernel-side removal of the watch descriptor.
		if header.Mask&unix.IN_IGNORED != 0 {
			delete(b.tokensByWatchDescriptor, header.Wd)
			for _, token := range tokens {
				delete(b.watchDescriptorsByToken, token)
				events = append(events, rawEvent{token: token, invalidated: true})
			}
			continue
		}

		// Classify the event and record it for every registration.
		kind, ok := classifyInotifyMask(header.Mask)
		if !ok {
			b.logger.Tracef("Ignoring inotify event with mask 0x%x", header.Mask)
			continue
		}
		for _, token := range tokens {
			events = append(events, rawEvent{token: token, kind: kind, path: name})
		}
	}
	return events, overflow
}

// close implements backend.close.
func (b *inotifyBackend) close() error {
	b.watchDescriptorsByToken = make(map[nativeToken]int32)
	b.tokensByWatchDescriptor = make(map[int32][]nativeToken)
	if err := unix.Close(b.descriptor); err != nil {
		return errors.Wrap(err, "unable to close inotify descriptor")
	}
	return nil
}
