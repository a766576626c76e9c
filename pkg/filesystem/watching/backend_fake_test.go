package watching

import (
	"sort"
	"testing"

	"github.com/pkg/errors"
)

// fakeBackend is a scripted backend for testing. Events are queued explicitly
// and delivered on the next poll.
type fakeBackend struct {
	// subtreeRegistrations indicates whether or not registrations cover
	// entire subtrees.
	subtreeRegistrations bool
	// failures is the set of directories whose registration fails.
	failures map[string]bool
	// nextToken is the next registration token.
	nextToken nativeToken
	// directories maps live registrations to their directories.
	directories map[nativeToken]string
	// deregistered records released registrations in order.
	deregistered []nativeToken
	// pending are the events to be returned by the next poll.
	pending []rawEvent
	// overflow is the overflow status for the next poll.
	overflow bool
	// maximumReads records the bound passed to the most recent poll.
	maximumReads int
	// closed indicates whether or not the backend has been closed.
	closed bool
}

// newFakeBackend creates a new fake backend.
func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		failures:    make(map[string]bool),
		directories: make(map[nativeToken]string),
	}
}

// subtree implements backend.subtree.
func (b *fakeBackend) subtree() bool {
	return b.subtreeRegistrations
}

// register implements backend.register.
func (b *fakeBackend) register(directory string, _ bool) (nativeToken, error) {
	if b.failures[directory] {
		return 0, errors.New("registration failure requested")
	}
	token := b.nextToken
	b.nextToken++
	b.directories[token] = directory
	return token, nil
}

// deregister implements backend.deregister.
func (b *fakeBackend) deregister(token nativeToken) error {
	delete(b.directories, token)
	b.deregistered = append(b.deregistered, token)
	return nil
}

// poll implements backend.poll.
func (b *fakeBackend) poll(maximumReads int) ([]rawEvent, bool, error) {
	b.maximumReads = maximumReads
	events, overflow := b.pending, b.overflow
	b.pending, b.overflow = nil, false
	return events, overflow, nil
}

// close implements backend.close.
func (b *fakeBackend) close() error {
	b.closed = true
	return nil
}

// tokens returns the live registrations for a directory in ascending order.
func (b *fakeBackend) tokens(directory string) []nativeToken {
	var result []nativeToken
	for token, d := range b.directories {
		if d == directory {
			result = append(result, token)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// emit queues an event for every live registration of a directory. It fails
// the test if the directory isn't registered.
func (b *fakeBackend) emit(t *testing.T, directory string, kind EventKind, path string) {
	t.Helper()
	tokens := b.tokens(directory)
	if len(tokens) == 0 {
		t.Fatal("no registration for directory:", directory)
	}
	for _, token := range tokens {
		b.emitToken(token, kind, path)
	}
}

// emitToken queues an event for a specific registration, whether or not it's
// still live.
func (b *fakeBackend) emitToken(token nativeToken, kind EventKind, path string) {
	b.pending = append(b.pending, rawEvent{token: token, kind: kind, path: path})
}

// invalidate drops a registration as if the operating system had removed it
// and queues the corresponding invalidation event.
func (b *fakeBackend) invalidate(token nativeToken) {
	delete(b.directories, token)
	b.pending = append(b.pending, rawEvent{token: token, invalidated: true})
}
