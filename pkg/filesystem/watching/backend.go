package watching

// nativeToken identifies a single native directory registration. Tokens are
// allocated by backends and never reused within a backend's lifetime, even if
// the underlying native identifier (e.g. an inotify watch descriptor) is.
type nativeToken uint64

// rawEvent is a classified native event that hasn't yet been resolved to a
// watch.
type rawEvent struct {
	// token is the registration that reported the event.
	token nativeToken
	// kind is the classification of the event.
	kind EventKind
	// path is the affected entry, relative to the registered directory.
	path string
	// invalidated indicates that the native registration was released by the
	// operating system (e.g. because the directory was deleted). Invalidation
	// events carry no kind or path and are never delivered to callbacks.
	invalidated bool
}

// backend is the interface to a platform's native notification facility.
// Backends are not safe for concurrent use.
type backend interface {
	// subtree indicates whether or not a single registration covers an entire
	// directory hierarchy. If true, watch trees never expand or contract.
	subtree() bool
	// register establishes a native registration for a directory. The
	// recursive flag is only meaningful for backends that support subtree
	// registrations.
	register(directory string, recursive bool) (nativeToken, error)
	// deregister releases a native registration. After it returns, no further
	// events will be reported for the token. Releasing a registration that the
	// operating system has already invalidated is not an error.
	deregister(token nativeToken) error
	// poll performs a non-blocking check for pending native events and drains
	// them, performing at most the specified number of native reads. It also
	// reports whether or not the native queue overflowed.
	poll(maximumReads int) ([]rawEvent, bool, error)
	// close releases all remaining registrations and native resources.
	close() error
}
