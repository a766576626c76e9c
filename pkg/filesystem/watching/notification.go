package watching

// notification is a resolved event awaiting maintenance and dispatch within a
// single Update call.
type notification struct {
	// id is the watch that owns the reporting registration.
	id WatchID
	// kind is the event classification.
	kind EventKind
	// directory is the registered directory that reported the event, captured
	// at resolution time.
	directory string
	// path is the affected entry relative to directory.
	path string
	// token is the reporting registration.
	token nativeToken
}

// notificationKey is the identity of a notification for the purposes of
// duplicate suppression. The directory and path together encode the affected
// entry's path relative to the watch root.
type notificationKey struct {
	id        WatchID
	kind      EventKind
	directory string
	path      string
}

// batch is an ordered, duplicate-free collection of notifications.
type batch struct {
	// notifications are the retained notifications in arrival order.
	notifications []notification
	// seen records the keys of retained notifications.
	seen map[notificationKey]bool
}

// newBatch creates a new empty batch.
func newBatch() *batch {
	return &batch{seen: make(map[notificationKey]bool)}
}

// add appends a notification to the batch unless an identical one has already
// been recorded, in which case the earlier occurrence wins. It returns whether
// or not the notification was retained.
func (b *batch) add(n notification) bool {
	key := notificationKey{n.id, n.kind, n.directory, n.path}
	if b.seen[key] {
		return false
	}
	b.seen[key] = true
	b.notifications = append(b.notifications, n)
	return true
}
