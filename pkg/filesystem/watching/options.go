package watching

import (
	"github.com/mutagen-io/dirwatch/pkg/logging"
)

// options is the watcher configuration assembled from Option values.
type options struct {
	// logger is the logger for the watcher. It may be nil.
	logger *logging.Logger
	// maximumReadsPerUpdate bounds the native reads in each Update call.
	maximumReadsPerUpdate int
	// overflowHandler is invoked when the native backend reports that events
	// may have been lost. It may be nil.
	overflowHandler func()
}

// Option customizes a DirectoryWatcher.
type Option func(*options)

// WithLogger sets the logger used by the watcher. Registration failures,
// skipped subdirectories, and native queue overflows are reported through it.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaximumReadsPerUpdate bounds the number of native buffer reads (or
// completed requests) that a single Update call will process. Values less than
// 1 select DefaultMaximumReadsPerUpdate.
func WithMaximumReadsPerUpdate(reads int) Option {
	return func(o *options) {
		if reads < 1 {
			reads = DefaultMaximumReadsPerUpdate
		}
		o.maximumReadsPerUpdate = reads
	}
}

// WithOverflowHandler registers a function that Update invokes (at most once
// per call) when the native backend indicates that its event queue overflowed
// and changes may have been lost. Callers typically respond by rescanning.
func WithOverflowHandler(handler func()) Option {
	return func(o *options) {
		o.overflowHandler = handler
	}
}

// newOptions computes the effective configuration for a set of options.
func newOptions(opts []Option) *options {
	result := &options{maximumReadsPerUpdate: DefaultMaximumReadsPerUpdate}
	for _, o := range opts {
		o(result)
	}
	return result
}
