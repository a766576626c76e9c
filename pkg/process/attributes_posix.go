//go:build !windows && !plan9

package process

import (
	"syscall"
)

// DetachedProcessAttributes returns the process attributes to use for starting
// detached processes.
func DetachedProcessAttributes() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		// Setsid creates a new session, which detaches the process from any
		// controlling terminal and from the watcher's process group, so that
		// terminal signals delivered to the watcher don't reach it.
		Setsid: true,
	}
}
