package process

import (
	"syscall"
)

// DetachedProcessAttributes returns the process attributes to use for starting
// detached processes. Plan 9 doesn't support session creation, so no special
// attributes are used.
func DetachedProcessAttributes() *syscall.SysProcAttr {
	return nil
}
