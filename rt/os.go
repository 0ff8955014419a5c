package rt

import (
	"sync/atomic"
	"syscall"
)

// Process-wide error-number plumbing for the system-call leaves built
// on top of the core. The slot is process-wide, not per machine,
// matching errno.
var lastErrno int32

// SetErrno records an error number.
func SetErrno(errno int) {
	atomic.StoreInt32(&lastErrno, int32(errno))
}

// Errno returns the most recently recorded error number.
func Errno() int {
	return int(atomic.LoadInt32(&lastErrno))
}

// ErrString formats an error number as the host's error message.
func ErrString(errno int) string {
	if errno == 0 {
		return ""
	}
	return syscall.Errno(errno).Error()
}
