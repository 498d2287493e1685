package abi

import "fmt"

// Errno is a kernel error code. Syscalls that follow the errno convention
// return the negated code; the gateway stores the absolute value in the
// process errno slot and hands -1 to the caller.
type Errno int32

const (
	EOK       Errno = 0
	EPERM     Errno = 1   // permission denied
	ENOENT    Errno = 2   // not found
	EIO       Errno = 5   // unspecified kernel failure
	EBADF     Errno = 9   // bad descriptor
	EAGAIN    Errno = 11  // would block / try again
	ENOMEM    Errno = 12  // resource exhausted
	EACCES    Errno = 13  // access denied
	EBUSY     Errno = 16  // held by another thread
	EEXIST    Errno = 17  // already exists
	ENOTDIR   Errno = 20  // not a directory
	EISDIR    Errno = 21  // is a directory
	EINVAL    Errno = 22  // invalid argument
	ENFILE    Errno = 23  // too many open descriptors
	ENOSPC    Errno = 28  // no space on device
	EPIPE     Errno = 32  // broken pipe
	ERANGE    Errno = 34  // result out of range
	ENOSYS    Errno = 38  // not supported by this kernel
	ETIMEDOUT Errno = 110 // tcp connect, join poll, dns
)

var errnoText = map[Errno]string{
	EOK:       "success",
	EPERM:     "operation not permitted",
	ENOENT:    "no such file or directory",
	EIO:       "input/output error",
	EBADF:     "bad file descriptor",
	EAGAIN:    "resource temporarily unavailable",
	ENOMEM:    "out of memory",
	EACCES:    "permission denied",
	EBUSY:     "device or resource busy",
	EEXIST:    "file exists",
	ENOTDIR:   "not a directory",
	EISDIR:    "is a directory",
	EINVAL:    "invalid argument",
	ENFILE:    "too many open files",
	ENOSPC:    "no space left on device",
	EPIPE:     "broken pipe",
	ERANGE:    "result out of range",
	ENOSYS:    "function not implemented",
	ETIMEDOUT: "connection timed out",
}

func (e Errno) Error() string {
	if s, ok := errnoText[e]; ok {
		return s
	}
	return fmt.Sprintf("errno %d", int32(e))
}

// Fail negates an errno for return through the trap.
func Fail(e Errno) int64 {
	return -int64(e)
}
