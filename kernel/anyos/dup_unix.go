//go:build !windows

package anyos

import (
	"os"

	"golang.org/x/sys/unix"
)

// hostDup duplicates a host descriptor so the two anyOS fds share one file
// description but survive independent closes.
func hostDup(f *os.File) (*os.File, error) {
	fd, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), f.Name()), nil
}
