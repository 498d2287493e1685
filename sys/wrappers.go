package sys

import "github.com/brianmayclone/anyos-userland/abi"

// Typed wrappers for the handful of syscalls the lower layers (arena,
// mmap, stream drain) issue directly. Everything else goes through the
// subsystem packages.

func (g *Gateway) Yield() {
	g.Trap(abi.SysYield)
}

func (g *Gateway) SleepMs(ms uint64) {
	g.Trap(abi.SysSleep, ms)
}

// Sbrk grows the heap by delta bytes and returns the previous break, or an
// errno on exhaustion.
func (g *Gateway) Sbrk(delta int64) (uint64, error) {
	ret := g.Trap(abi.SysSbrk, uint64(delta))
	if ret < 0 {
		e := abi.Errno(-ret)
		g.SetErrno(e)
		return 0, e
	}
	return uint64(ret), nil
}

func (g *Gateway) Lseek(fd int32, off int64, whence int) (int64, error) {
	ret := g.Trap(abi.SysLseek, uint64(fd), uint64(off), uint64(whence))
	if ret < 0 {
		e := abi.Errno(-ret)
		g.SetErrno(e)
		return -1, e
	}
	return ret, nil
}

// Read reads up to n bytes from fd into image memory at addr.
func (g *Gateway) Read(fd int32, addr, n uint64) (int64, error) {
	ret := g.Trap(abi.SysRead, uint64(fd), addr, n)
	if ret < 0 {
		e := abi.Errno(-ret)
		g.SetErrno(e)
		return -1, e
	}
	return ret, nil
}

// Write writes n bytes of image memory at addr to fd.
func (g *Gateway) Write(fd int32, addr, n uint64) (int64, error) {
	ret := g.Trap(abi.SysWrite, uint64(fd), addr, n)
	if ret < 0 {
		e := abi.Errno(-ret)
		g.SetErrno(e)
		return -1, e
	}
	return ret, nil
}

func (g *Gateway) Close(fd int32) error {
	if ret := g.Trap(abi.SysClose, uint64(fd)); ret < 0 {
		e := abi.Errno(-ret)
		g.SetErrno(e)
		return e
	}
	return nil
}
