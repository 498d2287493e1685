// Package sig is the userland half of signal handling. The kernel only
// queues signal numbers; delivery happens when the gateway drains the
// queue on syscall return and calls the dispatcher here, which applies
// the installed disposition.
package sig

import (
	"sync"

	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/sys"
)

// Dispositions for a signal slot.
type Disposition int

const (
	Default Disposition = iota
	Ignore
	Handled
)

type slot struct {
	disp Disposition
	fn   func(int)
	addr uint64 // text address registered for fn
}

// Table holds the 32 dispositions for one process and owns the gateway
// hookup.
type Table struct {
	mu    sync.Mutex
	g     *sys.Gateway
	slots [abi.NumSignals]slot
}

// Install wires a fresh table into the gateway's drain path. Every slot
// starts at the default disposition.
func Install(g *sys.Gateway) *Table {
	t := &Table{g: g}
	g.OnSignal(t.dispatch)
	return t
}

// dispatch applies the current disposition for one delivered signal.
// Default is process termination with the conventional 128+sig status;
// SIGCHLD's default is to be ignored.
func (t *Table) dispatch(signum int) {
	if signum <= 0 || signum >= abi.NumSignals {
		return
	}
	t.mu.Lock()
	s := t.slots[signum]
	t.mu.Unlock()
	switch s.disp {
	case Ignore:
	case Handled:
		if s.fn != nil {
			s.fn(signum)
		}
	default:
		if signum == abi.SIGCHLD {
			return
		}
		t.g.Trap(abi.SysExit, uint64(128+signum))
	}
}

// Signal installs a disposition and returns the previous one. handler is
// consulted only for Handled. SIGKILL and SIGSTOP cannot be caught or
// ignored.
func (t *Table) Signal(signum int, disp Disposition, handler func(int)) (Disposition, error) {
	if signum <= 0 || signum >= abi.NumSignals {
		return Default, abi.EINVAL
	}
	if disp != Default && !abi.Catchable(signum) {
		return Default, abi.EINVAL
	}

	var addr uint64
	switch disp {
	case Default:
		addr = abi.SigDfl
	case Ignore:
		addr = abi.SigIgn
	case Handled:
		if handler == nil {
			return Default, abi.EINVAL
		}
		addr = t.g.Text().Register(handler)
	default:
		return Default, abi.EINVAL
	}

	if ret := t.g.Call(abi.SysSigaction, uint64(signum), addr); ret < 0 {
		if disp == Handled {
			t.g.Text().Release(addr)
		}
		return Default, t.g.Errno()
	}

	t.mu.Lock()
	old := t.slots[signum]
	t.slots[signum] = slot{disp: disp, fn: handler, addr: addr}
	t.mu.Unlock()

	if old.disp == Handled && old.addr > abi.SigIgn {
		t.g.Text().Release(old.addr)
	}
	return old.disp, nil
}

// Kill queues a signal for pid.
func (t *Table) Kill(pid, signum int) error {
	if ret := t.g.Call(abi.SysKill, uint64(uint32(pid)), uint64(uint32(signum))); ret < 0 {
		return t.g.Errno()
	}
	return nil
}

// Raise queues a signal for the calling process. Delivery happens on the
// next syscall return, which for a hosted process is the raise trap
// itself.
func (t *Table) Raise(signum int) error {
	pid := int(t.g.Trap(abi.SysGetpid))
	return t.Kill(pid, signum)
}

// Mask operations for Sigprocmask.
const (
	Block = iota
	Unblock
	SetMask
)

// Sigprocmask updates the kernel-side delivery mask and returns the old
// mask.
func (t *Table) Sigprocmask(how int, mask uint32) (uint32, error) {
	ret := t.g.Call(abi.SysSigprocmask, uint64(uint32(how)), uint64(mask))
	if ret < 0 {
		return 0, t.g.Errno()
	}
	return uint32(ret), nil
}

// Sigsuspend is not implemented by the kernel; the call fails with ENOSYS
// unconditionally.
func (t *Table) Sigsuspend(mask uint32) error {
	t.g.SetErrno(abi.ENOSYS)
	return abi.ENOSYS
}

// Sigpending is not implemented by the kernel; the call fails with ENOSYS
// unconditionally.
func (t *Table) Sigpending() (uint32, error) {
	t.g.SetErrno(abi.ENOSYS)
	return 0, abi.ENOSYS
}
