// Package thread is the threading layer: create/join/detach over the
// thread-create trap, spin-based mutexes and condition variables, once
// guards and a fixed-size TLS key table. Threads are kernel entities; the
// library keeps one record per thread for the retval, TLS values and the
// join state.
package thread

import (
	"sync/atomic"

	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/mem"
	"github.com/brianmayclone/anyos-userland/sys"
)

const stackSize = 64 * 1024

// Thread is the library-side record of one kernel thread.
type Thread struct {
	g    *sys.Gateway
	heap *mem.Arena

	tid   uint32
	stack uint64
	entry uint64

	detached int32
	done     int32
	retval   atomic.Value

	tls [maxKeys]atomic.Value
}

// Create allocates a stack, registers the trampoline as a text address
// and issues the thread-create trap. The start routine's return value is
// collected by Join.
func Create(g *sys.Gateway, heap *mem.Arena, img *mem.Image, name string, priority int, start func() interface{}) (*Thread, error) {
	stack := mem.Mmap(heap, g, stackSize, -1, 0)
	if stack == 0 {
		return nil, abi.ENOMEM
	}
	t := &Thread{g: g, heap: heap, stack: stack}
	t.entry = g.Text().Register(func() {
		t.run(start)
	})

	nb, err := heap.CString(name)
	if err != nil {
		g.Text().Release(t.entry)
		mem.Munmap(heap, stack, stackSize)
		return nil, err
	}
	defer nb.Free()

	// the kernel pushes the return frame, so the top slot is left free
	top := stack + stackSize - 8
	tid := g.Call(abi.SysThreadCreate, t.entry, top, nb.Addr, uint64(len(name)), uint64(uint32(priority)))
	if tid <= 0 {
		g.Text().Release(t.entry)
		mem.Munmap(heap, stack, stackSize)
		if tid < 0 {
			return nil, g.Errno()
		}
		return nil, abi.EAGAIN
	}
	t.tid = uint32(tid)
	return t, nil
}

// run is the trampoline: the start routine, then TLS destructors, then
// the exit trap.
func (t *Thread) run(start func() interface{}) {
	ret := start()
	if ret != nil {
		t.retval.Store(ret)
	}
	runDestructors(t)
	atomic.StoreInt32(&t.done, 1)
	t.g.Trap(abi.SysThreadExit, uint64(t.tid))
}

func (t *Thread) Tid() uint32 { return t.tid }

// Join waits for the thread and returns its retval. Joining a detached
// thread fails with EINVAL.
func (t *Thread) Join() (interface{}, error) {
	if atomic.LoadInt32(&t.detached) != 0 {
		return nil, abi.EINVAL
	}
	var b Backoff
	for {
		ret := t.g.Trap(abi.SysWaittid, uint64(t.tid))
		if ret == 0 {
			break
		}
		if abi.Errno(-ret) != abi.EAGAIN {
			return nil, abi.Errno(-ret)
		}
		b.Spin(t.g)
	}
	t.release()
	return t.retval.Load(), nil
}

// Detach marks the thread non-joinable. Its stack and text slot are
// reclaimed when the trampoline finishes; detach after completion reclaims
// immediately.
func (t *Thread) Detach() {
	atomic.StoreInt32(&t.detached, 1)
	if atomic.LoadInt32(&t.done) != 0 {
		t.release()
	}
}

func (t *Thread) release() {
	if t.entry != 0 {
		t.g.Text().Release(t.entry)
		t.entry = 0
	}
	if t.stack != 0 {
		mem.Munmap(t.heap, t.stack, stackSize)
		t.stack = 0
	}
}

// SetPriority adjusts the kernel scheduling priority.
func (t *Thread) SetPriority(prio int) error {
	if ret := t.g.Call(abi.SysSetPriority, uint64(t.tid), uint64(uint32(prio))); ret < 0 {
		return t.g.Errno()
	}
	return nil
}

// Backoff is the spin helper shared by the primitives: a few busy spins,
// then cooperative yields. A futex kernel would replace Spin without
// touching the callers.
type Backoff struct {
	n int
}

func (b *Backoff) Spin(g *sys.Gateway) {
	b.n++
	if b.n < 4 {
		return
	}
	g.Yield()
}

func (b *Backoff) Reset() { b.n = 0 }
