// Package sys is the syscall gateway: the single choke point between the
// userland library and the anyOS kernel. On real hardware the trap is an
// arch stub around the SYSCALL instruction (number in RAX, arguments in
// RBX, R10, RDX, RSI, RDI); here the binding is an interface so the hosted
// kernel and mock kernels plug in behind the same five-register contract.
package sys

import (
	"sync/atomic"
	"time"

	"github.com/brianmayclone/anyos-userland/abi"
)

// Dispatcher is the kernel side of the trap.
type Dispatcher interface {
	// Sysenter handles one trap and returns a signed machine word.
	// Negative values are kernel error codes for syscalls that follow
	// the errno convention.
	Sysenter(num uint32, args [5]uint64) int64
	// TakeSignal pops one pending signal for the process, if any.
	// The gateway drains these after every trap returns.
	TakeSignal() (int, bool)
}

// Tracer observes completed syscalls. See the trace package.
type Tracer interface {
	Syscall(num uint32, args [5]uint64, ret int64, elapsed time.Duration)
}

// Gateway carries one process's binding to the kernel plus the process-wide
// errno slot. It never retries a trap and never interprets results beyond
// the errno rule; interpretation belongs to the caller.
type Gateway struct {
	d        Dispatcher
	errno    int32
	onSignal atomic.Value // func(int)
	tracer   Tracer

	text Registry
}

func Bind(d Dispatcher) *Gateway {
	g := &Gateway{d: d}
	g.text.init()
	return g
}

// SetTracer installs a syscall tracer. Install before the process runs;
// the field is not synchronized.
func (g *Gateway) SetTracer(t Tracer) { g.tracer = t }

// OnSignal installs the userland signal dispatcher invoked when the kernel
// reports a pending signal on syscall return.
func (g *Gateway) OnSignal(fn func(int)) { g.onSignal.Store(fn) }

// Trap issues one syscall and returns the raw kernel result. Callers that
// follow the errno convention wrap it in Call.
func (g *Gateway) Trap(num uint32, args ...uint64) int64 {
	var a [5]uint64
	copy(a[:], args)
	start := time.Now()
	ret := g.d.Sysenter(num, a)
	if g.tracer != nil {
		g.tracer.Syscall(num, a, ret, time.Since(start))
	}
	g.drainSignals()
	return ret
}

// Call is Trap with the errno rule applied: a negative result stores its
// absolute value in errno and becomes -1; everything else passes through.
func (g *Gateway) Call(num uint32, args ...uint64) int64 {
	ret := g.Trap(num, args...)
	if ret < 0 {
		g.SetErrno(abi.Errno(-ret))
		return -1
	}
	return ret
}

func (g *Gateway) drainSignals() {
	fn, _ := g.onSignal.Load().(func(int))
	if fn == nil {
		return
	}
	for {
		sig, ok := g.d.TakeSignal()
		if !ok {
			return
		}
		fn(sig)
	}
}

// Errno reads the process-wide errno slot.
func (g *Gateway) Errno() abi.Errno {
	return abi.Errno(atomic.LoadInt32(&g.errno))
}

func (g *Gateway) SetErrno(e abi.Errno) {
	atomic.StoreInt32(&g.errno, int32(e))
}

// Text exposes the text-address registry used for thread entry points and
// signal handlers.
func (g *Gateway) Text() *Registry { return &g.text }
