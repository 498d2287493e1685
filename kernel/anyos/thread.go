package anyos

import (
	"github.com/brianmayclone/anyos-userland/abi"
	co "github.com/brianmayclone/anyos-userland/kernel/common"
)

// ThreadCreate starts a new thread at the given entry address with the
// caller-provided stack. The hosted kernel runs threads as goroutines; the
// stack argument is kept for ABI fidelity but only validated. Returns the
// new tid, or 0 on failure to mirror the hardware kernel.
func (k *Kernel) ThreadCreate(entry co.Ptr, stackTop co.Ptr, nameBuf co.Buf, nameLen co.Len, priority int) int64 {
	if k.Entry == nil {
		return 0
	}
	fn, ok := k.Entry(uint64(entry))
	if !ok || stackTop == 0 {
		return 0
	}
	k.tidMu.Lock()
	tid := k.nextTid
	k.nextTid++
	rec := &threadRec{}
	k.threads[tid] = rec
	k.tidMu.Unlock()

	go func() {
		defer func() {
			// a start routine that never reached thread_exit still
			// terminates its thread
			k.tidMu.Lock()
			rec.done = true
			k.tidMu.Unlock()
		}()
		fn()
	}()
	return int64(tid)
}

// Waittid polls a thread for termination: 0 when it has exited, EAGAIN
// while it runs.
func (k *Kernel) Waittid(tid uint32) int64 {
	k.tidMu.Lock()
	defer k.tidMu.Unlock()
	rec := k.threads[tid]
	if rec == nil {
		return abi.Fail(abi.EINVAL)
	}
	if rec.done {
		delete(k.threads, tid)
		return 0
	}
	return abi.Fail(abi.EAGAIN)
}

func (k *Kernel) ThreadExit(tid uint32) int64 {
	k.tidMu.Lock()
	defer k.tidMu.Unlock()
	if rec := k.threads[tid]; rec != nil {
		rec.done = true
	}
	return 0
}

func (k *Kernel) SetPriority(tid uint32, priority int) int64 {
	if priority < 0 || priority > 255 {
		return abi.Fail(abi.EINVAL)
	}
	return 0
}

func (k *Kernel) SetCritical(on int) int64 {
	return 0
}
