package thread

import (
	"sync/atomic"

	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/sys"
)

// Mutex is the spin lock of the primitive layer: an atomic exchange on a
// single word with cooperative yield under contention. There is no owner
// tracking and no recursion; unlocking a mutex the caller does not hold is
// the caller's bug, as in the original.
type Mutex struct {
	state uint32
}

func (m *Mutex) Lock(g *sys.Gateway) {
	var b Backoff
	for !atomic.CompareAndSwapUint32(&m.state, 0, 1) {
		b.Spin(g)
	}
}

// TryLock fails with EBUSY when the lock is held.
func (m *Mutex) TryLock() error {
	if atomic.CompareAndSwapUint32(&m.state, 0, 1) {
		return nil
	}
	return abi.EBUSY
}

func (m *Mutex) Unlock() {
	atomic.StoreUint32(&m.state, 0)
}

// Cond is a sequence-counter condition variable: Wait samples the counter,
// releases the mutex and spins until the counter moves. A wakeup therefore
// releases every thread that sampled before the increment; Signal and
// Broadcast differ only in name, which matches the always-broadcast
// behavior of the original.
type Cond struct {
	seq uint32
}

func (c *Cond) Wait(g *sys.Gateway, m *Mutex) {
	seen := atomic.LoadUint32(&c.seq)
	m.Unlock()
	var b Backoff
	for atomic.LoadUint32(&c.seq) == seen {
		b.Spin(g)
	}
	m.Lock(g)
}

func (c *Cond) Signal() {
	atomic.AddUint32(&c.seq, 1)
}

func (c *Cond) Broadcast() {
	atomic.AddUint32(&c.seq, 1)
}

// Once runs fn exactly once across threads. Latecomers spin until the
// winner finishes, so fn's effects are visible to every caller that
// returns.
type Once struct {
	state uint32 // 0 idle, 1 running, 2 done
}

func (o *Once) Do(g *sys.Gateway, fn func()) {
	if atomic.LoadUint32(&o.state) == 2 {
		return
	}
	if atomic.CompareAndSwapUint32(&o.state, 0, 1) {
		fn()
		atomic.StoreUint32(&o.state, 2)
		return
	}
	var b Backoff
	for atomic.LoadUint32(&o.state) != 2 {
		b.Spin(g)
	}
}
