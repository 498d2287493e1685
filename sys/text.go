package sys

import "sync"

// Registry maps synthetic text addresses to Go functions. The kernel deals
// only in addresses (thread entry points, signal handler slots); the
// hosted binding resolves them back through this table when it re-enters
// userland. Addresses 0 and 1 are reserved for the SIG_DFL/SIG_IGN
// sentinels.
type Registry struct {
	mu   sync.Mutex
	next uint64
	fns  map[uint64]interface{}
}

func (r *Registry) init() {
	r.next = 0x1000
	r.fns = make(map[uint64]interface{})
}

// Register assigns an address to fn. fn is either a func() (thread entry)
// or a func(int) (signal handler).
func (r *Registry) Register(fn interface{}) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	addr := r.next
	r.next += 16
	r.fns[addr] = fn
	return addr
}

func (r *Registry) Release(addr uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.fns, addr)
}

func (r *Registry) Lookup(addr uint64) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fns[addr]
}

// Entry resolves a thread entry point.
func (r *Registry) Entry(addr uint64) (func(), bool) {
	fn, ok := r.Lookup(addr).(func())
	return fn, ok
}

// Handler resolves a signal handler.
func (r *Registry) Handler(addr uint64) (func(int), bool) {
	fn, ok := r.Lookup(addr).(func(int))
	return fn, ok
}
