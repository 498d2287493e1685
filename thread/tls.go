package thread

import (
	"sync"

	"github.com/brianmayclone/anyos-userland/abi"
)

const (
	maxKeys         = 64
	destructorLimit = 4
)

// The key table is process-wide; values live per thread. Values a thread
// stored are reachable only through its *Thread, which is the explicit
// stand-in for the %fs-relative slot array of the original.
var tlsTable struct {
	mu   sync.Mutex
	used [maxKeys]bool
	dtor [maxKeys]func(interface{})
}

// KeyCreate reserves a TLS key, with an optional destructor run at thread
// exit for threads that leave a non-nil value.
func KeyCreate(destructor func(interface{})) (int, error) {
	tlsTable.mu.Lock()
	defer tlsTable.mu.Unlock()
	for k := 0; k < maxKeys; k++ {
		if !tlsTable.used[k] {
			tlsTable.used[k] = true
			tlsTable.dtor[k] = destructor
			return k, nil
		}
	}
	return 0, abi.EAGAIN
}

// KeyDelete releases a key. Values held by live threads are not visited.
func KeyDelete(key int) error {
	if key < 0 || key >= maxKeys {
		return abi.EINVAL
	}
	tlsTable.mu.Lock()
	defer tlsTable.mu.Unlock()
	if !tlsTable.used[key] {
		return abi.EINVAL
	}
	tlsTable.used[key] = false
	tlsTable.dtor[key] = nil
	return nil
}

// Get reads the calling thread's value for key.
func (t *Thread) Get(key int) interface{} {
	if key < 0 || key >= maxKeys {
		return nil
	}
	v, _ := t.tlsLoad(key)
	return v
}

// Set stores the calling thread's value for key.
func (t *Thread) Set(key int, value interface{}) error {
	if key < 0 || key >= maxKeys {
		return abi.EINVAL
	}
	tlsTable.mu.Lock()
	used := tlsTable.used[key]
	tlsTable.mu.Unlock()
	if !used {
		return abi.EINVAL
	}
	t.tls[key].Store(&value)
	return nil
}

func (t *Thread) tlsLoad(key int) (interface{}, bool) {
	p, _ := t.tls[key].Load().(*interface{})
	if p == nil || *p == nil {
		return nil, false
	}
	return *p, true
}

// runDestructors visits non-nil values with registered destructors,
// repeating while destructors plant new values, bounded to keep a
// pathological destructor from spinning forever.
func runDestructors(t *Thread) {
	for pass := 0; pass < destructorLimit; pass++ {
		again := false
		for k := 0; k < maxKeys; k++ {
			tlsTable.mu.Lock()
			dtor := tlsTable.dtor[k]
			used := tlsTable.used[k]
			tlsTable.mu.Unlock()
			if !used || dtor == nil {
				continue
			}
			v, ok := t.tlsLoad(k)
			if !ok {
				continue
			}
			var nilv interface{}
			t.tls[k].Store(&nilv)
			dtor(v)
			again = true
		}
		if !again {
			return
		}
	}
}
