package rt

import "sync"

// Constructors run before main, in registration order, the way the loader
// walks an init_array. Packages register at Go init time, so ordering
// follows import order.
var (
	ctorMu sync.Mutex
	ctors  []func(*Process)
)

// OnStart registers a constructor. Registration after Run has started is
// ignored for the running process.
func OnStart(fn func(*Process)) {
	ctorMu.Lock()
	ctors = append(ctors, fn)
	ctorMu.Unlock()
}

func runCtors(p *Process) {
	ctorMu.Lock()
	list := append([]func(*Process){}, ctors...)
	ctorMu.Unlock()
	for _, fn := range list {
		fn(p)
	}
}
