package rt

import (
	"strings"
	"sync"

	"github.com/brianmayclone/anyos-userland/abi"
)

// Environ mirrors the kernel env store in process memory. Reads are
// local; mutations are pushed back through setenv/unsetenv so spawned
// children inherit them. Mutation is not thread-safe, matching the C
// surface.
type Environ struct {
	mu      sync.RWMutex
	p       *Process
	entries []string // "KEY=VALUE"
}

// loadEnviron enumerates the kernel env store. A failing listenv yields an
// empty environment.
func loadEnviron(p *Process) *Environ {
	e := &Environ{p: p}
	buf, err := p.Heap.Sbuf(1024)
	if err != nil {
		return e
	}
	defer buf.Free()
	for idx := 0; ; idx++ {
		n := p.Sys.Trap(abi.SysListenv, uint64(idx), buf.Addr, buf.Size)
		if n < 0 {
			break
		}
		entry, rerr := buf.Str(uint64(n))
		if rerr != nil {
			break
		}
		if strings.ContainsRune(entry, '=') {
			e.entries = append(e.entries, entry)
		}
	}
	return e
}

func (p *Process) Env() *Environ { return p.env }

// Getenv returns the value for key, or "" and false.
func (e *Environ) Getenv(key string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, entry := range e.entries {
		if strings.HasPrefix(entry, key+"=") {
			return entry[len(key)+1:], true
		}
	}
	return "", false
}

// Setenv stores key=value locally and in the kernel store.
func (e *Environ) Setenv(key, value string) error {
	if key == "" || strings.ContainsRune(key, '=') {
		return abi.EINVAL
	}
	e.mu.Lock()
	entry := key + "=" + value
	found := false
	for i, old := range e.entries {
		if strings.HasPrefix(old, key+"=") {
			e.entries[i] = entry
			found = true
			break
		}
	}
	if !found {
		e.entries = append(e.entries, entry)
	}
	e.mu.Unlock()

	kbuf, err := e.p.Heap.CString(key)
	if err != nil {
		return err
	}
	defer kbuf.Free()
	vbuf, err := e.p.Heap.CString(value)
	if err != nil {
		return err
	}
	defer vbuf.Free()
	if ret := e.p.Sys.Call(abi.SysSetenv, kbuf.Addr, vbuf.Addr); ret < 0 {
		return e.p.Sys.Errno()
	}
	return nil
}

func (e *Environ) Unsetenv(key string) error {
	e.mu.Lock()
	for i, old := range e.entries {
		if strings.HasPrefix(old, key+"=") {
			e.entries = append(e.entries[:i], e.entries[i+1:]...)
			break
		}
	}
	e.mu.Unlock()

	kbuf, err := e.p.Heap.CString(key)
	if err != nil {
		return err
	}
	defer kbuf.Free()
	e.p.Sys.Trap(abi.SysUnsetenv, kbuf.Addr)
	return nil
}

// Environ returns a copy of the entries, the NULL-terminated pointer array
// of C rendered as a slice.
func (e *Environ) Environ() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.entries...)
}
