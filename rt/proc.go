// Package rt is the process runtime: the path between the kernel handing
// control to the image and main running with argv, environ, constructors
// and standard streams in place. Library state that C keeps in mutable
// globals lives on the Process context; the classic free-function surface
// is available through Current().
package rt

import (
	"sync"
	"sync/atomic"

	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/mem"
	"github.com/brianmayclone/anyos-userland/stdio"
	"github.com/brianmayclone/anyos-userland/sys"
)

// Process is everything the library keeps per process.
type Process struct {
	Sys  *sys.Gateway
	Mem  *mem.Image
	Heap *mem.Arena

	Args []string

	Stdin  *stdio.Stream
	Stdout *stdio.Stream
	Stderr *stdio.Stream

	env *Environ

	streamMu sync.Mutex
	streams  []*stdio.Stream

	exitMu   sync.Mutex
	atexit   []func()
	exitOnce sync.Once
}

// ExitStatus unwinds the process goroutine when the exit syscall fires
// under the hosted kernel, where the trap can return.
type ExitStatus int

var current atomic.Value // *Process

// Current returns the process context backing the free-function surface.
// It is nil before Boot.
func Current() *Process {
	p, _ := current.Load().(*Process)
	return p
}

// Booter is the kernel-side hook surface Boot needs beyond the Dispatcher:
// the hosted kernel resolves thread entry addresses through the gateway's
// text registry and unwinds on exit.
type Booter interface {
	sys.Dispatcher
	SetEntryLookup(fn func(addr uint64) (func(), bool))
	SetOnExit(fn func(code int))
}

// Boot wires a process onto a kernel binding: gateway, heap, argv,
// environ, standard streams. It does not run constructors; Run does, so
// callers can still adjust the context between Boot and Run.
func Boot(d sys.Dispatcher, img *mem.Image) *Process {
	g := sys.Bind(d)
	p := &Process{
		Sys:  g,
		Mem:  img,
		Heap: mem.NewArena(img, g),
	}
	if b, ok := d.(Booter); ok {
		b.SetEntryLookup(g.Text().Entry)
		b.SetOnExit(func(code int) {
			panic(ExitStatus(code))
		})
	}

	p.Args = parseArgs(p)
	p.env = loadEnviron(p)

	p.Stdin = stdio.FdOpen(g, p.Heap, img, 0, stdio.ModeRead)
	p.Stdout = stdio.FdOpen(g, p.Heap, img, 1, stdio.ModeWrite)
	p.Stderr = stdio.FdOpen(g, p.Heap, img, 2, stdio.ModeWrite)
	// terminal-attached streams are line buffered, stderr never buffers
	if g.Trap(abi.SysIsatty, 0) == 1 {
		p.Stdin.SetBuffering(stdio.LineBuffered)
	}
	if g.Trap(abi.SysIsatty, 1) == 1 {
		p.Stdout.SetBuffering(stdio.LineBuffered)
	}
	p.Stderr.SetBuffering(stdio.Unbuffered)
	p.Track(p.Stdin)
	p.Track(p.Stdout)
	p.Track(p.Stderr)

	current.Store(p)
	return p
}

// Track registers a stream for flush-and-close at process exit.
func (p *Process) Track(s *stdio.Stream) {
	p.streamMu.Lock()
	defer p.streamMu.Unlock()
	p.streams = append(p.streams, s)
}

// Untrack removes a stream closed before exit.
func (p *Process) Untrack(s *stdio.Stream) {
	p.streamMu.Lock()
	defer p.streamMu.Unlock()
	for i, t := range p.streams {
		if t == s {
			p.streams = append(p.streams[:i], p.streams[i+1:]...)
			return
		}
	}
}

// Run invokes the registered constructors in declared order, then main,
// then routes the return through the exit syscall. Under the hosted
// kernel it returns the exit status instead of never returning.
func (p *Process) Run(main func(args []string) int) (status int) {
	defer func() {
		if r := recover(); r != nil {
			if es, ok := r.(ExitStatus); ok {
				status = int(es)
				return
			}
			panic(r)
		}
	}()
	runCtors(p)
	code := main(p.Args)
	p.Exit(code)
	return code
}

// Exit flushes and closes every open stream, runs atexit handlers in LIFO
// order, and issues the exit syscall.
func (p *Process) Exit(code int) {
	p.exitOnce.Do(func() {
		p.exitMu.Lock()
		handlers := p.atexit
		p.atexit = nil
		p.exitMu.Unlock()
		for i := len(handlers) - 1; i >= 0; i-- {
			handlers[i]()
		}
		p.closeStreams()
	})
	p.Sys.Trap(abi.SysExit, uint64(uint32(code)))
}

// Abort terminates with the conventional abort status without running
// atexit handlers or flushing streams.
func (p *Process) Abort() {
	p.Sys.Trap(abi.SysExit, 134)
}

func (p *Process) closeStreams() {
	p.streamMu.Lock()
	streams := p.streams
	p.streams = nil
	p.streamMu.Unlock()
	for _, s := range streams {
		s.Close()
	}
}

// AtExit registers a handler to run at normal exit, LIFO. The table is
// bounded; registration past the cap is refused.
func (p *Process) AtExit(fn func()) error {
	p.exitMu.Lock()
	defer p.exitMu.Unlock()
	if len(p.atexit) >= 32 {
		return abi.ENOMEM
	}
	p.atexit = append(p.atexit, fn)
	return nil
}

func (p *Process) Getpid() int {
	return int(p.Sys.Trap(abi.SysGetpid))
}

func (p *Process) Getppid() int {
	return int(p.Sys.Trap(abi.SysGetppid))
}
