// Package prog is the program table for the hosted kernel: Go mains
// registered by name stand in for the on-disk binaries the real loader
// would map. The launcher boots each one as a full process with its own
// kernel, image and runtime.
package prog

import (
	"os"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/brianmayclone/anyos-userland/kernel/anyos"
	"github.com/brianmayclone/anyos-userland/mem"
	"github.com/brianmayclone/anyos-userland/rt"
	"github.com/brianmayclone/anyos-userland/sys"
)

// Main is a program entry point. args[0] is the program path.
type Main func(p *rt.Process, args []string) int

var (
	regMu    sync.Mutex
	registry = make(map[string]Main)
)

// Register installs a program under name. Later registrations replace
// earlier ones.
func Register(name string, main Main) {
	regMu.Lock()
	registry[name] = main
	regMu.Unlock()
}

// Lookup resolves a program by path basename.
func Lookup(p string) (Main, bool) {
	regMu.Lock()
	defer regMu.Unlock()
	m, ok := registry[path.Base(p)]
	return m, ok
}

// Names lists the registered programs, sorted.
func Names() []string {
	regMu.Lock()
	defer regMu.Unlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Launcher boots registered programs on a machine. Installing it makes
// the spawn syscall work for every process on that machine.
type Launcher struct {
	M    *anyos.Machine
	Root string
	Env  []string

	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	// Tracer, when set, is attached to every process the launcher boots.
	Tracer sys.Tracer
}

// Install wires the launcher in as the machine's spawner.
func (l *Launcher) Install() {
	l.M.Spawner = func(m *anyos.Machine, p, args string, stdinPipe, stdoutPipe int32) (int32, error) {
		k, _, err := l.spawn(p, args, stdinPipe, stdoutPipe, 0)
		if err != nil {
			return 0, err
		}
		return k.Pid, nil
	}
}

// Run boots a program and blocks until it exits, returning its status.
func (l *Launcher) Run(path, args string) (int, error) {
	_, done, err := l.spawn(path, args, -1, -1, 0)
	if err != nil {
		return 0, err
	}
	return <-done, nil
}

func (l *Launcher) spawn(progPath, args string, stdinPipe, stdoutPipe int32, ppid int32) (*anyos.Kernel, <-chan int, error) {
	main, ok := Lookup(progPath)
	if !ok {
		return nil, nil, errors.Errorf("no such program: %s", progPath)
	}

	stdin, stdout, stderr := l.Stdin, l.Stdout, l.Stderr
	var closers []*os.File

	// a stdout pipe id routes the child's output into the named kernel
	// pipe; the bridge pumps between the host pipe and the queue
	if stdoutPipe > 0 {
		r, w, err := os.Pipe()
		if err != nil {
			return nil, nil, err
		}
		stdout = w
		closers = append(closers, w)
		go func() {
			buf := make([]byte, 4096)
			for {
				n, err := r.Read(buf)
				if n > 0 {
					l.M.PipePush(stdoutPipe, buf[:n])
				}
				if err != nil {
					r.Close()
					return
				}
			}
		}()
	}
	if stdinPipe > 0 {
		r, w, err := os.Pipe()
		if err != nil {
			return nil, nil, err
		}
		stdin = r
		closers = append(closers, r)
		go func() {
			for {
				data, closed := l.M.PipePull(stdinPipe, 4096)
				if len(data) > 0 {
					if _, err := w.Write(data); err != nil {
						break
					}
				} else if closed {
					break
				} else {
					time.Sleep(time.Millisecond)
				}
			}
			w.Close()
		}()
	}

	blob := progPath
	if args != "" {
		blob += " " + args
	}
	img := mem.NewImage(0, 0)
	k := anyos.NewKernel(l.M, img, anyos.Config{
		Root:   l.Root,
		Args:   blob,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Ppid:   ppid,
		Env:    l.Env,
	})

	done := make(chan int, 1)
	go func() {
		defer func() {
			for _, f := range closers {
				f.Close()
			}
		}()
		p := rt.Boot(k, img)
		if l.Tracer != nil {
			p.Sys.SetTracer(l.Tracer)
		}
		done <- p.Run(func(args []string) int {
			return main(p, args)
		})
	}()
	return k, done, nil
}
