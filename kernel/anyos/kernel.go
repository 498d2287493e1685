// Package anyos implements the anyOS syscall ABI on top of the host OS so
// the userland library can run and be tested without anyOS hardware. One
// Kernel serves one process; a Machine is the state shared between
// processes (pids, named pipes, hostname, the boot clock).
package anyos

import (
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/brianmayclone/anyos-userland/abi"
	co "github.com/brianmayclone/anyos-userland/kernel/common"
	"github.com/brianmayclone/anyos-userland/mem"
)

// Machine is the kernel state outliving any single process.
type Machine struct {
	mu       sync.Mutex
	nextPid  int32
	zombies  map[int32]int
	procs    map[int32]*Kernel
	hostname string
	boot     time.Time
	log      []string
	pipes    map[int32]*kpipe
	names    map[string]int32 // named pipe lookup
	nextPipe int32

	// Spawner launches a new process for the spawn syscall. The command
	// layer installs it; without one, spawn fails with ENOSYS.
	Spawner func(m *Machine, path, args string, stdinPipe, stdoutPipe int32) (int32, error)
}

func NewMachine() *Machine {
	return &Machine{
		nextPid:  1,
		zombies:  make(map[int32]int),
		procs:    make(map[int32]*Kernel),
		hostname: "anyos",
		boot:     time.Now(),
		pipes:    make(map[int32]*kpipe),
		names:    make(map[string]int32),
		nextPipe: 1,
	}
}

// File is one open descriptor.
type File struct {
	Fd   co.Fd
	Path string
	F    *os.File
}

type threadRec struct {
	done bool
}

// Kernel is the per-process kernel personality. Exported methods are
// syscalls; see kernel/common for the dispatch rules.
type Kernel struct {
	co.KernelBase

	M    *Machine
	Pid  int32
	Ppid int32

	// Root is the host directory standing in for the anyOS filesystem;
	// all paths resolve inside it.
	Root string
	cwd  string

	fdMu   sync.Mutex
	files  map[co.Fd]*File
	nextFd co.Fd

	argBlob string

	envMu sync.Mutex
	env   []string // "KEY=VALUE", insertion ordered

	tidMu   sync.Mutex
	nextTid uint32
	threads map[uint32]*threadRec

	sigMu    sync.Mutex
	pending  []int
	handlers [abi.NumSignals]uint64
	mask     uint32

	sockMu   sync.Mutex
	socks    map[int32]*tcpSock
	nextSock int32

	exitMu   sync.Mutex
	exited   bool
	exitCode int

	// Entry resolves a text address to a thread entry point. The process
	// runtime installs it at boot.
	Entry func(addr uint64) (func(), bool)
	// OnExit is invoked from the exit syscall before the process is
	// reaped; the runtime uses it to unwind the calling goroutine.
	OnExit func(code int)
}

// Config selects the process's standard descriptors and filesystem root.
type Config struct {
	Root   string
	Args   string // the raw argument blob, argv[0] first
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
	Ppid   int32
	Env    []string
}

// NewKernel creates a process bound to img and registers it with the
// machine.
func NewKernel(m *Machine, img *mem.Image, cfg Config) *Kernel {
	if cfg.Root == "" {
		cfg.Root = "/"
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	k := &Kernel{
		M:       m,
		Root:    cfg.Root,
		cwd:     "/",
		files:   make(map[co.Fd]*File),
		nextFd:  3,
		argBlob: cfg.Args,
		env:     append([]string(nil), cfg.Env...),
		nextTid: 2, // tid 1 is the initial thread
		threads: make(map[uint32]*threadRec),
		socks:   make(map[int32]*tcpSock),
	}
	k.files[0] = &File{Fd: 0, Path: "<stdin>", F: cfg.Stdin}
	k.files[1] = &File{Fd: 1, Path: "<stdout>", F: cfg.Stdout}
	k.files[2] = &File{Fd: 2, Path: "<stderr>", F: cfg.Stderr}
	co.Init(k, img)

	m.mu.Lock()
	k.Pid = m.nextPid
	m.nextPid++
	k.Ppid = cfg.Ppid
	m.procs[k.Pid] = k
	m.mu.Unlock()
	return k
}

// Sysenter implements sys.Dispatcher: dispatch by number through the name
// table. Unknown numbers are not supported and come back unchanged as
// -ENOSYS for the caller to interpret.
func (k *Kernel) Sysenter(num uint32, args [5]uint64) int64 {
	name := abi.Name(num)
	if name == "" {
		return abi.Fail(abi.ENOSYS)
	}
	sys := co.Lookup(k, k.Mem, name)
	if sys == nil {
		return abi.Fail(abi.ENOSYS)
	}
	return sys.Call(args[:])
}

// TakeSignal pops the first pending, unmasked signal.
func (k *Kernel) TakeSignal() (int, bool) {
	k.sigMu.Lock()
	defer k.sigMu.Unlock()
	for i, sig := range k.pending {
		if k.mask&(1<<uint(sig)) != 0 {
			continue
		}
		k.pending = append(k.pending[:i], k.pending[i+1:]...)
		return sig, true
	}
	return 0, false
}

// SetEntryLookup installs the text-address resolver for thread entries.
func (k *Kernel) SetEntryLookup(fn func(addr uint64) (func(), bool)) {
	k.Entry = fn
}

// SetOnExit installs the exit unwinder.
func (k *Kernel) SetOnExit(fn func(code int)) {
	k.OnExit = fn
}

func (k *Kernel) file(fd co.Fd) *File {
	k.fdMu.Lock()
	defer k.fdMu.Unlock()
	return k.files[fd]
}

func (k *Kernel) installFd(f *os.File, path string) co.Fd {
	k.fdMu.Lock()
	defer k.fdMu.Unlock()
	fd := k.nextFd
	k.nextFd++
	k.files[fd] = &File{Fd: fd, Path: path, F: f}
	return fd
}

// hosterr maps a host error onto the anyOS errno space.
func hosterr(err error) int64 {
	switch {
	case err == nil:
		return 0
	case os.IsNotExist(err):
		return abi.Fail(abi.ENOENT)
	case os.IsPermission(err):
		return abi.Fail(abi.EACCES)
	case os.IsExist(err):
		return abi.Fail(abi.EEXIST)
	case err == io.EOF:
		return 0
	}
	var errno syscall.Errno
	if pe, ok := err.(*os.PathError); ok {
		if e, ok := pe.Err.(syscall.Errno); ok {
			errno = e
		}
	} else if e, ok := err.(syscall.Errno); ok {
		errno = e
	}
	switch errno {
	case syscall.EPIPE:
		return abi.Fail(abi.EPIPE)
	case syscall.EBADF:
		return abi.Fail(abi.EBADF)
	case syscall.EINVAL:
		return abi.Fail(abi.EINVAL)
	case syscall.EISDIR:
		return abi.Fail(abi.EISDIR)
	case syscall.ENOTDIR:
		return abi.Fail(abi.ENOTDIR)
	case syscall.ENOSPC:
		return abi.Fail(abi.ENOSPC)
	}
	return abi.Fail(abi.EIO)
}
