package anyos

import (
	"runtime"
	"time"

	"github.com/brianmayclone/anyos-userland/abi"
	co "github.com/brianmayclone/anyos-userland/kernel/common"
)

func (k *Kernel) Exit(code int) int64 {
	k.exitMu.Lock()
	already := k.exited
	k.exited = true
	k.exitCode = code
	k.exitMu.Unlock()
	if !already {
		k.M.mu.Lock()
		k.M.zombies[k.Pid] = code
		delete(k.M.procs, k.Pid)
		k.M.mu.Unlock()
		if k.OnExit != nil {
			k.OnExit(code)
		}
	}
	return 0
}

func (k *Kernel) Getpid() int64 {
	return int64(k.Pid)
}

func (k *Kernel) Getppid() int64 {
	return int64(k.Ppid)
}

func (k *Kernel) Yield() int64 {
	runtime.Gosched()
	return 0
}

func (k *Kernel) Sleep(ms uint64) int64 {
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return 0
}

func (k *Kernel) Sbrk(delta int32) int64 {
	if delta < 0 {
		return abi.Fail(abi.EINVAL)
	}
	old, err := k.Mem.Sbrk(int64(delta))
	if err != nil {
		return abi.Fail(abi.ENOMEM)
	}
	return int64(old)
}

// Getargs copies the raw argument blob into the caller's buffer and
// returns its length. The blob is whitespace-separated; the first token is
// the program path.
func (k *Kernel) Getargs(buf co.Obuf, size co.Len) int64 {
	blob := k.argBlob
	if uint64(len(blob)) > uint64(size) {
		blob = blob[:size]
	}
	if len(blob) > 0 {
		if err := buf.PutBytes([]byte(blob)); err != nil {
			return abi.Fail(abi.EINVAL)
		}
	}
	return int64(len(blob))
}

func (k *Kernel) Spawn(path string, stdoutPipe co.Fd, args string, stdinPipe co.Fd) int64 {
	if k.M.Spawner == nil {
		return abi.Fail(abi.ENOSYS)
	}
	pid, err := k.M.Spawner(k.M, path, args, int32(stdinPipe), int32(stdoutPipe))
	if err != nil {
		return abi.Fail(abi.ENOENT)
	}
	return int64(pid)
}

// Waitpid blocks until the target process exits and returns its status.
// The low byte of the status is the exit code.
func (k *Kernel) Waitpid(pid int32) int64 {
	for {
		if code, ok := k.M.reap(pid); ok {
			return int64(code & 0xff)
		}
		time.Sleep(time.Millisecond)
	}
}

func (k *Kernel) TryWaitpid(pid int32) int64 {
	if code, ok := k.M.reap(pid); ok {
		return int64(code & 0xff)
	}
	return abi.Fail(abi.EAGAIN)
}

func (m *Machine) reap(pid int32) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.zombies[pid]
	if ok {
		delete(m.zombies, pid)
	}
	return code, ok
}

// Kill queues sig on the target process. Delivery happens when the target
// next returns from a syscall. A handler registered as SIG_IGN drops the
// signal kernel-side.
func (k *Kernel) Kill(pid int32, sig int) int64 {
	if sig <= 0 || sig >= abi.NumSignals {
		return abi.Fail(abi.EINVAL)
	}
	k.M.mu.Lock()
	target := k.M.procs[pid]
	k.M.mu.Unlock()
	if target == nil {
		return abi.Fail(abi.ENOENT)
	}
	target.sigMu.Lock()
	defer target.sigMu.Unlock()
	if target.handlers[sig] == abi.SigIgn {
		return 0
	}
	target.pending = append(target.pending, sig)
	return 0
}

func (k *Kernel) Fork() int64 {
	// anyOS userland uses spawn; the hosted kernel has no address space
	// duplication to offer.
	return abi.Fail(abi.ENOSYS)
}

func (k *Kernel) Exec(path string, argv co.Buf, envp co.Buf) int64 {
	return abi.Fail(abi.ENOSYS)
}

// Mmap grows the image. The libc satisfies mappings from its own arena, so
// the raw syscall only backs fresh memory.
func (k *Kernel) Mmap(size co.Len) int64 {
	if size == 0 {
		return abi.Fail(abi.EINVAL)
	}
	old, err := k.Mem.Sbrk(int64(size))
	if err != nil {
		return abi.Fail(abi.ENOMEM)
	}
	return int64(old)
}

func (k *Kernel) Munmap(addr co.Ptr, size co.Len) int64 {
	return 0
}
