package anyos

import (
	"runtime"
	"strings"

	"github.com/brianmayclone/anyos-userland/abi"
	co "github.com/brianmayclone/anyos-userland/kernel/common"
)

func (k *Kernel) Sysinfo(buf co.Obuf) int64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	k.M.mu.Lock()
	procs := len(k.M.procs)
	k.M.mu.Unlock()
	rec := &abi.SysinfoRec{
		TotalMem: uint32(ms.Sys / 1024),
		FreeMem:  uint32((ms.Sys - ms.Alloc) / 1024),
		Procs:    uint32(procs),
		Threads:  uint32(runtime.NumGoroutine()),
		Cores:    uint32(runtime.NumCPU()),
		TickHz:   tickHz,
	}
	if err := buf.Pack(rec); err != nil {
		return abi.Fail(abi.EINVAL)
	}
	return 0
}

// Klog appends a line to the kernel message ring.
func (m *Machine) Klog(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = append(m.log, line)
	if len(m.log) > 1024 {
		m.log = m.log[len(m.log)-1024:]
	}
}

func (k *Kernel) Dmesg(buf co.Obuf, size co.Len) int64 {
	k.M.mu.Lock()
	text := strings.Join(k.M.log, "\n")
	k.M.mu.Unlock()
	if uint64(len(text)) > uint64(size) {
		text = text[:size]
	}
	if len(text) > 0 {
		if err := buf.PutBytes([]byte(text)); err != nil {
			return abi.Fail(abi.EINVAL)
		}
	}
	return int64(len(text))
}

func (k *Kernel) HostnameGet(buf co.Obuf, size co.Len) int64 {
	k.M.mu.Lock()
	name := k.M.hostname
	k.M.mu.Unlock()
	if uint64(len(name)) > uint64(size) {
		return abi.Fail(abi.ERANGE)
	}
	if err := buf.PutBytes([]byte(name)); err != nil {
		return abi.Fail(abi.EINVAL)
	}
	return int64(len(name))
}

func (k *Kernel) HostnameSet(name string) int64 {
	if name == "" || len(name) > 64 {
		return abi.Fail(abi.EINVAL)
	}
	k.M.mu.Lock()
	k.M.hostname = name
	k.M.mu.Unlock()
	return 0
}

func (k *Kernel) Getuid() int64 {
	return 0
}

func (k *Kernel) Getgid() int64 {
	return 0
}

func (k *Kernel) Getusername(uid int, buf co.Obuf, size co.Len) int64 {
	name := "root"
	if uid != 0 {
		return abi.Fail(abi.ENOENT)
	}
	if uint64(len(name)) > uint64(size) {
		return abi.Fail(abi.ERANGE)
	}
	if err := buf.PutBytes([]byte(name)); err != nil {
		return abi.Fail(abi.EINVAL)
	}
	return int64(len(name))
}
