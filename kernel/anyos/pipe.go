package anyos

import (
	"sync"

	"github.com/brianmayclone/anyos-userland/abi"
	co "github.com/brianmayclone/anyos-userland/kernel/common"
)

// kpipe is a named kernel pipe: a machine-wide byte queue any process can
// open by name. Readers poll; an empty open pipe answers EAGAIN rather
// than blocking inside the kernel.
type kpipe struct {
	mu     sync.Mutex
	name   string
	data   []byte
	closed bool
}

func (k *Kernel) PipeCreate(name string) int64 {
	m := k.M
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.names[name]; exists {
		return abi.Fail(abi.EEXIST)
	}
	id := m.nextPipe
	m.nextPipe++
	m.pipes[id] = &kpipe{name: name}
	if name != "" {
		m.names[name] = id
	}
	return int64(id)
}

func (k *Kernel) PipeOpen(name string) int64 {
	m := k.M
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.names[name]; ok {
		return int64(id)
	}
	return abi.Fail(abi.ENOENT)
}

func (k *Kernel) kpipe(id int32) *kpipe {
	k.M.mu.Lock()
	defer k.M.mu.Unlock()
	return k.M.pipes[id]
}

func (k *Kernel) PipeWrite(id int32, buf co.Buf, size co.Len) int64 {
	p := k.kpipe(id)
	if p == nil {
		return abi.Fail(abi.EBADF)
	}
	data, err := buf.Bytes(uint64(size))
	if err != nil {
		return abi.Fail(abi.EINVAL)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return abi.Fail(abi.EPIPE)
	}
	p.data = append(p.data, data...)
	return int64(len(data))
}

func (k *Kernel) PipeRead(id int32, buf co.Obuf, size co.Len) int64 {
	p := k.kpipe(id)
	if p == nil {
		return abi.Fail(abi.EBADF)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.data) == 0 {
		if p.closed {
			return 0
		}
		return abi.Fail(abi.EAGAIN)
	}
	n := uint64(len(p.data))
	if n > uint64(size) {
		n = uint64(size)
	}
	if err := buf.PutBytes(p.data[:n]); err != nil {
		return abi.Fail(abi.EINVAL)
	}
	p.data = p.data[n:]
	return int64(n)
}

// PipePush appends data from outside the syscall path; the spawn bridge
// uses it to feed a child's output into a named pipe.
func (m *Machine) PipePush(id int32, data []byte) error {
	m.mu.Lock()
	p := m.pipes[id]
	m.mu.Unlock()
	if p == nil {
		return abi.EBADF
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return abi.EPIPE
	}
	p.data = append(p.data, data...)
	return nil
}

// PipePull removes up to max buffered bytes. closed reports the pipe shut
// down and drained.
func (m *Machine) PipePull(id int32, max int) (data []byte, closed bool) {
	m.mu.Lock()
	p := m.pipes[id]
	m.mu.Unlock()
	if p == nil {
		return nil, true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.data)
	if n > max {
		n = max
	}
	if n > 0 {
		data = append(data, p.data[:n]...)
		p.data = p.data[n:]
	}
	return data, p.closed && len(p.data) == 0
}

func (k *Kernel) PipeBytesAvailable(id int32) int64 {
	p := k.kpipe(id)
	if p == nil {
		return abi.Fail(abi.EBADF)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return int64(len(p.data))
}

func (k *Kernel) PipeClose(id int32) int64 {
	p := k.kpipe(id)
	if p == nil {
		return abi.Fail(abi.EBADF)
	}
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return 0
}
