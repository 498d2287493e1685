package anyos

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/brianmayclone/anyos-userland/abi"
	co "github.com/brianmayclone/anyos-userland/kernel/common"
)

func openFlags(flags int) int {
	out := 0
	switch {
	case flags&abi.ORdwr != 0:
		out |= os.O_RDWR
	case flags&abi.OWronly != 0:
		out |= os.O_WRONLY
	default:
		out |= os.O_RDONLY
	}
	if flags&abi.OCreat != 0 {
		out |= os.O_CREATE
	}
	if flags&abi.OTrunc != 0 {
		out |= os.O_TRUNC
	}
	if flags&abi.OAppend != 0 {
		out |= os.O_APPEND
	}
	return out
}

func (k *Kernel) Open(path string, flags int, mode uint32) int64 {
	host, err := k.resolve(path)
	if err != nil {
		return abi.Fail(abi.ENOENT)
	}
	if mode == 0 {
		mode = 0644
	}
	f, oerr := os.OpenFile(host, openFlags(flags), os.FileMode(mode&0777))
	if oerr != nil {
		return hosterr(oerr)
	}
	return int64(k.installFd(f, path))
}

func (k *Kernel) Close(fd co.Fd) int64 {
	k.fdMu.Lock()
	f := k.files[fd]
	delete(k.files, fd)
	k.fdMu.Unlock()
	if f == nil {
		return abi.Fail(abi.EBADF)
	}
	if err := f.F.Close(); err != nil {
		return hosterr(err)
	}
	return 0
}

func (k *Kernel) Read(fd co.Fd, buf co.Obuf, size co.Len) int64 {
	f := k.file(fd)
	if f == nil {
		return abi.Fail(abi.EBADF)
	}
	tmp := make([]byte, size)
	n, err := f.F.Read(tmp)
	if n > 0 {
		if perr := buf.PutBytes(tmp[:n]); perr != nil {
			return abi.Fail(abi.EINVAL)
		}
		return int64(n)
	}
	if err == nil || err == io.EOF {
		return 0
	}
	return hosterr(err)
}

func (k *Kernel) Write(fd co.Fd, buf co.Buf, size co.Len) int64 {
	f := k.file(fd)
	if f == nil {
		return abi.Fail(abi.EBADF)
	}
	if size == 0 {
		return 0
	}
	tmp, err := buf.Bytes(uint64(size))
	if err != nil {
		return abi.Fail(abi.EINVAL)
	}
	n, werr := f.F.Write(tmp)
	if werr != nil && n == 0 {
		return hosterr(werr)
	}
	return int64(n)
}

func (k *Kernel) Lseek(fd co.Fd, offset co.Off, whence int) int64 {
	f := k.file(fd)
	if f == nil {
		return abi.Fail(abi.EBADF)
	}
	if whence < abi.SeekSet || whence > abi.SeekEnd {
		return abi.Fail(abi.EINVAL)
	}
	off, err := f.F.Seek(int64(offset), whence)
	if err != nil {
		return hosterr(err)
	}
	return off
}

func (k *Kernel) Isatty(fd co.Fd) int64 {
	f := k.file(fd)
	if f == nil {
		return abi.Fail(abi.EBADF)
	}
	if isatty.IsTerminal(f.F.Fd()) || isatty.IsCygwinTerminal(f.F.Fd()) {
		return 1
	}
	return 0
}

func (k *Kernel) Dup(fd co.Fd) int64 {
	f := k.file(fd)
	if f == nil {
		return abi.Fail(abi.EBADF)
	}
	nf, err := hostDup(f.F)
	if err != nil {
		return hosterr(err)
	}
	return int64(k.installFd(nf, f.Path))
}

func (k *Kernel) Dup2(oldFd, newFd co.Fd) int64 {
	f := k.file(oldFd)
	if f == nil || newFd < 0 {
		return abi.Fail(abi.EBADF)
	}
	if oldFd == newFd {
		return int64(newFd)
	}
	nf, err := hostDup(f.F)
	if err != nil {
		return hosterr(err)
	}
	k.fdMu.Lock()
	if old := k.files[newFd]; old != nil {
		old.F.Close()
	}
	k.files[newFd] = &File{Fd: newFd, Path: f.Path, F: nf}
	k.fdMu.Unlock()
	return int64(newFd)
}

// Pipe2 creates an anonymous pipe and writes the two descriptors (read,
// write) as int32s through fds.
func (k *Kernel) Pipe2(fds co.Obuf, flags int) int64 {
	r, w, err := os.Pipe()
	if err != nil {
		return abi.Fail(abi.ENFILE)
	}
	rfd := k.installFd(r, "<pipe:r>")
	wfd := k.installFd(w, "<pipe:w>")
	st := fds.Struc()
	if err := st.Pack(int32(rfd), int32(wfd)); err != nil {
		return abi.Fail(abi.EINVAL)
	}
	return 0
}

const (
	fcntlDupFd = 0
	fcntlGetFl = 3
	fcntlSetFl = 4
)

func (k *Kernel) Fcntl(fd co.Fd, cmd int, arg uint64) int64 {
	switch cmd {
	case fcntlDupFd:
		return k.Dup(fd)
	case fcntlGetFl, fcntlSetFl:
		return 0
	}
	return abi.Fail(abi.EINVAL)
}
