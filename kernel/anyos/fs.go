package anyos

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/brianmayclone/anyos-userland/abi"
	co "github.com/brianmayclone/anyos-userland/kernel/common"
)

// resolve maps an anyOS path onto the host sandbox. Relative paths are
// joined to the virtual cwd; everything stays under Root.
func (k *Kernel) resolve(p string) (string, error) {
	if p == "" {
		return "", errors.New("empty path")
	}
	if !strings.HasPrefix(p, "/") {
		p = path.Join(k.cwd, p)
	}
	p = path.Clean(p)
	if strings.HasPrefix(p, "..") {
		return "", errors.Errorf("path %q escapes the root", p)
	}
	return filepath.Join(k.Root, filepath.FromSlash(p)), nil
}

func statRec(fi os.FileInfo) *abi.StatRec {
	rec := &abi.StatRec{
		Size:  uint32(fi.Size()),
		Mode:  uint32(fi.Mode().Perm()),
		Mtime: uint32(fi.ModTime().Unix()),
	}
	switch {
	case fi.IsDir():
		rec.Type = abi.FileTypeDir
	case fi.Mode()&os.ModeCharDevice != 0:
		rec.Type = abi.FileTypeCharDev
	default:
		rec.Type = abi.FileTypeRegular
	}
	return rec
}

func (k *Kernel) Stat(p string, buf co.Obuf) int64 {
	host, err := k.resolve(p)
	if err != nil {
		return abi.Fail(abi.ENOENT)
	}
	fi, serr := os.Stat(host)
	if serr != nil {
		return hosterr(serr)
	}
	if perr := buf.Pack(statRec(fi)); perr != nil {
		return abi.Fail(abi.EINVAL)
	}
	return 0
}

// Lstat equals Stat: anyFS has no symbolic links to not follow.
func (k *Kernel) Lstat(p string, buf co.Obuf) int64 {
	return k.Stat(p, buf)
}

func (k *Kernel) Fstat(fd co.Fd, buf co.Obuf) int64 {
	f := k.file(fd)
	if f == nil {
		return abi.Fail(abi.EBADF)
	}
	fi, err := f.F.Stat()
	if err != nil {
		return hosterr(err)
	}
	if perr := buf.Pack(statRec(fi)); perr != nil {
		return abi.Fail(abi.EINVAL)
	}
	return 0
}

// Readdir packs up to size/64 directory records and returns the entry
// count. Names longer than 55 bytes are truncated, matching the on-disk
// limit of anyFS.
func (k *Kernel) Readdir(p string, buf co.Obuf, size co.Len) int64 {
	host, err := k.resolve(p)
	if err != nil {
		return abi.Fail(abi.ENOENT)
	}
	entries, rerr := os.ReadDir(host)
	if rerr != nil {
		return hosterr(rerr)
	}
	max := int(uint64(size) / abi.DirEntSize)
	if len(entries) < max {
		max = len(entries)
	}
	st := buf.Struc()
	for _, e := range entries[:max] {
		rec := abi.DirEnt{}
		if e.IsDir() {
			rec.Type = abi.FileTypeDir
		}
		if fi, err := e.Info(); err == nil {
			rec.Size = uint32(fi.Size())
		}
		name := e.Name()
		if len(name) > 55 {
			name = name[:55]
		}
		rec.NameLen = uint8(len(name))
		copy(rec.Name[:], name)
		if err := st.Pack(&rec); err != nil {
			return abi.Fail(abi.EINVAL)
		}
	}
	return int64(max)
}

func (k *Kernel) Getcwd(buf co.Obuf, size co.Len) int64 {
	wd := k.cwd
	if uint64(len(wd)+1) > uint64(size) {
		return abi.Fail(abi.ERANGE)
	}
	if err := buf.PutBytes(append([]byte(wd), 0)); err != nil {
		return abi.Fail(abi.EINVAL)
	}
	return int64(len(wd))
}

func (k *Kernel) Chdir(p string) int64 {
	host, err := k.resolve(p)
	if err != nil {
		return abi.Fail(abi.ENOENT)
	}
	fi, serr := os.Stat(host)
	if serr != nil {
		return hosterr(serr)
	}
	if !fi.IsDir() {
		return abi.Fail(abi.ENOTDIR)
	}
	if strings.HasPrefix(p, "/") {
		k.cwd = path.Clean(p)
	} else {
		k.cwd = path.Clean(path.Join(k.cwd, p))
	}
	return 0
}

func (k *Kernel) Mkdir(p string) int64 {
	host, err := k.resolve(p)
	if err != nil {
		return abi.Fail(abi.ENOENT)
	}
	return hosterr(os.Mkdir(host, 0755))
}

func (k *Kernel) Unlink(p string) int64 {
	host, err := k.resolve(p)
	if err != nil {
		return abi.Fail(abi.ENOENT)
	}
	return hosterr(os.Remove(host))
}

func (k *Kernel) Rename(oldp, newp string) int64 {
	oldHost, err := k.resolve(oldp)
	if err != nil {
		return abi.Fail(abi.ENOENT)
	}
	newHost, err := k.resolve(newp)
	if err != nil {
		return abi.Fail(abi.ENOENT)
	}
	return hosterr(os.Rename(oldHost, newHost))
}

func (k *Kernel) Truncate(p string, length co.Len) int64 {
	host, err := k.resolve(p)
	if err != nil {
		return abi.Fail(abi.ENOENT)
	}
	return hosterr(os.Truncate(host, int64(length)))
}

func (k *Kernel) Ftruncate(fd co.Fd, length co.Len) int64 {
	f := k.file(fd)
	if f == nil {
		return abi.Fail(abi.EBADF)
	}
	return hosterr(f.F.Truncate(int64(length)))
}

func (k *Kernel) Symlink(oldp, newp string) int64 {
	return abi.Fail(abi.ENOSYS)
}

func (k *Kernel) Readlink(p string, buf co.Obuf, size co.Len) int64 {
	return abi.Fail(abi.ENOSYS)
}
