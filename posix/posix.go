// Package posix maps the kernel's own record layouts onto the documented
// POSIX-shaped structs. Everything here is a thin wrapper: one trap, one
// translation, no caching.
package posix

import (
	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/mem"
	"github.com/brianmayclone/anyos-userland/sys"
)

// Ctx bundles the pieces every wrapper needs. The runtime exposes one per
// process.
type Ctx struct {
	G    *sys.Gateway
	Heap *mem.Arena
	Img  *mem.Image
}

// Mode bits synthesized into Stat.Mode.
const (
	SIFMT  = 0170000
	SIFREG = 0100000
	SIFDIR = 0040000
	SIFCHR = 0020000
)

// Stat is the userland stat shape.
type Stat struct {
	Mode  uint32
	Size  int64
	Uid   uint32
	Gid   uint32
	Mtime int64
}

func (s *Stat) IsDir() bool     { return s.Mode&SIFMT == SIFDIR }
func (s *Stat) IsRegular() bool { return s.Mode&SIFMT == SIFREG }

// modeOf synthesizes st_mode from the kernel type tag. A zero kernel mode
// field means "default permissions for the type".
func modeOf(r *abi.StatRec) uint32 {
	perm := r.Mode & 0777
	switch r.Type {
	case abi.FileTypeDir:
		if perm == 0 {
			perm = 0755
		}
		return SIFDIR | perm
	case abi.FileTypeCharDev:
		if perm == 0 {
			perm = 0666
		}
		return SIFCHR | perm
	default:
		if perm == 0 {
			perm = 0644
		}
		return SIFREG | perm
	}
}

func (c *Ctx) statCall(num uint32, arg1 uint64, path string) (*Stat, error) {
	sb, err := c.Heap.Sbuf(24)
	if err != nil {
		return nil, err
	}
	defer sb.Free()

	var ret int64
	if path != "" {
		pb, err := c.Heap.CString(path)
		if err != nil {
			return nil, err
		}
		defer pb.Free()
		ret = c.G.Call(num, pb.Addr, sb.Addr)
	} else {
		ret = c.G.Call(num, arg1, sb.Addr)
	}
	if ret < 0 {
		return nil, c.G.Errno()
	}

	var rec abi.StatRec
	if err := c.Img.StrucAt(sb.Addr).Unpack(&rec); err != nil {
		return nil, err
	}
	return &Stat{
		Mode:  modeOf(&rec),
		Size:  int64(rec.Size),
		Uid:   rec.Uid,
		Gid:   rec.Gid,
		Mtime: int64(rec.Mtime),
	}, nil
}

func (c *Ctx) Stat(path string) (*Stat, error) {
	return c.statCall(abi.SysStat, 0, path)
}

// Lstat is Stat: anyFS has no symlinks to stop short of.
func (c *Ctx) Lstat(path string) (*Stat, error) {
	return c.statCall(abi.SysLstat, 0, path)
}

func (c *Ctx) Fstat(fd int32) (*Stat, error) {
	return c.statCall(abi.SysFstat, uint64(uint32(fd)), "")
}

// Dirent is one directory entry after translation.
type Dirent struct {
	Name string
	Type uint8
	Size uint32
}

// Readdir fetches the whole directory in one trap and unpacks the 64-byte
// records library-side.
func (c *Ctx) Readdir(path string) ([]Dirent, error) {
	pb, err := c.Heap.CString(path)
	if err != nil {
		return nil, err
	}
	defer pb.Free()

	const bufEnts = 128
	sb, err := c.Heap.Sbuf(bufEnts * abi.DirEntSize)
	if err != nil {
		return nil, err
	}
	defer sb.Free()

	ret := c.G.Call(abi.SysReaddir, pb.Addr, sb.Addr, sb.Size)
	if ret < 0 {
		return nil, c.G.Errno()
	}
	count := int(ret)
	if count > bufEnts {
		count = bufEnts
	}
	ents := make([]Dirent, 0, count)
	ss := c.Img.StrucAt(sb.Addr)
	for i := 0; i < count; i++ {
		var rec abi.DirEnt
		if err := ss.Unpack(&rec); err != nil {
			return ents, err
		}
		n := int(rec.NameLen)
		if n > len(rec.Name) {
			n = len(rec.Name)
		}
		ents = append(ents, Dirent{
			Name: string(rec.Name[:n]),
			Type: rec.Type,
			Size: rec.Size,
		})
	}
	return ents, nil
}

func (c *Ctx) pathCall(num uint32, path string) error {
	pb, err := c.Heap.CString(path)
	if err != nil {
		return err
	}
	defer pb.Free()
	if ret := c.G.Call(num, pb.Addr); ret < 0 {
		return c.G.Errno()
	}
	return nil
}

func (c *Ctx) Chdir(path string) error  { return c.pathCall(abi.SysChdir, path) }
func (c *Ctx) Mkdir(path string) error  { return c.pathCall(abi.SysMkdir, path) }
func (c *Ctx) Unlink(path string) error { return c.pathCall(abi.SysUnlink, path) }

func (c *Ctx) Rename(from, to string) error {
	fb, err := c.Heap.CString(from)
	if err != nil {
		return err
	}
	defer fb.Free()
	tb, err := c.Heap.CString(to)
	if err != nil {
		return err
	}
	defer tb.Free()
	if ret := c.G.Call(abi.SysRename, fb.Addr, tb.Addr); ret < 0 {
		return c.G.Errno()
	}
	return nil
}

func (c *Ctx) Truncate(path string, size int64) error {
	pb, err := c.Heap.CString(path)
	if err != nil {
		return err
	}
	defer pb.Free()
	if ret := c.G.Call(abi.SysTruncate, pb.Addr, uint64(size)); ret < 0 {
		return c.G.Errno()
	}
	return nil
}

func (c *Ctx) Ftruncate(fd int32, size int64) error {
	if ret := c.G.Call(abi.SysFtruncate, uint64(uint32(fd)), uint64(size)); ret < 0 {
		return c.G.Errno()
	}
	return nil
}

// Getcwd returns the current directory. The kernel writes it
// NUL-terminated and fails with ERANGE when the buffer is short.
func (c *Ctx) Getcwd() (string, error) {
	sb, err := c.Heap.Sbuf(256)
	if err != nil {
		return "", err
	}
	defer sb.Free()
	if ret := c.G.Call(abi.SysGetcwd, sb.Addr, sb.Size); ret < 0 {
		return "", c.G.Errno()
	}
	return sb.Str(sb.Size)
}

func (c *Ctx) Isatty(fd int32) bool {
	return c.G.Trap(abi.SysIsatty, uint64(uint32(fd))) == 1
}

func (c *Ctx) Dup(fd int32) (int32, error) {
	ret := c.G.Call(abi.SysDup, uint64(uint32(fd)))
	if ret < 0 {
		return -1, c.G.Errno()
	}
	return int32(ret), nil
}

func (c *Ctx) Dup2(oldfd, newfd int32) (int32, error) {
	ret := c.G.Call(abi.SysDup2, uint64(uint32(oldfd)), uint64(uint32(newfd)))
	if ret < 0 {
		return -1, c.G.Errno()
	}
	return int32(ret), nil
}

// Pipe returns the read and write ends of a fresh pipe.
func (c *Ctx) Pipe() (r, w int32, err error) {
	return c.Pipe2(0)
}

func (c *Ctx) Pipe2(flags uint32) (r, w int32, err error) {
	sb, serr := c.Heap.Sbuf(8)
	if serr != nil {
		return -1, -1, serr
	}
	defer sb.Free()
	if ret := c.G.Call(abi.SysPipe2, sb.Addr, uint64(flags)); ret < 0 {
		return -1, -1, c.G.Errno()
	}
	var fds struct {
		R int32 `struc:"int32,little"`
		W int32 `struc:"int32,little"`
	}
	if err := c.Img.StrucAt(sb.Addr).Unpack(&fds); err != nil {
		return -1, -1, err
	}
	return fds.R, fds.W, nil
}

// WExitStatus extracts the exit code from a wait status: the low byte.
func WExitStatus(status int) int {
	return status & 0xff
}

// Waitpid blocks until pid exits and returns its wait status.
func (c *Ctx) Waitpid(pid int) (int, error) {
	ret := c.G.Call(abi.SysWaitpid, uint64(uint32(pid)))
	if ret < 0 {
		return 0, c.G.Errno()
	}
	return int(ret), nil
}

// System spawns path with the argument blob and waits for it, returning
// the wait status.
func (c *Ctx) System(path, args string) (int, error) {
	pid, err := c.Spawn(path, args, -1, -1)
	if err != nil {
		return 0, err
	}
	return c.Waitpid(pid)
}

// Spawn launches a new process. stdinPipe and stdoutPipe name kernel
// pipes to wire as the child's ends, -1 for inherit.
func (c *Ctx) Spawn(path, args string, stdinPipe, stdoutPipe int32) (int, error) {
	pb, err := c.Heap.CString(path)
	if err != nil {
		return -1, err
	}
	defer pb.Free()
	var argAddr uint64
	if args != "" {
		ab, err := c.Heap.CString(args)
		if err != nil {
			return -1, err
		}
		defer ab.Free()
		argAddr = ab.Addr
	}
	ret := c.G.Call(abi.SysSpawn, pb.Addr, uint64(uint32(stdoutPipe)), argAddr, uint64(uint32(stdinPipe)))
	if ret < 0 {
		return -1, c.G.Errno()
	}
	return int(ret), nil
}
