package rt

import (
	"github.com/brianmayclone/anyos-userland/abi"
)

// Hostname reads the machine hostname.
func (p *Process) Hostname() (string, error) {
	sb, err := p.Heap.Sbuf(64)
	if err != nil {
		return "", err
	}
	defer sb.Free()
	n := p.Sys.Call(abi.SysHostnameGet, sb.Addr, sb.Size)
	if n < 0 {
		return "", p.Sys.Errno()
	}
	return sb.Str(uint64(n))
}

// SetHostname changes the machine hostname.
func (p *Process) SetHostname(name string) error {
	nb, err := p.Heap.CString(name)
	if err != nil {
		return err
	}
	defer nb.Free()
	if ret := p.Sys.Call(abi.SysHostnameSet, nb.Addr); ret < 0 {
		return p.Sys.Errno()
	}
	return nil
}

// Username resolves a uid to an account name.
func (p *Process) Username(uid int) (string, error) {
	sb, err := p.Heap.Sbuf(64)
	if err != nil {
		return "", err
	}
	defer sb.Free()
	n := p.Sys.Call(abi.SysGetusername, uint64(uint32(uid)), sb.Addr, sb.Size)
	if n < 0 {
		return "", p.Sys.Errno()
	}
	return sb.Str(uint64(n))
}

func (p *Process) Getuid() int { return int(p.Sys.Trap(abi.SysGetuid)) }

// Dmesg copies the kernel log ring into a string.
func (p *Process) Dmesg() (string, error) {
	sb, err := p.Heap.Sbuf(16 * 1024)
	if err != nil {
		return "", err
	}
	defer sb.Free()
	n := p.Sys.Call(abi.SysDmesg, sb.Addr, sb.Size)
	if n < 0 {
		return "", p.Sys.Errno()
	}
	return sb.Str(uint64(n))
}

// Sysinfo fetches the kernel resource snapshot.
func (p *Process) Sysinfo() (*abi.SysinfoRec, error) {
	sb, err := p.Heap.Sbuf(24)
	if err != nil {
		return nil, err
	}
	defer sb.Free()
	if ret := p.Sys.Call(abi.SysSysinfo, sb.Addr); ret < 0 {
		return nil, p.Sys.Errno()
	}
	var rec abi.SysinfoRec
	if err := p.Mem.StrucAt(sb.Addr).Unpack(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Random fills b with kernel random bytes.
func (p *Process) Random(b []byte) error {
	sb, err := p.Heap.Sbuf(uint64(len(b)))
	if err != nil {
		return err
	}
	defer sb.Free()
	n := p.Sys.Call(abi.SysRandom, sb.Addr, sb.Size)
	if n < 0 {
		return p.Sys.Errno()
	}
	data, err := sb.Bytes(uint64(n))
	if err != nil {
		return err
	}
	copy(b, data)
	return nil
}
