package mem

import "github.com/brianmayclone/anyos-userland/abi"

// Sbuf is a scratch allocation used to pass buffers across the trap:
// syscall arguments must name image memory, and Go-side byte slices are
// not that.
type Sbuf struct {
	a    *Arena
	Addr uint64
	Size uint64
}

// Sbuf allocates n scratch bytes.
func (a *Arena) Sbuf(n uint64) (*Sbuf, error) {
	addr := a.Alloc(n)
	if addr == 0 {
		return nil, abi.ENOMEM
	}
	return &Sbuf{a: a, Addr: addr, Size: n}, nil
}

// CString copies s into scratch memory with a trailing NUL.
func (a *Arena) CString(s string) (*Sbuf, error) {
	b, err := a.Sbuf(uint64(len(s)) + 1)
	if err != nil {
		return nil, err
	}
	if err := b.Write(append([]byte(s), 0)); err != nil {
		b.Free()
		return nil, err
	}
	return b, nil
}

func (b *Sbuf) Write(p []byte) error {
	return b.a.img.WriteAt(b.Addr, p)
}

// Bytes copies out the first n bytes.
func (b *Sbuf) Bytes(n uint64) ([]byte, error) {
	if n > b.Size {
		n = b.Size
	}
	p := make([]byte, n)
	if err := b.a.img.ReadAt(b.Addr, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Str copies out a NUL- or length-terminated string of at most n bytes.
func (b *Sbuf) Str(n uint64) (string, error) {
	p, err := b.Bytes(n)
	if err != nil {
		return "", err
	}
	for i, c := range p {
		if c == 0 {
			return string(p[:i]), nil
		}
	}
	return string(p), nil
}

func (b *Sbuf) Free() {
	b.a.Free(b.Addr)
}
