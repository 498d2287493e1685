package common

import (
	"github.com/pkg/errors"

	"github.com/brianmayclone/anyos-userland/mem"
)

type (
	// Buf is an input buffer argument: an address in the calling
	// process's image.
	Buf struct {
		Addr uint64
		K    *KernelBase
	}
	// Obuf is an output buffer the kernel writes back through.
	Obuf struct{ Buf }
	// Len, Off and Fd document the role of plain integer arguments.
	Len uint64
	Off int64
	Fd  int32
	Ptr uint64
)

func NewBuf(k Kernel, addr uint64) Buf {
	return Buf{K: k.Base(), Addr: addr}
}

func (b Buf) Struc() *mem.StrucStream {
	return b.K.Mem.StrucAt(b.Addr)
}

func (b Buf) Pack(i interface{}) error {
	return errors.Wrap(b.Struc().Pack(i), "struc.Pack() failed")
}

func (b Buf) Unpack(i interface{}) error {
	return errors.Wrap(b.Struc().Unpack(i), "struc.Unpack() failed")
}

// Bytes copies n bytes of image memory starting at the buffer address.
func (b Buf) Bytes(n uint64) ([]byte, error) {
	p := make([]byte, n)
	if err := b.K.Mem.ReadAt(b.Addr, p); err != nil {
		return nil, errors.Wrap(err, "image read failed")
	}
	return p, nil
}

// PutBytes writes p into image memory at the buffer address.
func (b Obuf) PutBytes(p []byte) error {
	return errors.Wrap(b.K.Mem.WriteAt(b.Addr, p), "image write failed")
}
