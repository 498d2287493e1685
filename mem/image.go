// Package mem implements the process address space and the sbrk-backed
// arena allocator. Blocks are addressed by image offset rather than raw
// pointers so every link in the free list can be validated against the
// break.
package mem

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
)

// Image is the flat memory of one process. It starts at a nonzero base so
// address 0 stays available as the null/failure sentinel, and grows only
// through Sbrk.
type Image struct {
	mu    sync.RWMutex
	base  uint64
	brk   uint64
	limit uint64
	data  []byte
}

// DefaultBase mirrors the load address the anyOS loader hands user images.
const DefaultBase = 0x400000

// NewImage creates an empty image. limit bounds total growth; 0 means 256 MiB.
func NewImage(base, limit uint64) *Image {
	if base == 0 {
		base = DefaultBase
	}
	if limit == 0 {
		limit = 256 << 20
	}
	return &Image{base: base, brk: base, limit: base + limit}
}

func (m *Image) Base() uint64 { return m.base }

func (m *Image) Brk() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.brk
}

// Sbrk moves the break by delta bytes and returns the previous break.
// The break never decreases below its starting point.
func (m *Image) Sbrk(delta int64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.brk
	if delta == 0 {
		return old, nil
	}
	if delta < 0 {
		// anyOS never reclaims; a negative sbrk is a query gone wrong
		return old, errors.Errorf("sbrk: negative delta %d", delta)
	}
	nbrk := m.brk + uint64(delta)
	if nbrk > m.limit {
		return 0, errors.Errorf("sbrk: break %#x exceeds limit %#x", nbrk, m.limit)
	}
	m.data = append(m.data, make([]byte, delta)...)
	m.brk = nbrk
	return old, nil
}

func (m *Image) check(addr, n uint64) error {
	if addr < m.base || addr+n > m.brk || addr+n < addr {
		return errors.Errorf("address %#x+%d outside image [%#x, %#x)", addr, n, m.base, m.brk)
	}
	return nil
}

// ReadAt copies len(p) bytes starting at addr into p.
func (m *Image) ReadAt(addr uint64, p []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(addr, uint64(len(p))); err != nil {
		return err
	}
	copy(p, m.data[addr-m.base:])
	return nil
}

// WriteAt copies p into the image at addr.
func (m *Image) WriteAt(addr uint64, p []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(addr, uint64(len(p))); err != nil {
		return err
	}
	copy(m.data[addr-m.base:], p)
	return nil
}

// ReadStrAt reads a NUL-terminated byte string starting at addr.
func (m *Image) ReadStrAt(addr uint64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(addr, 1); err != nil {
		return "", err
	}
	b := m.data[addr-m.base:]
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), nil
		}
	}
	return "", errors.Errorf("unterminated string at %#x", addr)
}

// ReadStrn reads at most n bytes at addr, stopping at the first NUL.
func (m *Image) ReadStrn(addr, n uint64) (string, error) {
	p := make([]byte, n)
	if err := m.ReadAt(addr, p); err != nil {
		return "", err
	}
	for i, c := range p {
		if c == 0 {
			return string(p[:i]), nil
		}
	}
	return string(p), nil
}

// Zero clears n bytes at addr.
func (m *Image) Zero(addr, n uint64) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(addr, n); err != nil {
		return err
	}
	b := m.data[addr-m.base : addr-m.base+n]
	for i := range b {
		b[i] = 0
	}
	return nil
}

// cursor adapts an image offset to io.ReadWriter for struc.
type cursor struct {
	m    *Image
	addr uint64
}

func (c *cursor) Read(p []byte) (int, error) {
	if err := c.m.ReadAt(c.addr, p); err != nil {
		return 0, err
	}
	c.addr += uint64(len(p))
	return len(p), nil
}

func (c *cursor) Write(p []byte) (int, error) {
	if err := c.m.WriteAt(c.addr, p); err != nil {
		return 0, err
	}
	c.addr += uint64(len(p))
	return len(p), nil
}

// StrucAt returns a packing stream positioned at addr. All anyOS records
// are little-endian.
func (m *Image) StrucAt(addr uint64) *StrucStream {
	return &StrucStream{Stream: &cursor{m: m, addr: addr}, Order: binary.LittleEndian}
}
