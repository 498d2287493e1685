package mem

import (
	"encoding/binary"
	"sync/atomic"
)

// Brker is the slice of the syscall gateway the allocator needs. Keeping it
// an interface lets tests drive the arena without a kernel and keeps this
// package below the gateway in the import graph.
type Brker interface {
	Sbrk(delta int64) (uint64, error)
	Yield()
}

const (
	// Alignment of every payload, and the minimum split remainder.
	blockAlign = 16
	// Block header: [size<<1|free : u64][next : u64].
	headerSize = 16
	// Arena refill granularity.
	chunkSize = 64 * 1024
)

// Arena is the process heap: a singly linked list of blocks in address
// order carved out of sbrk chunks. All operations are serialized by a
// spinlock that yields to the scheduler between retries, since the heap is
// shared by every thread in the process.
type Arena struct {
	img *Image
	k   Brker

	lock uint32

	head uint64 // first block, 0 when empty
	tail uint64 // last block, for O(1) append

	chunk     uint64 // next unserved byte of the current sbrk chunk
	chunkLeft uint64

	total uint64 // total bytes drawn via sbrk
	nomem bool   // sticky after the last failed alloc, cleared on success
}

func NewArena(img *Image, k Brker) *Arena {
	return &Arena{img: img, k: k}
}

func (a *Arena) acquire() {
	for !atomic.CompareAndSwapUint32(&a.lock, 0, 1) {
		a.k.Yield()
	}
}

func (a *Arena) release() {
	atomic.StoreUint32(&a.lock, 0)
}

func (a *Arena) loadHdr(b uint64) (size uint64, free bool, next uint64) {
	var buf [headerSize]byte
	if err := a.img.ReadAt(b, buf[:]); err != nil {
		return 0, false, 0
	}
	w0 := binary.LittleEndian.Uint64(buf[0:8])
	next = binary.LittleEndian.Uint64(buf[8:16])
	return w0 >> 1, w0&1 != 0, next
}

func (a *Arena) storeHdr(b, size uint64, free bool, next uint64) {
	var buf [headerSize]byte
	w0 := size << 1
	if free {
		w0 |= 1
	}
	binary.LittleEndian.PutUint64(buf[0:8], w0)
	binary.LittleEndian.PutUint64(buf[8:16], next)
	a.img.WriteAt(b, buf[:])
}

func align(n uint64) uint64 {
	return (n + blockAlign - 1) &^ (blockAlign - 1)
}

// coalesce merges b with any directly adjacent free successors. Blocks
// separated by abandoned chunk tails are not adjacent and stay apart.
func (a *Arena) coalesce(b uint64) {
	size, free, next := a.loadHdr(b)
	if !free {
		return
	}
	for next != 0 && next == b+headerSize+size {
		nsize, nfree, nnext := a.loadHdr(next)
		if !nfree {
			break
		}
		size += headerSize + nsize
		next = nnext
	}
	a.storeHdr(b, size, true, next)
	if next == 0 {
		a.tail = b
	}
}

// Alloc returns the address of a 16-byte aligned allocation of n bytes, or
// 0 when n is zero or memory is exhausted.
func (a *Arena) Alloc(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n = align(n)
	a.acquire()
	defer a.release()

	// first fit over the block list, coalescing as we pass free runs
	for b := a.head; b != 0; {
		size, free, next := a.loadHdr(b)
		if free {
			a.coalesce(b)
			size, _, next = a.loadHdr(b)
			if size >= n {
				a.split(b, size, n, next)
				a.nomem = false
				return b + headerSize
			}
		}
		b = next
	}

	// no block fits: draw a fresh one from the chunk
	need := n + headerSize
	if a.chunkLeft < need {
		grow := need
		if grow < chunkSize {
			grow = chunkSize
		}
		old, err := a.k.Sbrk(int64(grow))
		if err != nil || old == 0 {
			a.nomem = true
			return 0
		}
		// any tail of the previous chunk is abandoned
		a.chunk = old
		a.chunkLeft = grow
		a.total += grow
	}
	b := a.chunk
	a.chunk += need
	a.chunkLeft -= need
	a.storeHdr(b, n, false, 0)
	if a.tail != 0 {
		tsize, tfree, _ := a.loadHdr(a.tail)
		a.storeHdr(a.tail, tsize, tfree, b)
	} else {
		a.head = b
	}
	a.tail = b
	a.nomem = false
	return b + headerSize
}

// split carves the tail of a free block off when the remainder can hold a
// header plus one aligned payload, then marks the front allocated.
func (a *Arena) split(b, size, n, next uint64) {
	if size >= n+headerSize+blockAlign {
		rest := b + headerSize + n
		a.storeHdr(rest, size-n-headerSize, true, next)
		if next == 0 {
			a.tail = rest
		}
		a.storeHdr(b, n, false, rest)
	} else {
		a.storeHdr(b, size, false, next)
	}
}

// Free marks a block free. Memory is never returned to the kernel;
// adjacent free blocks merge during a later allocation walk.
func (a *Arena) Free(addr uint64) {
	if addr == 0 {
		return
	}
	a.acquire()
	defer a.release()
	b := addr - headerSize
	size, _, next := a.loadHdr(b)
	a.storeHdr(b, size, true, next)
}

// Usable reports the payload capacity of an allocation.
func (a *Arena) Usable(addr uint64) uint64 {
	if addr == 0 {
		return 0
	}
	a.acquire()
	defer a.release()
	size, _, _ := a.loadHdr(addr - headerSize)
	return size
}

// Realloc follows the classic contract: nil grows from nothing, size zero
// frees, a shrink keeps the block, a grow copies the prefix into a fresh
// block.
func (a *Arena) Realloc(addr, n uint64) uint64 {
	if addr == 0 {
		return a.Alloc(n)
	}
	if n == 0 {
		a.Free(addr)
		return 0
	}
	old := a.Usable(addr)
	if n <= old {
		return addr
	}
	naddr := a.Alloc(n)
	if naddr == 0 {
		return 0
	}
	buf := make([]byte, old)
	a.img.ReadAt(addr, buf)
	a.img.WriteAt(naddr, buf)
	a.Free(addr)
	return naddr
}

// Calloc allocates count*size zeroed bytes.
func (a *Arena) Calloc(count, size uint64) uint64 {
	if count != 0 && size != 0 && count > ^uint64(0)/size {
		return 0
	}
	n := count * size
	addr := a.Alloc(n)
	if addr != 0 {
		a.img.Zero(addr, align(n))
	}
	return addr
}

// OutOfMemory reports whether the last allocation failed on sbrk.
func (a *Arena) OutOfMemory() bool {
	a.acquire()
	defer a.release()
	return a.nomem
}

// Total is the byte count drawn from the kernel so far.
func (a *Arena) Total() uint64 {
	a.acquire()
	defer a.release()
	return a.total
}

// Accounting walks the block list and reports live and free payload bytes.
// The sum can never exceed Total.
func (a *Arena) Accounting() (live, free uint64) {
	a.acquire()
	defer a.release()
	for b := a.head; b != 0; {
		size, fr, next := a.loadHdr(b)
		if fr {
			free += size
		} else {
			live += size
		}
		b = next
	}
	return live, free
}
