package mem

import "github.com/brianmayclone/anyos-userland/abi"

// FileReader is the extra gateway slice mmap needs for file-backed
// mappings.
type FileReader interface {
	Lseek(fd int32, off int64, whence int) (int64, error)
	// Read reads up to n bytes from fd into image memory at addr and
	// returns the byte count, 0 at end of file.
	Read(fd int32, addr, n uint64) (int64, error)
}

// Mmap satisfies anonymous mappings straight from the arena and file
// mappings by reading the descriptor into a fresh allocation. There is no
// demand paging on anyOS; the "mapping" is an eager copy.
func Mmap(a *Arena, fr FileReader, length uint64, fd int32, offset int64) uint64 {
	if length == 0 {
		return 0
	}
	addr := a.Alloc(length)
	if addr == 0 {
		return 0
	}
	a.img.Zero(addr, length)
	if fd < 0 {
		return addr
	}
	if _, err := fr.Lseek(fd, offset, abi.SeekSet); err != nil {
		a.Free(addr)
		return 0
	}
	var done uint64
	for done < length {
		chunk := length - done
		if chunk > 64*1024 {
			chunk = 64 * 1024
		}
		n, err := fr.Read(fd, addr+done, chunk)
		if err != nil || n <= 0 {
			break // tail stays zero-filled
		}
		done += uint64(n)
	}
	return addr
}

// Munmap releases a mapping. The length is accepted for interface
// compatibility; the arena frees whole blocks.
func Munmap(a *Arena, addr, length uint64) {
	a.Free(addr)
}

// Mprotect is a no-op: the image has a single protection domain.
func Mprotect(addr, length uint64, prot int) int {
	return 0
}
