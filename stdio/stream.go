// Package stdio is the buffered I/O layer over the read/write/lseek
// syscalls. Stream buffers live in image memory so the kernel traps target
// addresses the process owns; a Go-side shadow keeps byte access cheap.
package stdio

import (
	"io"
	"sync"

	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/mem"
	"github.com/brianmayclone/anyos-userland/sys"
)

const bufSize = 1024

// Stream access modes.
const (
	ModeRead = 1 << iota
	ModeWrite
)

// Buffering disciplines.
const (
	FullBuffered = iota
	LineBuffered
	Unbuffered
)

const (
	dirNone = iota
	dirRead
	dirWrite
)

// Stream is one buffered descriptor. All operations are serialized by the
// stream lock; distinct streams never contend.
type Stream struct {
	mu   sync.Mutex
	g    *sys.Gateway
	heap *mem.Arena
	img  *mem.Image

	fd   int32
	mode int

	buf       uint64 // image address of the buffer
	shadow    []byte
	pos, n    int
	dir       int
	buffering int

	push   int // pushback byte, -1 when empty
	last   int // last byte handed out, for UnreadByte
	eof    bool
	err    bool
	closed bool
}

// FdOpen wraps an already-open descriptor. The buffer comes from the
// arena; a failed allocation degrades the stream to unbuffered.
func FdOpen(g *sys.Gateway, heap *mem.Arena, img *mem.Image, fd int32, mode int) *Stream {
	s := &Stream{
		g:         g,
		heap:      heap,
		img:       img,
		fd:        fd,
		mode:      mode,
		buffering: FullBuffered,
		push:      -1,
		last:      -1,
	}
	if addr := heap.Alloc(bufSize); addr != 0 {
		s.buf = addr
		s.shadow = make([]byte, bufSize)
	} else {
		s.buffering = Unbuffered
	}
	return s
}

// Open opens path with an fopen-style mode string: "r", "w", "a", each
// optionally followed by "+" and/or "b".
func Open(g *sys.Gateway, heap *mem.Arena, img *mem.Image, path, mode string) (*Stream, error) {
	flags, smode, err := parseMode(mode)
	if err != nil {
		return nil, err
	}
	pb, err := heap.CString(path)
	if err != nil {
		return nil, err
	}
	defer pb.Free()
	fd := g.Call(abi.SysOpen, pb.Addr, uint64(flags))
	if fd < 0 {
		return nil, g.Errno()
	}
	return FdOpen(g, heap, img, int32(fd), smode), nil
}

func parseMode(mode string) (flags uint32, smode int, err error) {
	if mode == "" {
		return 0, 0, abi.EINVAL
	}
	switch mode[0] {
	case 'r':
		flags = abi.ORdonly
		smode = ModeRead
	case 'w':
		flags = abi.OWronly | abi.OCreat | abi.OTrunc
		smode = ModeWrite
	case 'a':
		flags = abi.OWronly | abi.OCreat | abi.OAppend
		smode = ModeWrite
	default:
		return 0, 0, abi.EINVAL
	}
	for _, c := range mode[1:] {
		switch c {
		case '+':
			flags = flags&^uint32(abi.ORdonly|abi.OWronly) | abi.ORdwr
			smode = ModeRead | ModeWrite
		case 'b':
			// binary is the only mode on anyFS
		default:
			return 0, 0, abi.EINVAL
		}
	}
	return flags, smode, nil
}

func (s *Stream) Fd() int32 { return s.fd }

// SetBuffering selects the discipline. Pending buffered data is flushed
// first so the switch never reorders bytes.
func (s *Stream) SetBuffering(mode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
	s.buffering = mode
}

// EOF reports the sticky end-of-file bit.
func (s *Stream) EOF() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eof
}

// Err reports the sticky error bit.
func (s *Stream) Err() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) ClearErr() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eof = false
	s.err = false
}

// drainLocked writes the pending buffer out, retrying partial writes.
func (s *Stream) drainLocked() error {
	if s.dir != dirWrite || s.n == 0 {
		return nil
	}
	if err := s.drainPrefixLocked(s.n); err != nil {
		return err
	}
	s.dir = dirNone
	return nil
}

// drainPrefixLocked flushes the first n buffered bytes and keeps the rest
// buffered.
func (s *Stream) drainPrefixLocked(n int) error {
	if s.buf != 0 {
		if err := s.img.WriteAt(s.buf, s.shadow[:n]); err != nil {
			s.err = true
			s.n = 0
			return err
		}
	}
	off := 0
	for off < n {
		ret := s.g.Call(abi.SysWrite, uint64(uint32(s.fd)), s.buf+uint64(off), uint64(n-off))
		if ret <= 0 {
			s.err = true
			s.n = 0
			if ret < 0 {
				return s.g.Errno()
			}
			return abi.EIO
		}
		off += int(ret)
	}
	copy(s.shadow, s.shadow[n:s.n])
	s.n -= n
	return nil
}

func (s *Stream) flushLocked() error {
	if s.dir == dirRead {
		// unread buffered bytes are dropped; the kernel offset already
		// moved past them, so rewind it
		if rem := int64(s.n - s.pos); rem > 0 {
			s.g.Trap(abi.SysLseek, uint64(uint32(s.fd)), uint64(-rem), abi.SeekCur)
		}
		s.pos, s.n = 0, 0
		s.dir = dirNone
		return nil
	}
	return s.drainLocked()
}

// Flush forces pending output to the kernel.
func (s *Stream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drainLocked()
}

func (s *Stream) beginWrite() error {
	if s.mode&ModeWrite == 0 {
		s.err = true
		return abi.EBADF
	}
	if s.dir == dirRead {
		s.flushLocked()
	}
	s.dir = dirWrite
	return nil
}

// Write buffers p, draining on a full buffer, on any newline under line
// buffering, and always when unbuffered.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(p)
}

func (s *Stream) writeLocked(p []byte) (int, error) {
	if err := s.beginWrite(); err != nil {
		return 0, err
	}
	written := 0
	for len(p) > 0 {
		if s.buf == 0 || s.buffering == Unbuffered {
			// straight through, one image round trip per call
			return s.writeDirect(p, written)
		}
		space := len(s.shadow) - s.n
		if space == 0 {
			if err := s.drainLocked(); err != nil {
				return written, err
			}
			s.dir = dirWrite
			continue
		}
		chunk := p
		if len(chunk) > space {
			chunk = chunk[:space]
		}
		copy(s.shadow[s.n:], chunk)
		s.n += len(chunk)
		written += len(chunk)
		p = p[len(chunk):]

		// line mode flushes through the last newline only; bytes after
		// it stay buffered
		if s.buffering == LineBuffered {
			if cut := lastNewline(s.shadow[:s.n]); cut >= 0 {
				if err := s.drainPrefixLocked(cut + 1); err != nil {
					return written, err
				}
			}
		}
	}
	return written, nil
}

func (s *Stream) writeDirect(p []byte, already int) (int, error) {
	sb, err := s.heap.Sbuf(uint64(len(p)))
	if err != nil {
		s.err = true
		return already, err
	}
	defer sb.Free()
	if err := sb.Write(p); err != nil {
		s.err = true
		return already, err
	}
	off := 0
	for off < len(p) {
		ret := s.g.Call(abi.SysWrite, uint64(uint32(s.fd)), sb.Addr+uint64(off), uint64(len(p)-off))
		if ret <= 0 {
			s.err = true
			if ret < 0 {
				return already + off, s.g.Errno()
			}
			return already + off, abi.EIO
		}
		off += int(ret)
	}
	return already + len(p), nil
}

func lastNewline(p []byte) int {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '\n' {
			return i
		}
	}
	return -1
}

func (s *Stream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Putc writes one byte.
func (s *Stream) Putc(c byte) error {
	_, err := s.Write([]byte{c})
	return err
}

// Puts writes str followed by a newline.
func (s *Stream) Puts(str string) error {
	if _, err := s.WriteString(str); err != nil {
		return err
	}
	return s.Putc('\n')
}

func (s *Stream) beginRead() error {
	if s.mode&ModeRead == 0 {
		s.err = true
		return abi.EBADF
	}
	if s.dir == dirWrite {
		if err := s.drainLocked(); err != nil {
			return err
		}
	}
	s.dir = dirRead
	return nil
}

// fillLocked refills the read buffer from the kernel.
func (s *Stream) fillLocked() error {
	if s.buf == 0 {
		// degraded stream: retry the allocation before giving up
		if addr := s.heap.Alloc(bufSize); addr != 0 {
			s.buf = addr
			s.shadow = make([]byte, bufSize)
		} else {
			s.err = true
			return abi.ENOMEM
		}
	}
	want := uint64(len(s.shadow))
	if s.buffering == Unbuffered {
		want = 1
	}
	ret := s.g.Call(abi.SysRead, uint64(uint32(s.fd)), s.buf, want)
	if ret < 0 {
		s.err = true
		return s.g.Errno()
	}
	if ret == 0 {
		s.eof = true
		return io.EOF
	}
	if err := s.img.ReadAt(s.buf, s.shadow[:ret]); err != nil {
		s.err = true
		return err
	}
	s.pos, s.n = 0, int(ret)
	return nil
}

// Read fills p with up to len(p) bytes, short only at end of file or on
// error.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.beginRead(); err != nil {
		return 0, err
	}
	read := 0
	if s.push >= 0 && len(p) > 0 {
		p[0] = byte(s.push)
		s.push = -1
		p = p[1:]
		read++
	}
	for len(p) > 0 {
		if s.pos == s.n {
			if err := s.fillLocked(); err != nil {
				if read > 0 && err == io.EOF {
					return read, nil
				}
				return read, err
			}
		}
		copied := copy(p, s.shadow[s.pos:s.n])
		s.pos += copied
		p = p[copied:]
		read += copied
	}
	return read, nil
}

// Getc returns the next byte, pushback first.
func (s *Stream) Getc() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.beginRead(); err != nil {
		return 0, err
	}
	if s.push >= 0 {
		c := byte(s.push)
		s.push = -1
		return c, nil
	}
	if s.pos == s.n {
		if err := s.fillLocked(); err != nil {
			return 0, err
		}
	}
	c := s.shadow[s.pos]
	s.pos++
	return c, nil
}

// Ungetc pushes one byte back; a second push before a read fails. It
// clears the EOF bit.
func (s *Stream) Ungetc(c byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.push >= 0 {
		return abi.EINVAL
	}
	s.push = int(c)
	s.eof = false
	return nil
}

// Gets reads a line of at most max-1 bytes, keeping the newline, like
// fgets. It returns io.EOF with an empty string when no byte was read.
func (s *Stream) Gets(max int) (string, error) {
	if max <= 1 {
		return "", abi.EINVAL
	}
	line := make([]byte, 0, max-1)
	for len(line) < max-1 {
		c, err := s.Getc()
		if err != nil {
			if len(line) > 0 && err == io.EOF {
				return string(line), nil
			}
			return "", err
		}
		line = append(line, c)
		if c == '\n' {
			break
		}
	}
	return string(line), nil
}

// Seek repositions the descriptor, discarding buffered data, pushback and
// the EOF bit.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir == dirWrite {
		if err := s.drainLocked(); err != nil {
			return -1, err
		}
	}
	s.pos, s.n = 0, 0
	s.dir = dirNone
	s.push = -1
	s.eof = false
	ret := s.g.Call(abi.SysLseek, uint64(uint32(s.fd)), uint64(offset), uint64(whence))
	if ret < 0 {
		s.err = true
		return -1, s.g.Errno()
	}
	return ret, nil
}

// Tell reports the logical position: the kernel offset corrected for
// buffered bytes not yet surfaced (or not yet written).
func (s *Stream) Tell() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := s.g.Call(abi.SysLseek, uint64(uint32(s.fd)), 0, abi.SeekCur)
	if ret < 0 {
		return -1, s.g.Errno()
	}
	switch s.dir {
	case dirRead:
		ret -= int64(s.n - s.pos)
		if s.push >= 0 {
			ret--
		}
	case dirWrite:
		ret += int64(s.n)
	}
	return ret, nil
}

// Rewind is Seek(0, SEEK_SET) with the error bit cleared.
func (s *Stream) Rewind() {
	s.Seek(0, int(abi.SeekSet))
	s.mu.Lock()
	s.err = false
	s.mu.Unlock()
}

// Close flushes, releases the buffer and closes the descriptor. Closing
// twice is a no-op.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	ferr := s.drainLocked()
	if s.buf != 0 {
		s.heap.Free(s.buf)
		s.buf = 0
		s.shadow = nil
	}
	if ret := s.g.Call(abi.SysClose, uint64(uint32(s.fd))); ret < 0 {
		return s.g.Errno()
	}
	return ferr
}

// ReadByte and UnreadByte make Stream an io.ByteScanner for the scan
// layer. UnreadByte lands in the pushback slot, so it composes with
// Ungetc the way the C layer does.
func (s *Stream) ReadByte() (byte, error) {
	c, err := s.Getc()
	if err == nil {
		s.mu.Lock()
		s.last = int(c)
		s.mu.Unlock()
	}
	return c, err
}

func (s *Stream) UnreadByte() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last < 0 || s.push >= 0 {
		return abi.EINVAL
	}
	s.push = s.last
	s.last = -1
	s.eof = false
	return nil
}
