package stdio

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/kernel/anyos"
	"github.com/brianmayclone/anyos-userland/mem"
	"github.com/brianmayclone/anyos-userland/sys"
)

type env struct {
	g    *sys.Gateway
	heap *mem.Arena
	img  *mem.Image
	root string
}

func bootEnv(t *testing.T) *env {
	t.Helper()
	root := t.TempDir()
	m := anyos.NewMachine()
	img := mem.NewImage(0, 0)
	k := anyos.NewKernel(m, img, anyos.Config{Root: root})
	g := sys.Bind(k)
	return &env{g: g, heap: mem.NewArena(img, g), img: img, root: root}
}

func (e *env) open(t *testing.T, path, mode string) *Stream {
	t.Helper()
	s, err := Open(e.g, e.heap, e.img, path, mode)
	if err != nil {
		t.Fatalf("open %q %q: %v", path, mode, err)
	}
	return s
}

func TestOpenModes(t *testing.T) {
	e := bootEnv(t)

	s := e.open(t, "/f", "w")
	if _, err := s.WriteString("one\n"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// append lands after the existing content
	s = e.open(t, "/f", "a")
	if _, err := s.WriteString("two\n"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(e.root, "f"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one\ntwo\n" {
		t.Fatalf("file holds %q", data)
	}

	// "w" truncates
	s = e.open(t, "/f", "w")
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(filepath.Join(e.root, "f"))
	if len(data) != 0 {
		t.Fatalf("truncating open left %q", data)
	}

	if _, err := Open(e.g, e.heap, e.img, "/f", "q"); err != abi.EINVAL {
		t.Fatalf("bad mode string = %v, want EINVAL", err)
	}
	if _, err := Open(e.g, e.heap, e.img, "/absent", "r"); err != abi.ENOENT {
		t.Fatalf("open of missing file = %v, want ENOENT", err)
	}
}

func TestReadOnWriteStream(t *testing.T) {
	e := bootEnv(t)
	s := e.open(t, "/f", "w")
	defer s.Close()
	if _, err := s.Read(make([]byte, 1)); err != abi.EBADF {
		t.Fatalf("read on write-only stream = %v, want EBADF", err)
	}
	if !s.Err() {
		t.Fatal("error bit not sticky")
	}
	s.ClearErr()
	if s.Err() {
		t.Fatal("ClearErr did not clear")
	}
}

func TestGetsKeepsNewline(t *testing.T) {
	e := bootEnv(t)
	if err := os.WriteFile(filepath.Join(e.root, "lines"), []byte("alpha\nbeta"), 0644); err != nil {
		t.Fatal(err)
	}
	s := e.open(t, "/lines", "r")
	defer s.Close()

	line, err := s.Gets(64)
	if err != nil {
		t.Fatal(err)
	}
	if line != "alpha\n" {
		t.Fatalf("first line = %q", line)
	}
	// the last line has no newline but still comes back
	line, err = s.Gets(64)
	if err != nil {
		t.Fatal(err)
	}
	if line != "beta" {
		t.Fatalf("second line = %q", line)
	}
	if _, err := s.Gets(64); err != io.EOF {
		t.Fatalf("gets at eof = %v", err)
	}
	if !s.EOF() {
		t.Fatal("eof bit not set")
	}
}

func TestGetsWidthLimit(t *testing.T) {
	e := bootEnv(t)
	if err := os.WriteFile(filepath.Join(e.root, "l"), []byte("abcdef\n"), 0644); err != nil {
		t.Fatal(err)
	}
	s := e.open(t, "/l", "r")
	defer s.Close()
	line, err := s.Gets(4)
	if err != nil {
		t.Fatal(err)
	}
	if line != "abc" {
		t.Fatalf("bounded gets = %q", line)
	}
	line, _ = s.Gets(64)
	if line != "def\n" {
		t.Fatalf("remainder = %q", line)
	}
}

func TestUngetc(t *testing.T) {
	e := bootEnv(t)
	if err := os.WriteFile(filepath.Join(e.root, "u"), []byte("xy"), 0644); err != nil {
		t.Fatal(err)
	}
	s := e.open(t, "/u", "r")
	defer s.Close()

	c, err := s.Getc()
	if err != nil || c != 'x' {
		t.Fatalf("Getc = %q, %v", c, err)
	}
	if err := s.Ungetc('z'); err != nil {
		t.Fatal(err)
	}
	// a second push before a read is refused
	if err := s.Ungetc('w'); err != abi.EINVAL {
		t.Fatalf("double ungetc = %v, want EINVAL", err)
	}
	c, _ = s.Getc()
	if c != 'z' {
		t.Fatalf("after ungetc Getc = %q", c)
	}
	c, _ = s.Getc()
	if c != 'y' {
		t.Fatalf("stream resumed at %q", c)
	}
}

func TestUnreadByte(t *testing.T) {
	e := bootEnv(t)
	if err := os.WriteFile(filepath.Join(e.root, "u"), []byte("ab"), 0644); err != nil {
		t.Fatal(err)
	}
	s := e.open(t, "/u", "r")
	defer s.Close()

	if err := s.UnreadByte(); err != abi.EINVAL {
		t.Fatalf("unread before read = %v, want EINVAL", err)
	}
	c, err := s.ReadByte()
	if err != nil || c != 'a' {
		t.Fatalf("ReadByte = %q, %v", c, err)
	}
	if err := s.UnreadByte(); err != nil {
		t.Fatal(err)
	}
	c, _ = s.ReadByte()
	if c != 'a' {
		t.Fatalf("reread = %q", c)
	}
}

func TestSeekTellRewind(t *testing.T) {
	e := bootEnv(t)
	if err := os.WriteFile(filepath.Join(e.root, "s"), []byte("0123456789"), 0644); err != nil {
		t.Fatal(err)
	}
	s := e.open(t, "/s", "r")
	defer s.Close()

	// Getc pulls the whole buffer in; Tell must still report 1
	if c, _ := s.Getc(); c != '0' {
		t.Fatal("first byte")
	}
	pos, err := s.Tell()
	if err != nil {
		t.Fatal(err)
	}
	if pos != 1 {
		t.Fatalf("tell after one byte = %d", pos)
	}

	got, err := s.Seek(5, int(abi.SeekSet))
	if err != nil || got != 5 {
		t.Fatalf("seek = %d, %v", got, err)
	}
	if c, _ := s.Getc(); c != '5' {
		t.Fatalf("byte after seek = %q", c)
	}

	// seek discards pushback
	s.Ungetc('!')
	if _, err := s.Seek(0, int(abi.SeekEnd)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Getc(); err != io.EOF {
		t.Fatalf("read at end = %v", err)
	}

	s.Rewind()
	if s.EOF() || s.Err() {
		t.Fatal("rewind left sticky bits")
	}
	if c, _ := s.Getc(); c != '0' {
		t.Fatal("rewind did not reach the start")
	}
}

func TestWriteTellAccountsBuffer(t *testing.T) {
	e := bootEnv(t)
	s := e.open(t, "/w", "w")
	defer s.Close()
	if _, err := s.WriteString("hello"); err != nil {
		t.Fatal(err)
	}
	pos, err := s.Tell()
	if err != nil {
		t.Fatal(err)
	}
	if pos != 5 {
		t.Fatalf("tell with buffered output = %d", pos)
	}
	// nothing reached the file yet
	fi, err := os.Stat(filepath.Join(e.root, "w"))
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != 0 {
		t.Fatalf("buffered bytes leaked to the file: %d", fi.Size())
	}
}

func TestReadWriteSwitch(t *testing.T) {
	e := bootEnv(t)
	s := e.open(t, "/rw", "w+")
	defer s.Close()
	if _, err := s.WriteString("data"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Seek(0, int(abi.SeekSet)); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 4)
	if n, err := s.Read(buf); err != nil || n != 4 {
		t.Fatalf("read back = %d, %v", n, err)
	}
	if string(buf) != "data" {
		t.Fatalf("read back %q", buf)
	}
}

func TestLineBufferedSplit(t *testing.T) {
	e := bootEnv(t)
	s := e.open(t, "/lb", "w")
	defer s.Close()
	s.SetBuffering(LineBuffered)

	if _, err := s.WriteString("hello\nworld"); err != nil {
		t.Fatal(err)
	}
	// only the bytes through the newline reach the descriptor
	data, err := os.ReadFile(filepath.Join(e.root, "lb"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello\n" {
		t.Fatalf("before flush descriptor holds %q, want %q", data, "hello\n")
	}
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(filepath.Join(e.root, "lb"))
	if string(data) != "hello\nworld" {
		t.Fatalf("after flush descriptor holds %q", data)
	}
}

func TestLineBufferedDrainsThroughLastNewline(t *testing.T) {
	e := bootEnv(t)
	s := e.open(t, "/lb2", "w")
	defer s.Close()
	s.SetBuffering(LineBuffered)

	if _, err := s.WriteString("a\nb\nc"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(e.root, "lb2"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a\nb\n" {
		t.Fatalf("descriptor holds %q, want %q", data, "a\nb\n")
	}
	if _, err := s.WriteString("d\n"); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(filepath.Join(e.root, "lb2"))
	if string(data) != "a\nb\ncd\n" {
		t.Fatalf("carried bytes mangled: %q", data)
	}
}

func TestGetcOnWriteStream(t *testing.T) {
	e := bootEnv(t)
	s := e.open(t, "/wo", "w")
	defer s.Close()
	if err := s.Ungetc('x'); err != nil {
		t.Fatal(err)
	}
	// the pushed byte must not leak around the mode check
	if _, err := s.Getc(); err != abi.EBADF {
		t.Fatalf("Getc on write-only stream = %v, want EBADF", err)
	}
}

func TestUnbufferedWrites(t *testing.T) {
	e := bootEnv(t)
	s := e.open(t, "/u", "w")
	defer s.Close()
	s.SetBuffering(Unbuffered)
	if _, err := s.WriteString("now"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(e.root, "u"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "now" {
		t.Fatalf("unbuffered write left %q", data)
	}
}

func TestCloseTwice(t *testing.T) {
	e := bootEnv(t)
	s := e.open(t, "/c", "w")
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close = %v", err)
	}
}
