package trace

import (
	"io"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

var TRACE_MAGIC = "AYTR"

// Header leads the trace file, uncompressed; everything after it is one
// snappy stream of packed ops.
type Header struct {
	Magic   string `struc:"[4]byte"`
	Version uint32
	// OS personality that produced the trace. Right-null-padded.
	OS string `struc:"[32]byte"`
}

// OpSyscall is one recorded syscall.
type OpSyscall struct {
	Num       uint32
	Args      [5]uint64
	Ret       uint64
	ElapsedUs uint64
}

type Writer struct {
	w, zw io.WriteCloser
}

func NewWriter(w io.WriteCloser) (*Writer, error) {
	header := &Header{
		Magic:   TRACE_MAGIC,
		Version: 1,
		OS:      "anyos",
	}
	if err := struc.Pack(w, header); err != nil {
		return nil, errors.Wrap(err, "failed to pack header")
	}
	zw := snappy.NewBufferedWriter(w)
	return &Writer{w: w, zw: zw}, nil
}

// write an op at a time
func (t *Writer) Pack(op *OpSyscall) error {
	return struc.Pack(t.zw, op)
}

func (t *Writer) Close() {
	t.zw.Close()
	t.w.Close()
}

type Reader struct {
	r      io.ReadCloser
	zr     *snappy.Reader
	Header Header
}

func NewReader(r io.ReadCloser) (*Reader, error) {
	t := &Reader{r: r}
	if err := struc.Unpack(r, &t.Header); err != nil {
		return nil, errors.Wrap(err, "failed to unpack header")
	}
	if t.Header.Magic != TRACE_MAGIC {
		return nil, errors.Errorf("bad trace magic %q", t.Header.Magic)
	}
	t.zr = snappy.NewReader(r)
	return t, nil
}

func (t *Reader) Next() (*OpSyscall, error) {
	op := &OpSyscall{}
	if err := struc.Unpack(t.zr, op); err != nil {
		return nil, err
	}
	return op, nil
}

func (t *Reader) Close() {
	t.r.Close()
}
