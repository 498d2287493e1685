// Package trace records syscall activity through the gateway's tracer
// hook. Traces stream to a snappy-compressed op file for later replay and
// optionally to a colored live printer.
package trace

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/brianmayclone/anyos-userland/abi"
)

// Recorder implements the gateway Tracer. It is safe for use from the
// goroutines a threaded process runs on.
type Recorder struct {
	mu      sync.Mutex
	tf      *Writer
	printer *Printer
	count   uint64
}

// NewRecorder writes ops to w; pass nil to trace print-only.
func NewRecorder(w io.WriteCloser) (*Recorder, error) {
	r := &Recorder{}
	if w != nil {
		tf, err := NewWriter(w)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create trace writer")
		}
		r.tf = tf
	}
	return r, nil
}

// SetPrinter attaches a live printer.
func (r *Recorder) SetPrinter(p *Printer) {
	r.mu.Lock()
	r.printer = p
	r.mu.Unlock()
}

// Syscall records one completed syscall.
func (r *Recorder) Syscall(num uint32, args [5]uint64, ret int64, elapsed time.Duration) {
	op := &OpSyscall{
		Num:       num,
		Ret:       uint64(ret),
		ElapsedUs: uint64(elapsed / time.Microsecond),
	}
	copy(op.Args[:], args[:])

	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	if r.tf != nil {
		r.tf.Pack(op)
	}
	if r.printer != nil {
		r.printer.Print(op)
	}
}

// Count reports the number of ops recorded so far.
func (r *Recorder) Count() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Close flushes and closes the trace file.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tf != nil {
		r.tf.Close()
		r.tf = nil
	}
}

// Replay walks a trace file and hands each op to fn in file order.
func Replay(r io.ReadCloser, fn func(*OpSyscall)) error {
	tr, err := NewReader(r)
	if err != nil {
		return err
	}
	defer tr.Close()
	for {
		op, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fn(op)
	}
}

// Name resolves a syscall number for display.
func Name(num uint32) string {
	if n := abi.Name(num); n != "" {
		return n
	}
	return "unknown"
}
