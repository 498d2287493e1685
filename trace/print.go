package trace

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mgutz/ansi"
)

var (
	colName = ansi.ColorCode("green")
	colErr  = ansi.ColorCode("red+b")
	colRet  = ansi.ColorCode("default")
)

// Printer renders ops strace-style to a terminal, with color escapes
// routed through go-colorable so Windows consoles render them too.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter writes colored output to stderr.
func NewPrinter() *Printer {
	return &Printer{w: colorable.NewColorableStderr(), color: true}
}

// NewPlainPrinter writes uncolored output to w, for logs and tests.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) paint(s, color string) string {
	if !p.color {
		return s
	}
	return color + s + ansi.Reset
}

// Print renders one op as name(args...) = ret [err] (elapsed).
func (p *Printer) Print(op *OpSyscall) {
	args := make([]string, 0, len(op.Args))
	for _, a := range op.Args {
		args = append(args, fmt.Sprintf("0x%x", a))
	}
	// trailing zero args are almost always unused slots
	for len(args) > 1 && args[len(args)-1] == "0x0" {
		args = args[:len(args)-1]
	}
	ret := int64(op.Ret)
	retStr := p.paint(fmt.Sprintf("%d", ret), colRet)
	if ret < 0 {
		retStr = p.paint(fmt.Sprintf("%d", ret), colErr)
	}
	fmt.Fprintf(p.w, "%s(%s) = %s (%dus)\n",
		p.paint(Name(op.Num), colName),
		strings.Join(args, ", "),
		retStr, op.ElapsedUs)
}
