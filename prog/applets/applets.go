// Package applets ships the small userland programs the shell spawns.
// Each is written against the library surface, not the host: output goes
// through the buffered streams and the filesystem through the posix
// wrappers, so running one exercises the whole stack down to the trap.
package applets

import (
	"strings"

	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/clock"
	"github.com/brianmayclone/anyos-userland/posix"
	"github.com/brianmayclone/anyos-userland/prog"
	"github.com/brianmayclone/anyos-userland/rt"
	"github.com/brianmayclone/anyos-userland/stdio"
)

// RegisterAll installs every applet in the program table.
func RegisterAll() {
	prog.Register("echo", echoMain)
	prog.Register("cat", catMain)
	prog.Register("ls", lsMain)
	prog.Register("uname", unameMain)
	prog.Register("true", func(*rt.Process, []string) int { return 0 })
	prog.Register("false", func(*rt.Process, []string) int { return 1 })
}

func pctx(p *rt.Process) *posix.Ctx {
	return &posix.Ctx{G: p.Sys, Heap: p.Heap, Img: p.Mem}
}

func echoMain(p *rt.Process, args []string) int {
	p.Stdout.Puts(strings.Join(args[1:], " "))
	p.Stdout.Flush()
	return 0
}

func catMain(p *rt.Process, args []string) int {
	if len(args) < 2 {
		// no operands: copy stdin through
		buf := make([]byte, 512)
		for {
			n, err := p.Stdin.Read(buf)
			if n > 0 {
				p.Stdout.Write(buf[:n])
			}
			if err != nil || n == 0 {
				break
			}
		}
		p.Stdout.Flush()
		return 0
	}
	status := 0
	for _, name := range args[1:] {
		f, err := stdio.Open(p.Sys, p.Heap, p.Mem, name, "r")
		if err != nil {
			stdio.Fprintf(p.Stderr, "cat: %s: %s\n", name, err.Error())
			status = 1
			continue
		}
		buf := make([]byte, 512)
		for {
			n, rerr := f.Read(buf)
			if n > 0 {
				p.Stdout.Write(buf[:n])
			}
			if rerr != nil || n == 0 {
				break
			}
		}
		f.Close()
	}
	p.Stdout.Flush()
	return status
}

func lsMain(p *rt.Process, args []string) int {
	c := pctx(p)
	dir := "."
	if len(args) > 1 {
		dir = args[1]
	}
	if dir == "." {
		cwd, err := c.Getcwd()
		if err == nil {
			dir = cwd
		}
	}
	ents, err := c.Readdir(dir)
	if err != nil {
		stdio.Fprintf(p.Stderr, "ls: %s: %s\n", dir, err.Error())
		return 1
	}
	for _, e := range ents {
		if e.Type == abi.FileTypeDir {
			stdio.Fprintf(p.Stdout, "%-24s <dir>\n", e.Name)
		} else {
			stdio.Fprintf(p.Stdout, "%-24s %u\n", e.Name, e.Size)
		}
	}
	p.Stdout.Flush()
	return 0
}

func unameMain(p *rt.Process, args []string) int {
	hn, err := p.Hostname()
	if err != nil {
		hn = "anyos"
	}
	up := clock.Uptime(p.Sys)
	stdio.Fprintf(p.Stdout, "anyOS %s up %ds\n", hn, up)
	p.Stdout.Flush()
	return 0
}
