package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brianmayclone/anyos-userland/kernel/anyos"
	"github.com/brianmayclone/anyos-userland/prog"
	"github.com/brianmayclone/anyos-userland/prog/applets"
	"github.com/brianmayclone/anyos-userland/trace"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] <program> [args...]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s -replay <file.strace>\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	outfile := flag.String("o", "", "write the trace to this file")
	replay := flag.String("replay", "", "print a recorded trace instead of running")
	root := flag.String("root", "/", "host directory mounted as the filesystem root")
	quiet := flag.Bool("q", false, "suppress the live trace")
	flag.Usage = usage
	flag.Parse()

	if *replay != "" {
		f, err := os.Open(*replay)
		if err != nil {
			fmt.Fprintf(os.Stderr, "anytrace: %s\n", err)
			os.Exit(1)
		}
		printer := trace.NewPlainPrinter(os.Stdout)
		if err := trace.Replay(f, printer.Print); err != nil {
			fmt.Fprintf(os.Stderr, "anytrace: replay: %s\n", err)
			os.Exit(1)
		}
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	var w io.WriteCloser
	if *outfile != "" {
		f, err := os.Create(*outfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "anytrace: %s\n", err)
			os.Exit(1)
		}
		w = f
	}
	rec, err := trace.NewRecorder(w)
	if err != nil {
		fmt.Fprintf(os.Stderr, "anytrace: %s\n", err)
		os.Exit(1)
	}
	if !*quiet {
		rec.SetPrinter(trace.NewPrinter())
	}

	m := anyos.NewMachine()
	applets.RegisterAll()
	launcher := &prog.Launcher{
		M:      m,
		Root:   *root,
		Env:    []string{"PATH=/bin"},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Tracer: rec,
	}
	launcher.Install()

	status, err := launcher.Run(args[0], strings.Join(args[1:], " "))
	rec.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "anytrace: %s\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "+++ exited with %d (%d syscalls) +++\n", status, rec.Count())
	os.Exit(status)
}
