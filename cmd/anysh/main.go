package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/shibukawa/configdir"

	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/kernel/anyos"
	"github.com/brianmayclone/anyos-userland/mem"
	"github.com/brianmayclone/anyos-userland/posix"
	"github.com/brianmayclone/anyos-userland/prog"
	"github.com/brianmayclone/anyos-userland/prog/applets"
	"github.com/brianmayclone/anyos-userland/rt"
)

func historyFile() string {
	configDirs := configdir.New("anyos", "anysh")
	folders := configDirs.QueryFolders(configdir.Global)
	if len(folders) == 0 {
		return ""
	}
	folders[0].MkdirAll()
	return filepath.Join(folders[0].Path, "history")
}

type shell struct {
	p    *rt.Process
	ctx  *posix.Ctx
	pipe int32 // scratch counter for pipe names
}

func (sh *shell) builtin(argv []string) (handled bool, quit bool) {
	switch argv[0] {
	case "exit":
		return true, true
	case "cd":
		dir := "/"
		if len(argv) > 1 {
			dir = argv[1]
		}
		if err := sh.ctx.Chdir(dir); err != nil {
			fmt.Fprintf(os.Stderr, "cd: %s: %s\n", dir, err)
		}
		return true, false
	case "pwd":
		cwd, err := sh.ctx.Getcwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "pwd: %s\n", err)
		} else {
			fmt.Println(cwd)
		}
		return true, false
	case "export":
		for _, kv := range argv[1:] {
			if i := strings.IndexByte(kv, '='); i > 0 {
				sh.p.Env().Setenv(kv[:i], kv[i+1:])
			}
		}
		return true, false
	case "help":
		fmt.Println("builtins: cd pwd export exit help")
		fmt.Println("programs:", strings.Join(prog.Names(), " "))
		return true, false
	}
	return false, false
}

// runPipeline executes "a | b | c" by chaining kernel pipes between the
// spawned stages.
func (sh *shell) runPipeline(stages [][]string) {
	var stdinPipe int32 = -1
	pids := make([]int, 0, len(stages))
	var pipes []int32

	for i, argv := range stages {
		var stdoutPipe int32 = -1
		if i < len(stages)-1 {
			sh.pipe++
			name := fmt.Sprintf(".anysh.pipe.%d", sh.pipe)
			id, err := sh.pipeCreate(name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "anysh: pipe: %s\n", err)
				return
			}
			stdoutPipe = id
			pipes = append(pipes, id)
		}
		pid, err := sh.ctx.Spawn(argv[0], strings.Join(argv[1:], " "), stdinPipe, stdoutPipe)
		if err != nil {
			fmt.Fprintf(os.Stderr, "anysh: %s: %s\n", argv[0], err)
			break
		}
		pids = append(pids, pid)
		stdinPipe = stdoutPipe
	}

	for i, pid := range pids {
		sh.ctx.Waitpid(pid)
		// a finished stage will write no more; closing lets the next
		// stage see end of input
		if i < len(pipes) {
			sh.pipeClose(pipes[i])
		}
	}
}

func (sh *shell) pipeCreate(name string) (int32, error) {
	nb, err := sh.p.Heap.CString(name)
	if err != nil {
		return -1, err
	}
	defer nb.Free()
	ret := sh.p.Sys.Call(abi.SysPipeCreate, nb.Addr)
	if ret < 0 {
		return -1, sh.p.Sys.Errno()
	}
	return int32(ret), nil
}

func (sh *shell) pipeClose(id int32) {
	sh.p.Sys.Trap(abi.SysPipeClose, uint64(uint32(id)))
}

func tokenize(line string) []string {
	return strings.Fields(line)
}

func (sh *shell) eval(line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	var stages [][]string
	for _, part := range strings.Split(line, "|") {
		argv := tokenize(part)
		if len(argv) == 0 {
			fmt.Fprintln(os.Stderr, "anysh: empty pipeline stage")
			return false
		}
		stages = append(stages, argv)
	}
	if len(stages) == 1 {
		if handled, quit := sh.builtin(stages[0]); handled {
			return quit
		}
	}
	sh.runPipeline(stages)
	return false
}

func main() {
	root := flag.String("root", "/", "host directory mounted as the filesystem root")
	flag.Parse()

	m := anyos.NewMachine()
	applets.RegisterAll()
	launcher := &prog.Launcher{
		M:      m,
		Root:   *root,
		Env:    []string{"PATH=/bin", "HOME=/"},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	launcher.Install()

	// the shell is itself a process on the machine
	img := mem.NewImage(0, 0)
	k := anyos.NewKernel(m, img, anyos.Config{
		Root:   *root,
		Args:   "anysh",
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Env:    launcher.Env,
	})
	p := rt.Boot(k, img)
	sh := &shell{
		p:   p,
		ctx: &posix.Ctx{G: p.Sys, Heap: p.Heap, Img: p.Mem},
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "anysh$ ",
		HistoryFile: historyFile(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "anysh: %s\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			break
		}
		if sh.eval(line) {
			break
		}
	}
}
