package rt

import "github.com/brianmayclone/anyos-userland/abi"

const (
	// argBufSize matches the scratch buffer the C runtime hands the
	// kernel for get-args.
	argBufSize = 256
	// maxArgs caps the argv array; extra tokens are silently dropped.
	maxArgs = 64
)

// parseArgs fetches the raw argument blob and tokenizes it at ASCII space
// boundaries. The first token is the program path. A failing get-args
// produces an empty argv. The tokens are owned copies; the scratch blob
// itself is not retained beyond this call.
func parseArgs(p *Process) []string {
	scratch, err := p.Heap.Sbuf(argBufSize)
	if err != nil {
		return nil
	}
	defer scratch.Free()
	n := p.Sys.Trap(abi.SysGetargs, scratch.Addr, argBufSize)
	if n <= 0 {
		return nil
	}
	blob, rerr := scratch.Bytes(uint64(n))
	if rerr != nil {
		return nil
	}
	return tokenize(blob)
}

func tokenize(blob []byte) []string {
	var args []string
	start := -1
	for i := 0; i <= len(blob); i++ {
		boundary := i == len(blob) || blob[i] == ' '
		if boundary {
			if start >= 0 {
				if len(args) < maxArgs {
					args = append(args, string(blob[start:i]))
				}
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	return args
}
