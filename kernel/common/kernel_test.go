package common

import (
	"testing"

	"github.com/brianmayclone/anyos-userland/mem"
)

type testKernel struct {
	KernelBase
	exitCode int
	path     string
}

func (k *testKernel) Exit(code int) int64 {
	k.exitCode = code
	return 44
}

func (k *testKernel) Chdir(path string) int64 {
	k.path = path
	return 0
}

func newTestKernel(img *mem.Image) *testKernel {
	kernel := &testKernel{}
	Init(kernel, img)
	return kernel
}

func TestKernel(t *testing.T) {
	img := mem.NewImage(0, 0)
	kernel := newTestKernel(img)
	ret := Lookup(kernel, img, "exit").Call([]uint64{43})
	if kernel.exitCode != 43 {
		t.Fatal("Syscall failed.")
	}
	if ret != 44 {
		t.Fatal("Syscall return failed.")
	}
}

func TestStringArg(t *testing.T) {
	img := mem.NewImage(0, 0)
	kernel := newTestKernel(img)
	addr, err := img.Sbrk(4096)
	if err != nil {
		t.Fatal(err)
	}
	if err := img.WriteAt(addr, append([]byte("/tmp/dir"), 0)); err != nil {
		t.Fatal(err)
	}
	if ret := Lookup(kernel, img, "chdir").Call([]uint64{addr}); ret != 0 {
		t.Fatalf("chdir returned %d", ret)
	}
	if kernel.path != "/tmp/dir" {
		t.Fatalf("string arg decoded as %q", kernel.path)
	}
}

func TestUnknownSyscall(t *testing.T) {
	img := mem.NewImage(0, 0)
	kernel := newTestKernel(img)
	if sys := Lookup(kernel, img, "no_such_call"); sys != nil {
		t.Fatal("lookup of unknown syscall should fail")
	}
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Exit":               "exit",
		"TryWaitpid":         "try_waitpid",
		"ThreadCreate":       "thread_create",
		"HostnameGet":        "hostname_get",
		"TcpConnect":         "tcp_connect",
		"PipeBytesAvailable": "pipe_bytes_available",
	}
	for in, want := range cases {
		if got := camelToSnakeCase(in); got != want {
			t.Errorf("camelToSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
