package common

import (
	"fmt"
	"reflect"
)

type Syscall struct {
	Name     string
	Kernel   *KernelBase
	Instance reflect.Value
	Method   reflect.Method
	In       []reflect.Type
	UintArr  bool
}

var int64Type = reflect.TypeOf(int64(0))

// Call invokes a syscall from the dispatch table. Will panic() if anything
// goes terribly wrong; a panicking kernel method is a kernel bug, not a
// user error.
func (sys Syscall) Call(args []uint64) int64 {
	extraArgs := 1
	if sys.UintArr {
		extraArgs++
	}
	in := make([]reflect.Value, len(sys.In)+extraArgs)
	in[0] = sys.Instance
	// special case: handler wants the raw register block
	if sys.UintArr {
		in[1] = reflect.ValueOf(args)
	}
	converted, err := sys.Kernel.Argjoy.Convert(sys.In, false, args)
	if err != nil {
		msg := fmt.Sprintf("calling %T.%s(): %s", sys.Instance.Interface(), sys.Method.Name, err)
		panic(msg)
	}
	copy(in[extraArgs:], converted)
	out := sys.Method.Func.Call(in)
	// the first integer-convertible return is the trap result
	if len(out) > 0 && out[0].Type().ConvertibleTo(int64Type) {
		return out[0].Convert(int64Type).Int()
	}
	return 0
}
