// Package common holds the syscall dispatch plumbing shared by kernel
// personalities: a reflection-built table mapping snake_case syscall names
// to exported kernel methods, plus the argument codecs that turn raw trap
// words into typed values (buffers, descriptors, strings read out of the
// process image).
package common

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lunixbochs/argjoy"

	"github.com/brianmayclone/anyos-userland/mem"
)

type KernelBase struct {
	Syscalls map[string]Syscall
	Mem      *mem.Image
	Argjoy   argjoy.Argjoy
}

func (k *KernelBase) Base() *KernelBase {
	return k
}

type Kernel interface {
	Base() *KernelBase
}

func camelToSnakeCase(name string) string {
	var words []string
	last := 0
	for i, c := range name {
		if unicode.IsUpper(c) {
			if i > 0 {
				words = append(words, name[last:i])
			}
			last = i
		}
	}
	words = append(words, name[last:])
	return strings.ToLower(strings.Join(words, "_"))
}

// Init builds the syscall table from kf's exported methods and binds the
// process image. A method named TryWaitpid serves the syscall
// "try_waitpid"; the Literal prefix is stripped for names that would
// otherwise collide with Go conventions.
func Init(kf Kernel, img *mem.Image) {
	k := kf.Base()
	k.Mem = img
	k.Syscalls = make(map[string]Syscall)
	instance := reflect.ValueOf(kf)
	typ := instance.Type()
	for i := 0; i < typ.NumMethod(); i++ {
		method := typ.Method(i)
		name := method.Name
		if strings.HasPrefix(name, "Literal") {
			name = strings.Replace(name, "Literal", "", 1)
		} else if r, size := utf8.DecodeRuneInString(name); size <= 0 || !unicode.IsUpper(r) {
			continue
		}
		name = camelToSnakeCase(name)
		in := make([]reflect.Type, method.Type.NumIn()-1)
		for j := 1; j < method.Type.NumIn(); j++ {
			in[j-1] = method.Type.In(j)
		}
		uintArr := false
		if len(in) > 0 && in[0] == reflect.SliceOf(reflect.TypeOf(uint64(0))) {
			uintArr = true
			in = in[1:]
		}
		k.Syscalls[name] = Syscall{
			Name:     name,
			Kernel:   k,
			Instance: instance,
			Method:   method,
			In:       in,
			UintArr:  uintArr,
		}
	}
	k.Argjoy.Register(k.commonArgCodec)
	k.Argjoy.Register(argjoy.IntToInt)
}

// Lookup finds a syscall by kernel name, initializing the table on first
// use.
func Lookup(kf Kernel, img *mem.Image, name string) *Syscall {
	k := kf.Base()
	if k.Syscalls == nil {
		Init(kf, img)
	}
	if sys, ok := k.Syscalls[name]; ok {
		return &sys
	}
	return nil
}
