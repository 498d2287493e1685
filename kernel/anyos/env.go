package anyos

import (
	"strings"

	"github.com/brianmayclone/anyos-userland/abi"
	co "github.com/brianmayclone/anyos-userland/kernel/common"
)

// The kernel env store keeps "KEY=VALUE" entries in insertion order so
// listenv enumeration is stable.

func (k *Kernel) Setenv(name, value string) int64 {
	if name == "" || strings.ContainsRune(name, '=') {
		return abi.Fail(abi.EINVAL)
	}
	k.envMu.Lock()
	defer k.envMu.Unlock()
	entry := name + "=" + value
	for i, e := range k.env {
		if strings.HasPrefix(e, name+"=") {
			k.env[i] = entry
			return 0
		}
	}
	k.env = append(k.env, entry)
	return 0
}

func (k *Kernel) Getenv(name string, out co.Obuf, size co.Len) int64 {
	k.envMu.Lock()
	defer k.envMu.Unlock()
	for _, e := range k.env {
		if strings.HasPrefix(e, name+"=") {
			val := e[len(name)+1:]
			if uint64(len(val)) > uint64(size) {
				return abi.Fail(abi.ERANGE)
			}
			if len(val) > 0 {
				if err := out.PutBytes([]byte(val)); err != nil {
					return abi.Fail(abi.EINVAL)
				}
			}
			return int64(len(val))
		}
	}
	return abi.Fail(abi.ENOENT)
}

// Listenv writes the idx'th "KEY=VALUE" entry and returns its length, or
// -ENOENT once idx runs off the end.
func (k *Kernel) Listenv(idx int, out co.Obuf, size co.Len) int64 {
	k.envMu.Lock()
	defer k.envMu.Unlock()
	if idx < 0 || idx >= len(k.env) {
		return abi.Fail(abi.ENOENT)
	}
	e := k.env[idx]
	if uint64(len(e)) > uint64(size) {
		return abi.Fail(abi.ERANGE)
	}
	if err := out.PutBytes([]byte(e)); err != nil {
		return abi.Fail(abi.EINVAL)
	}
	return int64(len(e))
}

func (k *Kernel) Unsetenv(name string) int64 {
	k.envMu.Lock()
	defer k.envMu.Unlock()
	for i, e := range k.env {
		if strings.HasPrefix(e, name+"=") {
			k.env = append(k.env[:i], k.env[i+1:]...)
			return 0
		}
	}
	return 0
}
