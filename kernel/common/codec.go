package common

import (
	"github.com/lunixbochs/argjoy"
)

// commonArgCodec converts one raw trap word into the typed argument the
// handler method declares. A zero address decodes to an empty string so
// optional path/name arguments stay usable.
func (k *KernelBase) commonArgCodec(arg interface{}, vals []interface{}) error {
	if reg, ok := vals[0].(uint64); ok {
		switch v := arg.(type) {
		case *Buf:
			*v = NewBuf(k, reg)
		case *Obuf:
			*v = Obuf{NewBuf(k, reg)}
		case *Len:
			*v = Len(reg)
		case *Off:
			*v = Off(reg)
		case *Fd:
			*v = Fd(reg)
		case *Ptr:
			*v = Ptr(reg)
		case *string:
			if reg == 0 {
				*v = ""
				return nil
			}
			s, err := k.Mem.ReadStrAt(reg)
			if err != nil {
				return err
			}
			*v = s
		default:
			return argjoy.NoMatch
		}
		return nil
	}
	return argjoy.NoMatch
}
