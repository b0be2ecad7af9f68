package builtins

import (
	"fmt"
	"math/big"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// RegisterBigInt wires `BigInt(...)` as a callable namespace entry,
// converting a Number or numeric String into an arbitrary-precision
// runtime.BigInt backed by math/big — the same package the teacher uses
// nowhere (DWScript has no bigint type), so this is new surface grounded
// directly on runtime.BigInt's math/big.Int wrapper rather than adapted
// from any teacher function.
func RegisterBigInt(r *Registry) {
	r.Register("BigInt", "__call__", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("TypeError: Cannot convert undefined to a BigInt")
		}
		switch v := args[0].(type) {
		case runtime.BigInt:
			return v, nil
		case runtime.Number:
			f := float64(v)
			if f != float64(int64(f)) {
				return nil, fmt.Errorf("RangeError: The number %v cannot be converted to a BigInt because it is not an integer", f)
			}
			return runtime.BigInt{Int: big.NewInt(int64(f))}, nil
		case runtime.String:
			n, ok := new(big.Int).SetString(string(v), 10)
			if !ok {
				return nil, fmt.Errorf("SyntaxError: Cannot convert %s to a BigInt", string(v))
			}
			return runtime.BigInt{Int: n}, nil
		case runtime.Boolean:
			if v {
				return runtime.BigInt{Int: big.NewInt(1)}, nil
			}
			return runtime.BigInt{Int: big.NewInt(0)}, nil
		default:
			return nil, fmt.Errorf("TypeError: Cannot convert value to a BigInt")
		}
	}, "Converts a value to a BigInt")

	r.Register("BigInt", "asIntN", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("TypeError: BigInt.asIntN expects 2 arguments")
		}
		bits := uint(runtime.ToNumber(args[0]))
		bi, ok := args[1].(runtime.BigInt)
		if !ok {
			return nil, fmt.Errorf("TypeError: BigInt.asIntN expects a BigInt argument")
		}
		mod := new(big.Int).Lsh(big.NewInt(1), bits)
		wrapped := new(big.Int).Mod(bi.Int, mod)
		half := new(big.Int).Rsh(mod, 1)
		if wrapped.Cmp(half) >= 0 {
			wrapped.Sub(wrapped, mod)
		}
		return runtime.BigInt{Int: wrapped}, nil
	}, "Wraps a BigInt to a signed integer of the given bit width")
}
