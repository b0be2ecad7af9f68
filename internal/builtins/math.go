package builtins

import (
	"math"
	"math/rand"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// RegisterMath wires the `Math` namespace. Grounded on the teacher's
// RegisterMathFunctions, which wraps this exact set of Go math package
// functions one-for-one (Abs, Sqrt, Pow/Power, trig, hyperbolic,
// exponential/logarithmic, special-value predicates) behind DWScript
// global names; this registry keeps the same Go stdlib delegation but
// exposes them as `Math.*` methods and constants instead of bare globals.
func RegisterMath(r *Registry) {
	unary := func(f func(float64) float64) runtime.NativeFn {
		return func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return runtime.Number(f(arg0(args))), nil
		}
	}
	binary := func(f func(float64, float64) float64) runtime.NativeFn {
		return func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return runtime.Number(f(argN(args, 0), argN(args, 1))), nil
		}
	}

	r.Register("Math", "abs", unary(math.Abs), "Absolute value")
	r.Register("Math", "sqrt", unary(math.Sqrt), "Square root")
	r.Register("Math", "cbrt", unary(math.Cbrt), "Cube root")
	r.Register("Math", "pow", binary(math.Pow), "Base raised to exponent")
	r.Register("Math", "sign", unary(func(x float64) float64 { return float64(sign(x)) }), "Sign of x (-1, 0, 1)")
	r.Register("Math", "trunc", unary(math.Trunc), "Integer part of x")
	r.Register("Math", "floor", unary(math.Floor), "Largest integer <= x")
	r.Register("Math", "ceil", unary(math.Ceil), "Smallest integer >= x")
	r.Register("Math", "round", unary(math.Round), "x rounded to nearest integer")
	r.Register("Math", "exp", unary(math.Exp), "e raised to the power of x")
	r.Register("Math", "log", unary(math.Log), "Natural logarithm")
	r.Register("Math", "log2", unary(math.Log2), "Base-2 logarithm")
	r.Register("Math", "log10", unary(math.Log10), "Base-10 logarithm")
	r.Register("Math", "sin", unary(math.Sin), "Sine (radians)")
	r.Register("Math", "cos", unary(math.Cos), "Cosine (radians)")
	r.Register("Math", "tan", unary(math.Tan), "Tangent (radians)")
	r.Register("Math", "asin", unary(math.Asin), "Arcsine")
	r.Register("Math", "acos", unary(math.Acos), "Arccosine")
	r.Register("Math", "atan", unary(math.Atan), "Arctangent")
	r.Register("Math", "atan2", binary(math.Atan2), "Arctangent of y/x")
	r.Register("Math", "sinh", unary(math.Sinh), "Hyperbolic sine")
	r.Register("Math", "cosh", unary(math.Cosh), "Hyperbolic cosine")
	r.Register("Math", "tanh", unary(math.Tanh), "Hyperbolic tangent")
	r.Register("Math", "hypot", binary(math.Hypot), "sqrt(x^2+y^2)")

	r.Register("Math", "min", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.Number(math.Inf(1)), nil
		}
		m := argN(args, 0)
		for i := 1; i < len(args); i++ {
			m = math.Min(m, argN(args, i))
		}
		return runtime.Number(m), nil
	}, "Minimum of arguments")

	r.Register("Math", "max", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.Number(math.Inf(-1)), nil
		}
		m := argN(args, 0)
		for i := 1; i < len(args); i++ {
			m = math.Max(m, argN(args, i))
		}
		return runtime.Number(m), nil
	}, "Maximum of arguments")

	r.Register("Math", "random", func(_ any, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return runtime.Number(rand.Float64()), nil
	}, "Pseudo-random float in [0,1)")

	r.RegisterConstant("Math", "PI", runtime.Number(math.Pi))
	r.RegisterConstant("Math", "E", runtime.Number(math.E))
	r.RegisterConstant("Math", "LN2", runtime.Number(math.Ln2))
	r.RegisterConstant("Math", "LN10", runtime.Number(math.Log(10)))
	r.RegisterConstant("Math", "SQRT2", runtime.Number(math.Sqrt2))
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func arg0(args []runtime.Value) float64 { return argN(args, 0) }

func argN(args []runtime.Value, i int) float64 {
	if i >= len(args) {
		return math.NaN()
	}
	return runtime.ToNumber(args[i])
}
