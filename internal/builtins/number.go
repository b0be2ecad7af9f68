package builtins

import (
	"math"
	"strconv"
	"strings"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// RegisterNumber wires the `Number` namespace, the numeric-conversion
// counterpart to the teacher's RegisterConversionFunctions
// (StrToFloat/FloatToStr/StrToFloatDef) — same parse/format duty, but
// exposed as static methods plus the IEEE-754 boundary constants DWScript
// has no equivalent of (its Float is always a 64-bit double already,
// with no distinct "safe integer" notion).
func RegisterNumber(r *Registry) {
	r.Register("Number", "isInteger", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n, ok := numArg(args)
		if !ok {
			return runtime.False, nil
		}
		return runtime.BoolValue(n == math.Trunc(n) && !math.IsInf(n, 0)), nil
	}, "Reports whether the value is an integer")

	r.Register("Number", "isFinite", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n, ok := numArg(args)
		if !ok {
			return runtime.False, nil
		}
		return runtime.BoolValue(!math.IsInf(n, 0) && !math.IsNaN(n)), nil
	}, "Reports whether the value is a finite number")

	r.Register("Number", "isNaN", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n, ok := numArg(args)
		if !ok {
			return runtime.False, nil
		}
		return runtime.BoolValue(math.IsNaN(n)), nil
	}, "Reports whether the value is NaN")

	r.Register("Number", "parseFloat", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.Number(parseLeadingFloat(stringArg(args))), nil
	}, "Parses a leading floating-point number from a string")

	r.Register("Number", "parseInt", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		radix := 10
		if len(args) > 1 {
			radix = int(runtime.ToNumber(args[1]))
			if radix == 0 {
				radix = 10
			}
		}
		return runtime.Number(parseLeadingInt(stringArg(args), radix)), nil
	}, "Parses a leading integer from a string in the given radix")

	r.RegisterConstant("Number", "MAX_SAFE_INTEGER", runtime.Number(9007199254740991))
	r.RegisterConstant("Number", "MIN_SAFE_INTEGER", runtime.Number(-9007199254740991))
	r.RegisterConstant("Number", "MAX_VALUE", runtime.Number(math.MaxFloat64))
	r.RegisterConstant("Number", "MIN_VALUE", runtime.Number(math.SmallestNonzeroFloat64))
	r.RegisterConstant("Number", "EPSILON", runtime.Number(2.220446049250313e-16))
	r.RegisterConstant("Number", "POSITIVE_INFINITY", runtime.Number(math.Inf(1)))
	r.RegisterConstant("Number", "NEGATIVE_INFINITY", runtime.Number(math.Inf(-1)))
	r.RegisterConstant("Number", "NaN", runtime.Number(math.NaN()))
}

func numArg(args []runtime.Value) (float64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, ok := args[0].(runtime.Number)
	if !ok {
		return 0, false
	}
	return float64(n), true
}

func stringArg(args []runtime.Value) string {
	if len(args) == 0 {
		return ""
	}
	return runtime.ToStringValue(args[0])
}

// parseLeadingFloat mirrors JS's parseFloat: consume the longest valid
// float prefix and ignore trailing garbage, returning NaN if nothing
// valid was found.
func parseLeadingFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == '+' || c == '-') && (end == 0 || s[end-1] == 'e' || s[end-1] == 'E'):
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			goto done
		}
		end++
	}
done:
	if !seenDigit {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseLeadingInt(s string, radix int) float64 {
	s = strings.TrimLeft(s, " \t\n\r")
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if radix == 16 && strings.HasPrefix(strings.ToLower(s), "0x") {
		s = s[2:]
	}
	end := 0
	for end < len(s) {
		_, err := strconv.ParseInt(s[:end+1], radix, 64)
		if err != nil {
			break
		}
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		return math.NaN()
	}
	if neg {
		return -float64(n)
	}
	return float64(n)
}
