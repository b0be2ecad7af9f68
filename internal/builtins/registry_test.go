package builtins

import (
	"math"
	"testing"

	"github.com/scriptlang/tsforge/internal/runtime"
)

func call(t *testing.T, ns, name string, args ...runtime.Value) runtime.Value {
	t.Helper()
	e, ok := DefaultRegistry.Lookup(ns, name)
	if !ok {
		t.Fatalf("no entry registered for %s.%s", ns, name)
	}
	v, err := e.Fn(nil, runtime.Undefined, args)
	if err != nil {
		t.Fatalf("%s.%s returned error: %v", ns, name, err)
	}
	return v
}

func TestMathFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args []runtime.Value
		want float64
	}{
		{"abs", "abs", []runtime.Value{runtime.Number(-4)}, 4},
		{"sqrt", "sqrt", []runtime.Value{runtime.Number(9)}, 3},
		{"pow", "pow", []runtime.Value{runtime.Number(2), runtime.Number(10)}, 1024},
		{"max", "max", []runtime.Value{runtime.Number(1), runtime.Number(5), runtime.Number(3)}, 5},
		{"min", "min", []runtime.Value{runtime.Number(1), runtime.Number(5), runtime.Number(3)}, 1},
		{"floor", "floor", []runtime.Value{runtime.Number(2.9)}, 2},
		{"ceil", "ceil", []runtime.Value{runtime.Number(2.1)}, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := call(t, "Math", tc.fn, tc.args...)
			n, ok := got.(runtime.Number)
			if !ok {
				t.Fatalf("Math.%s did not return a Number, got %T", tc.fn, got)
			}
			if float64(n) != tc.want {
				t.Errorf("Math.%s(%v) = %v, want %v", tc.fn, tc.args, n, tc.want)
			}
		})
	}
}

func TestMathConstants(t *testing.T) {
	globals := DefaultRegistry.BuildGlobals()
	mathObj, ok := globals["Math"].(*runtime.Object)
	if !ok {
		t.Fatal("Math namespace missing from BuildGlobals")
	}
	pi, ok := mathObj.Get("PI")
	if !ok {
		t.Fatal("Math.PI missing")
	}
	if n, ok := pi.(runtime.Number); !ok || math.Abs(float64(n)-math.Pi) > 1e-12 {
		t.Errorf("Math.PI = %v, want %v", pi, math.Pi)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	src := `{"a":1,"b":[true,false,null],"c":"hi"}`
	parsed := call(t, "JSON", "parse", runtime.String(src))
	obj, ok := parsed.(*runtime.Object)
	if !ok {
		t.Fatalf("JSON.parse did not return an object, got %T", parsed)
	}
	a, _ := obj.Get("a")
	if n, ok := a.(runtime.Number); !ok || float64(n) != 1 {
		t.Errorf("parsed a = %v, want 1", a)
	}

	out := call(t, "JSON", "stringify", obj)
	s, ok := out.(runtime.String)
	if !ok {
		t.Fatalf("JSON.stringify did not return a string, got %T", out)
	}
	reparsed := call(t, "JSON", "parse", s)
	reobj, ok := reparsed.(*runtime.Object)
	if !ok {
		t.Fatalf("round-tripped JSON did not reparse to an object: %s", s)
	}
	if c, _ := reobj.Get("c"); c.(runtime.String) != "hi" {
		t.Errorf("round-tripped c = %v, want hi", c)
	}
}

func TestJSONParseInvalid(t *testing.T) {
	e, _ := DefaultRegistry.Lookup("JSON", "parse")
	_, err := e.Fn(nil, runtime.Undefined, []runtime.Value{runtime.String("{not json")})
	if err == nil {
		t.Fatal("expected JSON.parse to reject invalid input")
	}
}

func TestObjectKeysValuesEntries(t *testing.T) {
	obj := runtime.NewObject()
	obj.Set("x", runtime.Number(1))
	obj.Set("y", runtime.Number(2))

	keys := call(t, "Object", "keys", obj).(*runtime.Array)
	if len(keys.Elements) != 2 || keys.Elements[0].(runtime.String) != "x" {
		t.Errorf("Object.keys = %v, want [x y]", keys.Elements)
	}

	values := call(t, "Object", "values", obj).(*runtime.Array)
	if len(values.Elements) != 2 || values.Elements[1].(runtime.Number) != 2 {
		t.Errorf("Object.values = %v, want [1 2]", values.Elements)
	}

	entries := call(t, "Object", "entries", obj).(*runtime.Array)
	first := entries.Elements[0].(*runtime.Array)
	if first.Elements[0].(runtime.String) != "x" || first.Elements[1].(runtime.Number) != 1 {
		t.Errorf("Object.entries[0] = %v, want [x 1]", first.Elements)
	}
}

func TestObjectFreeze(t *testing.T) {
	obj := runtime.NewObject()
	obj.Set("a", runtime.Number(1))
	call(t, "Object", "freeze", obj)

	if frozen := call(t, "Object", "isFrozen", obj); !runtime.Truthy(frozen) {
		t.Fatal("expected object to report frozen")
	}
	obj.Set("a", runtime.Number(2))
	a, _ := obj.Get("a")
	if a.(runtime.Number) != 1 {
		t.Errorf("frozen object was mutated: a = %v, want 1", a)
	}
}

func TestArrayIsArrayAndFrom(t *testing.T) {
	arr := runtime.NewArray(runtime.Number(1), runtime.Number(2))
	if got := call(t, "Array", "isArray", arr); !runtime.Truthy(got) {
		t.Error("Array.isArray(array) = false, want true")
	}
	if got := call(t, "Array", "isArray", runtime.String("x")); runtime.Truthy(got) {
		t.Error("Array.isArray(string) = true, want false")
	}

	from := call(t, "Array", "from", runtime.String("ab")).(*runtime.Array)
	if len(from.Elements) != 2 || from.Elements[0].(runtime.String) != "a" {
		t.Errorf("Array.from(\"ab\") = %v, want [a b]", from.Elements)
	}
}

func TestPromiseResolveAndAll(t *testing.T) {
	resolved := call(t, "Promise", "resolve", runtime.Number(42)).(*runtime.Promise)
	if resolved.State != runtime.PromiseFulfilled || resolved.Value.(runtime.Number) != 42 {
		t.Errorf("Promise.resolve(42) = %+v", resolved)
	}

	all := call(t, "Promise", "all", runtime.NewArray(runtime.Number(1), resolved)).(*runtime.Promise)
	if all.State != runtime.PromiseFulfilled {
		t.Fatalf("Promise.all should fulfill, got state %v", all.State)
	}
	results := all.Value.(*runtime.Array)
	if len(results.Elements) != 2 || results.Elements[1].(runtime.Number) != 42 {
		t.Errorf("Promise.all results = %v", results.Elements)
	}
}

func TestBigIntConversion(t *testing.T) {
	e, _ := DefaultRegistry.Lookup("BigInt", "__call__")
	v, err := e.Fn(nil, runtime.Undefined, []runtime.Value{runtime.Number(42)})
	if err != nil {
		t.Fatalf("BigInt(42) errored: %v", err)
	}
	bi, ok := v.(runtime.BigInt)
	if !ok || bi.String() != "42n" {
		t.Errorf("BigInt(42) = %v, want 42n", v)
	}

	_, err = e.Fn(nil, runtime.Undefined, []runtime.Value{runtime.Number(1.5)})
	if err == nil {
		t.Fatal("expected BigInt(1.5) to reject a non-integer Number")
	}
}

func TestSymbolUniqueness(t *testing.T) {
	e, _ := DefaultRegistry.Lookup("Symbol", "__call__")
	s1, _ := e.Fn(nil, runtime.Undefined, []runtime.Value{runtime.String("tag")})
	s2, _ := e.Fn(nil, runtime.Undefined, []runtime.Value{runtime.String("tag")})
	if runtime.StrictEquals(s1, s2) {
		t.Fatal("two Symbol() calls with the same description must be distinct")
	}

	forEntry, _ := DefaultRegistry.Lookup("Symbol", "for")
	a, _ := forEntry.Fn(nil, runtime.Undefined, []runtime.Value{runtime.String("shared")})
	b, _ := forEntry.Fn(nil, runtime.Undefined, []runtime.Value{runtime.String("shared")})
	if !runtime.StrictEquals(a, b) {
		t.Fatal("Symbol.for with the same key must return the same Symbol")
	}
}

func TestRegExpCompileAndMatch(t *testing.T) {
	re, err := CompileRegExp(`\d+`, "g")
	if err != nil {
		t.Fatalf("CompileRegExp errored: %v", err)
	}
	if !MatchString(re, "abc123") {
		t.Error(`expected \d+ to match "abc123"`)
	}
	got := ReplaceAll(re, "a1 b22", "[$0]")
	if got != "a[1] b[22]" {
		t.Errorf("ReplaceAll = %q, want %q", got, "a[1] b[22]")
	}
}
