package bytecode

import (
	"testing"

	"github.com/scriptlang/tsforge/internal/runtime"
)

func wantNumber(t *testing.T, v runtime.Value, want float64) {
	t.Helper()
	got := runtime.ToNumber(v)
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func wantString(t *testing.T, v runtime.Value, want string) {
	t.Helper()
	got := runtime.ToStringValue(v)
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestVM_ArithmeticAndLocals(t *testing.T) {
	v := run(t, `
		let x = 2;
		let y = 3;
		x + y * 4;
	`)
	wantNumber(t, v, 14)
}

func TestVM_StringConcatPlus(t *testing.T) {
	v := run(t, `"foo" + "bar";`)
	wantString(t, v, "foobar")
}

func TestVM_IfElse(t *testing.T) {
	v := run(t, `
		let x = 5;
		let result;
		if (x > 3) { result = "big"; } else { result = "small"; }
		result;
	`)
	wantString(t, v, "big")
}

func TestVM_WhileLoop(t *testing.T) {
	v := run(t, `
		let i = 0;
		let sum = 0;
		while (i < 5) { sum = sum + i; i = i + 1; }
		sum;
	`)
	wantNumber(t, v, 10)
}

func TestVM_ForLoopBreakContinue(t *testing.T) {
	v := run(t, `
		let sum = 0;
		for (let i = 0; i < 10; i = i + 1) {
			if (i === 5) { break; }
			if (i % 2 === 0) { continue; }
			sum = sum + i;
		}
		sum;
	`)
	wantNumber(t, v, 4) // 1 + 3
}

func TestVM_FunctionCallAndReturn(t *testing.T) {
	v := run(t, `
		function add(a, b) { return a + b; }
		add(3, 4);
	`)
	wantNumber(t, v, 7)
}

func TestVM_DefaultParameter(t *testing.T) {
	v := run(t, `
		function greet(name = "world") { return "hi " + name; }
		greet();
	`)
	wantString(t, v, "hi world")
}

func TestVM_RestParameter(t *testing.T) {
	v := run(t, `
		function sum(...nums) {
			let total = 0;
			for (let i = 0; i < nums.length; i = i + 1) { total = total + nums[i]; }
			return total;
		}
		sum(1, 2, 3, 4);
	`)
	wantNumber(t, v, 10)
}

func TestVM_ClosureCapturesUpvalue(t *testing.T) {
	v := run(t, `
		function makeCounter() {
			let count = 0;
			return function() { count = count + 1; return count; };
		}
		let counter = makeCounter();
		counter();
		counter();
		counter();
	`)
	wantNumber(t, v, 3)
}

func TestVM_ArrowFunctionLexicalThis(t *testing.T) {
	v := run(t, `
		const obj = {
			value: 42,
			makeGetter: function() { return () => this.value; },
		};
		const getter = obj.makeGetter();
		getter();
	`)
	wantNumber(t, v, 42)
}

func TestVM_LogicalShortCircuit(t *testing.T) {
	v := run(t, `
		let calls = 0;
		function sideEffect() { calls = calls + 1; return true; }
		false && sideEffect();
		calls;
	`)
	wantNumber(t, v, 0)
}

func TestVM_NullishCoalescing(t *testing.T) {
	v := run(t, `
		let a = null;
		let b = a ?? "fallback";
		b;
	`)
	wantString(t, v, "fallback")
}

func TestVM_TryCatchBindsThrownValue(t *testing.T) {
	v := run(t, `
		let message = "";
		try {
			throw new Error("boom");
		} catch (e) {
			message = e.message;
		}
		message;
	`)
	wantString(t, v, "boom")
}

func TestVM_TryFinallyRunsOnNormalExit(t *testing.T) {
	v := run(t, `
		let log = "";
		try {
			log = log + "try";
		} finally {
			log = log + "-finally";
		}
		log;
	`)
	wantString(t, v, "try-finally")
}

func TestVM_TryFinallyRunsOnThrowPropagation(t *testing.T) {
	err := runErr(t, `
		let log = "";
		try {
			throw new Error("x");
		} finally {
			log = log + "cleanup";
		}
	`)
	if err == nil {
		t.Fatal("expected the throw to propagate past an uncaught finally")
	}
}

func TestVM_ForOfIteratesArray(t *testing.T) {
	v := run(t, `
		let sum = 0;
		for (const n of [1, 2, 3]) { sum = sum + n; }
		sum;
	`)
	wantNumber(t, v, 6)
}

func TestVM_ForInIteratesKeys(t *testing.T) {
	v := run(t, `
		let keys = "";
		const obj = { a: 1, b: 2 };
		for (const k in obj) { keys = keys + k; }
		keys;
	`)
	wantString(t, v, "ab")
}

func TestVM_ArrayLiteralAndSpread(t *testing.T) {
	v := run(t, `
		const a = [1, 2];
		const b = [...a, 3, 4];
		b.length;
	`)
	wantNumber(t, v, 4)
}

func TestVM_ObjectLiteralAndSpread(t *testing.T) {
	v := run(t, `
		const a = { x: 1 };
		const b = { ...a, y: 2 };
		b.x + b.y;
	`)
	wantNumber(t, v, 3)
}

func TestVM_IncrementDecrementOnProperty(t *testing.T) {
	v := run(t, `
		const obj = { count: 0 };
		obj.count++;
		obj.count++;
		obj.count;
	`)
	wantNumber(t, v, 2)
}

func TestVM_CompoundAssignOnIndex(t *testing.T) {
	v := run(t, `
		const arr = [1, 2, 3];
		arr[0] += 10;
		arr[0];
	`)
	wantNumber(t, v, 11)
}

func TestVM_TypeofUndeclaredIsUndefined(t *testing.T) {
	v := run(t, `typeof neverDeclared;`)
	wantString(t, v, "undefined")
}

func TestVM_InstanceofAndDelete(t *testing.T) {
	v := run(t, `
		const e = new TypeError("bad");
		const isError = e instanceof Error;
		const obj = { x: 1 };
		delete obj.x;
		isError && obj.x === undefined;
	`)
	if !runtime.Truthy(v) {
		t.Fatalf("expected instanceof+delete check to be truthy, got %v", v)
	}
}

func TestVM_UnboundVariableThrowsReferenceError(t *testing.T) {
	err := runErr(t, `neverDeclared + 1;`)
	if err == nil {
		t.Fatal("expected a ReferenceError for an unbound identifier")
	}
}
