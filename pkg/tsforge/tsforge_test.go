package tsforge

import (
	"testing"

	"github.com/scriptlang/tsforge/internal/runtime"
)

func TestRunSimpleExpression(t *testing.T) {
	result, err := Run("1 + 2;", "<test>", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value.Kind() != runtime.KindNumber || runtime.ToNumber(result.Value) != 3 {
		t.Fatalf("expected 3, got %v", result.Value)
	}
}

func TestRunUsesAmbientBuiltinsDuringCheck(t *testing.T) {
	// console/Math are registered in internal/builtins but never in
	// internal/typecheck's own global scope; Check must still accept
	// references to them rather than reporting an undefined name.
	_, err := Run("Math.sqrt(4);", "<test>", Options{})
	if err != nil {
		t.Fatalf("expected ambient Math global to type-check, got: %v", err)
	}
}

func TestRunFallsBackToInterpreterForUnsupportedConstructs(t *testing.T) {
	result, err := Run(`
class Greeter {
  greet(): string { return "hi"; }
}
new Greeter().greet();
`, "<test>", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Engine != EngineInterpreter {
		t.Fatalf("expected class declarations to fall back to the interpreter, got engine %v", result.Engine)
	}
	if runtime.ToStringValue(result.Value) != "hi" {
		t.Fatalf("expected %q, got %q", "hi", runtime.ToStringValue(result.Value))
	}
}

func TestRunBytecodeEngineForPlainArithmetic(t *testing.T) {
	result, err := Run("let x = 10; let y = 20; x + y;", "<test>", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Engine != EngineBytecode {
		t.Fatalf("expected plain arithmetic to compile to bytecode, got engine %v", result.Engine)
	}
}

func TestParseErrorSurfacesDiagnostics(t *testing.T) {
	_, err := Parse("let let let;", "<test>")
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if len(perr.Diagnostics) == 0 {
		t.Fatalf("expected at least one diagnostic")
	}
}

func TestCompileReportsInterpretedForUnsupportedConstructs(t *testing.T) {
	result, err := Compile("async function f() { await 1; }", "<test>", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Interpreted {
		t.Fatalf("expected async function to be reported as Interpreted, got chunk %+v", result.Chunk)
	}
}
