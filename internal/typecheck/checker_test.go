package typecheck

import (
	"testing"

	"github.com/scriptlang/tsforge/internal/lexer"
	"github.com/scriptlang/tsforge/internal/parser"
	"github.com/scriptlang/tsforge/internal/types"
)

func checkSource(t *testing.T, src string) Diagnostics {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors for %q: %v", src, errs)
	}
	c := NewChecker()
	diags, _ := c.Check(prog)
	return diags
}

func TestValidProgramHasNoErrors(t *testing.T) {
	diags := checkSource(t, "let x: number = 1; let y: number = x + 1;")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags)
	}
}

func TestTypeMismatchIsReported(t *testing.T) {
	diags := checkSource(t, `let x: number = "oops";`)
	if !diags.HasErrors() {
		t.Fatalf("expected a type error assigning a string to a number-typed variable")
	}
}

func TestUndefinedNameIsReported(t *testing.T) {
	diags := checkSource(t, "undefinedThing();")
	if !diags.HasErrors() {
		t.Fatalf("expected an undefined-name error")
	}
}

func TestRegisterGlobalSuppressesUndefinedName(t *testing.T) {
	p := parser.New(lexer.New("globalFn();"))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	c := NewChecker()
	c.RegisterGlobal("globalFn", types.Any)
	diags, _ := c.Check(prog)
	if diags.HasErrors() {
		t.Fatalf("expected RegisterGlobal to suppress the undefined-name error, got: %v", diags)
	}
}

func TestNarrowingAfterTypeofGuard(t *testing.T) {
	diags := checkSource(t, `
function describe(x: string | number): number {
  if (typeof x === "number") {
    return x + 1;
  }
  return 0;
}
`)
	if diags.HasErrors() {
		t.Fatalf("expected typeof-narrowing to let the number branch use numeric arithmetic, got: %v", diags)
	}
}
