package bytecode

import (
	"strings"
	"testing"

	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/builtins"
	"github.com/scriptlang/tsforge/internal/lexer"
	"github.com/scriptlang/tsforge/internal/parser"
	"github.com/scriptlang/tsforge/internal/runtime"
)

// parseSource mirrors the teacher's test-helper idiom of building a
// Program from a raw source string via the real lexer/parser rather than
// hand-constructing AST nodes, since this package has no packed-token
// fixtures worth maintaining by hand.
func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		var sb strings.Builder
		for _, e := range errs {
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
		t.Fatalf("parse errors for %q:\n%s", src, sb.String())
	}
	return prog
}

func newTestVM() *VM {
	reg := builtins.NewRegistry()
	builtins.RegisterAll(reg)
	return NewVM(reg)
}

// run compiles and executes src against a fresh VM, failing the test on a
// compile error or an uncaught thrown value.
func run(t *testing.T, src string) runtime.Value {
	t.Helper()
	chunk, err := Compile(parseSource(t, src))
	if err != nil {
		t.Fatalf("compile error for %q: %v", src, err)
	}
	vm := newTestVM()
	v, err := vm.Run(chunk)
	if err != nil {
		t.Fatalf("run error for %q: %v", src, err)
	}
	return v
}

func runErr(t *testing.T, src string) error {
	t.Helper()
	chunk, err := Compile(parseSource(t, src))
	if err != nil {
		return err
	}
	_, err = newTestVM().Run(chunk)
	return err
}
