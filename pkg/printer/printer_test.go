package printer

import (
	"strings"
	"testing"

	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/lexer"
	"github.com/scriptlang/tsforge/internal/parser"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors for %q: %v", src, errs)
	}
	return prog
}

func TestPrintAddsSemicolonsToExpressionStatements(t *testing.T) {
	out := Print(parseSource(t, "let x = 1\nlet y = 2"))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	for _, l := range lines {
		if !strings.HasSuffix(l, ";") {
			t.Fatalf("expected line to end with ';', got %q", l)
		}
	}
}

func TestPrintIndentsBlockBody(t *testing.T) {
	out := Print(parseSource(t, "{ let x = 1; }"))
	if !strings.Contains(out, "{\n  let x = 1;\n}\n") {
		t.Fatalf("expected indented block body, got %q", out)
	}
}

func TestPrintLeavesFunctionDeclLineAsIs(t *testing.T) {
	out := Print(parseSource(t, "function f(x: number): number { return x; }"))
	if !strings.Contains(out, "function f") {
		t.Fatalf("expected function declaration text preserved, got %q", out)
	}
}
