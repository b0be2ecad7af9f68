package diagnostics

import (
	"strings"
	"testing"

	"github.com/scriptlang/tsforge/internal/lexer"
	"github.com/scriptlang/tsforge/internal/parser"
	"github.com/scriptlang/tsforge/internal/token"
	"github.com/scriptlang/tsforge/internal/typecheck"
)

func TestDiagnosticFormatIncludesSourceLineAndCaret(t *testing.T) {
	source := "let x: number = 1;\nlet y: number = \"oops\";\n"
	d := Diagnostic{
		Severity: SeverityError,
		Message:  "type mismatch",
		File:     "main.ts",
		Pos:      token.Position{Line: 2, Column: 17},
	}
	out := d.Format(source, false)
	if !strings.Contains(out, "main.ts:2:17: error: type mismatch") {
		t.Fatalf("missing header in output:\n%s", out)
	}
	if !strings.Contains(out, `let y: number = "oops";`) {
		t.Fatalf("missing source line in output:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("missing caret in output:\n%s", out)
	}
}

func TestDiagnosticFormatColorWrapsHeaderAndCaret(t *testing.T) {
	d := Diagnostic{Severity: SeverityWarning, Message: "unused", Pos: token.Position{Line: 1, Column: 1}}
	out := d.Format("x;\n", true)
	if !strings.Contains(out, "\033[1;33m") {
		t.Fatalf("expected warning color code in output:\n%s", out)
	}
}

func TestFormatAllNumbersDiagnosticsAndSeparates(t *testing.T) {
	diags := []Diagnostic{
		{Severity: SeverityError, Message: "first", Pos: token.Position{Line: 1, Column: 1}},
		{Severity: SeverityError, Message: "second", Pos: token.Position{Line: 2, Column: 1}},
	}
	out := FormatAll(diags, "a;\nb;\n", false)
	if !strings.Contains(out, "[1 of 2]") || !strings.Contains(out, "[2 of 2]") {
		t.Fatalf("expected batch separators, got:\n%s", out)
	}
}

func TestFromLexErrorsPreservesPositionAndMessage(t *testing.T) {
	errs := []lexer.Error{{Message: "unterminated string", Pos: token.Position{Line: 3, Column: 5}}}
	diags := FromLexErrors(errs, "in.ts")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].File != "in.ts" || diags[0].Message != "unterminated string" || diags[0].Pos.Line != 3 {
		t.Fatalf("unexpected diagnostic: %+v", diags[0])
	}
}

func TestFromParseErrorsPreservesPositionAndMessage(t *testing.T) {
	p := parser.New(lexer.New("let x = ;"))
	p.ParseProgram()
	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatalf("expected parse errors for malformed input")
	}
	diags := FromParseErrors(errs, "in.ts")
	if len(diags) != len(errs) {
		t.Fatalf("expected %d diagnostics, got %d", len(errs), len(diags))
	}
	if diags[0].Severity != SeverityError {
		t.Fatalf("expected parse errors to map to SeverityError")
	}
}

func TestFromCheckerDiagnosticsMapsHintToWarningSeverity(t *testing.T) {
	diags := typecheck.Diagnostics{
		{Message: "real error", Hint: false, Pos: token.Position{Line: 1, Column: 1}},
		{Message: "just a hint", Hint: true, Pos: token.Position{Line: 2, Column: 1}},
	}
	out := FromCheckerDiagnostics(diags, "in.ts")
	if len(out) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(out))
	}
	if out[0].Severity != SeverityError {
		t.Fatalf("expected first diagnostic to be an error, got %v", out[0].Severity)
	}
	if out[1].Severity != SeverityWarning {
		t.Fatalf("expected hint diagnostic to map to warning severity, got %v", out[1].Severity)
	}
	if out[1].Hint != "" {
		t.Fatalf("expected string Hint field to stay empty, got %q", out[1].Hint)
	}
}
