// Package diagnostics formats lexer, parser, and type-checker errors
// against the original source text for the CLI and for embedders
// (spec.md §4.1/§8), adapted from the source-line-plus-caret rendering the
// teacher's internal/errors package used for DWScript compiler errors.
package diagnostics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scriptlang/tsforge/internal/lexer"
	"github.com/scriptlang/tsforge/internal/parser"
	"github.com/scriptlang/tsforge/internal/token"
	"github.com/scriptlang/tsforge/internal/typecheck"
)

// Severity discriminates whether a Diagnostic aborts compilation or merely
// warns (spec.md §8 error-handling taxonomy, categories 1-3).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one formatted problem report: a message anchored to a
// source position, plus an optional hint carried over from the checker.
type Diagnostic struct {
	Severity Severity
	Message  string
	Hint     string
	File     string
	Pos      token.Position
}

// Format renders the diagnostic as a GNU-style "file:line:col: message"
// header followed by the offending source line and a caret pointing at the
// column, matching the teacher's CompilerError.Format rendering. When color
// is true (gated by the CLI on an isatty check), the caret and header are
// ANSI-colored.
func (d Diagnostic) Format(source string, color bool) string {
	var sb strings.Builder
	loc := d.File
	if loc == "" {
		loc = "<input>"
	}
	header := fmt.Sprintf("%s:%d:%d: %s: %s", loc, d.Pos.Line, d.Pos.Column, d.Severity, d.Message)
	if color {
		c := "\033[1;31m"
		if d.Severity == SeverityWarning {
			c = "\033[1;33m"
		}
		header = c + header + "\033[0m"
	}
	sb.WriteString(header)
	sb.WriteByte('\n')
	if line := sourceLine(source, d.Pos.Line); line != "" {
		lineNumStr := strconv.Itoa(d.Pos.Line)
		gutter := fmt.Sprintf("%4s | ", lineNumStr)
		sb.WriteString(gutter + line + "\n")
		caret := strings.Repeat(" ", len(gutter)+max(d.Pos.Column-1, 0)) + "^"
		if color {
			caret = "\033[1;31m" + caret + "\033[0m"
		}
		sb.WriteString(caret)
		sb.WriteByte('\n')
	}
	if d.Hint != "" {
		sb.WriteString("  hint: " + d.Hint + "\n")
	}
	return sb.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func sourceLine(source string, lineNum int) string {
	lines := strings.Split(source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatAll renders a batch of diagnostics with "[N of M]" separators,
// mirroring the teacher's FormatErrors batch helper.
func FormatAll(diags []Diagnostic, source string, color bool) string {
	var sb strings.Builder
	for i, d := range diags {
		sb.WriteString(fmt.Sprintf("[%d of %d]\n", i+1, len(diags)))
		sb.WriteString(d.Format(source, color))
		if i < len(diags)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FromLexErrors converts lexer.Error values (accumulated internally by the
// lexer while scanning) into Diagnostics.
func FromLexErrors(errs []lexer.Error, file string) []Diagnostic {
	out := make([]Diagnostic, len(errs))
	for i, e := range errs {
		out[i] = Diagnostic{Severity: SeverityError, Message: e.Message, File: file, Pos: e.Pos}
	}
	return out
}

// FromParseErrors converts parser.ParserError values into Diagnostics.
func FromParseErrors(errs []*parser.ParserError, file string) []Diagnostic {
	out := make([]Diagnostic, len(errs))
	for i, e := range errs {
		out[i] = Diagnostic{Severity: SeverityError, Message: e.Message, File: file, Pos: e.Pos}
	}
	return out
}

// FromCheckerDiagnostics converts typecheck.Diagnostics into Diagnostics.
// A typecheck.Diagnostic's Hint field marks it as hint-severity rather than
// carrying separate hint text, so it maps to Severity here, not Diagnostic.Hint.
func FromCheckerDiagnostics(diags typecheck.Diagnostics, file string) []Diagnostic {
	out := make([]Diagnostic, len(diags))
	for i, d := range diags {
		sev := SeverityError
		if d.Hint {
			sev = SeverityWarning
		}
		out[i] = Diagnostic{Severity: sev, Message: d.Message, File: file, Pos: d.Pos}
	}
	return out
}
