// Package printer is a minimal AST round-trip pretty-printer for `tsforge
// fmt` (SPEC_FULL.md §2.1: "minimal" — this is not a full token-preserving
// formatter, just a canonical re-rendering of the parsed tree).
//
// Every ast.Node already implements String() with a reasonable single-line
// rendering (internal/ast), grounded on the teacher's pkg/printer which
// likewise rendered DWScript nodes through per-node String() methods. This
// package's job is only to lay statements out one per line with semicolons
// and consistent indentation for block bodies; it leans entirely on the AST
// package's own String() implementations rather than re-implementing
// expression rendering.
package printer

import (
	"strings"

	"github.com/scriptlang/tsforge/internal/ast"
)

// Print renders prog as tsforge source text, one top-level statement per
// line.
func Print(prog *ast.Program) string {
	var sb strings.Builder
	for _, stmt := range prog.Statements {
		writeStatement(&sb, stmt, 0)
	}
	return sb.String()
}

func writeStatement(sb *strings.Builder, stmt ast.Stmt, indent int) {
	switch s := stmt.(type) {
	case *ast.Block:
		sb.WriteString(strings.Repeat("  ", indent) + "{\n")
		for _, inner := range s.Statements {
			writeStatement(sb, inner, indent+1)
		}
		sb.WriteString(strings.Repeat("  ", indent) + "}\n")
	case *ast.If:
		sb.WriteString(strings.Repeat("  ", indent) + s.String() + "\n")
	default:
		sb.WriteString(strings.Repeat("  ", indent) + statementLine(s) + "\n")
	}
}

// statementLine renders a single non-block statement, appending the `;`
// that ast.Stmt.String() implementations generally omit for expression-like
// statements.
func statementLine(s ast.Stmt) string {
	line := s.String()
	switch s.(type) {
	case *ast.FunctionDecl, *ast.ClassDecl, *ast.InterfaceDecl, *ast.For, *ast.ForOf,
		*ast.ForIn, *ast.While, *ast.DoWhile, *ast.Switch, *ast.TryCatch, *ast.Namespace,
		*ast.Enum, *ast.LabeledStatement, *ast.DeclareModule, *ast.DeclareGlobal:
		return line
	default:
		if strings.HasSuffix(line, ";") || strings.HasSuffix(line, "}") {
			return line
		}
		return line + ";"
	}
}
