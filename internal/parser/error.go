package parser

import (
	"fmt"

	"github.com/scriptlang/tsforge/internal/token"
)

// ParserError is one syntax error recorded while parsing; the CLI and
// internal/diagnostics format these alongside lexer and typecheck
// diagnostics against the original source (spec.md §4.1).
type ParserError struct {
	Message string
	Pos     token.Position
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}
