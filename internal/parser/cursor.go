package parser

import (
	"github.com/scriptlang/tsforge/internal/lexer"
	"github.com/scriptlang/tsforge/internal/token"
)

// cursor is a lazily-growing token buffer over a lexer.Lexer. Unlike a
// single current/peek pair, it lets the parser save and restore an index to
// backtrack across an arbitrary lookahead window (needed for disambiguating
// arrow function parameter lists from parenthesized expressions, and type
// assertions from comparisons), without re-lexing.
type cursor struct {
	lex *lexer.Lexer
	buf []token.Token
	idx int
}

func newCursor(l *lexer.Lexer) *cursor {
	return &cursor{lex: l}
}

// fill ensures buf has at least n+1 tokens.
func (c *cursor) fill(n int) {
	for len(c.buf) <= n {
		c.buf = append(c.buf, c.lex.NextToken())
	}
}

// cur returns the token at the cursor's current position.
func (c *cursor) cur() token.Token {
	c.fill(c.idx)
	return c.buf[c.idx]
}

// peek returns the token n positions ahead of cur (peek(0) == cur()).
func (c *cursor) peek(n int) token.Token {
	c.fill(c.idx + n)
	return c.buf[c.idx+n]
}

// advance consumes and returns the current token.
func (c *cursor) advance() token.Token {
	t := c.cur()
	if t.Type != token.EOF {
		c.idx++
	}
	return t
}

// mark returns a resumable position for backtracking.
func (c *cursor) mark() int { return c.idx }

// reset rewinds the cursor to a previously marked position.
func (c *cursor) reset(m int) { c.idx = m }

// precededByNewline reports whether there is a line break between the
// previous emitted token and the current one, used by automatic semicolon
// insertion (spec.md §4.1 ASI) since the lexer does not tag tokens with a
// preceding-newline flag directly.
func (c *cursor) precededByNewline() bool {
	if c.idx == 0 {
		return true
	}
	c.fill(c.idx)
	prev := c.buf[c.idx-1]
	return c.buf[c.idx].Pos.Line > prev.Pos.Line
}

// resumeTemplate overwrites the buffered RBRACE token at the cursor's
// current position with the continuation of a template literal, once the
// parser has consumed `${ expr` and is looking at the matching `}`. The
// closing brace must be the last token fetched into buf: NextToken already
// advanced the lexer's read position past it (readOperator's `}` case), so
// resuming template scanning from here must not re-consume that character,
// which is exactly what lexer.ContinueTemplateBody avoids doing relative to
// the simpler ReadTemplateContinuation.
func (c *cursor) resumeTemplate(rbrace token.Token) token.Token {
	cont := c.lex.ContinueTemplateBody(rbrace.Pos)
	c.buf[c.idx] = cont
	return cont
}
