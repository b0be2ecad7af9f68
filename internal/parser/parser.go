// Package parser turns a token stream into the AST defined by internal/ast
// (spec.md §4.1/§4.2). It is a hand-written Pratt (precedence-climbing)
// parser: prefix and infix parse functions are registered per token type,
// and a precedence table drives how far an infix loop consumes before
// yielding back to its caller. Statement parsing is plain recursive-descent
// dispatched on the leading keyword.
package parser

import (
	"fmt"

	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/lexer"
	"github.com/scriptlang/tsforge/internal/token"
)

// Precedence levels, lowest to highest. Assignment is handled specially
// (right-associative, and only legal when the left side is a valid
// assignment target) rather than through the infix table.
const (
	_ int = iota
	precLowest
	precComma
	precAssign
	precConditional // ?:
	precNullish     // ??
	precLogicalOr   // ||
	precLogicalAnd  // &&
	precBitOr       // |
	precBitXor      // ^
	precBitAnd      // &
	precEquality    // == != === !==
	precRelational  // < > <= >= instanceof in
	precShift       // << >> >>>
	precAdditive    // + -
	precMultiplicative // * / %
	precExponent    // ** (right-assoc)
	precUnary       // ! ~ + - typeof void delete await
	precPostfix     // ++ -- (postfix)
	precCall        // () [] . ?. new
)

var precedences = map[token.Type]int{
	token.QUESTION:          precConditional,
	token.QUESTION_QUESTION: precNullish,
	token.OR_OR:             precLogicalOr,
	token.AND_AND:           precLogicalAnd,
	token.PIPE:              precBitOr,
	token.CARET:             precBitXor,
	token.AMP:               precBitAnd,
	token.EQ:                precEquality,
	token.NOT_EQ:            precEquality,
	token.STRICT_EQ:         precEquality,
	token.STRICT_NOT_EQ:     precEquality,
	token.LT:                precRelational,
	token.GT:                precRelational,
	token.LT_EQ:             precRelational,
	token.GT_EQ:             precRelational,
	token.INSTANCEOF:        precRelational,
	token.IN:                precRelational,
	token.AS:                precRelational,
	token.SHL:               precShift,
	token.SHR:               precShift,
	token.USHR:              precShift,
	token.PLUS:              precAdditive,
	token.MINUS:             precAdditive,
	token.STAR:              precMultiplicative,
	token.SLASH:             precMultiplicative,
	token.PERCENT:           precMultiplicative,
	token.STAR_STAR:         precExponent,
	token.LPAREN:            precCall,
	token.LBRACKET:          precCall,
	token.DOT:               precCall,
	token.QUESTION_DOT:      precCall,
	token.PLUS_PLUS:         precPostfix,
	token.MINUS_MINUS:       precPostfix,
}

var assignOps = map[token.Type]bool{
	token.ASSIGN: true, token.PLUS_ASSIGN: true, token.MINUS_ASSIGN: true,
	token.STAR_ASSIGN: true, token.SLASH_ASSIGN: true, token.PERCENT_ASSIGN: true,
	token.STAR_STAR_ASSIGN: true, token.AMP_ASSIGN: true, token.PIPE_ASSIGN: true,
	token.CARET_ASSIGN: true, token.SHL_ASSIGN: true, token.SHR_ASSIGN: true,
	token.USHR_ASSIGN: true, token.AND_ASSIGN: true, token.OR_ASSIGN: true,
	token.QQ_ASSIGN: true,
}

type prefixParseFn func() ast.Expr
type infixParseFn func(left ast.Expr) ast.Expr

// Parser consumes tokens from a cursor and builds an AST, recording
// ParserErrors instead of panicking on malformed input (spec.md §4.1: a
// syntax error does not abort the whole file, it is one Diagnostic among
// possibly several).
type Parser struct {
	c      *cursor
	errors []*ParserError

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// New constructs a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{c: newCursor(l)}
	p.prefixFns = make(map[token.Type]prefixParseFn)
	p.infixFns = make(map[token.Type]infixParseFn)
	p.registerExprFns()
	return p
}

// Errors returns the syntax errors accumulated while parsing.
func (p *Parser) Errors() []*ParserError { return p.errors }

func (p *Parser) addError(msg string, pos token.Position) {
	p.errors = append(p.errors, &ParserError{Message: msg, Pos: pos})
}

func (p *Parser) addErrorf(pos token.Position, format string, args ...any) {
	p.addError(fmt.Sprintf(format, args...), pos)
}

func (p *Parser) cur() token.Token    { return p.c.cur() }
func (p *Parser) peek(n int) token.Token { return p.c.peek(n) }
func (p *Parser) advance() token.Token { return p.c.advance() }

func (p *Parser) curIs(t token.Type) bool  { return p.cur().Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek(1).Type == t }

// expect consumes the current token if it has type t, recording an error
// and returning the zero Token otherwise.
func (p *Parser) expect(t token.Type) token.Token {
	if p.curIs(t) {
		return p.advance()
	}
	p.addErrorf(p.cur().Pos, "expected %s, got %s %q", t, p.cur().Type, p.cur().Lexeme)
	return p.cur()
}

func (p *Parser) match(t token.Type) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	return false
}

// consumeSemicolon implements automatic semicolon insertion: an explicit
// `;` is always accepted; otherwise ASI applies at EOF, before `}`, or
// across a line break (spec.md §4.1 ASI).
func (p *Parser) consumeSemicolon() {
	if p.match(token.SEMICOLON) {
		return
	}
	if p.curIs(token.RBRACE) || p.curIs(token.EOF) {
		return
	}
	if p.c.precededByNewline() {
		return
	}
	p.addErrorf(p.cur().Pos, "expected ';', got %s %q", p.cur().Type, p.cur().Lexeme)
}

// statementStarters and blockClosers drive synchronize's panic-mode
// recovery: after recording an error, skip tokens until one of these is
// reached so a single malformed statement does not cascade into spurious
// follow-on errors for the rest of the file.
var statementStarters = map[token.Type]bool{
	token.VAR: true, token.LET: true, token.CONST: true, token.FUNCTION: true,
	token.RETURN: true, token.IF: true, token.FOR: true, token.WHILE: true,
	token.DO: true, token.BREAK: true, token.CONTINUE: true, token.SWITCH: true,
	token.TRY: true, token.THROW: true, token.CLASS: true, token.INTERFACE: true,
	token.ENUM: true, token.TYPE: true, token.IMPORT: true, token.EXPORT: true,
	token.NAMESPACE: true, token.USING: true,
}

func (p *Parser) synchronize() {
	p.advance()
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) {
			p.advance()
			return
		}
		if p.curIs(token.RBRACE) || statementStarters[p.cur().Type] {
			return
		}
		p.advance()
	}
}

// ParseProgram parses the full token stream into a Program node.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		start := p.c.mark()
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if p.c.mark() == start {
			// Parsing a statement must always consume at least one token;
			// guard against an infinite loop on an unrecognized token.
			p.synchronize()
		}
	}
	return prog
}
