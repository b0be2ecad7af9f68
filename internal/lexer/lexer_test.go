package lexer

import (
	"testing"

	"github.com/scriptlang/tsforge/internal/token"
)

func tokenTypes(t *testing.T, input string) []token.Type {
	t.Helper()
	l := New(input)
	var out []token.Type
	for {
		tok := l.NextToken()
		out = append(out, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}
	return out
}

func TestNextToken_Punctuation(t *testing.T) {
	input := `let x = (1 + 2) * 3;`
	want := []token.Type{
		token.LET, token.IDENT, token.ASSIGN, token.LPAREN, token.NUMBER,
		token.PLUS, token.NUMBER, token.RPAREN, token.STAR, token.NUMBER,
		token.SEMICOLON, token.EOF,
	}
	got := tokenTypes(t, input)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i, tt := range want {
		if got[i] != tt {
			t.Errorf("token[%d] = %s, want %s", i, got[i], tt)
		}
	}
}

func TestNextToken_RegexVsDivision(t *testing.T) {
	t.Run("regex after assignment", func(t *testing.T) {
		l := New(`x = /ab+c/`)
		l.NextToken() // x
		l.NextToken() // =
		tok := l.NextToken()
		if tok.Type != token.REGEX {
			t.Fatalf("expected REGEX, got %s", tok.Type)
		}
	})

	t.Run("division after identifier", func(t *testing.T) {
		l := New(`a / b`)
		l.NextToken() // a
		tok := l.NextToken()
		if tok.Type != token.SLASH {
			t.Fatalf("expected SLASH, got %s", tok.Type)
		}
	})
}

func TestNextToken_NumericLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"123", 123},
		{"1_000_000", 1000000},
		{"0xFF", 255},
		{"0b101", 5},
		{"0o17", 15},
		{"1.5e2", 150},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != token.NUMBER {
			t.Fatalf("%q: expected NUMBER, got %s", tt.input, tok.Type)
		}
		if tok.Literal.Number != tt.want {
			t.Errorf("%q: literal = %v, want %v", tt.input, tok.Literal.Number, tt.want)
		}
	}
}

func TestNextToken_BigIntLiteral(t *testing.T) {
	l := New("10n")
	tok := l.NextToken()
	if tok.Type != token.BIGINT {
		t.Fatalf("expected BIGINT, got %s", tok.Type)
	}
	if tok.Literal.Str != "10" {
		t.Errorf("literal = %q, want 10", tok.Literal.Str)
	}
}

func TestNextToken_StringEscapes(t *testing.T) {
	l := New(`"a\nb\tc"`)
	tok := l.NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if tok.Literal.Str != "a\nb\tc" {
		t.Errorf("literal = %q", tok.Literal.Str)
	}
}

func TestNextToken_TemplateLiteralNoInterpolation(t *testing.T) {
	l := New("`hello world`")
	tok := l.NextToken()
	if tok.Type != token.TEMPLATE_FULL {
		t.Fatalf("expected TEMPLATE_FULL, got %s", tok.Type)
	}
	if tok.Literal.Str != "hello world" {
		t.Errorf("literal = %q", tok.Literal.Str)
	}
}

func TestNextToken_TemplateLiteralHeadAndTail(t *testing.T) {
	l := New("`a${")
	tok := l.NextToken()
	if tok.Type != token.TEMPLATE_HEAD || tok.Literal.Str != "a" {
		t.Fatalf("got %s %q", tok.Type, tok.Literal.Str)
	}
}

func TestNextToken_UnterminatedString(t *testing.T) {
	l := New(`"abc`)
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Fatal("expected an unterminated-string error")
	}
}

func TestNextToken_KeywordsCaseSensitive(t *testing.T) {
	l := New("Let let")
	first := l.NextToken()
	if first.Type != token.IDENT {
		t.Fatalf("expected IDENT for 'Let', got %s", first.Type)
	}
	second := l.NextToken()
	if second.Type != token.LET {
		t.Fatalf("expected LET for 'let', got %s", second.Type)
	}
}

func TestNextToken_Comments(t *testing.T) {
	l := New("// comment\nlet /* block */ x")
	got := tokenTypes(t, "// comment\nlet /* block */ x")
	want := []token.Type{token.LET, token.IDENT, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	_ = l
}

func TestNextToken_CompoundOperators(t *testing.T) {
	got := tokenTypes(t, "a ??= b ||= c &&= d >>>= e")
	want := []token.Type{
		token.IDENT, token.QQ_ASSIGN, token.IDENT, token.OR_ASSIGN, token.IDENT,
		token.AND_ASSIGN, token.IDENT, token.USHR_ASSIGN, token.IDENT, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNextToken_OptionalChaining(t *testing.T) {
	got := tokenTypes(t, "a?.b ?? c")
	want := []token.Type{token.IDENT, token.QUESTION_DOT, token.IDENT, token.QUESTION_QUESTION, token.IDENT, token.EOF}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
