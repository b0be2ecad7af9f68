package builtins

import (
	"regexp"
	"strings"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// RegisterRegExp wires `RegExp(...)` as a callable namespace entry,
// compiling the pattern with Go's regexp package (RE2 syntax, a documented
// divergence from full ECMA-262 regex semantics — see DESIGN.md). The
// compiled *regexp.Regexp is stashed on runtime.RegExp.SetCompiled so
// internal/interpreter's String.prototype.match/replace/split and the
// RegExp instance methods (test/exec) reuse it instead of recompiling on
// every call.
func RegisterRegExp(r *Registry) {
	r.Register("RegExp", "__call__", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return nil, errNoPattern
		}
		source := runtime.ToStringValue(args[0])
		flags := ""
		if len(args) > 1 {
			flags = runtime.ToStringValue(args[1])
		}
		return CompileRegExp(source, flags)
	}, "Compiles a regular expression from a source pattern and flags")
}

var errNoPattern = compileError("RegExp requires a pattern argument")

type compileError string

func (e compileError) Error() string { return string(e) }

// CompileRegExp is the shared compilation entry point used by both the
// `RegExp(...)` builtin and regex literal evaluation in
// internal/interpreter, translating JS's i/s/m inline flags into Go RE2's
// `(?ism)` flag-group syntax.
func CompileRegExp(source, flags string) (*runtime.RegExp, error) {
	var goFlags string
	global := false
	for _, f := range flags {
		switch f {
		case 'g':
			global = true
		case 'i':
			goFlags += "i"
		case 's':
			goFlags += "s"
		case 'm':
			goFlags += "m"
		}
	}
	pattern := source
	if goFlags != "" {
		pattern = "(?" + goFlags + ")" + pattern
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, compileError("SyntaxError: Invalid regular expression: " + err.Error())
	}
	re := &runtime.RegExp{Source: source, Flags: flags, Global: global}
	re.SetCompiled(compiled)
	return re, nil
}

// MatchString reports whether v's compiled pattern matches s, compiling
// lazily if the RegExp wasn't created through CompileRegExp.
func MatchString(re *runtime.RegExp, s string) bool {
	c := compiledOf(re)
	return c.MatchString(s)
}

func compiledOf(re *runtime.RegExp) *regexp.Regexp {
	if c, ok := re.Compiled().(*regexp.Regexp); ok && c != nil {
		return c
	}
	c := regexp.MustCompile(regexp.QuoteMeta(re.Source))
	re.SetCompiled(c)
	return c
}

// ReplaceAll implements String.prototype.replace(re, repl) for a
// RegExp receiver and a literal replacement string, translating JS's
// `$1`-style backreferences into Go's `${1}` template syntax.
func ReplaceAll(re *runtime.RegExp, s, repl string) string {
	c := compiledOf(re)
	goRepl := jsReplacementToGo(repl)
	if re.Global {
		return c.ReplaceAllString(s, goRepl)
	}
	loc := c.FindStringIndex(s)
	if loc == nil {
		return s
	}
	replaced := c.ReplaceAllString(s[loc[0]:loc[1]], goRepl)
	return s[:loc[0]] + replaced + s[loc[1]:]
}

func jsReplacementToGo(repl string) string {
	var b strings.Builder
	for i := 0; i < len(repl); i++ {
		if repl[i] == '$' && i+1 < len(repl) && repl[i+1] >= '0' && repl[i+1] <= '9' {
			j := i + 1
			for j < len(repl) && repl[j] >= '0' && repl[j] <= '9' {
				j++
			}
			b.WriteString("${" + repl[i+1:j] + "}")
			i = j - 1
			continue
		}
		b.WriteByte(repl[i])
	}
	return b.String()
}
