// Package tsforge is the embedder API: it ties the lexer, parser, type
// checker, bytecode compiler/VM, and tree-walking interpreter together into
// a single Run/Check/Compile surface over one source string (spec.md §7
// external interfaces). Engine selection is done here rather than in the
// CLI; there is no multi-file or module resolution.
//
// Engine selection follows the teacher's layered-fallback idiom: attempt
// the faster bytecode VM first, and only drop to the tree-walking
// interpreter when the compiler reports a construct it does not yet lower
// (internal/bytecode.unsupported), so scripts using async/await,
// generators, classes, namespaces, or `using` still run correctly, just
// without the speed win.
package tsforge

import (
	"fmt"

	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/builtins"
	"github.com/scriptlang/tsforge/internal/bytecode"
	"github.com/scriptlang/tsforge/internal/diagnostics"
	"github.com/scriptlang/tsforge/internal/interpreter"
	"github.com/scriptlang/tsforge/internal/lexer"
	"github.com/scriptlang/tsforge/internal/parser"
	"github.com/scriptlang/tsforge/internal/runtime"
	"github.com/scriptlang/tsforge/internal/typecheck"
	"github.com/scriptlang/tsforge/internal/types"
)

// Engine selects which backend actually executed a script, reported back
// so callers (the CLI's --verbose flag, golden tests) can assert on it.
type Engine int

const (
	EngineBytecode Engine = iota
	EngineInterpreter
)

func (e Engine) String() string {
	if e == EngineInterpreter {
		return "interpreter"
	}
	return "bytecode"
}

// ParseError wraps a failed parse/lex pass with its Diagnostics, returned
// instead of a bare error so callers can format every syntax error, not
// just the first one (spec.md §8 category 1: lexical/syntax errors abort
// before any execution).
type ParseError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *ParseError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "parse error"
	}
	return e.Diagnostics[0].Message
}

// CheckError wraps a failing type-check pass (spec.md §8 category 2).
type CheckError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *CheckError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "type error"
	}
	return e.Diagnostics[0].Message
}

// Parse lexes and parses source into a Program, aggregating lexer and
// parser diagnostics. file is used only to label Diagnostic.File.
func Parse(source, file string) (*ast.Program, error) {
	l := lexer.New(source)
	p := parser.New(l)
	prog := p.ParseProgram()
	var diags []diagnostics.Diagnostic
	diags = append(diags, diagnostics.FromLexErrors(l.Errors(), file)...)
	diags = append(diags, diagnostics.FromParseErrors(p.Errors(), file)...)
	if len(diags) > 0 {
		return nil, &ParseError{Diagnostics: diags}
	}
	return prog, nil
}

// Check runs the type checker over an already-parsed Program. Every
// builtin namespace (console, Math, JSON, ...) is registered ambiently as
// types.Any before checking, since internal/typecheck has no structural
// signature for the native registry's entries and an unregistered global
// would otherwise be reported as an undefined name despite running fine.
func Check(prog *ast.Program, file string) error {
	checker := typecheck.NewChecker()
	reg := builtins.NewRegistry()
	builtins.RegisterAll(reg)
	for name := range reg.BuildGlobals() {
		checker.RegisterGlobal(name, types.Any)
	}
	diags, _ := checker.Check(prog)
	if diags.HasErrors() {
		return &CheckError{Diagnostics: diagnostics.FromCheckerDiagnostics(diags, file)}
	}
	return nil
}

// Options configures a Run.
type Options struct {
	// SkipTypeCheck runs the script without first type-checking it (the
	// CLI's `run` and `compile` set it only for --no-typecheck; `check`
	// always type-checks and never executes).
	SkipTypeCheck bool
}

// Result carries a Run's value alongside which engine actually executed
// the script, so callers and golden tests can tell bytecode and
// interpreter runs apart without re-deriving engine choice themselves.
type Result struct {
	Value  runtime.Value
	Engine Engine
}

// Run parses (and, unless skipped, type-checks) source, then executes it:
// first trying the bytecode compiler and VM, falling back to the
// tree-walking interpreter when the compiler rejects a construct it does
// not yet lower.
func Run(source, file string, opts Options) (Result, error) {
	prog, err := Parse(source, file)
	if err != nil {
		return Result{}, err
	}
	if !opts.SkipTypeCheck {
		if err := Check(prog, file); err != nil {
			return Result{}, err
		}
	}
	return RunProgram(prog)
}

// RunProgram executes an already-parsed (and optionally already-checked)
// Program, applying the same bytecode-first, interpreter-fallback dispatch
// as Run.
func RunProgram(prog *ast.Program) (Result, error) {
	reg := builtins.NewRegistry()
	builtins.RegisterAll(reg)

	if chunk, err := bytecode.Compile(prog); err == nil {
		vm := bytecode.NewVM(reg)
		val, err := vm.Run(chunk)
		if err != nil {
			return Result{Engine: EngineBytecode}, fmt.Errorf("runtime error: %w", err)
		}
		return Result{Value: val, Engine: EngineBytecode}, nil
	}

	interp := interpreter.New(reg)
	val, err := interp.Run(prog)
	if err != nil {
		return Result{Engine: EngineInterpreter}, fmt.Errorf("runtime error: %w", err)
	}
	return Result{Value: val, Engine: EngineInterpreter}, nil
}

// CompileResult carries a successfully bytecode-compiled chunk plus a
// human-readable disassembly, for `tsforge compile`/`--disassemble`.
type CompileResult struct {
	Chunk        *bytecode.Chunk
	Disassembly  string
	Interpreted  bool // true when the bytecode compiler rejected the script
}

// Compile type-checks and attempts bytecode compilation without executing
// the script, for `tsforge compile`. When the script uses a
// bytecode-unsupported construct, Interpreted is set and Disassembly is
// empty rather than Compile returning an error, since the script is still
// valid tsforge input — just one the bytecode backend cannot lower yet.
func Compile(source, file string, opts Options) (CompileResult, error) {
	prog, err := Parse(source, file)
	if err != nil {
		return CompileResult{}, err
	}
	if !opts.SkipTypeCheck {
		if err := Check(prog, file); err != nil {
			return CompileResult{}, err
		}
	}
	chunk, err := bytecode.Compile(prog)
	if err != nil {
		return CompileResult{Interpreted: true}, nil
	}
	return CompileResult{Chunk: chunk, Disassembly: bytecode.DisassembleToString(chunk)}, nil
}
