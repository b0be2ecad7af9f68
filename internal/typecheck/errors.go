package typecheck

import (
	"fmt"
	"strings"

	"github.com/scriptlang/tsforge/internal/token"
)

// ErrorKind classifies a Diagnostic, mirroring internal/semantic's
// SemanticErrorType enumeration adapted to the structural type system.
type ErrorKind string

const (
	ErrTypeMismatch      ErrorKind = "type_mismatch"
	ErrUndefinedName     ErrorKind = "undefined_name"
	ErrUndefinedType     ErrorKind = "undefined_type"
	ErrDuplicateDecl     ErrorKind = "duplicate_declaration"
	ErrConstAssignment   ErrorKind = "const_assignment"
	ErrReadonlyAssignment ErrorKind = "readonly_assignment"
	ErrInvalidOperation  ErrorKind = "invalid_operation"
	ErrMissingProperty   ErrorKind = "missing_property"
	ErrExcessProperty    ErrorKind = "excess_property"
	ErrArityMismatch     ErrorKind = "arity_mismatch"
	ErrInvalidReturn     ErrorKind = "invalid_return"
	ErrInvalidBreak      ErrorKind = "invalid_break_or_continue"
	ErrAbstractInstantiation ErrorKind = "abstract_instantiation"
	ErrNotGeneric        ErrorKind = "not_generic"
)

// Diagnostic is one type-checking error or hint, collected rather than
// raised, so a single Check call reports every problem in a compilation
// unit instead of stopping at the first (spec.md §4.3: checking never
// aborts early).
type Diagnostic struct {
	Kind    ErrorKind
	Message string
	Pos     token.Position
	Hint    bool
}

func (d Diagnostic) String() string {
	sev := "error"
	if d.Hint {
		sev = "hint"
	}
	return fmt.Sprintf("%s: %s: %s", d.Pos.String(), sev, d.Message)
}

// Diagnostics is a collected list of Diagnostic, implementing error so the
// list can be used directly as a Go error once Check completes.
type Diagnostics []Diagnostic

func (d Diagnostics) Error() string {
	if len(d) == 0 {
		return "no type errors"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d type error(s):\n", d.errorCount())
	for _, diag := range d {
		if !diag.Hint {
			sb.WriteString("  " + diag.String() + "\n")
		}
	}
	return sb.String()
}

func (d Diagnostics) errorCount() int {
	n := 0
	for _, diag := range d {
		if !diag.Hint {
			n++
		}
	}
	return n
}

// HasErrors reports whether any non-hint Diagnostic was recorded.
func (d Diagnostics) HasErrors() bool {
	return d.errorCount() > 0
}
