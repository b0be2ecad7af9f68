package bytecode

import (
	"fmt"
	"io"
	"strings"
)

// Disassembler prints a compiled Chunk (and, recursively, every Proto it
// references) in a human-readable form, grounded on the teacher's own
// Disassembler idiom (offset/line header, then an opcode-specific operand
// rendering) but collapsed to one generic operand printer: the new
// Instruction shape carries at most two plain int operands (A, B) instead
// of the teacher's packed-word encoding split across per-category
// decoders, so one switch suffices instead of the teacher's eleven
// tryDisassemble* dispatchers.
type Disassembler struct {
	writer io.Writer
	chunk  *Chunk
}

func NewDisassembler(chunk *Chunk, writer io.Writer) *Disassembler {
	return &Disassembler{writer: writer, chunk: chunk}
}

// Disassemble prints the chunk's constant pool, then every instruction,
// then recurses into each nested Proto's chunk (function bodies compile
// into their own Chunk, referenced by OpClosure).
func (d *Disassembler) Disassemble() {
	fmt.Fprintf(d.writer, "== %s ==\n", d.chunk.Name)
	if len(d.chunk.Constants) > 0 {
		fmt.Fprintf(d.writer, "constants:\n")
		for i, c := range d.chunk.Constants {
			fmt.Fprintf(d.writer, "  [%04d] %s\n", i, c.String())
		}
	}
	for offset := range d.chunk.Code {
		d.DisassembleInstruction(offset)
	}
	fmt.Fprintln(d.writer)
	for _, proto := range d.chunk.Protos {
		NewDisassembler(proto.Chunk, d.writer).Disassemble()
	}
}

// DisassembleInstruction prints the instruction at offset, annotating
// jump targets, constant-pool references, and proto indices where the
// opcode carries one.
func (d *Disassembler) DisassembleInstruction(offset int) {
	instr := d.chunk.Code[offset]
	d.printHeader(offset, instr.Line)

	switch instr.Op {
	case OpConstant, OpGetGlobal, OpSetGlobal, OpDefineGlobal,
		OpGetProperty, OpSetProperty, OpDeleteProp, OpTypeofIdent:
		fmt.Fprintf(d.writer, "%-20s %4d '%s'\n", instr.Op, instr.A, d.chunk.Constants[instr.A].String())
	case OpNewRegex:
		fmt.Fprintf(d.writer, "%-20s /%s/%s\n", instr.Op,
			d.chunk.Constants[instr.A].String(), d.chunk.Constants[instr.B].String())
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpNewArray:
		fmt.Fprintf(d.writer, "%-20s %4d\n", instr.Op, instr.A)
	case OpJump, OpJumpIfFalse, OpJumpIfTrue,
		OpJumpIfFalseKeep, OpJumpIfTrueKeep, OpJumpIfNullishKeep:
		fmt.Fprintf(d.writer, "%-20s -> %04d\n", instr.Op, instr.B)
	case OpClosure:
		proto := d.chunk.Protos[instr.A]
		fmt.Fprintf(d.writer, "%-20s %4d '%s' (upvalues=%d)\n", instr.Op, instr.A, proto.Name, len(proto.Upvalues))
	default:
		fmt.Fprintf(d.writer, "%s\n", instr.Op)
	}
}

func (d *Disassembler) printHeader(offset, line int) {
	if offset > 0 && d.chunk.Code[offset-1].Line == line {
		fmt.Fprintf(d.writer, "%04d    | ", offset)
	} else {
		fmt.Fprintf(d.writer, "%04d %4d ", offset, line)
	}
}

// DisassembleToString runs Disassemble against a fresh strings.Builder,
// the form compiler_test.go and pkg/tsforge's Compile use to get emitted
// bytecode as text without wiring up an io.Writer by hand.
func DisassembleToString(chunk *Chunk) string {
	var sb strings.Builder
	NewDisassembler(chunk, &sb).Disassemble()
	return sb.String()
}
