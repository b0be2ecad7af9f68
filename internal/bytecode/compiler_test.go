package bytecode

import (
	"strings"
	"testing"
)

func TestCompile_ProducesTrailingReturn(t *testing.T) {
	chunk, err := Compile(parseSource(t, `1 + 2;`))
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if len(chunk.Code) == 0 {
		t.Fatal("expected at least one instruction")
	}
	last := chunk.Code[len(chunk.Code)-1]
	if last.Op != OpReturn {
		t.Fatalf("expected chunk to end with OpReturn, got %s", last.Op)
	}
}

func TestCompile_ClassDeclarationUnsupported(t *testing.T) {
	_, err := Compile(parseSource(t, `class Foo {}`))
	if err == nil {
		t.Fatal("expected class declarations to be rejected by the native compiler")
	}
}

func TestCompile_AwaitUnsupported(t *testing.T) {
	_, err := Compile(parseSource(t, `async function f() { await g(); }`))
	if err == nil {
		t.Fatal("expected an async function body with await to be rejected by the native compiler")
	}
}

func TestCompile_FunctionClosesOverUpvalue(t *testing.T) {
	chunk, err := Compile(parseSource(t, `
		function outer() {
			let x = 1;
			return function() { return x; };
		}
	`))
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	var found bool
	for _, proto := range chunk.Protos {
		if proto.Name == "outer" {
			for _, inner := range proto.Chunk.Protos {
				if len(inner.Upvalues) == 1 && inner.Upvalues[0].IsLocal {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatal("expected the inner function's proto to capture one local upvalue")
	}
}

func TestDisassembleToString_DoesNotPanicAndMentionsOpcodes(t *testing.T) {
	chunk, err := Compile(parseSource(t, `
		function add(a, b) { return a + b; }
		add(1, 2);
	`))
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	out := DisassembleToString(chunk)
	if !strings.Contains(out, "RETURN") {
		t.Fatalf("expected disassembly to mention RETURN, got:\n%s", out)
	}
	if !strings.Contains(out, "CALL") {
		t.Fatalf("expected disassembly to mention CALL, got:\n%s", out)
	}
}
