package lower

import (
	"testing"

	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
)

func name(n string) *ast.Expr { return &ast.Expr{Kind: ast.KindName, Name: n} }

func lit32(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.KindLiteral, IntValue: v, IntWidth: 32}
}

func lit64(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.KindLiteral, IntValue: v, IntWidth: 64}
}

func strLit(s string) *ast.Expr {
	return &ast.Expr{Kind: ast.KindStringLiteral, StringValue: s}
}

func call(n string, args ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.KindCall, Name: n, Args: args}
}

func returnStmt(arg *ast.Expr) *ast.Expr {
	e := call("return")
	if arg != nil {
		e.Args = []*ast.Expr{arg}
	}
	return e
}

func bindingStmt(localName string, typeTransform *ast.Expr, initializer *ast.Expr) *ast.Expr {
	e := &ast.Expr{Kind: ast.KindCall, Name: localName, IsBinding: true, Args: []*ast.Expr{initializer}}
	if typeTransform != nil {
		e.Transforms = []*ast.Expr{typeTransform}
	}
	return e
}

func typeTransform(n string, templateArgs ...string) *ast.Expr {
	return &ast.Expr{Kind: ast.KindCall, Name: n, TemplateArgs: templateArgs}
}

func returnTransform(typeName string) *ast.Expr {
	return &ast.Expr{Kind: ast.KindCall, Name: "return", TemplateArgs: []string{typeName}}
}

func param(n, typeName string) *ast.Expr {
	return &ast.Expr{Kind: ast.KindCall, Name: n, Transforms: []*ast.Expr{typeTransform(typeName)}}
}

func program(defs ...*ast.Definition) *ast.Program {
	return &ast.Program{Definitions: defs}
}

func ops(instrs []ir.Instruction) []ir.Opcode {
	out := make([]ir.Opcode, len(instrs))
	for i, in := range instrs {
		out[i] = in.Op
	}
	return out
}

func countOp(instrs []ir.Instruction, op ir.Opcode) int {
	n := 0
	for _, in := range instrs {
		if in.Op == op {
			n++
		}
	}
	return n
}

func mustLower(t *testing.T, prog *ast.Program) *ir.Module {
	t.Helper()
	res := Lower(prog, "/main")
	if !res.Ok {
		t.Fatalf("expected successful lowering, got %v", res.Error)
	}
	return res.Module
}

func entryFunc(t *testing.T, mod *ir.Module) ir.Function {
	t.Helper()
	return mod.Functions[mod.EntryIndex]
}

func TestLowerArithmeticReturnsPushAddReturn(t *testing.T) {
	entry := &ast.Definition{
		FullPath:   "/main",
		Transforms: []*ast.Expr{returnTransform("int32")},
		Body:       []*ast.Expr{returnStmt(call("plus", lit32(2), lit32(3)))},
	}
	mod := mustLower(t, program(entry))
	fn := entryFunc(t, mod)

	want := []ir.Opcode{ir.OpPushI32, ir.OpPushI32, ir.OpAddI32, ir.OpReturnI32}
	got := ops(fn.Instructions)
	if len(got) != len(want) {
		t.Fatalf("instruction count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i, op := range want {
		if got[i] != op {
			t.Errorf("instr[%d] = %v, want %v", i, got[i], op)
		}
	}
}

func TestLowerIfElseBranchesToDistinctArms(t *testing.T) {
	entry := &ast.Definition{
		FullPath:   "/main",
		Transforms: []*ast.Expr{returnTransform("int32")},
		Body: []*ast.Expr{
			{
				Kind: ast.KindCall, Name: "if",
				Args: []*ast.Expr{call("equals", lit32(1), lit32(1))},
				BodyArguments: []*ast.Expr{
					returnStmt(lit32(10)),
					{Kind: ast.KindCall, Name: "else", HasBodyArguments: true, BodyArguments: []*ast.Expr{
						returnStmt(lit32(20)),
					}},
				},
			},
		},
	}
	mod := mustLower(t, program(entry))
	fn := entryFunc(t, mod)

	if countOp(fn.Instructions, ir.OpReturnI32) != 2 {
		t.Fatalf("expected two ReturnI32 (then/else arms), got instructions %v", ops(fn.Instructions))
	}
	if countOp(fn.Instructions, ir.OpJumpIfZero) != 1 {
		t.Fatalf("expected one JumpIfZero guarding the else arm, got %v", ops(fn.Instructions))
	}
	if countOp(fn.Instructions, ir.OpJump) != 1 {
		t.Fatalf("expected one unconditional Jump past the then arm, got %v", ops(fn.Instructions))
	}
}

func TestLowerRepeatLoopsBackToStart(t *testing.T) {
	entry := &ast.Definition{
		FullPath: "/main",
		Body: []*ast.Expr{
			{
				Kind:          ast.KindCall,
				Name:          "repeat",
				Args:          []*ast.Expr{lit32(3)},
				BodyArguments: []*ast.Expr{call("plus", lit32(1), lit32(1))},
			},
			returnStmt(nil),
		},
	}
	mod := mustLower(t, program(entry))
	fn := entryFunc(t, mod)

	var jumpIdx = -1
	for i, in := range fn.Instructions {
		if in.Op == ir.OpJump {
			jumpIdx = i
		}
	}
	if jumpIdx == -1 {
		t.Fatalf("expected a backward Jump closing the loop, got %v", ops(fn.Instructions))
	}
	if int(fn.Instructions[jumpIdx].Imm) >= jumpIdx {
		t.Errorf("loop Jump target %d should precede the jump itself at %d", fn.Instructions[jumpIdx].Imm, jumpIdx)
	}
	if countOp(fn.Instructions, ir.OpPop) != 1 {
		t.Errorf("expected the loop body's discarded plus() result to be popped, got %v", ops(fn.Instructions))
	}
}

func TestLowerCollectionLiteralAndBoundsCheckedLoad(t *testing.T) {
	entry := &ast.Definition{
		FullPath: "/main",
		Body: []*ast.Expr{
			bindingStmt("xs", typeTransform("array", "int32"), call("array", lit32(1), lit32(2), lit32(3))),
			bindingStmt("v", nil, call("at", name("xs"), lit32(0))),
			returnStmt(nil),
		},
	}
	mod := mustLower(t, program(entry))
	fn := entryFunc(t, mod)

	if countOp(fn.Instructions, ir.OpHeapAlloc) != 1 {
		t.Fatalf("expected one heap allocation for the array literal, got %v", ops(fn.Instructions))
	}
	if countOp(fn.Instructions, ir.OpExit) != 2 {
		t.Errorf("expected two bounds-check abort paths (negative-index and out-of-range; neither taken at this literal index, but both prologues are always emitted), got %v", ops(fn.Instructions))
	}
	if countOp(fn.Instructions, ir.OpLoadIndirect) != 2 {
		t.Errorf("expected two indirect loads: the count-slot bounds check and the element read, got %v", ops(fn.Instructions))
	}
}

func TestLowerMapInsertAndLookup(t *testing.T) {
	entry := &ast.Definition{
		FullPath: "/main",
		Body: []*ast.Expr{
			bindingStmt("m", typeTransform("map", "string", "int32"), call("map")),
			call("insert", name("m"), strLit("k"), lit32(7)),
			bindingStmt("v", nil, call("at", name("m"), strLit("k"))),
			returnStmt(nil),
		},
	}
	mod := mustLower(t, program(entry))
	fn := entryFunc(t, mod)

	if countOp(fn.Instructions, ir.OpHeapAlloc) != 1 {
		t.Fatalf("expected one heap allocation for the empty map literal, got %v", ops(fn.Instructions))
	}
	if countOp(fn.Instructions, ir.OpCmpEqString) != 1 {
		t.Errorf("expected the lookup's key comparison to use string equality, got %v", ops(fn.Instructions))
	}
	if countOp(fn.Instructions, ir.OpJump) < 1 {
		t.Errorf("expected the lookup's scan loop to jump back to its loop start, got %v", ops(fn.Instructions))
	}
}

// TestLowerClampInstructionShape pins emitClamp's exact four-temp diamond —
// the shape hand-written IR fixtures are built against — so a future
// change to the diamond's instruction count or temp-slot numbering shows up
// here first.
func TestLowerClampInstructionShape(t *testing.T) {
	entry := &ast.Definition{
		FullPath:   "/main",
		Transforms: []*ast.Expr{returnTransform("int32")},
		Body:       []*ast.Expr{returnStmt(call("clamp", lit32(5), lit32(-1), lit32(10)))},
	}
	mod := mustLower(t, program(entry))
	fn := entryFunc(t, mod)

	want := []ir.Opcode{
		ir.OpPushI32, ir.OpStoreLocal, // v
		ir.OpPushI32, ir.OpStoreLocal, // lo
		ir.OpPushI32, ir.OpStoreLocal, // hi
		ir.OpLoadLocal, ir.OpLoadLocal, ir.OpCmpLtI32, ir.OpJumpIfZero, // v < lo ?
		ir.OpLoadLocal, ir.OpStoreLocal, // result = lo
		ir.OpJump,
		ir.OpLoadLocal, ir.OpStoreLocal, // result = v
		ir.OpLoadLocal, ir.OpLoadLocal, ir.OpCmpGtI32, ir.OpJumpIfZero, // result > hi ?
		ir.OpLoadLocal, ir.OpStoreLocal, // result = hi
		ir.OpLoadLocal, // final result
		ir.OpReturnI32,
	}
	got := ops(fn.Instructions)
	if len(got) != len(want) {
		t.Fatalf("instruction count = %d, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i, op := range want {
		if got[i] != op {
			t.Errorf("instr[%d] = %v, want %v", i, got[i], op)
		}
	}
	if fn.NumLocals != 4 {
		t.Errorf("NumLocals = %d, want 4 (v, lo, hi, result)", fn.NumLocals)
	}

	toLo := fn.Instructions[9]
	if int(toLo.Imm) != 13 {
		t.Errorf("v<lo JumpIfZero targets %d, want 13 (the v-is-result arm)", toLo.Imm)
	}
	skipV := fn.Instructions[12]
	if int(skipV.Imm) != 15 {
		t.Errorf("post-lo-arm Jump targets %d, want 15 (start of the hi diamond)", skipV.Imm)
	}
	notAboveHi := fn.Instructions[18]
	if int(notAboveHi.Imm) != 21 {
		t.Errorf("result>hi JumpIfZero targets %d, want 21 (final LoadLocal)", notAboveHi.Imm)
	}
}

func TestLowerInlinesUserCallWithNoFunctionCall(t *testing.T) {
	double := &ast.Definition{
		FullPath:   "/util/double",
		Transforms: []*ast.Expr{returnTransform("int32")},
		Params:     []*ast.Expr{param("x", "int32")},
		Body:       []*ast.Expr{returnStmt(call("times", name("x"), lit32(2)))},
	}
	entry := &ast.Definition{
		FullPath:   "/main",
		Transforms: []*ast.Expr{returnTransform("int32")},
		Body:       []*ast.Expr{returnStmt(call("double", lit32(5)))},
	}
	prog := program(entry, double)
	prog.Imports = []*ast.Import{{Kind: ast.ImportNamespaceAlias, Prefix: "/util"}}

	mod := mustLower(t, prog)
	fn := entryFunc(t, mod)

	if countOp(fn.Instructions, ir.OpCallFunction) != 0 {
		t.Fatalf("expected double() to be inlined with no OpCallFunction, got %v", ops(fn.Instructions))
	}
	if countOp(fn.Instructions, ir.OpMulI32) != 1 {
		t.Errorf("expected the inlined body's times() to lower to OpMulI32, got %v", ops(fn.Instructions))
	}
	if countOp(fn.Instructions, ir.OpReturnI32) != 1 {
		t.Errorf("expected exactly one real return (the inlined return becomes a store+jump), got %v", ops(fn.Instructions))
	}
}

func TestLowerFallsBackToCallFunctionOnCycle(t *testing.T) {
	fact := &ast.Definition{
		FullPath:   "/fact",
		Transforms: []*ast.Expr{returnTransform("int32")},
		Params:     []*ast.Expr{param("n", "int32")},
		Body:       []*ast.Expr{returnStmt(call("fact", name("n")))},
	}
	entry := &ast.Definition{
		FullPath:   "/main",
		Transforms: []*ast.Expr{returnTransform("int32")},
		Body:       []*ast.Expr{returnStmt(call("fact", lit32(5)))},
	}
	mod := mustLower(t, program(entry, fact))
	fn := entryFunc(t, mod)

	if countOp(fn.Instructions, ir.OpCallFunction) != 1 {
		t.Fatalf("expected exactly one OpCallFunction for the self-referential inner call, got %v", ops(fn.Instructions))
	}
}

func TestLowerTryPropagatesErrorAndUnpacksPayload(t *testing.T) {
	readResult := &ast.Definition{
		FullPath:   "/readResult",
		Transforms: []*ast.Expr{returnTransform("int64")},
		Body:       []*ast.Expr{returnStmt(lit64(0))},
	}
	entry := &ast.Definition{
		FullPath:   "/main",
		Transforms: []*ast.Expr{returnTransform("int64")},
		Body: []*ast.Expr{
			bindingStmt("x", nil, call("try", call("readResult"))),
			returnStmt(name("x")),
		},
	}
	mod := mustLower(t, program(entry, readResult))
	fn := entryFunc(t, mod)

	if countOp(fn.Instructions, ir.OpModI64) != 1 {
		t.Errorf("expected one error-code extraction via OpModI64, got %v", ops(fn.Instructions))
	}
	if countOp(fn.Instructions, ir.OpDivI64) != 1 {
		t.Errorf("expected one payload extraction via OpDivI64, got %v", ops(fn.Instructions))
	}
	if countOp(fn.Instructions, ir.OpReturnI64) != 2 {
		t.Errorf("expected two ReturnI64: the error-propagation exit and the normal return, got %v", ops(fn.Instructions))
	}
	for _, in := range fn.Instructions {
		if in.Op == ir.OpPushI64 && in.Imm == resultModulus {
			return
		}
	}
	t.Errorf("expected a PushI64 %d (resultModulus) used to mod/div the packed result, got %v", uint64(resultModulus), fn.Instructions)
}

func TestLowerArgvAccessUsesArgvOpcodesNotStringTable(t *testing.T) {
	entry := &ast.Definition{
		FullPath: "/main",
		Params:   []*ast.Expr{param("args", "array")},
		Body: []*ast.Expr{
			call("print_line", call("at", name("args"), lit32(0))),
			returnStmt(nil),
		},
	}
	entry.Params[0].Transforms = []*ast.Expr{typeTransform("array", "string")}

	mod := mustLower(t, program(entry))
	fn := entryFunc(t, mod)

	if countOp(fn.Instructions, ir.OpArgvCount) == 0 {
		t.Fatalf("expected the argv bounds check to use OpArgvCount, got %v", ops(fn.Instructions))
	}
	if countOp(fn.Instructions, ir.OpPrintArgv) != 1 {
		t.Errorf("expected print_line on an argv-backed string to use OpPrintArgv, got %v", ops(fn.Instructions))
	}
	if countOp(fn.Instructions, ir.OpPrintString) != 2 {
		t.Errorf("expected OpPrintString only from the two bounds-check abort messages, not from printing the argv value itself, got %v", ops(fn.Instructions))
	}
}
