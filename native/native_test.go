package native_test

import (
	"strings"
	"testing"

	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
	"github.com/primestruct/corelang/lower"
	"github.com/primestruct/corelang/native"
)

func lit32(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.KindLiteral, IntValue: v, IntWidth: 32}
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

func returnTransform(typeName string) *ast.Expr {
	return &ast.Expr{Kind: ast.KindCall, Name: "return", TemplateArgs: []string{typeName}}
}

func entryDef(body ...*ast.Expr) *ast.Definition {
	return &ast.Definition{
		FullPath:   "/main",
		Transforms: []*ast.Expr{returnTransform("int32")},
		Body:       body,
	}
}

func TestLowerArithmeticProducesTextWithEntryLabel(t *testing.T) {
	def := entryDef(returnStmt(call("plus", lit32(2), lit32(3))))
	prog := &ast.Program{Definitions: []*ast.Definition{def}}
	res := lower.Lower(prog, "/main")
	if !res.Ok {
		t.Fatalf("lowering failed: %v", res.Error)
	}
	out := native.Lower(res.Module)
	if !out.Ok {
		t.Fatalf("expected native lowering to succeed, got error %v", out.Error)
	}
	if !strings.Contains(out.Text, "_fn__main:") {
		t.Fatalf("expected an entry label in emitted text, got:\n%s", out.Text)
	}
	if !strings.Contains(out.Text, "add x0, x1, x0") {
		t.Fatalf("expected an add instruction in emitted text, got:\n%s", out.Text)
	}
}

// TestLowerRefusesStringComparison exercises the one opcode combination this
// backend declines: a map literal's internal key lookup emits
// OpCmpEqString regardless of which backend lowering targets
// (lower/collections.go), so the native backend must reject any module
// containing it rather than translate it. The module is built directly
// against the ir package rather than through the lowerer, since the
// lowerer's own map-literal shape is exercised elsewhere and this test only
// needs to prove native.Lower's own refusal policy.
func TestLowerRefusesStringComparison(t *testing.T) {
	mod := ir.NewModule()
	mod.Strings = []string{"k", "other"}
	mod.EntryIndex = mod.AddFunction(ir.Function{
		Name:       "/main",
		NumLocals:  2,
		ParamCount: 0,
		Instructions: []ir.Instruction{
			{Op: ir.OpPushString, Imm: 0},
			{Op: ir.OpPushString, Imm: 1},
			{Op: ir.OpCmpEqString},
			{Op: ir.OpReturnI32},
		},
	})

	out := native.Lower(mod)
	if out.Ok {
		t.Fatalf("expected native backend to refuse a string comparison, got text:\n%s", out.Text)
	}
	if !strings.Contains(out.Error.Error(), "Native lowering error:") {
		t.Fatalf("expected a Native lowering error, got %v", out.Error)
	}
	if !strings.Contains(out.Error.Error(), "string comparisons") {
		t.Fatalf("expected the message to name string comparisons, got %v", out.Error)
	}
}
