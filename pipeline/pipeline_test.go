package pipeline_test

import (
	"bytes"
	"testing"

	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
	"github.com/primestruct/corelang/pipeline"
	"github.com/primestruct/corelang/vm"
)

func lit32(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.KindLiteral, IntValue: v, IntWidth: 32}
}

func call(n string, args ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.KindCall, Name: n, Args: args}
}

func returnStmt(arg *ast.Expr) *ast.Expr {
	return call("return", arg)
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

func program(def *ast.Definition) *ast.Program {
	return &ast.Program{Definitions: []*ast.Definition{def}}
}

func opts() pipeline.Options {
	return pipeline.Options{EntryPath: "/main"}
}

func TestRunExecutesOnVMBackend(t *testing.T) {
	prog := program(entryDef(returnStmt(call("plus", lit32(2), lit32(3)))))
	var stdout, stderr bytes.Buffer
	result := pipeline.Run(prog, opts(), vm.Options{Stdout: &stdout, Stderr: &stderr})
	if !result.Ok {
		t.Fatalf("expected successful run, got error %v", result.Error)
	}
	if result.ExitCode != 5 {
		t.Fatalf("expected exit code 5, got %d", result.ExitCode)
	}
}

func TestNativeEmitsAssemblyText(t *testing.T) {
	prog := program(entryDef(returnStmt(call("plus", lit32(2), lit32(3)))))
	result := pipeline.Native(prog, opts())
	if !result.Ok {
		t.Fatalf("expected successful native lowering, got error %v", result.Error)
	}
	if result.Text == "" {
		t.Fatalf("expected non-empty assembly text")
	}
}

func TestSerializeRoundTripsThroughIRDecode(t *testing.T) {
	prog := program(entryDef(returnStmt(lit32(42))))
	var buf bytes.Buffer
	n, diagErr := pipeline.Serialize(prog, opts(), &buf)
	if diagErr != nil {
		t.Fatalf("serialize failed: %v", diagErr)
	}
	if n != buf.Len() {
		t.Fatalf("expected reported byte count %d to match buffer length %d", n, buf.Len())
	}
	module, err := ir.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if module.EntryIndex < 0 || module.EntryIndex >= len(module.Functions) {
		t.Fatalf("decoded module has no valid entry index: %d", module.EntryIndex)
	}
}

func TestRunSurfacesValidationFailureAsDiagnostic(t *testing.T) {
	prog := program(entryDef())
	prog.Definitions[0].FullPath = "/unused"
	result := pipeline.Run(prog, pipeline.Options{EntryPath: "/main"}, vm.Options{})
	if result.Ok {
		t.Fatalf("expected a missing-entry failure, got success")
	}
	if result.Error == nil {
		t.Fatalf("expected a diagnostic on failure")
	}
}
