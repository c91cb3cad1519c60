package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/lower"
	"github.com/primestruct/corelang/vm"
)

func name(n string) *ast.Expr { return &ast.Expr{Kind: ast.KindName, Name: n} }

func lit32(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.KindLiteral, IntValue: v, IntWidth: 32}
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

func entryDef(body ...*ast.Expr) *ast.Definition {
	return &ast.Definition{
		FullPath:   "/main",
		Transforms: []*ast.Expr{returnTransform("int32")},
		Body:       body,
	}
}

func mustRun(t *testing.T, def *ast.Definition, argv []string) (vm.Result, string, string) {
	t.Helper()
	prog := &ast.Program{Definitions: []*ast.Definition{def}}
	res := lower.Lower(prog, "/main")
	if !res.Ok {
		t.Fatalf("lowering failed: %v", res.Error)
	}
	var stdout, stderr bytes.Buffer
	result := vm.Run(res.Module, vm.Options{Stdout: &stdout, Stderr: &stderr, Argv: argv})
	return result, stdout.String(), stderr.String()
}

func TestRunArithmeticReturnsExitCode(t *testing.T) {
	def := entryDef(returnStmt(call("plus", lit32(2), lit32(3))))
	result, _, _ := mustRun(t, def, nil)
	if !result.Ok {
		t.Fatalf("expected successful run, got error %v", result.Error)
	}
	if result.ExitCode != 5 {
		t.Fatalf("expected exit code 5, got %d", result.ExitCode)
	}
}

func TestRunArrayLiteralIndexedLoad(t *testing.T) {
	arrType := typeTransform("array", "int32")
	arrLit := call("array", lit32(4), lit32(7), lit32(9))
	def := entryDef(
		bindingStmt("v", arrType, arrLit),
		returnStmt(call("at", name("v"), lit32(1))),
	)
	result, _, _ := mustRun(t, def, nil)
	if !result.Ok {
		t.Fatalf("expected successful run, got error %v", result.Error)
	}
	if result.ExitCode != 7 {
		t.Fatalf("expected exit code 7, got %d", result.ExitCode)
	}
}

func TestRunOutOfBoundsAbortsWithExitCode3(t *testing.T) {
	arrType := typeTransform("array", "int32")
	arrLit := call("array", lit32(4))
	def := entryDef(
		bindingStmt("v", arrType, arrLit),
		returnStmt(call("at", name("v"), lit32(9))),
	)
	result, _, stderr := mustRun(t, def, nil)
	if !result.Ok {
		t.Fatalf("expected the checked OpExit path to report Ok, got error %v", result.Error)
	}
	if result.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", result.ExitCode)
	}
	if !strings.Contains(stderr, "array index out of bounds") {
		t.Fatalf("expected bounds message on stderr, got %q", stderr)
	}
}

func TestRunPrintLineWritesStdoutWithNewline(t *testing.T) {
	def := entryDef(
		call("print_line", strLit("hello")),
		returnStmt(lit32(0)),
	)
	result, stdout, _ := mustRun(t, def, nil)
	if !result.Ok || result.ExitCode != 0 {
		t.Fatalf("expected a clean exit 0, got %+v", result)
	}
	if stdout != "hello\n" {
		t.Fatalf("expected %q on stdout, got %q", "hello\n", stdout)
	}
}

func TestRunArgvCountReflectsOptionsArgv(t *testing.T) {
	argsParam := &ast.Expr{Kind: ast.KindCall, Name: "args", Transforms: []*ast.Expr{typeTransform("array", "string")}}
	def := &ast.Definition{
		FullPath:   "/main",
		Transforms: []*ast.Expr{returnTransform("int32")},
		Params:     []*ast.Expr{argsParam},
		Body:       []*ast.Expr{returnStmt(call("count", name("args")))},
	}
	result, _, _ := mustRun(t, def, []string{"alpha", "beta"})
	if !result.Ok {
		t.Fatalf("expected successful run, got error %v", result.Error)
	}
	if result.ExitCode != 2 {
		t.Fatalf("expected exit code 2 (argv count), got %d", result.ExitCode)
	}
}
