package validator

import (
	"testing"

	"github.com/primestruct/corelang/ast"
)

func name(n string) *ast.Expr { return &ast.Expr{Kind: ast.KindName, Name: n} }

func lit32(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.KindLiteral, IntValue: v, IntWidth: 32}
}

func strLit(s string) *ast.Expr {
	return &ast.Expr{Kind: ast.KindStringLiteral, StringValue: s}
}

func call(fullPath string, args ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.KindCall, Name: fullPath, Args: args}
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

func program(defs ...*ast.Definition) *ast.Program {
	return &ast.Program{Definitions: defs}
}

func TestValidateEmptyEntrySucceeds(t *testing.T) {
	entry := &ast.Definition{
		FullPath: "/main",
		Body:     []*ast.Expr{returnStmt(nil)},
	}
	res := Validate(program(entry), "/main", nil, nil)
	if !res.Ok {
		t.Fatalf("expected success, got %v", res.Error)
	}
}

func TestValidateEntryRejectsTwoParams(t *testing.T) {
	entry := &ast.Definition{
		FullPath: "/main",
		Params: []*ast.Expr{
			{Kind: ast.KindCall, Name: "a", Transforms: []*ast.Expr{typeTransform("int32")}},
			{Kind: ast.KindCall, Name: "b", Transforms: []*ast.Expr{typeTransform("int32")}},
		},
		Body: []*ast.Expr{returnStmt(nil)},
	}
	res := Validate(program(entry), "/main", nil, nil)
	if res.Ok {
		t.Fatal("expected failure for two-parameter entry")
	}
}

func TestValidateEntryAcceptsArgvParam(t *testing.T) {
	entry := &ast.Definition{
		FullPath: "/main",
		Params: []*ast.Expr{
			{Kind: ast.KindCall, Name: "args", Transforms: []*ast.Expr{typeTransform("array", "string")}},
		},
		Body: []*ast.Expr{returnStmt(nil)},
	}
	res := Validate(program(entry), "/main", nil, nil)
	if !res.Ok {
		t.Fatalf("expected success, got %v", res.Error)
	}
}

func TestValidateReturnTypeMismatch(t *testing.T) {
	entry := &ast.Definition{
		FullPath:   "/main",
		Transforms: []*ast.Expr{returnTransform("int32")},
		Body:       []*ast.Expr{returnStmt(strLit("nope"))},
	}
	res := Validate(program(entry), "/main", nil, nil)
	if res.Ok {
		t.Fatal("expected return-type mismatch failure")
	}
}

func TestValidateReturnTypeMatches(t *testing.T) {
	entry := &ast.Definition{
		FullPath:   "/main",
		Transforms: []*ast.Expr{returnTransform("int32")},
		Body:       []*ast.Expr{returnStmt(lit32(0))},
	}
	res := Validate(program(entry), "/main", nil, nil)
	if !res.Ok {
		t.Fatalf("expected success, got %v", res.Error)
	}
}

func TestValidateBindingInfersTypeFromInitializer(t *testing.T) {
	entry := &ast.Definition{
		FullPath: "/main",
		Body: []*ast.Expr{
			bindingStmt("x", nil, lit32(5)),
			returnStmt(nil),
		},
	}
	res := Validate(program(entry), "/main", nil, nil)
	if !res.Ok {
		t.Fatalf("expected success, got %v", res.Error)
	}
}

func TestValidateMathBuiltinRequiresImport(t *testing.T) {
	entry := &ast.Definition{
		FullPath: "/main",
		Body: []*ast.Expr{
			bindingStmt("x", nil, call("sqrt", lit32(4))),
			returnStmt(nil),
		},
	}
	res := Validate(program(entry), "/main", nil, nil)
	if res.Ok {
		t.Fatal("expected failure: sqrt used without a /math import")
	}
}

func TestValidateMathBuiltinSucceedsWithWildcardImport(t *testing.T) {
	entry := &ast.Definition{
		FullPath: "/main",
		Body: []*ast.Expr{
			bindingStmt("x", nil, call("sqrt", lit32(4))),
			returnStmt(nil),
		},
	}
	prog := program(entry)
	prog.Imports = []*ast.Import{{Kind: ast.ImportMathWildcard, Prefix: "/math"}}
	res := Validate(prog, "/main", nil, nil)
	if !res.Ok {
		t.Fatalf("expected success, got %v", res.Error)
	}
}

func TestValidateEffectGatedCallRequiresDeclaration(t *testing.T) {
	entry := &ast.Definition{
		FullPath: "/main",
		Body: []*ast.Expr{
			call("print_line", strLit("hi")),
			returnStmt(nil),
		},
	}
	res := Validate(program(entry), "/main", nil, nil)
	if res.Ok {
		t.Fatal("expected failure: print_line without io_out")
	}
}

func TestValidateEffectGatedCallSucceedsWithDefaultEffects(t *testing.T) {
	entry := &ast.Definition{
		FullPath: "/main",
		Body: []*ast.Expr{
			call("print_line", strLit("hi")),
			returnStmt(nil),
		},
	}
	res := Validate(program(entry), "/main", []string{"default"}, nil)
	if !res.Ok {
		t.Fatalf("expected success, got %v", res.Error)
	}
}

func TestValidateTransformExclusivityRejected(t *testing.T) {
	entry := &ast.Definition{
		FullPath:   "/main",
		Transforms: []*ast.Expr{{Kind: ast.KindCall, Name: "public"}, {Kind: ast.KindCall, Name: "private"}},
		Body:       []*ast.Expr{returnStmt(nil)},
	}
	res := Validate(program(entry), "/main", nil, nil)
	if res.Ok {
		t.Fatal("expected failure: public and private are mutually exclusive")
	}
}

func TestValidateDuplicateDefinitionRejected(t *testing.T) {
	a := &ast.Definition{FullPath: "/main", Body: []*ast.Expr{returnStmt(nil)}}
	b := &ast.Definition{FullPath: "/main", Body: []*ast.Expr{returnStmt(nil)}}
	res := Validate(program(a, b), "/main", nil, nil)
	if res.Ok {
		t.Fatal("expected failure: duplicate definition path")
	}
}

func TestValidateArrayTemplateArityEnforced(t *testing.T) {
	entry := &ast.Definition{
		FullPath: "/main",
		Body: []*ast.Expr{
			bindingStmt("x", &ast.Expr{Kind: ast.KindCall, Name: "array"}, lit32(0)),
			returnStmt(nil),
		},
	}
	res := Validate(program(entry), "/main", nil, nil)
	if res.Ok {
		t.Fatal("expected failure: array<> with no template argument")
	}
}
