package ast

import "testing"

func TestFullName(t *testing.T) {
	e := &Expr{Kind: KindCall, Name: "sin"}
	if got := e.FullName(); got != "sin" {
		t.Errorf("FullName() = %q, want %q", got, "sin")
	}
	e.NamespacePrefix = "/math"
	if got := e.FullName(); got != "/math/sin" {
		t.Errorf("FullName() = %q, want %q", got, "/math/sin")
	}
}

func TestTransformLookup(t *testing.T) {
	ret := &Expr{Kind: KindCall, Name: "return", TemplateArgs: []string{"int"}}
	e := &Expr{Kind: KindCall, Name: "main", Transforms: []*Expr{ret}}
	got, ok := e.Transform("return")
	if !ok || got != ret {
		t.Fatalf("Transform(\"return\") = %v, %v; want %v, true", got, ok, ret)
	}
	if e.HasTransform("mut") {
		t.Error("HasTransform(\"mut\") = true, want false")
	}
}

func TestHasNamedArguments(t *testing.T) {
	e := &Expr{Kind: KindCall, Name: "f", Args: []*Expr{{}, {}}, ArgNames: []string{"", "key"}}
	if !e.HasNamedArguments() {
		t.Error("HasNamedArguments() = false, want true")
	}
	e.ArgNames = []string{"", ""}
	if e.HasNamedArguments() {
		t.Error("HasNamedArguments() = true, want false")
	}
}

func TestUnwrapEnvelope(t *testing.T) {
	value := &Expr{Kind: KindCall, Name: "Point"}
	block := &Expr{
		Kind:             KindCall,
		Name:             "block",
		HasBodyArguments: true,
		BodyArguments:    []*Expr{value},
	}
	isBuiltin := func(e *Expr) bool { return e.Name == "block" }
	got, ok := block.UnwrapEnvelope(false, isBuiltin)
	if !ok || got != value {
		t.Fatalf("UnwrapEnvelope() = %v, %v; want %v, true", got, ok, value)
	}

	notBlock := &Expr{Kind: KindCall, Name: "other", HasBodyArguments: true, BodyArguments: []*Expr{value}}
	if _, ok := notBlock.UnwrapEnvelope(false, isBuiltin); ok {
		t.Error("UnwrapEnvelope() on non-builtin block call = true, want false")
	}
}

func TestValueKindToReturnKind(t *testing.T) {
	cases := map[ValueKind]ReturnKind{
		ValueInt32:   ReturnInt32,
		ValueFloat64: ReturnFloat64,
		ValueString:  ReturnString,
		ValueUnknown: ReturnUnknown,
	}
	for in, want := range cases {
		if got := ValueKindToReturnKind(in); got != want {
			t.Errorf("ValueKindToReturnKind(%v) = %v, want %v", in, got, want)
		}
	}
}
