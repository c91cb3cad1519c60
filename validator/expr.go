package validator

import "github.com/primestruct/corelang/ast"

// locals maps binding names (parameters and block-introduced locals) to
// their inferred Binding info. It is the environment inferExprReturnKind
// and the effect checker both thread through the statement walk.
type locals map[string]*ast.Binding

func (l locals) clone() locals {
	out := make(locals, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// inferExprReturnKind computes the semantic kind of any expression from
// leaves upward. It never fails — callers that need a
// diagnostic on an unrecognized shape check the returned kind against
// ReturnUnknown/ReturnVoid themselves.
func (v *Validator) inferExprReturnKind(expr *ast.Expr, env locals) ast.ReturnKind {
	switch expr.Kind {
	case ast.KindLiteral:
		if expr.IsUnsigned {
			return ast.ReturnUInt64
		}
		if expr.IntWidth == 64 {
			return ast.ReturnInt64
		}
		return ast.ReturnInt32
	case ast.KindFloatLiteral:
		if expr.FloatWidth == 32 {
			return ast.ReturnFloat32
		}
		return ast.ReturnFloat64
	case ast.KindStringLiteral:
		return ast.ReturnString
	case ast.KindBoolLiteral:
		return ast.ReturnBool
	case ast.KindName:
		if b, ok := env[expr.Name]; ok {
			return bindingReturnKind(b)
		}
		return ast.ReturnUnknown
	case ast.KindCall:
		return v.inferCallReturnKind(expr, env)
	default:
		return ast.ReturnUnknown
	}
}

// bindingReturnKind widens a Binding's structural Kind/ValueKind pair to a
// ReturnKind.
func bindingReturnKind(b *ast.Binding) ast.ReturnKind {
	switch b.Kind {
	case ast.BindingArray:
		return ast.ReturnArray
	case ast.BindingVector:
		return ast.ReturnVector
	case ast.BindingMap:
		return ast.ReturnMap
	case ast.BindingPointer:
		return ast.ReturnPointer
	case ast.BindingReference:
		return ast.ReturnReference
	case ast.BindingString:
		return ast.ReturnString
	default:
		return ast.ValueKindToReturnKind(b.ValueKind)
	}
}

var arithmeticNames = map[string]bool{"plus": true, "minus": true, "times": true, "divide": true, "modulo": true}
var comparisonNames = map[string]bool{
	"equals": true, "not_equals": true, "less_than": true, "less_equal": true,
	"greater_than": true, "greater_equal": true,
}

func (v *Validator) inferCallReturnKind(expr *ast.Expr, env locals) ast.ReturnKind {
	if b, ok := env[expr.Name]; ok && len(expr.Args) == 0 && expr.Kind == ast.KindCall && expr.NamespacePrefix == "" {
		// Bare-name locals sometimes arrive already tagged KindCall by the
		// external parser when they appear in call position (zero-arg
		// "call" and bare name are syntactically identical in the surface
		// grammar). Treat them as the Name case.
		return bindingReturnKind(b)
	}
	switch {
	case arithmeticNames[expr.Name]:
		return v.inferArithmeticKind(expr, env)
	case comparisonNames[expr.Name]:
		return ast.ReturnBool
	case expr.Name == "and" || expr.Name == "or" || expr.Name == "not":
		return ast.ReturnBool
	case expr.Name == "location":
		return ast.ReturnReference
	case expr.Name == "at" || expr.Name == "at_unsafe":
		return v.inferIndexedElementKind(expr, env)
	case expr.Name == "count" || expr.Name == "capacity":
		return ast.ReturnInt32
	case expr.Name == "pi" || expr.Name == "tau" || expr.Name == "e":
		return ast.ReturnFloat64
	case mathBuiltins[expr.Name]:
		return v.inferMathCallKind(expr, env)
	case expr.Name == "try":
		if len(expr.Args) == 1 {
			return v.inferExprReturnKind(expr.Args[0], env)
		}
		return ast.ReturnUnknown
	default:
		if v.isStructConstructor(expr) {
			return ast.ReturnStruct
		}
		if def, ok := v.defs[v.resolveCalleePath(expr)]; ok {
			return v.definitionReturnKind(def)
		}
		return ast.ReturnUnknown
	}
}

func (v *Validator) inferArithmeticKind(expr *ast.Expr, env locals) ast.ReturnKind {
	if len(expr.Args) != 2 {
		return ast.ReturnUnknown
	}
	left := v.inferExprReturnKind(expr.Args[0], env)
	right := v.inferExprReturnKind(expr.Args[1], env)
	if left == ast.ReturnPointer {
		if (expr.Name == "plus" || expr.Name == "minus") && right.IsInteger() {
			return ast.ReturnPointer
		}
		return ast.ReturnUnknown
	}
	return combineNumericKinds(left, right)
}

// combineNumericKinds implements the numeric-combination rule shared by
// arithmetic, clamp, and min/max: operands must be the same numeric kind.
func combineNumericKinds(a, b ast.ReturnKind) ast.ReturnKind {
	if !a.IsNumeric() || !b.IsNumeric() {
		return ast.ReturnUnknown
	}
	if a != b {
		return ast.ReturnUnknown
	}
	return a
}

func (v *Validator) inferIndexedElementKind(expr *ast.Expr, env locals) ast.ReturnKind {
	if len(expr.Args) == 0 {
		return ast.ReturnUnknown
	}
	name := expr.Args[0]
	if name.Kind != ast.KindName {
		return ast.ReturnUnknown
	}
	b, ok := env[name.Name]
	if !ok {
		return ast.ReturnUnknown
	}
	switch b.Kind {
	case ast.BindingArray, ast.BindingVector:
		return ast.ValueKindToReturnKind(b.ElemValueKind)
	case ast.BindingMap:
		return ast.ValueKindToReturnKind(b.ElemValueKind)
	default:
		return ast.ReturnUnknown
	}
}

func (v *Validator) inferMathCallKind(expr *ast.Expr, env locals) ast.ReturnKind {
	if len(expr.Args) == 0 {
		return ast.ReturnFloat64
	}
	kind := v.inferExprReturnKind(expr.Args[0], env)
	if expr.Name == "clamp" || expr.Name == "min" || expr.Name == "max" {
		for _, arg := range expr.Args[1:] {
			kind = combineNumericKinds(kind, v.inferExprReturnKind(arg, env))
		}
		return kind
	}
	if kind.IsFloat() {
		return kind
	}
	return ast.ReturnFloat64
}

// definitionReturnKind resolves a definition's declared return type from its
// `[return<T>]` transform, defaulting to Void when absent.
func (v *Validator) definitionReturnKind(def *ast.Definition) ast.ReturnKind {
	rt, ok := def.ReturnTransform()
	if !ok || len(rt.TemplateArgs) == 0 {
		return ast.ReturnVoid
	}
	return typeNameToReturnKind(rt.TemplateArgs[0])
}

func typeNameToReturnKind(name string) ast.ReturnKind {
	switch name {
	case "int", "int32":
		return ast.ReturnInt32
	case "int64":
		return ast.ReturnInt64
	case "uint64":
		return ast.ReturnUInt64
	case "float", "float32":
		return ast.ReturnFloat32
	case "float64", "double":
		return ast.ReturnFloat64
	case "bool":
		return ast.ReturnBool
	case "string":
		return ast.ReturnString
	case "array":
		return ast.ReturnArray
	case "vector":
		return ast.ReturnVector
	case "map":
		return ast.ReturnMap
	case "Pointer":
		return ast.ReturnPointer
	case "Reference":
		return ast.ReturnReference
	default:
		return ast.ReturnStruct
	}
}

// typeNameForReturnKind is the inverse of typeNameToReturnKind, used for
// mismatch diagnostics ("return type mismatch: expected <name>").
func typeNameForReturnKind(k ast.ReturnKind) string {
	switch k {
	case ast.ReturnArray:
		return "array"
	default:
		return k.String()
	}
}
