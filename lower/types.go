package lower

import "github.com/primestruct/corelang/ast"

// definitionReturnKind resolves def's declared return type from its
// `[return<T>]` transform, defaulting to Void — mirrors the validator's own
// resolution (validator/expr.go) since the two packages don't share an
// import a diagnostics-free value type would otherwise force on both.
func (l *lowerer) definitionReturnKind(def *ast.Definition) ast.ReturnKind {
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

// paramKind resolves a parameter expression's declared kind (and, for a
// collection parameter, its element kind) from its type transform.
func paramKind(p *ast.Expr) (ast.ReturnKind, ast.ReturnKind) {
	for _, t := range p.Transforms {
		switch t.Name {
		case "array", "vector":
			elem := ast.ReturnUnknown
			if len(t.TemplateArgs) > 0 {
				elem = typeNameToReturnKind(t.TemplateArgs[0])
			}
			return typeNameToReturnKind(t.Name), elem
		case "map":
			elem := ast.ReturnUnknown
			if len(t.TemplateArgs) > 1 {
				elem = typeNameToReturnKind(t.TemplateArgs[1])
			}
			return ast.ReturnMap, elem
		case "Pointer":
			return ast.ReturnPointer, ast.ReturnUnknown
		case "Reference":
			return ast.ReturnReference, ast.ReturnUnknown
		case "int32", "int64", "uint64", "float32", "float64", "bool", "string":
			return typeNameToReturnKind(t.Name), ast.ReturnUnknown
		}
	}
	return ast.ReturnUnknown, ast.ReturnUnknown
}

// is32 reports whether kind occupies the 32-bit register family (i32
// arithmetic opcodes, ReturnI32 at the VM/native ABI boundary) as opposed
// to the 64-bit family.
func is32(kind ast.ReturnKind) bool {
	return kind == ast.ReturnInt32 || kind == ast.ReturnFloat32 || kind == ast.ReturnBool
}
