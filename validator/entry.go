package validator

import "github.com/primestruct/corelang/ast"

// validateEntryShape enforces the entry-shape rule: the entry definition has zero
// parameters, or exactly one parameter of type array<string> without a
// default initializer. Default effect/capability tokens are applied only
// to the entry's initially-empty sets.
func (v *Validator) validateEntryShape(entry *ast.Definition) bool {
	switch len(entry.Params) {
	case 0:
	case 1:
		p := entry.Params[0]
		typeTransform, ok := bindingTypeTransform(p)
		if !ok || typeTransform.Name != "array" || len(typeTransform.TemplateArgs) != 1 || typeTransform.TemplateArgs[0] != "string" {
			return v.fail("entry parameter must be array<string>")
		}
		if hasDefaultInitializer(p) {
			return v.fail("entry parameter may not have a default initializer")
		}
	default:
		return v.fail("entry definition must take zero or one parameters")
	}

	if len(declaredEffects(entry)) == 0 && len(v.defaultEffects) > 0 {
		entry.Transforms = append(entry.Transforms, effectsTransform(v.defaultEffects))
	}
	if len(declaredCapabilities(entry)) == 0 && len(v.defaultCapability) > 0 {
		entry.Transforms = append(entry.Transforms, capabilitiesTransform(v.defaultCapability))
	}
	return true
}

// bindingTypeTransform returns the type transform (e.g. `array<string>`,
// `int32`) attached to a parameter or local-binding expression.
func bindingTypeTransform(expr *ast.Expr) (*ast.Expr, bool) {
	for _, t := range expr.Transforms {
		if isTypeTransformName(t.Name) {
			return t, true
		}
	}
	return nil, false
}

var typeTransformNames = map[string]bool{
	"array": true, "vector": true, "map": true, "Pointer": true, "Reference": true,
	"int32": true, "int64": true, "uint64": true, "float32": true, "float64": true,
	"bool": true, "string": true, "handle": true, "restrict": true, "File": true,
}

func isTypeTransformName(name string) bool { return typeTransformNames[name] }

// hasDefaultInitializer reports whether a parameter expression carries a
// default value (its own single Args entry).
func hasDefaultInitializer(param *ast.Expr) bool {
	return len(param.Args) > 0
}

func effectsTransform(names []string) *ast.Expr {
	return &ast.Expr{Kind: ast.KindCall, Name: "effects", Args: namesToExprs(names)}
}

func capabilitiesTransform(names []string) *ast.Expr {
	return &ast.Expr{Kind: ast.KindCall, Name: "capabilities", Args: namesToExprs(names)}
}

func namesToExprs(names []string) []*ast.Expr {
	out := make([]*ast.Expr, len(names))
	for i, n := range names {
		out[i] = &ast.Expr{Kind: ast.KindName, Name: n}
	}
	return out
}
