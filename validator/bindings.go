package validator

import "github.com/primestruct/corelang/ast"

// parseBindingInfo builds a Binding from a statement/parameter's type
// transform and modifiers. It does not look at the initializer — that is
// layered on by validateBindingStatement and inferBindingTypeFromInitializer.
func (v *Validator) parseBindingInfo(expr *ast.Expr) (*ast.Binding, *ast.Expr, bool) {
	info := &ast.Binding{Name: expr.Name}
	var restrictTransform *ast.Expr

	for _, t := range expr.Transforms {
		switch t.Name {
		case "mut":
			info.Mutable = true
		case "restrict":
			restrictTransform = t
		case "array", "vector", "map", "Pointer", "Reference", "handle", "File":
			info.TypeName = t.Name
			if len(t.TemplateArgs) > 0 {
				info.TemplateArg = t.TemplateArgs[0]
			}
			switch t.Name {
			case "array":
				info.Kind = ast.BindingArray
			case "vector":
				info.Kind = ast.BindingVector
			case "map":
				info.Kind = ast.BindingMap
			case "Pointer":
				info.Kind = ast.BindingPointer
			case "Reference":
				info.Kind = ast.BindingReference
			case "File":
				info.Kind = ast.BindingFileHandle
			}
		case "int32", "int64", "uint64", "float32", "float64", "bool", "string":
			info.TypeName = t.Name
			info.Kind = ast.BindingValue
			info.ValueKind = typeNameToValueKind(t.Name)
			if t.Name == "string" {
				info.Kind = ast.BindingString
			}
		}
	}
	return info, restrictTransform, true
}

func typeNameToValueKind(name string) ast.ValueKind {
	switch name {
	case "int32":
		return ast.ValueInt32
	case "int64":
		return ast.ValueInt64
	case "uint64":
		return ast.ValueUInt64
	case "float32":
		return ast.ValueFloat32
	case "float64":
		return ast.ValueFloat64
	case "bool":
		return ast.ValueBool
	case "string":
		return ast.ValueString
	default:
		return ast.ValueUnknown
	}
}

// hasExplicitBindingTypeTransform reports whether stmt names one of the
// recognized type transforms explicitly.
func hasExplicitBindingTypeTransform(stmt *ast.Expr) bool {
	_, ok := bindingTypeTransform(stmt)
	return ok
}

// inferBindingTypeFromInitializer fills info's type from the initializer's
// inferred kind when no explicit type transform was present.
func (v *Validator) inferBindingTypeFromInitializer(initializer *ast.Expr, env locals, info *ast.Binding) {
	kind := v.inferExprReturnKind(initializer, env)
	switch kind {
	case ast.ReturnInt32, ast.ReturnInt64, ast.ReturnUInt64, ast.ReturnFloat32, ast.ReturnFloat64, ast.ReturnBool:
		info.Kind = ast.BindingValue
		info.ValueKind = returnKindToValueKind(kind)
	case ast.ReturnString:
		info.Kind = ast.BindingString
		info.ValueKind = ast.ValueString
	case ast.ReturnArray:
		info.Kind = ast.BindingArray
	case ast.ReturnVector:
		info.Kind = ast.BindingVector
	case ast.ReturnMap:
		info.Kind = ast.BindingMap
	case ast.ReturnPointer:
		info.Kind = ast.BindingPointer
	case ast.ReturnReference:
		info.Kind = ast.BindingReference
	}
}

func returnKindToValueKind(r ast.ReturnKind) ast.ValueKind {
	switch r {
	case ast.ReturnInt32:
		return ast.ValueInt32
	case ast.ReturnInt64:
		return ast.ValueInt64
	case ast.ReturnUInt64:
		return ast.ValueUInt64
	case ast.ReturnFloat32:
		return ast.ValueFloat32
	case ast.ReturnFloat64:
		return ast.ValueFloat64
	case ast.ReturnBool:
		return ast.ValueBool
	case ast.ReturnString:
		return ast.ValueString
	default:
		return ast.ValueUnknown
	}
}

// restrictMatchesBinding enforces "restrict<T> must match the binding's
// actual type".
func restrictMatchesBinding(restrictType, typeName, templateArg string, hasTemplate bool) bool {
	if hasTemplate {
		return restrictType == templateArg
	}
	return restrictType == typeName
}

// getBuiltinPointerName reports whether expr is a call to the `location`
// builtin, returning its name for the Reference-binding shape check.
func getBuiltinPointerName(expr *ast.Expr) (string, bool) {
	if expr.Kind != ast.KindCall || expr.Name != "location" {
		return "", false
	}
	return expr.Name, true
}

// bindingFromParam builds a Binding for a definition parameter, validating
// that any default initializer is pure: literal, a simple call over
// literals, or a builtin over such — no name references, no user-defined
// calls, no block arguments, no named arguments.
func (v *Validator) bindingFromParam(param *ast.Expr) (*ast.Binding, bool) {
	info, _, _ := v.parseBindingInfo(param)
	if !hasExplicitBindingTypeTransform(param) {
		return nil, v.fail("parameter requires explicit type: %s", param.Name)
	}
	if len(param.Args) == 1 {
		if !v.validatePureDefault(param.Args[0]) {
			return nil, v.fail("parameter default must be pure: %s", param.Name)
		}
	}
	return info, true
}

func (v *Validator) validatePureDefault(expr *ast.Expr) bool {
	switch expr.Kind {
	case ast.KindLiteral, ast.KindFloatLiteral, ast.KindStringLiteral, ast.KindBoolLiteral:
		return true
	case ast.KindName:
		return false
	case ast.KindCall:
		if expr.HasNamedArguments() || expr.HasBodyArguments || len(expr.BodyArguments) > 0 {
			return false
		}
		if v.isUserDefinedCall(expr) {
			return false
		}
		for _, a := range expr.Args {
			if !v.validatePureDefault(a) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (v *Validator) isUserDefinedCall(expr *ast.Expr) bool {
	_, ok := v.defs[v.resolveCalleePath(expr)]
	return ok
}
