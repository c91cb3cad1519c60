package validator

import "github.com/primestruct/corelang/ast"

// validateDefinition runs every per-definition check in sequence: transform
// exclusivity, pod-field shape, parameter bindings, effect/capability
// coverage, then a statement walk over the body. Struct definitions stop
// after the shape checks — their Body holds field declarations, not
// statements.
func (v *Validator) validateDefinition(def *ast.Definition, isEntry bool) bool {
	if !v.checkTransformExclusivity(def.Transforms) {
		return false
	}
	if !v.checkPodFields(def) {
		return false
	}
	if def.IsStruct() {
		return true
	}

	env := make(locals, len(def.Params))
	argvParam := ""
	for _, p := range def.Params {
		b, ok := v.bindingFromParam(p)
		if !ok {
			return false
		}
		env[p.Name] = b
	}
	if isEntry {
		if name, ok := v.entryArgsParamName(def); ok {
			argvParam = name
		}
	}

	effects := declaredEffects(def)
	capabilities := declaredCapabilities(def)
	if !v.checkEffects(def, effects, capabilities) {
		return false
	}

	for _, stmt := range def.Body {
		if !v.checkTransformExclusivity(stmt.Transforms) {
			return false
		}
		if !v.validateStatement(stmt, env, def, argvParam) {
			return false
		}
	}
	return true
}

// validateStatement dispatches on a body statement's shape: a binding
// introduces a local into env for the remainder of the enclosing block; a
// return statement is checked against the definition's declared return
// type; if/repeat/block push a cloned sub-scope over their body arguments;
// anything else is a plain expression, walked for math gating and argv
// usage.
func (v *Validator) validateStatement(stmt *ast.Expr, env locals, def *ast.Definition, argvParam string) bool {
	switch {
	case stmt.IsBinding:
		return v.validateBindingStatement(stmt, env, argvParam)
	case stmt.IsCallNamed("return") && def != nil:
		return v.validateReturnStatement(stmt, env, def)
	case isBuiltinBlockCall(stmt):
		return v.validateBlockStatement(stmt, env, def, argvParam)
	default:
		return v.validateExpr(stmt, env, argvParam)
	}
}

// validateBindingStatement implements the binding-inference rule and
// step 9's argv-backed-string tracking: a binding's type comes from an
// explicit transform when present, otherwise from the initializer's
// inferred kind; restrict<T> must match; the initializer itself is walked
// before the new name enters scope (a binding may not reference itself).
func (v *Validator) validateBindingStatement(stmt *ast.Expr, env locals, argvParam string) bool {
	info, restrictTransform, _ := v.parseBindingInfo(stmt)

	initializer, hasValue := bindingInitializer(stmt)
	if hasValue {
		if !v.validateExpr(initializer, env, argvParam) {
			return false
		}
		if !hasExplicitBindingTypeTransform(stmt) {
			v.inferBindingTypeFromInitializer(initializer, env, info)
		}
		if info.Kind == ast.BindingString {
			info.IsEntryArgString = v.isEntryArgsAccess(initializer, argvParam) || isEntryArgStringBinding(env, initializer)
		}
	}

	for _, t := range stmt.Transforms {
		if !v.checkCollectionTemplate(t) {
			return false
		}
	}
	if !v.checkHandleIsTagOnly(stmt) {
		return false
	}
	if !v.checkRestrictMatches(info, restrictTransform) {
		return false
	}

	env[stmt.Name] = info
	return true
}

// bindingInitializer returns the single value expression a binding
// statement carries, whether given directly as Args[0] or hidden behind a
// block envelope (`block(){ ... value }`).
func bindingInitializer(stmt *ast.Expr) (*ast.Expr, bool) {
	if len(stmt.Args) == 1 {
		return stmt.Args[0], true
	}
	if value, ok := stmt.UnwrapEnvelope(true, isBuiltinBlockCall); ok {
		return value, true
	}
	if len(stmt.BodyArguments) > 0 {
		for _, body := range stmt.BodyArguments {
			if !body.IsBinding {
				return body, true
			}
		}
	}
	return nil, false
}

// validateReturnStatement checks a `return(...)` call's argument kind
// against the enclosing definition's declared return type.
// A bare `return()` is only legal when the definition is void.
func (v *Validator) validateReturnStatement(stmt *ast.Expr, env locals, def *ast.Definition) bool {
	want := v.definitionReturnKind(def)
	if len(stmt.Args) == 0 {
		if want != ast.ReturnVoid {
			return v.fail("return type mismatch: expected %s", typeNameForReturnKind(want))
		}
		return true
	}
	if !v.validateExpr(stmt.Args[0], env, "") {
		return false
	}
	got := v.inferExprReturnKind(stmt.Args[0], env)
	if got == ast.ReturnUnknown {
		return true // structurally unresolvable (e.g. struct literal); left to lowering
	}
	if got != want {
		return v.fail("return type mismatch: expected %s", typeNameForReturnKind(want))
	}
	return true
}

// validateBlockStatement validates an `if`/`repeat`/`block` builtin's
// condition/count argument in the enclosing scope, then walks each body
// argument in a cloned sub-scope — locals a branch introduces do not leak
// to sibling branches or the enclosing block.
func (v *Validator) validateBlockStatement(stmt *ast.Expr, env locals, def *ast.Definition, argvParam string) bool {
	for _, arg := range stmt.Args {
		if !v.validateExpr(arg, env, argvParam) {
			return false
		}
	}
	for _, body := range stmt.BodyArguments {
		sub := env.clone()
		if !v.validateStatement(body, sub, def, argvParam) {
			return false
		}
	}
	return true
}

// validateExpr walks an arbitrary expression for math-import gating and
// argv-usage restrictions, recursing into call arguments. It does not
// re-derive return kinds — inferExprReturnKind already does that on demand.
func (v *Validator) validateExpr(expr *ast.Expr, env locals, argvParam string) bool {
	if expr.Kind != ast.KindCall {
		return true
	}
	if !v.checkMathGating(expr) {
		return false
	}
	if (expr.Name == "insert" || expr.Name == "at" || expr.Name == "at_unsafe") && len(expr.Args) >= 2 {
		if b, ok := resolveBindingName(expr.Args[0], env); ok && b.Kind == ast.BindingMap {
			if !v.checkArgvUsage(expr.Args[1], env, argvContextMapKey) {
				return false
			}
		}
	}
	for _, arg := range expr.Args {
		if !v.validateExpr(arg, env, argvParam) {
			return false
		}
	}
	for _, body := range expr.BodyArguments {
		if !v.validateStatement(body, env.clone(), nil, argvParam) {
			return false
		}
	}
	return true
}

func resolveBindingName(expr *ast.Expr, env locals) (*ast.Binding, bool) {
	if expr.Kind != ast.KindName {
		return nil, false
	}
	b, ok := env[expr.Name]
	return b, ok
}
