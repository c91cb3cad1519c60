package validator

import "github.com/primestruct/corelang/ast"

// entryArgsParamName returns the name of the entry's array<string> argv
// parameter, if the entry declares one.
func (v *Validator) entryArgsParamName(entry *ast.Definition) (string, bool) {
	if len(entry.Params) != 1 {
		return "", false
	}
	return entry.Params[0].Name, true
}

// isEntryArgsAccess reports whether expr directly indexes the entry's argv
// parameter, e.g. `args[1i32]` desugared to `at(args, 1i32)`.
func (v *Validator) isEntryArgsAccess(expr *ast.Expr, argvParam string) bool {
	if argvParam == "" {
		return false
	}
	if expr.Kind != ast.KindCall || (expr.Name != "at" && expr.Name != "at_unsafe") {
		return false
	}
	if len(expr.Args) != 2 {
		return false
	}
	return expr.Args[0].Kind == ast.KindName && expr.Args[0].Name == argvParam
}

// isEntryArgStringBinding reports whether initializer resolves to a local
// that is itself already argv-backed — a binding re-derived from one stays
// argv-backed.
func isEntryArgStringBinding(env locals, initializer *ast.Expr) bool {
	if initializer.Kind != ast.KindName {
		return false
	}
	b, ok := env[initializer.Name]
	return ok && b.IsEntryArgString
}

// argvRestrictedContext names the operations where an argv-backed binding
// may not be used because lowering needs a string-table index rather than a
// live argv slot.
type argvRestrictedContext int

const (
	argvContextMapKey argvRestrictedContext = iota
	argvContextStringIndexOnCopy
)

// checkArgvUsage rejects an argv-backed binding used in a context that
// requires literal storage.
func (v *Validator) checkArgvUsage(expr *ast.Expr, env locals, ctx argvRestrictedContext) bool {
	if expr.Kind != ast.KindName {
		return true
	}
	b, ok := env[expr.Name]
	if !ok || !b.IsEntryArgString {
		return true
	}
	switch ctx {
	case argvContextMapKey:
		return v.fail("argv-backed string may not be used as a map key: %s", expr.Name)
	case argvContextStringIndexOnCopy:
		return v.fail("argv-backed string may not be indexed as a literal copy: %s", expr.Name)
	}
	return true
}
