package validator

import "github.com/primestruct/corelang/ast"

// checkMathGating enforces the math-import gating rule: a math builtin or constant resolves
// only under an explicit `/math/` prefix, a `/math/*` wildcard import, or a
// specific `/math/<name>` import.
func (v *Validator) checkMathGating(expr *ast.Expr) bool {
	if !mathBuiltins[expr.Name] {
		return true
	}
	if expr.NamespacePrefix == "/math" {
		return true
	}
	if v.program.MathWildcardActive() || v.program.MathSymbolImported(expr.Name) {
		return true
	}
	return v.fail("math builtin requires import /math/* or /math/<name>: %s", expr.Name)
}
