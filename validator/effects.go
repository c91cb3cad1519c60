package validator

import "github.com/primestruct/corelang/ast"

// effectNames extracts the identifier list from an `[effects(a, b, c)]` or
// `[capabilities(a, b)]` style transform's arguments.
func effectNames(transform *ast.Expr) []string {
	names := make([]string, 0, len(transform.Args))
	for _, arg := range transform.Args {
		if arg.Name != "" {
			names = append(names, arg.Name)
		}
	}
	return names
}

// declaredEffects returns the set of effect tokens def's `[effects(...)]`
// transform lists; the set is empty, not nil, if it carries none.
func declaredEffects(def *ast.Definition) map[string]bool {
	out := map[string]bool{}
	for _, tr := range def.Transforms {
		if tr.Name == "effects" {
			for _, n := range effectNames(tr) {
				out[n] = true
			}
		}
	}
	return out
}

// declaredCapabilities returns the set of capability tokens def's
// `[capabilities(...)]` transform lists.
func declaredCapabilities(def *ast.Definition) map[string]bool {
	out := map[string]bool{}
	for _, tr := range def.Transforms {
		if tr.Name == "capabilities" {
			for _, n := range effectNames(tr) {
				out[n] = true
			}
		}
	}
	return out
}

// effectScope is a stack of effect sets: the definition's declared set plus
// any statement-level `[effects(...)]` masks currently active. A scope's
// effective set is the union of all active layers.
type effectScope struct {
	layers []map[string]bool
}

func newEffectScope(declared map[string]bool) *effectScope {
	return &effectScope{layers: []map[string]bool{declared}}
}

// push adds a new effect layer, returning a function that pops it — callers
// defer the returned function to restore the enclosing scope.
func (s *effectScope) push(extra map[string]bool) func() {
	s.layers = append(s.layers, extra)
	return func() { s.layers = s.layers[:len(s.layers)-1] }
}

// has reports whether effect is available anywhere in the active stack.
func (s *effectScope) has(effect string) bool {
	for _, layer := range s.layers {
		if layer[effect] {
			return true
		}
	}
	return false
}

// requiredEffectForCall returns the effect token a call to name requires,
// and whether name is effect-gated at all.
func requiredEffectForCall(name string) (string, bool) {
	e, ok := effectBuiltins[name]
	return e, ok
}

// checkEffects verifies that every effect-gated builtin call in def's own
// body (its statements, their call arguments and statement block bodies) is
// covered by its active effect scope, and that declared capabilities are a
// subset of declared effects. The bodies of called definitions are not
// walked here; each is checked when that definition is validated.
func (v *Validator) checkEffects(def *ast.Definition, effects map[string]bool, capabilities map[string]bool) bool {
	for cap := range capabilities {
		if !effects[cap] {
			return v.fail("capability not declared as effect: %s", cap)
		}
	}
	scope := newEffectScope(effects)
	for _, stmt := range def.Body {
		if !v.checkStatementEffects(stmt, scope) {
			return false
		}
	}
	return true
}

func (v *Validator) checkStatementEffects(stmt *ast.Expr, scope *effectScope) bool {
	if stmt.Kind == ast.KindCall {
		if maskTransform, ok := stmt.Transform("effects"); ok {
			pop := scope.push(setOf(effectNames(maskTransform)))
			defer pop()
		}
	}
	if !v.checkExprEffects(stmt, scope) {
		return false
	}
	for _, body := range stmt.BodyArguments {
		if !v.checkStatementEffects(body, scope) {
			return false
		}
	}
	return true
}

func (v *Validator) checkExprEffects(expr *ast.Expr, scope *effectScope) bool {
	if expr.Kind != ast.KindCall {
		return true
	}
	if required, gated := requiredEffectForCall(expr.Name); gated && !scope.has(required) {
		return v.fail("effect not declared: %s requires %s", expr.Name, required)
	}
	if expr.IsCallNamed("vector") && len(expr.TemplateArgs) > 0 && len(expr.Args) > 0 {
		if !scope.has("heap_alloc") {
			return v.fail("effect not declared: vector(...) literal requires heap_alloc")
		}
	}
	if isFileWriteCall(expr) && !scope.has("io_out") {
		return v.fail("effect not declared: file write requires io_out")
	}
	for _, arg := range expr.Args {
		if !v.checkExprEffects(arg, scope) {
			return false
		}
	}
	return true
}

func isFileWriteCall(expr *ast.Expr) bool {
	return expr.Kind == ast.KindCall && expr.IsMethodCall && expr.Name == "write"
}

func setOf(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
