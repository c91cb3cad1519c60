package validator

import "github.com/primestruct/corelang/ast"

// checkCollectionTemplate enforces the template-arity rules for
// the collection and handle type transforms: array<T> and vector<T> each
// take exactly one template argument, map<K,V> exactly two, handle<T>
// exactly one.
func (v *Validator) checkCollectionTemplate(t *ast.Expr) bool {
	switch t.Name {
	case "array", "vector":
		if len(t.TemplateArgs) != 1 {
			return v.fail("%s requires exactly one template argument: %s", t.Name, t.Name)
		}
	case "map":
		if len(t.TemplateArgs) != 2 {
			return v.fail("map requires exactly two template arguments")
		}
	case "handle":
		if len(t.TemplateArgs) != 1 {
			return v.fail("handle requires exactly one template argument")
		}
	}
	return true
}

// checkHandleIsTagOnly enforces "handle<T> is a tag only": a binding or
// parameter carrying it may not also be called or given body arguments.
func (v *Validator) checkHandleIsTagOnly(expr *ast.Expr) bool {
	if !expr.HasTransform("handle") {
		return true
	}
	if len(expr.Args) > 0 || len(expr.BodyArguments) > 0 {
		return v.fail("handle<T> is a tag only: %s", expr.Name)
	}
	return true
}

// checkRestrictMatches enforces "restrict<T> must match the binding's
// actual type" against the already-parsed Binding info.
func (v *Validator) checkRestrictMatches(info *ast.Binding, restrictTransform *ast.Expr) bool {
	if restrictTransform == nil || len(restrictTransform.TemplateArgs) == 0 {
		return true
	}
	restrictType := restrictTransform.TemplateArgs[0]
	hasTemplate := info.TemplateArg != ""
	if !restrictMatchesBinding(restrictType, info.TypeName, info.TemplateArg, hasTemplate) {
		return v.fail("restrict<%s> does not match binding type: %s", restrictType, info.Name)
	}
	return true
}
