package validator

import "github.com/primestruct/corelang/ast"

// buildSymbolTable collects every definition's FullPath, asserting
// uniqueness, and registers struct tags.
func (v *Validator) buildSymbolTable() bool {
	v.defs = make(map[string]*ast.Definition, len(v.program.Definitions))
	for _, def := range v.program.Definitions {
		if _, dup := v.defs[def.FullPath]; dup {
			return v.fail("duplicate definition: %s", def.FullPath)
		}
		v.defs[def.FullPath] = def
		if def.IsStruct() {
			v.structs[def.FullPath] = true
		}
	}
	if v.program.StructPaths != nil {
		for path := range v.program.StructPaths {
			v.structs[path] = true
		}
	}
	return true
}

// checkImportConflicts rejects an import that would expose a simple name
// also present at the root.
func (v *Validator) checkImportConflicts() bool {
	rootNames := make(map[string]bool)
	for path := range v.defs {
		rootNames[rootSimpleName(path)] = true
	}
	for _, im := range v.program.Imports {
		if im.Kind != ast.ImportNamespaceAlias {
			continue
		}
		name := rootSimpleName(im.Prefix)
		if rootNames[name] {
			return v.fail("import creates name conflict: %s", name)
		}
	}
	return true
}

// rootSimpleName returns the last path segment of an absolute path.
func rootSimpleName(path string) string {
	last := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			last = i + 1
		}
	}
	return path[last:]
}

// isStructConstructor reports whether expr calls a registered struct path.
func (v *Validator) isStructConstructor(expr *ast.Expr) bool {
	if expr.Kind != ast.KindCall || expr.IsBinding {
		return false
	}
	return v.structs[v.resolveCalleePath(expr)]
}

// resolveCalleePath resolves a call expression's callee to an absolute
// definition path using the program's active namespace aliases.
func (v *Validator) resolveCalleePath(expr *ast.Expr) string {
	if expr.NamespacePrefix != "" {
		return expr.FullName()
	}
	if _, ok := v.defs["/"+expr.Name]; ok {
		return "/" + expr.Name
	}
	for _, alias := range v.program.NamespaceAliases() {
		candidate := alias
		if candidate[len(candidate)-1] != '/' {
			candidate += "/"
		}
		candidate += expr.Name
		if _, ok := v.defs[candidate]; ok {
			return candidate
		}
	}
	return expr.Name
}

// isBuiltinBlockCall reports whether expr is one of the always-recognized
// block-envelope builtins (`if`, `repeat`, `block`).
func isBuiltinBlockCall(expr *ast.Expr) bool {
	return expr.Kind == ast.KindCall && builtinBlockNames[expr.Name]
}
