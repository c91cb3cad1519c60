package ast

// Definition is a named top-level call grouped into a (nestable, reopenable)
// namespace. Its declared transforms carry either a return transform, a
// struct tag, or neither — in which case the definition is void.
type Definition struct {
	FullPath  string // absolute slash-delimited path, e.g. "/util/clamp"
	Namespace string // enclosing namespace path, e.g. "/util"

	Params     []*Expr // each parameter is itself an Expr with its own transforms
	Body       []*Expr // statement expressions
	Transforms []*Expr

	Pos Pos
}

// ReturnTransform returns the definition's `[return<T>]` transform, if any.
func (d *Definition) ReturnTransform() (*Expr, bool) {
	return findTransform(d.Transforms, "return")
}

// IsStruct reports whether the definition is tagged `[struct]`.
func (d *Definition) IsStruct() bool {
	return hasTransform(d.Transforms, "struct")
}

func findTransform(transforms []*Expr, name string) (*Expr, bool) {
	for _, t := range transforms {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

func hasTransform(transforms []*Expr, name string) bool {
	_, ok := findTransform(transforms, name)
	return ok
}

// ImportKind distinguishes the three import-directive shapes the validator
// normalizes every import rule into.
type ImportKind int

const (
	ImportNamespaceAlias ImportKind = iota // prefix, e.g. `/util`
	ImportMathWildcard                     // `/math/*`
	ImportMathSymbol                       // `/math/<name>`
)

// Import is a single normalized import directive.
type Import struct {
	Kind   ImportKind
	Prefix string // for ImportNamespaceAlias and ImportMathWildcard's namespace root
	Symbol string // for ImportMathSymbol
}

// Program is the full unit the validator and lowerer operate on: every
// definition reachable from source, the set of active imports, registered
// struct paths, and the caller-chosen entry point.
type Program struct {
	Definitions []*Definition
	Imports     []*Import
	StructPaths map[string]bool
	EntryPath   string
}

// DefinitionsByPath indexes Program.Definitions by FullPath for O(1) lookup.
// Namespaces may be reopened, but a definition path itself must be unique —
// the validator enforces that invariant at symbol-table construction time,
// so building this index is safe to do unconditionally.
func (p *Program) DefinitionsByPath() map[string]*Definition {
	m := make(map[string]*Definition, len(p.Definitions))
	for _, d := range p.Definitions {
		m[d.FullPath] = d
	}
	return m
}

// MathWildcardActive reports whether a `/math/*` import is registered.
func (p *Program) MathWildcardActive() bool {
	for _, im := range p.Imports {
		if im.Kind == ImportMathWildcard {
			return true
		}
	}
	return false
}

// MathSymbolImported reports whether `/math/<name>` is individually imported.
func (p *Program) MathSymbolImported(name string) bool {
	for _, im := range p.Imports {
		if im.Kind == ImportMathSymbol && im.Symbol == name {
			return true
		}
	}
	return false
}

// NamespaceAliases returns the set of plain (non-math) import prefixes.
func (p *Program) NamespaceAliases() []string {
	var out []string
	for _, im := range p.Imports {
		if im.Kind == ImportNamespaceAlias {
			out = append(out, im.Prefix)
		}
	}
	return out
}
