package lower

import (
	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
)

// isArgvAccess reports whether expr is a direct at(argvParam, i) /
// at_unsafe(argvParam, i) call against the entry's argv parameter — mirrors
// validator/argv.go's isEntryArgsAccess.
func isArgvAccess(expr *ast.Expr, argvParam string) bool {
	if argvParam == "" || expr.Kind != ast.KindCall {
		return false
	}
	if expr.Name != "at" && expr.Name != "at_unsafe" {
		return false
	}
	if len(expr.Args) != 2 || expr.Args[0].Kind != ast.KindName {
		return false
	}
	return expr.Args[0].Name == argvParam
}

// isArgvInitializer reports whether initializer's value is argv-backed: a
// direct index into the argv view, or a name that is itself already bound
// argv-backed.
func (c *funcCtx) isArgvInitializer(initializer *ast.Expr) bool {
	if isArgvAccess(initializer, c.argvParam) {
		return true
	}
	if initializer.Kind == ast.KindName {
		if info, ok := c.lookup(initializer.Name); ok {
			return info.argvBacked
		}
	}
	return false
}

// lowerArgvIndexedLoad lowers at(args, i)/at_unsafe(args, i) against the
// entry's argv parameter. The resulting cell is the argv index itself —
// there is no string-table entry to load — so callers that consume it
// (print_line/print_error, a direct return) must special-case argvBacked
// bindings instead of treating the cell as a string-table index.
func (c *funcCtx) lowerArgvIndexedLoad(expr *ast.Expr, unsafe bool) (ast.ReturnKind, bool) {
	indexKind, ok := c.lowerExpr(expr.Args[1])
	if !ok {
		return ast.ReturnUnknown, false
	}
	indexSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(indexSlot))

	if !unsafe {
		if indexKind.IsSignedInteger() {
			c.emit(ir.OpLoadLocal, uint64(indexSlot))
			c.emit(ir.OpPushI64, 0)
			c.emit(ir.OpCmpLtI64, 0)
			skip := c.emit(ir.OpJumpIfZero, 0)
			c.emitAbort("array index out of bounds")
			c.patch(skip)
		}
		c.emit(ir.OpLoadLocal, uint64(indexSlot))
		c.emit(ir.OpArgvCount, 0)
		c.emit(ir.OpCmpGeI64, 0)
		skip := c.emit(ir.OpJumpIfZero, 0)
		c.emitAbort("array index out of bounds")
		c.patch(skip)
	}

	c.emit(ir.OpLoadLocal, uint64(indexSlot))
	return ast.ReturnString, true
}
