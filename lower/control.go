package lower

import (
	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
)

// lowerIf lowers `if(c){...}else{...}`. The else branch, when present, is
// desugared as a trailing `else(){...}` call inside the then-branch's own
// body-argument list — the grammar's bracketed else-clause attaches there
// rather than needing a dedicated Expr field.
func (c *funcCtx) lowerIf(stmt *ast.Expr) bool {
	if len(stmt.Args) != 1 {
		return c.fail("if requires exactly one condition argument")
	}
	if kind, ok := c.lowerExpr(stmt.Args[0]); !ok || kind != ast.ReturnBool {
		if ok {
			return c.fail("if condition must be bool")
		}
		return false
	}

	thenBody, elseBody := splitElse(stmt.BodyArguments)

	toElse := c.emit(ir.OpJumpIfZero, 0)
	c.pushScope()
	if !c.lowerStatements(thenBody) {
		return false
	}
	c.popScope()

	if elseBody == nil {
		c.patch(toElse)
		return true
	}
	toEnd := c.emit(ir.OpJump, 0)
	c.patch(toElse)
	c.pushScope()
	if !c.lowerStatements(elseBody) {
		return false
	}
	c.popScope()
	c.patch(toEnd)
	return true
}

func splitElse(body []*ast.Expr) (then []*ast.Expr, els []*ast.Expr) {
	for i, stmt := range body {
		if stmt.IsCallNamed("else") {
			return body[:i], stmt.BodyArguments
		}
	}
	return body, nil
}

// lowerRepeat lowers `repeat(n){...}`: n is evaluated once into a counter
// local, decremented each iteration until it reaches zero.
func (c *funcCtx) lowerRepeat(stmt *ast.Expr) bool {
	if len(stmt.Args) != 1 {
		return c.fail("repeat requires exactly one count argument")
	}
	kind, ok := c.lowerExpr(stmt.Args[0])
	if !ok {
		return false
	}
	if !kind.IsInteger() {
		return c.fail("repeat count must be an integer kind")
	}
	counter := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(counter))

	loopStart := c.here()
	c.emit(ir.OpLoadLocal, uint64(counter))
	cmpFamily, ok := cmpOpcodes[kind]
	if !ok {
		return c.fail("unsupported repeat count kind: %s", kind.String())
	}
	c.pushConstZero(kind)
	c.emit(cmpFamily["greater_than"], 0)
	loopEnd := c.emit(ir.OpJumpIfZero, 0)

	c.pushScope()
	if !c.lowerStatements(stmt.BodyArguments) {
		return false
	}
	c.popScope()

	c.emit(ir.OpLoadLocal, uint64(counter))
	c.pushConstOne(kind)
	arithFamily := arithOpcodes[kind]
	c.emit(arithFamily["minus"], 0)
	c.emit(ir.OpStoreLocal, uint64(counter))
	c.emit(ir.OpJump, uint64(loopStart))
	c.patch(loopEnd)
	return true
}

// lowerBlock lowers a bare `block(){...}` scoping envelope with no control
// semantics of its own beyond introducing a fresh binding scope.
func (c *funcCtx) lowerBlock(stmt *ast.Expr) bool {
	c.pushScope()
	defer c.popScope()
	return c.lowerStatements(stmt.BodyArguments)
}

func (c *funcCtx) pushConstZero(kind ast.ReturnKind) {
	switch kind {
	case ast.ReturnInt64:
		c.emit(ir.OpPushI64, 0)
	case ast.ReturnUInt64:
		c.emit(ir.OpPushU64, 0)
	default:
		c.emit(ir.OpPushI32, 0)
	}
}

func (c *funcCtx) pushConstOne(kind ast.ReturnKind) {
	switch kind {
	case ast.ReturnInt64:
		c.emit(ir.OpPushI64, 1)
	case ast.ReturnUInt64:
		c.emit(ir.OpPushU64, 1)
	default:
		c.emit(ir.OpPushI32, 1)
	}
}
