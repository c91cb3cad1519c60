package lower

import (
	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
)

// lowerUserCall dispatches a call that names neither a builtin nor an
// operator: a struct constructor, or a call to another definition, which is
// inlined unless doing so would close a cycle.
func (c *funcCtx) lowerUserCall(expr *ast.Expr) (ast.ReturnKind, bool) {
	path := c.l.resolveCalleePath(expr)
	def, ok := c.l.defs[path]
	if !ok {
		return ast.ReturnUnknown, c.fail("undefined call: %s", expr.FullName())
	}
	if def.IsStruct() {
		return c.lowerStructConstructor(expr, def)
	}
	if c.inlineStack[path] {
		return c.lowerCallFunctionFallback(expr, def, path)
	}
	return c.lowerInlinedCall(expr, def, path)
}

// lowerStructConstructor materializes a struct literal as a heap block with
// one 16-byte-stride slot per field, in declaration order — the same
// layout convention collections.go uses for collection elements, just
// without a count header (struct arity is fixed at compile time).
func (c *funcCtx) lowerStructConstructor(expr *ast.Expr, def *ast.Definition) (ast.ReturnKind, bool) {
	if len(expr.Args) != len(def.Params) {
		return ast.ReturnUnknown, c.fail("struct constructor %s: argument count mismatch", def.FullPath)
	}
	size := len(def.Params) * slotStride
	if size == 0 {
		size = slotStride
	}
	base := c.newSlot()
	c.emit(ir.OpHeapAlloc, uint64(size))
	c.emit(ir.OpStoreLocal, uint64(base))
	for i, a := range expr.Args {
		if _, ok := c.lowerExpr(a); !ok {
			return ast.ReturnUnknown, false
		}
		c.emitElementAddress(base, 0, i)
		c.emit(ir.OpStoreIndirect, 0)
	}
	c.emit(ir.OpLoadLocal, uint64(base))
	return ast.ReturnStruct, true
}

// lowerInlinedCall inlines callee's body directly into the caller's
// instruction stream: each argument is evaluated and spilled to a fresh
// slot (so a parameter referenced more than once in the body doesn't
// re-evaluate its argument expression), the callee's params are bound to
// those slots, and its body is lowered with returns redirected to a fresh
// inline frame instead of a real OpReturn*.
func (c *funcCtx) lowerInlinedCall(expr *ast.Expr, def *ast.Definition, path string) (ast.ReturnKind, bool) {
	if len(expr.Args) != len(def.Params) {
		return ast.ReturnUnknown, c.fail("call to %s: argument count mismatch", path)
	}

	argSlots := make([]int, len(expr.Args))
	for i, a := range expr.Args {
		if _, ok := c.lowerExpr(a); !ok {
			return ast.ReturnUnknown, false
		}
		slot := c.newSlot()
		c.emit(ir.OpStoreLocal, uint64(slot))
		argSlots[i] = slot
	}

	returnKind := c.l.definitionReturnKind(def)
	resultSlot := -1
	if returnKind != ast.ReturnVoid {
		resultSlot = c.newSlot()
	}

	c.inlineStack[path] = true
	c.inlineFrames = append(c.inlineFrames, inlineFrame{resultSlot: resultSlot})
	prevDef := c.def
	c.def = def

	c.pushScope()
	for i, p := range def.Params {
		kind, elemKind := paramKind(p)
		c.define(p.Name, localInfo{slot: argSlots[i], kind: kind, elemKind: elemKind})
	}
	ok := c.lowerStatements(def.Body)
	c.popScope()

	c.def = prevDef
	frame := c.inlineFrames[len(c.inlineFrames)-1]
	c.inlineFrames = c.inlineFrames[:len(c.inlineFrames)-1]
	delete(c.inlineStack, path)

	if !ok {
		return ast.ReturnUnknown, false
	}
	for _, j := range frame.doneJumps {
		c.patch(j)
	}

	if returnKind == ast.ReturnVoid {
		return ast.ReturnVoid, true
	}
	c.emit(ir.OpLoadLocal, uint64(resultSlot))
	return returnKind, true
}

// lowerCallFunctionFallback handles a call that would close an inlining
// cycle: arguments are pushed in order and a real OpCallFunction targets
// the callee's own lowered ir.Function.
func (c *funcCtx) lowerCallFunctionFallback(expr *ast.Expr, def *ast.Definition, path string) (ast.ReturnKind, bool) {
	if len(expr.Args) != len(def.Params) {
		return ast.ReturnUnknown, c.fail("call to %s: argument count mismatch", path)
	}
	for _, a := range expr.Args {
		if _, ok := c.lowerExpr(a); !ok {
			return ast.ReturnUnknown, false
		}
	}
	idx, ok := c.l.funcIndex[path]
	if !ok {
		return ast.ReturnUnknown, c.fail("undefined function: %s", path)
	}
	c.emit(ir.OpCallFunction, uint64(idx))
	return c.l.definitionReturnKind(def), true
}
