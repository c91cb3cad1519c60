package lower

import (
	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
)

// lowerFileOpen lowers File<Read|Write|Append>(path_literal). The
// path must be a literal — anything else is an unsupported construct, per
// this backend's failure semantics. The opened handle's slot is pushed onto
// openFileSlots so every exit path closes it LIFO.
func (c *funcCtx) lowerFileOpen(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.TemplateArgs) != 1 {
		return ast.ReturnUnknown, c.fail("File requires exactly one mode template argument")
	}
	if len(expr.Args) != 1 || expr.Args[0].Kind != ast.KindStringLiteral {
		return ast.ReturnUnknown, c.fail("native backend does not support non-literal File paths")
	}

	var op ir.Opcode
	switch expr.TemplateArgs[0] {
	case "Read":
		op = ir.OpFileOpenRead
	case "Write":
		op = ir.OpFileOpenWrite
	case "Append":
		op = ir.OpFileOpenAppend
	default:
		return ast.ReturnUnknown, c.fail("unsupported File mode: %s", expr.TemplateArgs[0])
	}

	idx := c.l.strings.Intern(expr.Args[0].StringValue)
	c.emit(op, uint64(idx))
	slot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(slot))
	c.openFileSlots = append(c.openFileSlots, slot)
	c.emit(ir.OpLoadLocal, uint64(slot))
	return ast.ReturnInt64, true
}

// lowerFileWrite lowers a `.write(handle, v1, v2, ...)` method call: each
// value is written with OpFileWriteString in turn, short-circuiting past
// any remaining writes once one returns a non-zero error code. The
// result is the last-attempted write's error code, typed Int32; read as a
// Result it has a zero payload, so lowerTry consumes it without further
// packing since an error code under 2^32 is already its own packed
// representation.
func (c *funcCtx) lowerFileWrite(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) < 2 {
		return ast.ReturnUnknown, c.fail("write requires a file handle and at least one value")
	}
	if _, ok := c.lowerExpr(expr.Args[0]); !ok {
		return ast.ReturnUnknown, false
	}
	handleSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(handleSlot))

	errSlot := c.newSlot()
	c.emit(ir.OpPushI32, 0)
	c.emit(ir.OpStoreLocal, uint64(errSlot))

	var skipEnds []int
	for i, v := range expr.Args[1:] {
		if i > 0 {
			c.emit(ir.OpLoadLocal, uint64(errSlot))
			c.emit(ir.OpPushI32, 0)
			c.emit(ir.OpCmpEqI32, 0)
			skipEnds = append(skipEnds, c.emit(ir.OpJumpIfZero, 0))
		}
		if c.isArgvInitializer(v) {
			return ast.ReturnUnknown, c.fail("file write does not accept an argv-backed string")
		}
		kind, ok := c.lowerExpr(v)
		if !ok {
			return ast.ReturnUnknown, false
		}
		if kind != ast.ReturnString {
			return ast.ReturnUnknown, c.fail("write requires string-kind values")
		}
		c.emit(ir.OpLoadLocal, uint64(handleSlot))
		c.emit(ir.OpFileWriteString, 0)
		c.emit(ir.OpStoreLocal, uint64(errSlot))
	}
	for _, j := range skipEnds {
		c.patch(j)
	}

	c.emit(ir.OpLoadLocal, uint64(errSlot))
	return ast.ReturnInt32, true
}
