package lower

import (
	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
)

// resultModulus packs/unpacks the Result i64: the low 32
// bits are an i32 error code, the high 32 bits are the success payload".
// The opcode set has no bitwise AND/OR/shift, only arithmetic, so packing
// is expressed as payload*resultModulus + errorCode and unpacking as
// packed % resultModulus (error code) and packed / resultModulus (payload)
// — equivalent to the bitwise form for any error code that fits in 32
// unsigned bits, which is all the lowerer ever stores there.
const resultModulus = 1 << 32

// lowerTry lowers `try(expr)`: expr evaluates to a packed Result i64. On a
// zero error code, try(expr) yields the payload and execution continues. On
// a non-zero code it runs the "bound on_error handler": this core has no
// separate handler-block syntax, so the handler is always propagation — the
// enclosing function (or enclosing inline frame, if this try sits inside an
// inlined call) returns the still-erroring packed value to its own caller,
// closing any open file handles first exactly like an ordinary return
// on every exit path.
func (c *funcCtx) lowerTry(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) != 1 {
		return ast.ReturnUnknown, c.fail("try requires exactly one Result-bearing argument")
	}
	payloadKind, ok := c.lowerExpr(expr.Args[0])
	if !ok {
		return ast.ReturnUnknown, false
	}
	packedSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(packedSlot))

	c.emit(ir.OpLoadLocal, uint64(packedSlot))
	c.emit(ir.OpPushI64, resultModulus)
	c.emit(ir.OpModI64, 0)
	c.emit(ir.OpPushI64, 0)
	c.emit(ir.OpCmpEqI64, 0)
	toError := c.emit(ir.OpJumpIfZero, 0)

	payloadSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(packedSlot))
	c.emit(ir.OpPushI64, resultModulus)
	c.emit(ir.OpDivI64, 0)
	c.emit(ir.OpStoreLocal, uint64(payloadSlot))
	c.emit(ir.OpLoadLocal, uint64(payloadSlot))
	toEnd := c.emit(ir.OpJump, 0)

	c.patch(toError)
	if !c.propagateError(packedSlot) {
		return ast.ReturnUnknown, false
	}

	c.patch(toEnd)
	return payloadKind, true
}

// propagateError emits the "return the error to the caller" half of
// lowerTry, targeting whichever frame — an inlined call or the real
// function — currently owns the return.
func (c *funcCtx) propagateError(packedSlot int) bool {
	if len(c.inlineFrames) > 0 {
		frame := &c.inlineFrames[len(c.inlineFrames)-1]
		if frame.resultSlot >= 0 {
			c.emit(ir.OpLoadLocal, uint64(packedSlot))
			c.emit(ir.OpStoreLocal, uint64(frame.resultSlot))
		}
		frame.doneJumps = append(frame.doneJumps, c.emit(ir.OpJump, 0))
		return true
	}
	c.closeOpenFiles()
	c.emit(ir.OpLoadLocal, uint64(packedSlot))
	if is32(c.returnKind) {
		c.emit(ir.OpReturnI32, 0)
	} else {
		c.emit(ir.OpReturnI64, 0)
	}
	return true
}
