package lower

import (
	"math"

	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
)

// seriesIterations returns the bounded-series iteration count
// (grounded on IrLowererLowerOperatorsClampMinMaxTrig.h /
// IrLowererLowerOperatorsArcHyperbolic.h in original_source/) fixes for the
// trig/exp/log family at the given width, so VM and native execution of
// the same unrolled instruction stream agree bit-for-bit.
func seriesIterations(kind ast.ReturnKind) int {
	if kind == ast.ReturnFloat32 {
		return 10
	}
	return 12
}

func newtonIterations(kind ast.ReturnKind) int {
	if kind == ast.ReturnFloat32 {
		return 6
	}
	return 8
}

func pushOp(kind ast.ReturnKind) ir.Opcode {
	if kind == ast.ReturnFloat32 {
		return ir.OpPushF32
	}
	return ir.OpPushF64
}
func constBits(kind ast.ReturnKind, v float64) uint64 {
	if kind == ast.ReturnFloat32 {
		return float32Bits(v)
	}
	return float64Bits(v)
}
func addOp(kind ast.ReturnKind) ir.Opcode {
	if kind == ast.ReturnFloat32 {
		return ir.OpAddF32
	}
	return ir.OpAddF64
}
func subOp(kind ast.ReturnKind) ir.Opcode {
	if kind == ast.ReturnFloat32 {
		return ir.OpSubF32
	}
	return ir.OpSubF64
}
func mulOp(kind ast.ReturnKind) ir.Opcode {
	if kind == ast.ReturnFloat32 {
		return ir.OpMulF32
	}
	return ir.OpMulF64
}
func divOp(kind ast.ReturnKind) ir.Opcode {
	if kind == ast.ReturnFloat32 {
		return ir.OpDivF32
	}
	return ir.OpDivF64
}
func negOp(kind ast.ReturnKind) ir.Opcode {
	if kind == ast.ReturnFloat32 {
		return ir.OpNegF32
	}
	return ir.OpNegF64
}

const ln2 = 0.69314718055994530942
const log10e = 2.30258509299404568402

// lowerMathCall dispatches a gated math builtin to its series expansion.
// All of sin/cos/tan/asin/acos/atan/atan2/sinh/cosh/tanh/exp/log/log2/
// log10/sqrt/cbrt/hypot/pow operate on a single float width carried by the
// first argument; clamp/min/max are numeric-kind-generic.
func (c *funcCtx) lowerMathCall(expr *ast.Expr) (ast.ReturnKind, bool) {
	switch expr.Name {
	case "clamp":
		return c.emitClamp(expr)
	case "min", "max":
		return c.emitMinMax(expr)
	}
	if len(expr.Args) == 0 {
		return ast.ReturnUnknown, c.fail("math builtin requires at least one argument: %s", expr.Name)
	}
	kind, ok := c.lowerExpr(expr.Args[0])
	if !ok {
		return ast.ReturnUnknown, false
	}
	if !kind.IsFloat() {
		return ast.ReturnUnknown, c.fail("math builtin requires a float operand: %s", expr.Name)
	}
	xSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(xSlot))

	switch expr.Name {
	case "sin":
		c.emitSeries(xSlot, kind, sinCoeffs, true)
	case "cos":
		c.emitSeries(xSlot, kind, cosCoeffs, false)
	case "tan":
		c.emitSeries(xSlot, kind, sinCoeffs, true)
		sinSlot := c.newSlot()
		c.emit(ir.OpStoreLocal, uint64(sinSlot))
		c.emitSeries(xSlot, kind, cosCoeffs, false)
		c.emit(ir.OpLoadLocal, uint64(sinSlot))
		c.swapTopTwo(kind)
		c.emit(divOp(kind), 0)
	case "sinh":
		c.emitHyperbolic(xSlot, kind, false)
	case "cosh":
		c.emitHyperbolic(xSlot, kind, true)
	case "tanh":
		c.emitHyperbolic(xSlot, kind, false)
		sinhSlot := c.newSlot()
		c.emit(ir.OpStoreLocal, uint64(sinhSlot))
		c.emitHyperbolic(xSlot, kind, true)
		c.emit(ir.OpLoadLocal, uint64(sinhSlot))
		c.swapTopTwo(kind)
		c.emit(divOp(kind), 0)
	case "exp":
		c.emitExpSeries(xSlot, kind)
	case "log":
		c.emitLogSeries(xSlot, kind)
	case "log2":
		c.emitLogSeries(xSlot, kind)
		c.emit(pushOp(kind), constBits(kind, 1/ln2))
		c.emit(mulOp(kind), 0)
	case "log10":
		c.emitLogSeries(xSlot, kind)
		c.emit(pushOp(kind), constBits(kind, 1/log10e))
		c.emit(mulOp(kind), 0)
	case "sqrt":
		c.emitNewtonSqrt(xSlot, kind)
	case "cbrt":
		c.emitNewtonCbrt(xSlot, kind)
	case "asin":
		c.emitAsin(xSlot, kind)
	case "acos":
		c.emitAsin(xSlot, kind)
		c.emit(pushOp(kind), constBits(kind, math.Pi/2))
		c.swapTopTwo(kind)
		c.emit(subOp(kind), 0)
	case "atan":
		c.emitAtan(xSlot, kind)
	case "atan2":
		return c.emitAtan2(expr, xSlot, kind)
	case "hypot":
		return c.emitHypot(expr, xSlot, kind)
	case "pow":
		return c.emitPow(expr, xSlot, kind)
	default:
		return ast.ReturnUnknown, c.fail("unsupported math builtin: %s", expr.Name)
	}
	return kind, true
}

// swapTopTwo exchanges the top two stack cells via two temp slots —
// the stack machine has no native Swap opcode, so every binary op built
// from two already-lowered subexpressions spills through locals instead.
func (c *funcCtx) swapTopTwo(ast.ReturnKind) {
	a := c.newSlot()
	b := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(a))
	c.emit(ir.OpStoreLocal, uint64(b))
	c.emit(ir.OpLoadLocal, uint64(a))
	c.emit(ir.OpLoadLocal, uint64(b))
}

// taylorCoeffs precomputes a Taylor series' coefficients at lowering time
// (in Go float64 then narrowed per width) since the iteration count and
// term structure are compile-time constants; only the running power of x
// is a runtime value.
func taylorCoeffs(n int, f func(k int) float64) []float64 {
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		out[k] = f(k)
	}
	return out
}

func sinCoeffs(iters int) []float64 {
	return taylorCoeffs(iters, func(k int) float64 {
		sign := 1.0
		if k%2 == 1 {
			sign = -1.0
		}
		return sign / factorial(2*k+1)
	})
}
func cosCoeffs(iters int) []float64 {
	return taylorCoeffs(iters, func(k int) float64 {
		sign := 1.0
		if k%2 == 1 {
			sign = -1.0
		}
		return sign / factorial(2*k)
	})
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

// emitSeries unrolls sum_{k=0}^{iters-1} coeffs[k] * x^(power step): sin
// climbs odd powers of x starting at x^1, cos climbs even powers starting
// at x^0 — startOdd selects which.
func (c *funcCtx) emitSeries(xSlot int, kind ast.ReturnKind, coeffFn func(int) []float64, startOdd bool) {
	iters := seriesIterations(kind)
	coeffs := coeffFn(iters)

	x2Slot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(xSlot))
	c.emit(ir.OpLoadLocal, uint64(xSlot))
	c.emit(mulOp(kind), 0)
	c.emit(ir.OpStoreLocal, uint64(x2Slot))

	powerSlot := c.newSlot()
	if startOdd {
		c.emit(ir.OpLoadLocal, uint64(xSlot))
	} else {
		c.emit(pushOp(kind), constBits(kind, 1))
	}
	c.emit(ir.OpStoreLocal, uint64(powerSlot))

	sumSlot := c.newSlot()
	c.emit(pushOp(kind), constBits(kind, 0))
	c.emit(ir.OpStoreLocal, uint64(sumSlot))

	for k := 0; k < iters; k++ {
		c.emit(ir.OpLoadLocal, uint64(powerSlot))
		c.emit(pushOp(kind), constBits(kind, coeffs[k]))
		c.emit(mulOp(kind), 0)
		c.emit(ir.OpLoadLocal, uint64(sumSlot))
		c.emit(addOp(kind), 0)
		c.emit(ir.OpStoreLocal, uint64(sumSlot))

		if k != iters-1 {
			c.emit(ir.OpLoadLocal, uint64(powerSlot))
			c.emit(ir.OpLoadLocal, uint64(x2Slot))
			c.emit(mulOp(kind), 0)
			c.emit(ir.OpStoreLocal, uint64(powerSlot))
		}
	}
	c.emit(ir.OpLoadLocal, uint64(sumSlot))
}

// emitHyperbolic computes sinh/cosh via the exponential definition:
// sinh(x) = (e^x - e^-x)/2, cosh(x) = (e^x + e^-x)/2.
func (c *funcCtx) emitHyperbolic(xSlot int, kind ast.ReturnKind, isCosh bool) {
	c.emitExpSeries(xSlot, kind)
	ePosSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(ePosSlot))

	negXSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(xSlot))
	c.emit(negOp(kind), 0)
	c.emit(ir.OpStoreLocal, uint64(negXSlot))
	c.emitExpSeries(negXSlot, kind)
	eNegSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(eNegSlot))

	c.emit(ir.OpLoadLocal, uint64(ePosSlot))
	c.emit(ir.OpLoadLocal, uint64(eNegSlot))
	if isCosh {
		c.emit(addOp(kind), 0)
	} else {
		c.emit(subOp(kind), 0)
	}
	c.emit(pushOp(kind), constBits(kind, 2))
	c.emit(divOp(kind), 0)
}

// emitExpSeries unrolls e^x = sum_{k=0}^{iters-1} x^k / k!.
func (c *funcCtx) emitExpSeries(xSlot int, kind ast.ReturnKind) {
	iters := seriesIterations(kind)
	powerSlot := c.newSlot()
	c.emit(pushOp(kind), constBits(kind, 1))
	c.emit(ir.OpStoreLocal, uint64(powerSlot))
	sumSlot := c.newSlot()
	c.emit(pushOp(kind), constBits(kind, 0))
	c.emit(ir.OpStoreLocal, uint64(sumSlot))

	for k := 0; k < iters; k++ {
		c.emit(ir.OpLoadLocal, uint64(powerSlot))
		c.emit(pushOp(kind), constBits(kind, 1/factorial(k)))
		c.emit(mulOp(kind), 0)
		c.emit(ir.OpLoadLocal, uint64(sumSlot))
		c.emit(addOp(kind), 0)
		c.emit(ir.OpStoreLocal, uint64(sumSlot))
		if k != iters-1 {
			c.emit(ir.OpLoadLocal, uint64(powerSlot))
			c.emit(ir.OpLoadLocal, uint64(xSlot))
			c.emit(mulOp(kind), 0)
			c.emit(ir.OpStoreLocal, uint64(powerSlot))
		}
	}
	c.emit(ir.OpLoadLocal, uint64(sumSlot))
}

// emitLogSeries computes ln(x) via 2*atanh((x-1)/(x+1)), itself a bounded
// odd-power series — converges for any x > 0 as |(x-1)/(x+1)| < 1.
func (c *funcCtx) emitLogSeries(xSlot int, kind ast.ReturnKind) {
	iters := seriesIterations(kind)
	numSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(xSlot))
	c.emit(pushOp(kind), constBits(kind, 1))
	c.emit(subOp(kind), 0)
	c.emit(ir.OpStoreLocal, uint64(numSlot))

	denSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(xSlot))
	c.emit(pushOp(kind), constBits(kind, 1))
	c.emit(addOp(kind), 0)
	c.emit(ir.OpStoreLocal, uint64(denSlot))

	uSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(numSlot))
	c.emit(ir.OpLoadLocal, uint64(denSlot))
	c.emit(divOp(kind), 0)
	c.emit(ir.OpStoreLocal, uint64(uSlot))

	u2Slot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(uSlot))
	c.emit(ir.OpLoadLocal, uint64(uSlot))
	c.emit(mulOp(kind), 0)
	c.emit(ir.OpStoreLocal, uint64(u2Slot))

	powerSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(uSlot))
	c.emit(ir.OpStoreLocal, uint64(powerSlot))

	sumSlot := c.newSlot()
	c.emit(pushOp(kind), constBits(kind, 0))
	c.emit(ir.OpStoreLocal, uint64(sumSlot))

	for k := 0; k < iters; k++ {
		c.emit(ir.OpLoadLocal, uint64(powerSlot))
		c.emit(pushOp(kind), constBits(kind, 1/float64(2*k+1)))
		c.emit(mulOp(kind), 0)
		c.emit(ir.OpLoadLocal, uint64(sumSlot))
		c.emit(addOp(kind), 0)
		c.emit(ir.OpStoreLocal, uint64(sumSlot))
		if k != iters-1 {
			c.emit(ir.OpLoadLocal, uint64(powerSlot))
			c.emit(ir.OpLoadLocal, uint64(u2Slot))
			c.emit(mulOp(kind), 0)
			c.emit(ir.OpStoreLocal, uint64(powerSlot))
		}
	}
	c.emit(ir.OpLoadLocal, uint64(sumSlot))
	c.emit(pushOp(kind), constBits(kind, 2))
	c.emit(mulOp(kind), 0)
}

// emitAtan computes atan(x) via its Taylor series, valid for |x| <= 1. No
// range reduction is applied here or by its callers: atan passes x as is,
// asin/acos pass x/sqrt(1-x^2) and atan2 passes y/x, each of which can lie
// outside that range.
func (c *funcCtx) emitAtan(xSlot int, kind ast.ReturnKind) {
	iters := seriesIterations(kind)
	x2Slot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(xSlot))
	c.emit(ir.OpLoadLocal, uint64(xSlot))
	c.emit(mulOp(kind), 0)
	c.emit(ir.OpStoreLocal, uint64(x2Slot))

	powerSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(xSlot))
	c.emit(ir.OpStoreLocal, uint64(powerSlot))

	sumSlot := c.newSlot()
	c.emit(pushOp(kind), constBits(kind, 0))
	c.emit(ir.OpStoreLocal, uint64(sumSlot))

	for k := 0; k < iters; k++ {
		sign := 1.0
		if k%2 == 1 {
			sign = -1.0
		}
		c.emit(ir.OpLoadLocal, uint64(powerSlot))
		c.emit(pushOp(kind), constBits(kind, sign/float64(2*k+1)))
		c.emit(mulOp(kind), 0)
		c.emit(ir.OpLoadLocal, uint64(sumSlot))
		c.emit(addOp(kind), 0)
		c.emit(ir.OpStoreLocal, uint64(sumSlot))
		if k != iters-1 {
			c.emit(ir.OpLoadLocal, uint64(powerSlot))
			c.emit(ir.OpLoadLocal, uint64(x2Slot))
			c.emit(mulOp(kind), 0)
			c.emit(ir.OpStoreLocal, uint64(powerSlot))
		}
	}
	c.emit(ir.OpLoadLocal, uint64(sumSlot))
}

// emitAsin computes asin(x) = atan(x / sqrt(1 - x^2)).
func (c *funcCtx) emitAsin(xSlot int, kind ast.ReturnKind) {
	oneMinusX2Slot := c.newSlot()
	c.emit(pushOp(kind), constBits(kind, 1))
	c.emit(ir.OpLoadLocal, uint64(xSlot))
	c.emit(ir.OpLoadLocal, uint64(xSlot))
	c.emit(mulOp(kind), 0)
	c.emit(subOp(kind), 0)
	c.emit(ir.OpStoreLocal, uint64(oneMinusX2Slot))
	c.emitNewtonSqrt(oneMinusX2Slot, kind)
	denomSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(denomSlot))

	argSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(xSlot))
	c.emit(ir.OpLoadLocal, uint64(denomSlot))
	c.emit(divOp(kind), 0)
	c.emit(ir.OpStoreLocal, uint64(argSlot))
	c.emitAtan(argSlot, kind)
}

// emitNewtonSqrt unrolls Newton's method for sqrt(a): x_{n+1} = (x_n +
// a/x_n)/2, seeded from a itself (valid for a >= 1; for 0 < a < 1 it still
// converges, just over more of the fixed iteration budget).
func (c *funcCtx) emitNewtonSqrt(aSlot int, kind ast.ReturnKind) {
	iters := newtonIterations(kind)
	xSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(aSlot))
	c.emit(ir.OpStoreLocal, uint64(xSlot))
	for i := 0; i < iters; i++ {
		c.emit(ir.OpLoadLocal, uint64(xSlot))
		c.emit(ir.OpLoadLocal, uint64(aSlot))
		c.emit(ir.OpLoadLocal, uint64(xSlot))
		c.emit(divOp(kind), 0)
		c.emit(addOp(kind), 0)
		c.emit(pushOp(kind), constBits(kind, 2))
		c.emit(divOp(kind), 0)
		c.emit(ir.OpStoreLocal, uint64(xSlot))
	}
	c.emit(ir.OpLoadLocal, uint64(xSlot))
}

// emitNewtonCbrt unrolls Newton's method for cbrt(a): x_{n+1} = (2*x_n +
// a/x_n^2)/3.
func (c *funcCtx) emitNewtonCbrt(aSlot int, kind ast.ReturnKind) {
	iters := newtonIterations(kind)
	xSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(aSlot))
	c.emit(ir.OpStoreLocal, uint64(xSlot))
	for i := 0; i < iters; i++ {
		x2Slot := c.newSlot()
		c.emit(ir.OpLoadLocal, uint64(xSlot))
		c.emit(ir.OpLoadLocal, uint64(xSlot))
		c.emit(mulOp(kind), 0)
		c.emit(ir.OpStoreLocal, uint64(x2Slot))

		c.emit(pushOp(kind), constBits(kind, 2))
		c.emit(ir.OpLoadLocal, uint64(xSlot))
		c.emit(mulOp(kind), 0)
		c.emit(ir.OpLoadLocal, uint64(aSlot))
		c.emit(ir.OpLoadLocal, uint64(x2Slot))
		c.emit(divOp(kind), 0)
		c.emit(addOp(kind), 0)
		c.emit(pushOp(kind), constBits(kind, 3))
		c.emit(divOp(kind), 0)
		c.emit(ir.OpStoreLocal, uint64(xSlot))
	}
	c.emit(ir.OpLoadLocal, uint64(xSlot))
}

func (c *funcCtx) emitAtan2(expr *ast.Expr, ySlot int, kind ast.ReturnKind) (ast.ReturnKind, bool) {
	if len(expr.Args) != 2 {
		return ast.ReturnUnknown, c.fail("atan2 requires two arguments")
	}
	xKind, ok := c.lowerExpr(expr.Args[1])
	if !ok || xKind != kind {
		return ast.ReturnUnknown, c.fail("atan2 operand kind mismatch")
	}
	xSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(xSlot))
	ratioSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(ySlot))
	c.emit(ir.OpLoadLocal, uint64(xSlot))
	c.emit(divOp(kind), 0)
	c.emit(ir.OpStoreLocal, uint64(ratioSlot))
	c.emitAtan(ratioSlot, kind)
	return kind, true
}

func (c *funcCtx) emitHypot(expr *ast.Expr, aSlot int, kind ast.ReturnKind) (ast.ReturnKind, bool) {
	if len(expr.Args) != 2 {
		return ast.ReturnUnknown, c.fail("hypot requires two arguments")
	}
	bKind, ok := c.lowerExpr(expr.Args[1])
	if !ok || bKind != kind {
		return ast.ReturnUnknown, c.fail("hypot operand kind mismatch")
	}
	bSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(bSlot))
	sumSqSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(aSlot))
	c.emit(ir.OpLoadLocal, uint64(aSlot))
	c.emit(mulOp(kind), 0)
	c.emit(ir.OpLoadLocal, uint64(bSlot))
	c.emit(ir.OpLoadLocal, uint64(bSlot))
	c.emit(mulOp(kind), 0)
	c.emit(addOp(kind), 0)
	c.emit(ir.OpStoreLocal, uint64(sumSqSlot))
	c.emitNewtonSqrt(sumSqSlot, kind)
	return kind, true
}

// emitPow lowers pow(x, n): a non-negative integer literal exponent
// becomes a multiplication chain; any other exponent falls back to
// exp(n * log(x)) through the same series machinery.
func (c *funcCtx) emitPow(expr *ast.Expr, xSlot int, kind ast.ReturnKind) (ast.ReturnKind, bool) {
	if len(expr.Args) != 2 {
		return ast.ReturnUnknown, c.fail("pow requires two arguments")
	}
	if n, ok := literalNonNegativeInt(expr.Args[1]); ok {
		if n == 0 {
			c.emit(pushOp(kind), constBits(kind, 1))
			return kind, true
		}
		c.emit(ir.OpLoadLocal, uint64(xSlot))
		for i := 1; i < n; i++ {
			c.emit(ir.OpLoadLocal, uint64(xSlot))
			c.emit(mulOp(kind), 0)
		}
		return kind, true
	}
	nKind, ok := c.lowerExpr(expr.Args[1])
	if !ok || nKind != kind {
		return ast.ReturnUnknown, c.fail("pow exponent kind mismatch")
	}
	nSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(nSlot))
	c.emitLogSeries(xSlot, kind)
	logSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(logSlot))
	c.emit(ir.OpLoadLocal, uint64(nSlot))
	c.emit(ir.OpLoadLocal, uint64(logSlot))
	c.emit(mulOp(kind), 0)
	argSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(argSlot))
	c.emitExpSeries(argSlot, kind)
	return kind, true
}

func literalNonNegativeInt(expr *ast.Expr) (int, bool) {
	if expr.Kind != ast.KindLiteral || expr.IsUnsigned || expr.IntValue < 0 {
		return 0, false
	}
	return int(expr.IntValue), true
}

// emitClamp lowers `clamp(v, lo, hi)` to the four-temp diamond of
// CmpLt/CmpGt/JumpIfZero ports verbatim from
// IrLowererLowerOperatorsClampMinMaxTrig.h: v is held in a temp,
// tested against lo and hi each via a compare-and-branch rather than a
// min/max composition, to keep instruction counts and temp-slot numbering
// stable for hand-written IR fixtures.
func (c *funcCtx) emitClamp(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) != 3 {
		return ast.ReturnUnknown, c.fail("clamp requires three arguments")
	}
	kind, ok := c.lowerExpr(expr.Args[0])
	if !ok {
		return ast.ReturnUnknown, false
	}
	vSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(vSlot))

	loKind, ok := c.lowerExpr(expr.Args[1])
	if !ok || loKind != kind {
		return ast.ReturnUnknown, c.fail("clamp operand kind mismatch")
	}
	loSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(loSlot))

	hiKind, ok := c.lowerExpr(expr.Args[2])
	if !ok || hiKind != kind {
		return ast.ReturnUnknown, c.fail("clamp operand kind mismatch")
	}
	hiSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(hiSlot))

	resultSlot := c.newSlot()
	cmp, ok := cmpOpcodes[kind]
	if !ok {
		return ast.ReturnUnknown, c.fail("unsupported clamp operand kind: %s", kind.String())
	}

	// result = v < lo ? lo : v
	c.emit(ir.OpLoadLocal, uint64(vSlot))
	c.emit(ir.OpLoadLocal, uint64(loSlot))
	c.emit(cmp["less_than"], 0)
	toLo := c.emit(ir.OpJumpIfZero, 0)
	c.emit(ir.OpLoadLocal, uint64(loSlot))
	c.emit(ir.OpStoreLocal, uint64(resultSlot))
	skipV := c.emit(ir.OpJump, 0)
	c.patch(toLo)
	c.emit(ir.OpLoadLocal, uint64(vSlot))
	c.emit(ir.OpStoreLocal, uint64(resultSlot))
	c.patch(skipV)

	// result = result > hi ? hi : result
	c.emit(ir.OpLoadLocal, uint64(resultSlot))
	c.emit(ir.OpLoadLocal, uint64(hiSlot))
	c.emit(cmp["greater_than"], 0)
	notAboveHi := c.emit(ir.OpJumpIfZero, 0)
	c.emit(ir.OpLoadLocal, uint64(hiSlot))
	c.emit(ir.OpStoreLocal, uint64(resultSlot))
	c.patch(notAboveHi)

	c.emit(ir.OpLoadLocal, uint64(resultSlot))
	return kind, true
}

// emitMinMax lowers `min(a, b)`/`max(a, b)` via the same two-temp
// comparison shape as emitClamp.
func (c *funcCtx) emitMinMax(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) != 2 {
		return ast.ReturnUnknown, c.fail("%s requires two arguments", expr.Name)
	}
	kind, ok := c.lowerExpr(expr.Args[0])
	if !ok {
		return ast.ReturnUnknown, false
	}
	aSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(aSlot))

	bKind, ok := c.lowerExpr(expr.Args[1])
	if !ok || bKind != kind {
		return ast.ReturnUnknown, c.fail("%s operand kind mismatch", expr.Name)
	}
	bSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(bSlot))

	cmp, ok := cmpOpcodes[kind]
	if !ok {
		return ast.ReturnUnknown, c.fail("unsupported %s operand kind: %s", expr.Name, kind.String())
	}
	op := "less_than"
	if expr.Name == "max" {
		op = "greater_than"
	}
	c.emit(ir.OpLoadLocal, uint64(aSlot))
	c.emit(ir.OpLoadLocal, uint64(bSlot))
	c.emit(cmp[op], 0)
	takeB := c.emit(ir.OpJumpIfZero, 0)
	c.emit(ir.OpLoadLocal, uint64(aSlot))
	end := c.emit(ir.OpJump, 0)
	c.patch(takeB)
	c.emit(ir.OpLoadLocal, uint64(bSlot))
	c.patch(end)
	return kind, true
}
