package lower

import (
	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
)

var arithOpcodes = map[ast.ReturnKind]map[string]ir.Opcode{
	ast.ReturnInt32: {
		"plus": ir.OpAddI32, "minus": ir.OpSubI32, "times": ir.OpMulI32,
		"divide": ir.OpDivI32, "modulo": ir.OpModI32,
	},
	ast.ReturnInt64: {
		"plus": ir.OpAddI64, "minus": ir.OpSubI64, "times": ir.OpMulI64,
		"divide": ir.OpDivI64, "modulo": ir.OpModI64,
	},
	ast.ReturnUInt64: {
		"plus": ir.OpAddU64, "minus": ir.OpSubU64, "times": ir.OpMulU64,
		"divide": ir.OpDivU64, "modulo": ir.OpModU64,
	},
	ast.ReturnFloat32: {
		"plus": ir.OpAddF32, "minus": ir.OpSubF32, "times": ir.OpMulF32, "divide": ir.OpDivF32,
	},
	ast.ReturnFloat64: {
		"plus": ir.OpAddF64, "minus": ir.OpSubF64, "times": ir.OpMulF64, "divide": ir.OpDivF64,
	},
}

var cmpOpcodes = map[ast.ReturnKind]map[string]ir.Opcode{
	ast.ReturnInt32: {
		"equals": ir.OpCmpEqI32, "not_equals": ir.OpCmpNeI32, "less_than": ir.OpCmpLtI32,
		"less_equal": ir.OpCmpLeI32, "greater_than": ir.OpCmpGtI32, "greater_equal": ir.OpCmpGeI32,
	},
	ast.ReturnInt64: {
		"equals": ir.OpCmpEqI64, "not_equals": ir.OpCmpNeI64, "less_than": ir.OpCmpLtI64,
		"less_equal": ir.OpCmpLeI64, "greater_than": ir.OpCmpGtI64, "greater_equal": ir.OpCmpGeI64,
	},
	ast.ReturnUInt64: {
		"equals": ir.OpCmpEqU64, "not_equals": ir.OpCmpNeU64, "less_than": ir.OpCmpLtU64,
		"less_equal": ir.OpCmpLeU64, "greater_than": ir.OpCmpGtU64, "greater_equal": ir.OpCmpGeU64,
	},
	ast.ReturnFloat32: {
		"equals": ir.OpCmpEqF32, "not_equals": ir.OpCmpNeF32, "less_than": ir.OpCmpLtF32,
		"less_equal": ir.OpCmpLeF32, "greater_than": ir.OpCmpGtF32, "greater_equal": ir.OpCmpGeF32,
	},
	ast.ReturnFloat64: {
		"equals": ir.OpCmpEqF64, "not_equals": ir.OpCmpNeF64, "less_than": ir.OpCmpLtF64,
		"less_equal": ir.OpCmpLeF64, "greater_than": ir.OpCmpGtF64, "greater_equal": ir.OpCmpGeF64,
	},
}

func (c *funcCtx) lowerArithmetic(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) != 2 {
		return ast.ReturnUnknown, c.fail("arithmetic call requires two arguments: %s", expr.Name)
	}
	leftKind, ok := c.lowerExpr(expr.Args[0])
	if !ok {
		return ast.ReturnUnknown, false
	}
	if leftKind == ast.ReturnPointer {
		return c.lowerPointerArithmetic(expr)
	}
	rightKind, ok := c.lowerExpr(expr.Args[1])
	if !ok {
		return ast.ReturnUnknown, false
	}
	if leftKind != rightKind {
		return ast.ReturnUnknown, c.fail("arithmetic operand kind mismatch: %s", expr.Name)
	}
	family, ok := arithOpcodes[leftKind]
	if !ok {
		return ast.ReturnUnknown, c.fail("unsupported arithmetic operand kind: %s", leftKind.String())
	}
	op, ok := family[expr.Name]
	if !ok {
		return ast.ReturnUnknown, c.fail("unsupported arithmetic operator: %s", expr.Name)
	}
	c.emit(op, 0)
	return leftKind, true
}

// lowerPointerArithmetic handles `plus`/`minus` with a Pointer left operand
// and an integer right operand — the validator has already rejected
// pointer+pointer and pointer-pointer.
func (c *funcCtx) lowerPointerArithmetic(expr *ast.Expr) (ast.ReturnKind, bool) {
	if _, ok := c.lowerExpr(expr.Args[1]); !ok {
		return ast.ReturnUnknown, false
	}
	switch expr.Name {
	case "plus":
		c.emit(ir.OpAddPtrI64, 0)
	case "minus":
		c.emit(ir.OpSubPtrI64, 0)
	default:
		return ast.ReturnUnknown, c.fail("unsupported pointer arithmetic operator: %s", expr.Name)
	}
	return ast.ReturnPointer, true
}

func (c *funcCtx) lowerComparison(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) != 2 {
		return ast.ReturnUnknown, c.fail("comparison call requires two arguments: %s", expr.Name)
	}
	leftKind, ok := c.lowerExpr(expr.Args[0])
	if !ok {
		return ast.ReturnUnknown, false
	}
	rightKind, ok := c.lowerExpr(expr.Args[1])
	if !ok {
		return ast.ReturnUnknown, false
	}
	if leftKind != rightKind {
		return ast.ReturnUnknown, c.fail("comparison operand kind mismatch: %s", expr.Name)
	}
	if leftKind == ast.ReturnBool {
		switch expr.Name {
		case "equals":
			c.emit(ir.OpCmpEqBool, 0)
		case "not_equals":
			c.emit(ir.OpCmpNeBool, 0)
		default:
			return ast.ReturnUnknown, c.fail("unsupported bool comparison: %s", expr.Name)
		}
		return ast.ReturnBool, true
	}
	if leftKind == ast.ReturnString {
		return ast.ReturnUnknown, c.fail("native backend does not support string comparisons; VM only: %s", expr.Name)
	}
	family, ok := cmpOpcodes[leftKind]
	if !ok {
		return ast.ReturnUnknown, c.fail("unsupported comparison operand kind: %s", leftKind.String())
	}
	op, ok := family[expr.Name]
	if !ok {
		return ast.ReturnUnknown, c.fail("unsupported comparison operator: %s", expr.Name)
	}
	c.emit(op, 0)
	return ast.ReturnBool, true
}

// lowerNot lowers the unary `not(b)` builtin.
func (c *funcCtx) lowerNot(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) != 1 {
		return ast.ReturnUnknown, c.fail("not requires one argument")
	}
	kind, ok := c.lowerExpr(expr.Args[0])
	if !ok {
		return ast.ReturnUnknown, false
	}
	if kind != ast.ReturnBool {
		return ast.ReturnUnknown, c.fail("not requires a bool operand")
	}
	c.emit(ir.OpNotBool, 0)
	return ast.ReturnBool, true
}

// lowerAnd/lowerOr implement short-circuit evaluation: `a`'s value is
// always observable; `b` only runs when short-circuiting does not apply,
// preserving any mutable writes inside `b`.
func (c *funcCtx) lowerAnd(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) != 2 {
		return ast.ReturnUnknown, c.fail("and requires two arguments")
	}
	if _, ok := c.lowerExpr(expr.Args[0]); !ok {
		return ast.ReturnUnknown, false
	}
	c.emit(ir.OpDup, 0)
	skip := c.emit(ir.OpJumpIfZero, 0)
	c.emit(ir.OpPop, 0)
	if _, ok := c.lowerExpr(expr.Args[1]); !ok {
		return ast.ReturnUnknown, false
	}
	c.patch(skip)
	return ast.ReturnBool, true
}

func (c *funcCtx) lowerOr(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) != 2 {
		return ast.ReturnUnknown, c.fail("or requires two arguments")
	}
	if _, ok := c.lowerExpr(expr.Args[0]); !ok {
		return ast.ReturnUnknown, false
	}
	c.emit(ir.OpDup, 0)
	c.emit(ir.OpNotBool, 0)
	skip := c.emit(ir.OpJumpIfZero, 0)
	c.emit(ir.OpPop, 0)
	if _, ok := c.lowerExpr(expr.Args[1]); !ok {
		return ast.ReturnUnknown, false
	}
	c.patch(skip)
	return ast.ReturnBool, true
}
