package lower

import (
	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
)

// lowerCall dispatches a call expression to the right builtin lowering or,
// for a user-defined definition, to inlining (or the OpCallFunction
// fallback when inlining it would close a cycle).
func (c *funcCtx) lowerCall(expr *ast.Expr) (ast.ReturnKind, bool) {
	switch {
	case expr.Name == "and":
		return c.lowerAnd(expr)
	case expr.Name == "or":
		return c.lowerOr(expr)
	case expr.Name == "not":
		return c.lowerNot(expr)
	case arithmeticNames[expr.Name]:
		return c.lowerArithmetic(expr)
	case comparisonNames[expr.Name]:
		return c.lowerComparison(expr)
	case expr.Name == "location":
		return c.lowerLocation(expr)
	case expr.Name == "at" || expr.Name == "at_unsafe":
		return c.lowerIndexedLoad(expr)
	case expr.Name == "count":
		return c.lowerCollectionCount(expr)
	case expr.Name == "capacity":
		return c.lowerCollectionCapacity(expr)
	case expr.Name == "insert":
		return c.lowerInsert(expr)
	case expr.Name == "array" || expr.Name == "vector" || expr.Name == "map":
		return c.lowerCollectionLiteral(expr)
	case expr.Name == "pi":
		c.emit(ir.OpPushF64, float64Bits(3.14159265358979323846))
		return ast.ReturnFloat64, true
	case expr.Name == "tau":
		c.emit(ir.OpPushF64, float64Bits(6.28318530717958647692))
		return ast.ReturnFloat64, true
	case expr.Name == "e":
		c.emit(ir.OpPushF64, float64Bits(2.71828182845904523536))
		return ast.ReturnFloat64, true
	case mathBuiltins[expr.Name]:
		return c.lowerMathCall(expr)
	case expr.Name == "print_line" || expr.Name == "print_error":
		return c.lowerPrint(expr)
	case expr.Name == "notify":
		return ast.ReturnVoid, c.fail("native backend does not support pathspace_notify")
	case expr.Name == "try":
		return c.lowerTry(expr)
	case expr.Name == "File":
		return c.lowerFileOpen(expr)
	case expr.IsMethodCall && expr.Name == "write":
		return c.lowerFileWrite(expr)
	case expr.Name == "lambda":
		return ast.ReturnUnknown, c.fail("native backend does not support lambda")
	default:
		return c.lowerUserCall(expr)
	}
}

var arithmeticNames = map[string]bool{"plus": true, "minus": true, "times": true, "divide": true, "modulo": true}
var comparisonNames = map[string]bool{
	"equals": true, "not_equals": true, "less_than": true, "less_equal": true,
	"greater_than": true, "greater_equal": true,
}

var mathBuiltins = map[string]bool{
	"sin": true, "cos": true, "tan": true,
	"asin": true, "acos": true, "atan": true, "atan2": true,
	"sinh": true, "cosh": true, "tanh": true,
	"exp": true, "log": true, "log2": true, "log10": true,
	"sqrt": true, "cbrt": true, "hypot": true, "pow": true,
	"clamp": true, "min": true, "max": true,
}

// lowerLocation lowers the `location(x)` builtin — takes the address of a
// heap-boxed local, producing a Reference/Pointer value.
func (c *funcCtx) lowerLocation(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) != 1 || expr.Args[0].Kind != ast.KindName {
		return ast.ReturnUnknown, c.fail("location requires a single local name argument")
	}
	info, ok := c.lookup(expr.Args[0].Name)
	if !ok {
		return ast.ReturnUnknown, c.fail("undefined name: %s", expr.Args[0].Name)
	}
	c.emit(ir.OpAddressOfLocal, uint64(info.slot))
	return ast.ReturnReference, true
}
