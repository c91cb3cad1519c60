package lower

import (
	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
)

var printOpcodes = map[ast.ReturnKind]ir.Opcode{
	ast.ReturnInt32:   ir.OpPrintI32,
	ast.ReturnInt64:   ir.OpPrintI64,
	ast.ReturnUInt64:  ir.OpPrintU64,
	ast.ReturnFloat32: ir.OpPrintF32,
	ast.ReturnFloat64: ir.OpPrintF64,
	ast.ReturnBool:    ir.OpPrintBool,
	ast.ReturnString:  ir.OpPrintString,
}

// lowerPrint lowers print_line/print_error. An argv-backed string argument
// is printed via
// OpPrintArgv instead of OpPrintString, since its cell is an argv index
// rather than a string-table index.
func (c *funcCtx) lowerPrint(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) != 1 {
		return ast.ReturnUnknown, c.fail("%s requires exactly one argument", expr.Name)
	}
	arg := expr.Args[0]
	argvBacked := c.isArgvInitializer(arg)

	kind, ok := c.lowerExpr(arg)
	if !ok {
		return ast.ReturnUnknown, false
	}

	flags := ir.PrintNewline
	if expr.Name == "print_error" {
		flags |= ir.PrintStderr
	}

	if argvBacked {
		c.emit(ir.OpPrintArgv, ir.EncodePrintImm(flags))
		return ast.ReturnVoid, true
	}

	op, ok := printOpcodes[kind]
	if !ok {
		return ast.ReturnUnknown, c.fail("%s: unsupported value kind: %s", expr.Name, kind.String())
	}
	c.emit(op, ir.EncodePrintImm(flags))
	return ast.ReturnVoid, true
}
