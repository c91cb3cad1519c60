package lower

import (
	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
)

// lowerStatements lowers a statement list, leaving the stack balanced after
// every statement.
func (c *funcCtx) lowerStatements(stmts []*ast.Expr) bool {
	for _, stmt := range stmts {
		if !c.lowerStatement(stmt) {
			return false
		}
	}
	return true
}

func (c *funcCtx) lowerStatement(stmt *ast.Expr) bool {
	switch {
	case stmt.IsBinding:
		return c.lowerBindingStatement(stmt)
	case stmt.IsCallNamed("return"):
		return c.lowerReturnStatement(stmt)
	case stmt.IsCallNamed("if"):
		return c.lowerIf(stmt)
	case stmt.IsCallNamed("repeat"):
		return c.lowerRepeat(stmt)
	case stmt.IsCallNamed("block"):
		return c.lowerBlock(stmt)
	default:
		kind, ok := c.lowerExpr(stmt)
		if !ok {
			return false
		}
		if kind != ast.ReturnVoid {
			c.emit(ir.OpPop, 0)
		}
		return true
	}
}

func (c *funcCtx) lowerBindingStatement(stmt *ast.Expr) bool {
	initializer, hasValue := bindingInitializer(stmt)
	var kind, elemKind ast.ReturnKind
	argvBacked := false
	if hasValue {
		got, ok := c.lowerExpr(initializer)
		if !ok {
			return false
		}
		kind = got
		argvBacked = c.isArgvInitializer(initializer)
	}
	if declaredKind, declaredElem, ok := declaredBindingKind(stmt); ok {
		kind, elemKind = declaredKind, declaredElem
	}
	slot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(slot))
	c.define(stmt.Name, localInfo{slot: slot, kind: kind, elemKind: elemKind, argvBacked: argvBacked})
	return true
}

// bindingInitializer mirrors validator/statement.go's helper of the same
// name: a binding's value is either its sole Args entry or a body-argument
// block envelope's trailing non-binding expression.
func bindingInitializer(stmt *ast.Expr) (*ast.Expr, bool) {
	if len(stmt.Args) == 1 {
		return stmt.Args[0], true
	}
	if value, ok := stmt.UnwrapEnvelope(true, isBuiltinBlockCall); ok {
		return value, true
	}
	for _, body := range stmt.BodyArguments {
		if !body.IsBinding {
			return body, true
		}
	}
	return nil, false
}

func isBuiltinBlockCall(e *ast.Expr) bool {
	return e.Kind == ast.KindCall && (e.Name == "if" || e.Name == "repeat" || e.Name == "block")
}

func declaredBindingKind(stmt *ast.Expr) (ast.ReturnKind, ast.ReturnKind, bool) {
	for _, t := range stmt.Transforms {
		switch t.Name {
		case "array", "vector":
			elem := ast.ReturnUnknown
			if len(t.TemplateArgs) > 0 {
				elem = typeNameToReturnKind(t.TemplateArgs[0])
			}
			return typeNameToReturnKind(t.Name), elem, true
		case "map":
			elem := ast.ReturnUnknown
			if len(t.TemplateArgs) > 1 {
				elem = typeNameToReturnKind(t.TemplateArgs[1])
			}
			return ast.ReturnMap, elem, true
		case "Pointer":
			return ast.ReturnPointer, ast.ReturnUnknown, true
		case "Reference":
			return ast.ReturnReference, ast.ReturnUnknown, true
		case "int32", "int64", "uint64", "float32", "float64", "bool", "string":
			return typeNameToReturnKind(t.Name), ast.ReturnUnknown, true
		}
	}
	return ast.ReturnUnknown, ast.ReturnUnknown, false
}

// lowerReturnStatement lowers a `return(...)` call to the ReturnI32/I64/Void
// family, packing a Result when the enclosing
// definition's declared kind requires it (handled by lowerTry/try callers;
// a plain return here simply widens its payload to the opcode the
// function's return kind selects). When lowering is currently inside an
// inlined call, the return instead stores into the
// enclosing inline frame's result slot and jumps to the frame's "done"
// label — the inlined body never emits a real OpReturn*.
func (c *funcCtx) lowerReturnStatement(stmt *ast.Expr) bool {
	if len(c.inlineFrames) > 0 {
		return c.lowerInlineReturn(stmt)
	}
	if len(stmt.Args) == 0 {
		c.closeOpenFiles()
		c.emit(ir.OpReturnVoid, 0)
		return true
	}
	if _, ok := c.lowerExpr(stmt.Args[0]); !ok {
		return false
	}
	c.closeOpenFiles()
	if is32(c.returnKind) {
		c.emit(ir.OpReturnI32, 0)
	} else {
		c.emit(ir.OpReturnI64, 0)
	}
	return true
}

// lowerInlineReturn implements a `return` reached while inlining a user
// call: its value (if any) lands in the innermost inline frame's result
// slot, then control jumps to that frame's done label, continuing the
// caller's own instruction stream with the value available there.
func (c *funcCtx) lowerInlineReturn(stmt *ast.Expr) bool {
	frame := &c.inlineFrames[len(c.inlineFrames)-1]
	if len(stmt.Args) > 0 {
		if _, ok := c.lowerExpr(stmt.Args[0]); !ok {
			return false
		}
		c.emit(ir.OpStoreLocal, uint64(frame.resultSlot))
	}
	frame.doneJumps = append(frame.doneJumps, c.emit(ir.OpJump, 0))
	return true
}

// closeOpenFiles emits a FileClose for every still-open handle in the
// current function, LIFO, ahead of any exit instruction.
func (c *funcCtx) closeOpenFiles() {
	for i := len(c.openFileSlots) - 1; i >= 0; i-- {
		c.emit(ir.OpLoadLocal, uint64(c.openFileSlots[i]))
		c.emit(ir.OpFileClose, 0)
	}
}

// lowerExpr lowers an arbitrary expression, leaving exactly one value on
// the stack, and returns the kind of that value.
func (c *funcCtx) lowerExpr(expr *ast.Expr) (ast.ReturnKind, bool) {
	switch expr.Kind {
	case ast.KindLiteral:
		return c.lowerIntLiteral(expr)
	case ast.KindFloatLiteral:
		return c.lowerFloatLiteral(expr)
	case ast.KindStringLiteral:
		idx := c.l.strings.Intern(expr.StringValue)
		c.emit(ir.OpPushString, uint64(idx))
		return ast.ReturnString, true
	case ast.KindBoolLiteral:
		v := uint64(0)
		if expr.BoolValue {
			v = 1
		}
		c.emit(ir.OpPushBool, v)
		return ast.ReturnBool, true
	case ast.KindName:
		return c.lowerNameLoad(expr)
	case ast.KindCall:
		return c.lowerCall(expr)
	default:
		return ast.ReturnUnknown, c.fail("unsupported expression kind: %s", expr.Kind.String())
	}
}

func (c *funcCtx) lowerIntLiteral(expr *ast.Expr) (ast.ReturnKind, bool) {
	switch {
	case expr.IsUnsigned:
		c.emit(ir.OpPushU64, uint64(expr.IntValue))
		return ast.ReturnUInt64, true
	case expr.IntWidth == 64:
		c.emit(ir.OpPushI64, uint64(expr.IntValue))
		return ast.ReturnInt64, true
	default:
		c.emit(ir.OpPushI32, uint64(uint32(expr.IntValue)))
		return ast.ReturnInt32, true
	}
}

func (c *funcCtx) lowerFloatLiteral(expr *ast.Expr) (ast.ReturnKind, bool) {
	if expr.FloatWidth == 32 {
		c.emit(ir.OpPushF32, float32Bits(expr.FloatValue))
		return ast.ReturnFloat32, true
	}
	c.emit(ir.OpPushF64, float64Bits(expr.FloatValue))
	return ast.ReturnFloat64, true
}

func (c *funcCtx) lowerNameLoad(expr *ast.Expr) (ast.ReturnKind, bool) {
	info, ok := c.lookup(expr.Name)
	if !ok {
		return ast.ReturnUnknown, c.fail("undefined name: %s", expr.Name)
	}
	c.emit(ir.OpLoadLocal, uint64(info.slot))
	return info.kind, true
}
