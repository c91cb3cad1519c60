// Package lower translates a validated Program into an *ir.Module: one IR
// function per top-level definition, user calls inlined into the caller's
// instruction stream unless doing so would introduce a cycle, in which case
// the lowerer falls back to an OpCallFunction against the callee's own
// lowered function. Errors thread through the walk as plain returned
// values, and locals get frame-relative slot indices, the same way a
// node-walking bytecode interpreter assigns them — adapted here to a
// single linear instruction stream instead of a tree walk.
package lower

import (
	"fmt"

	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/internal/diag"
	"github.com/primestruct/corelang/ir"
)

// Result is the outcome of Lower: Ok reports success with the built Module,
// Error is the first lowering failure encountered otherwise.
type Result struct {
	Ok     bool
	Module *ir.Module
	Error  *diag.Diagnostic
}

// lowerer holds the state shared across every top-level definition's
// lowering pass: the program being compiled, the module under
// construction, and the function-table index each definition path resolves
// to (reserved up front so forward and cyclic references can target a
// function before its own body has been lowered).
type lowerer struct {
	program   *ast.Program
	defs      map[string]*ast.Definition
	entryPath string
	mod       *ir.Module
	strings   *ir.StringTable
	funcIndex map[string]int

	err string
}

// Lower builds an *ir.Module from program: every non-struct definition
// becomes its own ir.Function, entryPath selects the module's EntryIndex.
// program is assumed already validator-clean; Lower does not re-check
// semantic invariants, only the shapes its own translation requires.
func Lower(program *ast.Program, entryPath string) Result {
	l := &lowerer{
		program:   program,
		defs:      program.DefinitionsByPath(),
		entryPath: entryPath,
		mod:       ir.NewModule(),
		strings:   ir.NewStringTable(),
		funcIndex: map[string]int{},
	}

	var order []*ast.Definition
	for _, def := range program.Definitions {
		if def.IsStruct() {
			continue
		}
		idx := l.mod.AddFunction(ir.Function{Name: def.FullPath, ParamCount: len(def.Params)})
		l.funcIndex[def.FullPath] = idx
		order = append(order, def)
	}

	for _, def := range order {
		fn, ok := l.lowerTopLevel(def)
		if !ok {
			return Result{Ok: false, Error: diag.VMLowering("%s", l.err)}
		}
		l.mod.Functions[l.funcIndex[def.FullPath]] = fn
	}

	entryIdx, ok := l.funcIndex[entryPath]
	if !ok {
		return Result{Ok: false, Error: diag.VMLowering("entry definition not found: %s", entryPath)}
	}
	l.mod.EntryIndex = entryIdx
	l.mod.Strings = l.strings.Strings()

	return Result{Ok: true, Module: l.mod}
}

func (l *lowerer) fail(format string, args ...interface{}) bool {
	l.err = fmt.Sprintf(format, args...)
	return false
}

// resolveCalleePath mirrors validator/symbols.go's method of the same name:
// a prefixed call resolves to its full name; otherwise a root-level
// definition of that name wins, then the first active namespace alias that
// holds it, and finally the bare name when neither resolves.
func (l *lowerer) resolveCalleePath(expr *ast.Expr) string {
	if expr.NamespacePrefix != "" {
		return expr.FullName()
	}
	if _, ok := l.defs["/"+expr.Name]; ok {
		return "/" + expr.Name
	}
	for _, alias := range l.program.NamespaceAliases() {
		candidate := alias
		if candidate[len(candidate)-1] != '/' {
			candidate += "/"
		}
		candidate += expr.Name
		if _, ok := l.defs[candidate]; ok {
			return candidate
		}
	}
	return expr.Name
}

// lowerTopLevel lowers a single definition into a standalone ir.Function.
func (l *lowerer) lowerTopLevel(def *ast.Definition) (ir.Function, bool) {
	c := newFuncCtx(l, def)
	c.pushScope()
	for _, p := range def.Params {
		kind, elemKind := paramKind(p)
		if p.Name == c.argvParam {
			// The argv view has no local slot of its own — the VM/native
			// backend expose it directly via OpArgvCount/OpArgvLen/OpArgvByte.
			c.define(p.Name, localInfo{slot: -1, kind: kind, elemKind: elemKind, argvBacked: true})
			continue
		}
		slot := c.newSlot()
		c.define(p.Name, localInfo{slot: slot, kind: kind, elemKind: elemKind})
	}
	if !c.lowerStatements(def.Body) {
		return ir.Function{}, false
	}
	if !c.endsInReturn() {
		c.closeOpenFiles()
		c.emit(ir.OpReturnVoid, 0)
	}
	return ir.Function{
		Name:         def.FullPath,
		NumLocals:    c.nextSlot,
		ParamCount:   len(def.Params),
		Instructions: c.instrs,
	}, true
}
