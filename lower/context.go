package lower

import (
	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
)

// funcCtx accumulates the instruction stream for one top-level ir.Function,
// including every callee inlined into it. Locals allocated for an inlined
// callee's parameters and temporaries get fresh slots appended to the same
// dense slot space as the caller — inlining never collides two bindings
// onto the same slot.
type funcCtx struct {
	l    *lowerer
	def  *ast.Definition
	root *ast.Definition // the top-level definition this Function belongs to

	instrs   []ir.Instruction
	nextSlot int

	scopes []map[string]localInfo

	returnKind ast.ReturnKind

	// argvParam is the entry definition's array<string> parameter name, or
	// "" when this function is not the entry (or the entry takes none).
	argvParam string

	// inlineStack holds the definition paths currently being inlined, to
	// detect a would-be-cyclic call.
	inlineStack map[string]bool

	// inlineFrames tracks the result slot and pending "done" jumps for each
	// inlined call currently being lowered, innermost last. A `return`
	// lowered while this is non-empty targets the frame instead of emitting
	// a real OpReturn*.
	inlineFrames []inlineFrame

	// openFileSlots records, in open order, the local slots holding file
	// handles opened in the current function so every exit path can close
	// them LIFO.
	openFileSlots []int
}

// inlineFrame is one level of an in-progress inlined call: resultSlot holds
// the callee's return value once lowering reaches its `return` (or is -1
// for a Void callee), and doneJumps collects every instruction that must be
// patched to land just past the inlined body.
type inlineFrame struct {
	resultSlot int
	doneJumps  []int
}

func newFuncCtx(l *lowerer, def *ast.Definition) *funcCtx {
	c := &funcCtx{
		l:           l,
		def:         def,
		root:        def,
		returnKind:  l.definitionReturnKind(def),
		inlineStack: map[string]bool{def.FullPath: true},
	}
	if def.FullPath == l.entryPath && len(def.Params) == 1 {
		if kind, elem := paramKind(def.Params[0]); kind == ast.ReturnArray && elem == ast.ReturnString {
			c.argvParam = def.Params[0].Name
		}
	}
	return c
}

// localInfo pairs a local's dense slot number with the semantic kind the
// lowerer needs to pick the right opcode family when it is read back.
type localInfo struct {
	slot int
	kind ast.ReturnKind
	// elemKind is the element kind for array/vector/map bindings, needed to
	// pick the right Load/Store width when indexing.
	elemKind ast.ReturnKind
	// argvBacked marks a binding whose runtime cell is an argv index rather
	// than a string-table index (the argv parameter itself, or a string
	// bound directly from indexing it) — the "argv-backed string" case.
	argvBacked bool
}

func (c *funcCtx) pushScope() { c.scopes = append(c.scopes, map[string]localInfo{}) }
func (c *funcCtx) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *funcCtx) define(name string, info localInfo) {
	c.scopes[len(c.scopes)-1][name] = info
}

func (c *funcCtx) lookup(name string) (localInfo, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if info, ok := c.scopes[i][name]; ok {
			return info, true
		}
	}
	return localInfo{}, false
}

func (c *funcCtx) newSlot() int {
	slot := c.nextSlot
	c.nextSlot++
	return slot
}

// emit appends an instruction and returns its index, for later back-patching.
func (c *funcCtx) emit(op ir.Opcode, imm uint64) int {
	c.instrs = append(c.instrs, ir.Instruction{Op: op, Imm: imm})
	return len(c.instrs) - 1
}

// here returns the index the next emitted instruction will occupy — the
// patch target for a jump meant to land "at the end of this region".
func (c *funcCtx) here() int { return len(c.instrs) }

// patch rewrites the instruction at idx's immediate to the current
// instruction count, the idiom every back-patched Jump/JumpIfZero uses when
// its structured region closes.
func (c *funcCtx) patch(idx int) {
	c.instrs[idx].Imm = uint64(c.here())
}

func (c *funcCtx) endsInReturn() bool {
	if len(c.instrs) == 0 {
		return false
	}
	switch c.instrs[len(c.instrs)-1].Op {
	case ir.OpReturnI32, ir.OpReturnI64, ir.OpReturnVoid, ir.OpExit:
		return true
	default:
		return false
	}
}

func (c *funcCtx) fail(format string, args ...interface{}) bool {
	return c.l.fail(format, args...)
}
