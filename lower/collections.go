package lower

import (
	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/ir"
)

// slotStride is the 16-byte stride assigned to every header/element slot
// in an array<T>/vector<T>/map<K,V> heap block.
const slotStride = 16

// headerSlots returns the number of header slots (before the first
// element) a collection kind's heap block reserves.
func headerSlots(kind ast.ReturnKind) int {
	switch kind {
	case ast.ReturnVector:
		return 2 // count, capacity
	default:
		return 1 // count
	}
}

// lowerCollectionLiteral materializes an array<T>/vector<T>/map<K,V>
// literal's heap header and its elements.
func (c *funcCtx) lowerCollectionLiteral(expr *ast.Expr) (ast.ReturnKind, bool) {
	kind := typeNameToReturnKind(expr.Name)
	if kind == ast.ReturnMap {
		return c.lowerMapLiteral(expr)
	}

	n := len(expr.Args)
	header := headerSlots(kind)
	capacity := n
	if kind == ast.ReturnVector {
		capacity = n // literal capacity equals element count; growth is out of scope
	}

	base := c.newSlot()
	c.emit(ir.OpHeapAlloc, uint64((header+capacity)*slotStride))
	c.emit(ir.OpStoreLocal, uint64(base))

	c.storeHeaderSlot(base, 0, int64(n))
	if kind == ast.ReturnVector {
		c.storeHeaderSlot(base, 1, int64(capacity))
	}
	for i, elemExpr := range expr.Args {
		if _, ok := c.lowerExpr(elemExpr); !ok {
			return ast.ReturnUnknown, false
		}
		c.emitElementAddress(base, header, i)
		c.emit(ir.OpStoreIndirect, 0)
	}

	c.emit(ir.OpLoadLocal, uint64(base))
	return kind, true
}

// storeHeaderSlot writes a compile-time-known header value (count or
// capacity) into slot i of base's heap block.
func (c *funcCtx) storeHeaderSlot(base, slotIndex int, value int64) {
	c.emit(ir.OpPushI64, uint64(value))
	c.emit(ir.OpLoadLocal, uint64(base))
	c.emit(ir.OpPushI64, uint64(int64(slotIndex*slotStride)))
	c.emit(ir.OpAddPtrI64, 0)
	c.emit(ir.OpStoreIndirect, 0)
}

// emitElementAddress pushes base + (index + header)*16, the address of
// element index within base's heap block, for use by the instruction that
// follows (StoreIndirect/LoadIndirect).
func (c *funcCtx) emitElementAddress(base, header, index int) {
	c.emit(ir.OpLoadLocal, uint64(base))
	c.emit(ir.OpPushI64, uint64(int64((index+header)*slotStride)))
	c.emit(ir.OpAddPtrI64, 0)
}

// emitElementAddressDynamic pushes base + (indexSlot_value + header)*16
// where the index is a runtime value already evaluated and stored in
// indexSlot.
func (c *funcCtx) emitElementAddressDynamic(base, header, indexSlot int) {
	c.emit(ir.OpLoadLocal, uint64(indexSlot))
	c.emit(ir.OpPushI64, uint64(int64(header)))
	c.emit(ir.OpAddI64, 0)
	c.emit(ir.OpPushI64, uint64(int64(slotStride)))
	c.emit(ir.OpMulI64, 0)
	c.emit(ir.OpLoadLocal, uint64(base))
	c.emit(ir.OpAddPtrI64, 0)
}

// lowerIndexedLoad lowers `at(c, i)` / `at_unsafe(c, i)`: array/vector
// indexing with (unless _unsafe) an explicit bounds-check prologue, or a
// map's linear-scan lookup.
func (c *funcCtx) lowerIndexedLoad(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) != 2 || expr.Args[0].Kind != ast.KindName {
		return ast.ReturnUnknown, c.fail("at requires a collection name and an index")
	}
	info, ok := c.lookup(expr.Args[0].Name)
	if !ok {
		return ast.ReturnUnknown, c.fail("undefined name: %s", expr.Args[0].Name)
	}
	unsafe := expr.Name == "at_unsafe"

	if info.argvBacked && info.kind == ast.ReturnArray {
		return c.lowerArgvIndexedLoad(expr, unsafe)
	}
	if info.kind == ast.ReturnMap {
		return c.lowerMapAt(info, expr.Args[1])
	}
	if info.kind != ast.ReturnArray && info.kind != ast.ReturnVector {
		return ast.ReturnUnknown, c.fail("at requires an array, vector, or map binding")
	}

	indexKind, ok := c.lowerExpr(expr.Args[1])
	if !ok {
		return ast.ReturnUnknown, false
	}
	indexSlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(indexSlot))

	if !unsafe {
		if !c.emitBoundsCheck(info, indexSlot, indexKind) {
			return ast.ReturnUnknown, false
		}
	}

	c.emitElementAddressDynamic(info.slot, headerSlots(info.kind), indexSlot)
	c.emit(ir.OpLoadIndirect, 0)
	return info.elemKind, true
}

// emitBoundsCheck implements the `at` prologue: negative-index check
// (signed kinds only) then an out-of-range check against the header's
// count slot, each aborting with the literal runtime message and exit
// code 3 on violation.
// Every integer stack cell is a 64-bit word regardless of its surface
// int32/int64 kind (a 32-bit push and a 32-bit op's result are
// zero-extended from the low 32 bits) — both checks below compare with the
// Int64 family unconditionally. A negative int32 index therefore reads as a
// value of at least 2^31: the negative check does not catch it, but the
// count check rejects it with the same message.
func (c *funcCtx) emitBoundsCheck(info localInfo, indexSlot int, indexKind ast.ReturnKind) bool {
	if indexKind.IsSignedInteger() {
		c.emit(ir.OpLoadLocal, uint64(indexSlot))
		c.emit(ir.OpPushI64, 0)
		c.emit(ir.OpCmpLtI64, 0)
		skip := c.emit(ir.OpJumpIfZero, 0)
		c.emitAbort("array index out of bounds")
		c.patch(skip)
	}

	c.emit(ir.OpLoadLocal, uint64(indexSlot))
	c.emitElementAddress(info.slot, 0, 0) // address of count slot (index 0, no header offset)
	c.emit(ir.OpLoadIndirect, 0)
	c.emit(ir.OpCmpGeI64, 0)
	skip := c.emit(ir.OpJumpIfZero, 0)
	c.emitAbort("array index out of bounds")
	c.patch(skip)
	return true
}

// emitAbort prints msg to stderr with a trailing newline and exits with
// code 3, the shared shape every checked-failure runtime error uses.
func (c *funcCtx) emitAbort(msg string) {
	idx := c.l.strings.Intern(msg)
	c.emit(ir.OpPushString, uint64(idx))
	c.emit(ir.OpPrintString, ir.EncodePrintImm(ir.PrintNewline|ir.PrintStderr))
	c.emit(ir.OpExit, 3)
}

func (c *funcCtx) lowerCollectionCount(expr *ast.Expr) (ast.ReturnKind, bool) {
	info, ok := c.resolveCollectionArg(expr)
	if !ok {
		return ast.ReturnUnknown, false
	}
	if info.argvBacked && info.kind == ast.ReturnArray {
		c.emit(ir.OpArgvCount, 0)
		return ast.ReturnInt32, true
	}
	c.emitElementAddress(info.slot, 0, 0)
	c.emit(ir.OpLoadIndirect, 0)
	return ast.ReturnInt32, true
}

func (c *funcCtx) lowerCollectionCapacity(expr *ast.Expr) (ast.ReturnKind, bool) {
	info, ok := c.resolveCollectionArg(expr)
	if !ok {
		return ast.ReturnUnknown, false
	}
	if info.kind != ast.ReturnVector {
		return ast.ReturnUnknown, c.fail("capacity requires a vector binding")
	}
	c.emitElementAddress(info.slot, 0, 1)
	c.emit(ir.OpLoadIndirect, 0)
	return ast.ReturnInt32, true
}

func (c *funcCtx) resolveCollectionArg(expr *ast.Expr) (localInfo, bool) {
	if len(expr.Args) != 1 || expr.Args[0].Kind != ast.KindName {
		return localInfo{}, c.fail("%s requires a single collection name argument", expr.Name)
	}
	info, ok := c.lookup(expr.Args[0].Name)
	if !ok {
		return localInfo{}, c.fail("undefined name: %s", expr.Args[0].Name)
	}
	return info, true
}

// lowerInsert lowers `insert(m, key, value)` for a map binding: appends a
// key/value pair and increments the count header slot. Array/vector insert
// by index is out of this core's scope (Non-goal: fixed-capacity
// collections only grow via map append).
func (c *funcCtx) lowerInsert(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) != 3 || expr.Args[0].Kind != ast.KindName {
		return ast.ReturnUnknown, c.fail("insert requires a map name, key, and value")
	}
	info, ok := c.lookup(expr.Args[0].Name)
	if !ok || info.kind != ast.ReturnMap {
		return ast.ReturnUnknown, c.fail("insert requires a map binding")
	}

	countSlot := c.newSlot()
	c.emitElementAddress(info.slot, 0, 0)
	c.emit(ir.OpLoadIndirect, 0)
	c.emit(ir.OpStoreLocal, uint64(countSlot))

	pairIndexSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(countSlot))
	c.emit(ir.OpPushI64, uint64(2))
	c.emit(ir.OpMulI64, 0)
	c.emit(ir.OpStoreLocal, uint64(pairIndexSlot))

	if _, ok := c.lowerExpr(expr.Args[1]); !ok {
		return ast.ReturnUnknown, false
	}
	c.emitElementAddressDynamic(info.slot, 1, pairIndexSlot)
	c.emit(ir.OpStoreIndirect, 0)

	valueIndexSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(pairIndexSlot))
	c.emit(ir.OpPushI64, 1)
	c.emit(ir.OpAddI64, 0)
	c.emit(ir.OpStoreLocal, uint64(valueIndexSlot))

	if _, ok := c.lowerExpr(expr.Args[2]); !ok {
		return ast.ReturnUnknown, false
	}
	c.emitElementAddressDynamic(info.slot, 1, valueIndexSlot)
	c.emit(ir.OpStoreIndirect, 0)

	c.emit(ir.OpLoadLocal, uint64(countSlot))
	c.emit(ir.OpPushI64, 1)
	c.emit(ir.OpAddI64, 0)
	c.emitElementAddress(info.slot, 0, 0)
	c.emit(ir.OpStoreIndirect, 0)

	return ast.ReturnVoid, true
}

// lowerMapLiteral materializes an empty map<K,V> heap block — map literals
// in this core are always constructed empty and grown via insert, matching
// the "count, key0, val0, ..." layout with room preallocated for 8 pairs.
func (c *funcCtx) lowerMapLiteral(expr *ast.Expr) (ast.ReturnKind, bool) {
	if len(expr.Args) != 0 {
		return ast.ReturnUnknown, c.fail("map literal does not take initial elements in this core")
	}
	base := c.newSlot()
	initialPairs := 8
	c.emit(ir.OpHeapAlloc, uint64((1+initialPairs*2)*slotStride))
	c.emit(ir.OpStoreLocal, uint64(base))
	c.storeHeaderSlot(base, 0, 0)
	c.emit(ir.OpLoadLocal, uint64(base))
	return ast.ReturnMap, true
}

// lowerMapAt lowers a map's linear-scan lookup: walk key0, key1, ... until
// a match, or abort with "map key not found" at exit code 3.
func (c *funcCtx) lowerMapAt(info localInfo, keyExpr *ast.Expr) (ast.ReturnKind, bool) {
	keyKind, ok := c.lowerExpr(keyExpr)
	if !ok {
		return ast.ReturnUnknown, false
	}
	keySlot := c.newSlot()
	c.emit(ir.OpStoreLocal, uint64(keySlot))

	countSlot := c.newSlot()
	c.emitElementAddress(info.slot, 0, 0)
	c.emit(ir.OpLoadIndirect, 0)
	c.emit(ir.OpStoreLocal, uint64(countSlot))

	iSlot := c.newSlot()
	c.emit(ir.OpPushI64, 0)
	c.emit(ir.OpStoreLocal, uint64(iSlot))

	loopStart := c.here()
	c.emit(ir.OpLoadLocal, uint64(iSlot))
	c.emit(ir.OpLoadLocal, uint64(countSlot))
	c.emit(ir.OpCmpLtI64, 0)
	loopEnd := c.emit(ir.OpJumpIfZero, 0)

	pairIndexSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(iSlot))
	c.emit(ir.OpPushI64, 2)
	c.emit(ir.OpMulI64, 0)
	c.emit(ir.OpStoreLocal, uint64(pairIndexSlot))

	c.emitElementAddressDynamic(info.slot, 1, pairIndexSlot)
	c.emit(ir.OpLoadIndirect, 0)
	c.emit(ir.OpLoadLocal, uint64(keySlot))
	if !c.emitKeyEquals(keyKind) {
		return ast.ReturnUnknown, false
	}
	noMatch := c.emit(ir.OpJumpIfZero, 0)

	valueIndexSlot := c.newSlot()
	c.emit(ir.OpLoadLocal, uint64(pairIndexSlot))
	c.emit(ir.OpPushI64, 1)
	c.emit(ir.OpAddI64, 0)
	c.emit(ir.OpStoreLocal, uint64(valueIndexSlot))
	c.emitElementAddressDynamic(info.slot, 1, valueIndexSlot)
	c.emit(ir.OpLoadIndirect, 0)
	found := c.emit(ir.OpJump, 0)

	c.patch(noMatch)
	c.emit(ir.OpLoadLocal, uint64(iSlot))
	c.emit(ir.OpPushI64, 1)
	c.emit(ir.OpAddI64, 0)
	c.emit(ir.OpStoreLocal, uint64(iSlot))
	c.emit(ir.OpJump, uint64(loopStart))

	c.patch(loopEnd)
	c.emitAbort("map key not found")

	c.patch(found)
	return info.elemKind, true
}

func (c *funcCtx) emitKeyEquals(keyKind ast.ReturnKind) bool {
	switch keyKind {
	case ast.ReturnString:
		c.emit(ir.OpCmpEqString, 0)
	case ast.ReturnBool:
		c.emit(ir.OpCmpEqBool, 0)
	default:
		family, ok := cmpOpcodes[keyKind]
		if !ok {
			return c.fail("unsupported map key kind: %s", keyKind.String())
		}
		c.emit(family["equals"], 0)
	}
	return true
}
