// Package vm executes a lowered *ir.Module directly: a
// single-threaded interpreter owning a value stack, a locals array per
// activation, a read-only argv view, and the process's stdout/stderr
// sinks. A single struct holds injected Stdout/Stderr (never
// os.Stdout/os.Stderr directly) and drives a flat ir.Instruction stream
// instead of a frame chain walking an AST.
package vm

import (
	"io"
	"math"
	"strconv"

	"github.com/primestruct/corelang/internal/diag"
	"github.com/primestruct/corelang/ir"
)

// Options configures a Run call.
type Options struct {
	// Stdout and Stderr default to io.Discard when nil.
	Stdout, Stderr io.Writer
	// Argv is the read-only process argument view the entry
	// function's array<string> parameter, if any, exposes via
	// OpArgvCount/OpArgvLen/OpArgvByte/OpPrintArgv.
	Argv []string
}

// Result is the outcome of Run. Ok reports the program ran to completion —
// either a normal return from the entry function or a checked OpExit — with
// ExitCode set accordingly. Error reports an internal VM fault: malformed
// IR the lowerer should never have produced, since "the lowerer guarantees
// well-formed IR" and these are not checked failure kinds.
type Result struct {
	Ok       bool
	ExitCode int
	Error    *diag.Diagnostic
}

// exit is the internal signal OpExit raises to unwind every enclosing
// callFunction frame without touching their in-progress return values.
type exit struct{ code int }

func (exit) Error() string { return "exit" }

// machine holds the state one Run call threads through every activation:
// shared linear memory, the string table and argv view, file handles, and
// the injected output streams.
type machine struct {
	mod    *ir.Module
	mem    mem
	argv   []string
	stdout io.Writer
	stderr io.Writer

	files      map[uint64]*openFile
	nextHandle uint64
}

// Run executes module's entry function to completion.
func Run(module *ir.Module, opts Options) Result {
	if module.EntryIndex < 0 || module.EntryIndex >= len(module.Functions) {
		return Result{Error: diag.Runtime("no entry function selected")}
	}
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	m := &machine{
		mod:    module,
		argv:   opts.Argv,
		stdout: stdout,
		stderr: stderr,
		files:  map[uint64]*openFile{},
	}

	value, _, wide, err := m.callFunction(module.EntryIndex, nil)
	if err != nil {
		if ex, ok := err.(exit); ok {
			return Result{Ok: true, ExitCode: ex.code}
		}
		return Result{Error: diag.Runtime("%s", err)}
	}
	if wide {
		return Result{Ok: true, ExitCode: int(int64(value))}
	}
	return Result{Ok: true, ExitCode: int(int32(uint32(value)))}
}

// callFunction runs fn's instruction stream to one of its terminal
// instructions.
// hasValue reports whether a return value was produced; wide distinguishes
// an i64-shaped result (sign-extended 64-bit cell) from an i32-shaped one
// (zero-extended 32-bit cell), matching how lower/expr.go's lowerIntLiteral
// packs each width.
func (m *machine) callFunction(fnIdx int, args []uint64) (value uint64, hasValue bool, wide bool, err error) {
	fn := &m.mod.Functions[fnIdx]
	base := m.mem.alloc(fn.NumLocals * 8)
	for i, a := range args {
		m.mem.store(base+uint64(i)*8, a)
	}
	local := func(slot uint64) uint64     { return m.mem.load(base + slot*8) }
	setLocal := func(slot, v uint64)      { m.mem.store(base+slot*8, v) }
	addressOf := func(slot uint64) uint64 { return base + slot*8 }

	var stack []uint64
	push := func(v uint64) { stack = append(stack, v) }
	pop := func() uint64 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	// pop2 returns the two top operands in push order: left was pushed
	// first (now second from top), right second (now on top) — the
	// convention lower/arith.go's lowerArithmetic and lower/collections.go's
	// emitElementAddress both rely on (base/value pushed before
	// offset/address).
	pop2 := func() (left, right uint64) {
		right = pop()
		left = pop()
		return
	}

	pc := 0
	for pc < len(fn.Instructions) {
		ins := fn.Instructions[pc]
		next := pc + 1

		switch ins.Op {
		case ir.OpNop:

		case ir.OpPushI32, ir.OpPushI64, ir.OpPushU64, ir.OpPushF32, ir.OpPushF64, ir.OpPushBool, ir.OpPushString:
			push(ins.Imm)

		case ir.OpPop:
			pop()
		case ir.OpDup:
			v := pop()
			push(v)
			push(v)

		case ir.OpAddI32:
			l, r := pop2()
			push(uint64(uint32(int32(uint32(l)) + int32(uint32(r)))))
		case ir.OpSubI32:
			l, r := pop2()
			push(uint64(uint32(int32(uint32(l)) - int32(uint32(r)))))
		case ir.OpMulI32:
			l, r := pop2()
			push(uint64(uint32(int32(uint32(l)) * int32(uint32(r)))))
		case ir.OpDivI32:
			l, r := pop2()
			push(uint64(uint32(int32(uint32(l)) / int32(uint32(r)))))
		case ir.OpModI32:
			l, r := pop2()
			push(uint64(uint32(int32(uint32(l)) % int32(uint32(r)))))
		case ir.OpNegI32:
			v := pop()
			push(uint64(uint32(-int32(uint32(v)))))

		case ir.OpAddI64:
			l, r := pop2()
			push(uint64(int64(l) + int64(r)))
		case ir.OpSubI64:
			l, r := pop2()
			push(uint64(int64(l) - int64(r)))
		case ir.OpMulI64:
			l, r := pop2()
			push(uint64(int64(l) * int64(r)))
		case ir.OpDivI64:
			l, r := pop2()
			push(uint64(int64(l) / int64(r)))
		case ir.OpModI64:
			l, r := pop2()
			push(uint64(int64(l) % int64(r)))
		case ir.OpNegI64:
			v := pop()
			push(uint64(-int64(v)))

		case ir.OpAddU64:
			l, r := pop2()
			push(l + r)
		case ir.OpSubU64:
			l, r := pop2()
			push(l - r)
		case ir.OpMulU64:
			l, r := pop2()
			push(l * r)
		case ir.OpDivU64:
			l, r := pop2()
			push(l / r)
		case ir.OpModU64:
			l, r := pop2()
			push(l % r)

		case ir.OpAddF32:
			l, r := pop2()
			push(uint64(math.Float32bits(math.Float32frombits(uint32(l)) + math.Float32frombits(uint32(r)))))
		case ir.OpSubF32:
			l, r := pop2()
			push(uint64(math.Float32bits(math.Float32frombits(uint32(l)) - math.Float32frombits(uint32(r)))))
		case ir.OpMulF32:
			l, r := pop2()
			push(uint64(math.Float32bits(math.Float32frombits(uint32(l)) * math.Float32frombits(uint32(r)))))
		case ir.OpDivF32:
			l, r := pop2()
			push(uint64(math.Float32bits(math.Float32frombits(uint32(l)) / math.Float32frombits(uint32(r)))))
		case ir.OpNegF32:
			v := pop()
			push(uint64(math.Float32bits(-math.Float32frombits(uint32(v)))))

		case ir.OpAddF64:
			l, r := pop2()
			push(math.Float64bits(math.Float64frombits(l) + math.Float64frombits(r)))
		case ir.OpSubF64:
			l, r := pop2()
			push(math.Float64bits(math.Float64frombits(l) - math.Float64frombits(r)))
		case ir.OpMulF64:
			l, r := pop2()
			push(math.Float64bits(math.Float64frombits(l) * math.Float64frombits(r)))
		case ir.OpDivF64:
			l, r := pop2()
			push(math.Float64bits(math.Float64frombits(l) / math.Float64frombits(r)))
		case ir.OpNegF64:
			v := pop()
			push(math.Float64bits(-math.Float64frombits(v)))

		case ir.OpCmpEqI32, ir.OpCmpNeI32, ir.OpCmpLtI32, ir.OpCmpLeI32, ir.OpCmpGtI32, ir.OpCmpGeI32:
			l, r := pop2()
			push(boolCell(cmpI32(ins.Op, int32(uint32(l)), int32(uint32(r)))))
		case ir.OpCmpEqI64, ir.OpCmpNeI64, ir.OpCmpLtI64, ir.OpCmpLeI64, ir.OpCmpGtI64, ir.OpCmpGeI64:
			l, r := pop2()
			push(boolCell(cmpI64(ins.Op, int64(l), int64(r))))
		case ir.OpCmpEqU64, ir.OpCmpNeU64, ir.OpCmpLtU64, ir.OpCmpLeU64, ir.OpCmpGtU64, ir.OpCmpGeU64:
			l, r := pop2()
			push(boolCell(cmpU64(ins.Op, l, r)))
		case ir.OpCmpEqF32, ir.OpCmpNeF32, ir.OpCmpLtF32, ir.OpCmpLeF32, ir.OpCmpGtF32, ir.OpCmpGeF32:
			l, r := pop2()
			push(boolCell(cmpF32(ins.Op, math.Float32frombits(uint32(l)), math.Float32frombits(uint32(r)))))
		case ir.OpCmpEqF64, ir.OpCmpNeF64, ir.OpCmpLtF64, ir.OpCmpLeF64, ir.OpCmpGtF64, ir.OpCmpGeF64:
			l, r := pop2()
			push(boolCell(cmpF64(ins.Op, math.Float64frombits(l), math.Float64frombits(r))))

		case ir.OpCmpEqBool:
			l, r := pop2()
			push(boolCell(l == r))
		case ir.OpCmpNeBool:
			l, r := pop2()
			push(boolCell(l != r))
		case ir.OpNotBool:
			v := pop()
			push(boolCell(v == 0))

		case ir.OpCmpEqString:
			l, r := pop2()
			push(boolCell(m.mod.Strings[l] == m.mod.Strings[r]))
		case ir.OpCmpNeString:
			l, r := pop2()
			push(boolCell(m.mod.Strings[l] != m.mod.Strings[r]))

		case ir.OpAddPtrI64:
			ptr, offset := pop2()
			push(ptr + uint64(int64(offset)))
		case ir.OpSubPtrI64:
			ptr, offset := pop2()
			push(ptr - uint64(int64(offset)))

		case ir.OpLoadLocal:
			push(local(ins.Imm))
		case ir.OpStoreLocal:
			setLocal(ins.Imm, pop())
		case ir.OpAddressOfLocal:
			push(addressOf(ins.Imm))
		case ir.OpHeapAlloc:
			push(m.mem.alloc(int(ins.Imm)))
		case ir.OpLoadIndirect:
			push(m.mem.load(pop()))
		case ir.OpStoreIndirect:
			val, addr := pop2()
			m.mem.store(addr, val)

		case ir.OpJump:
			next = int(ins.Imm)
		case ir.OpJumpIfZero:
			if pop() == 0 {
				next = int(ins.Imm)
			}

		case ir.OpPrintI32:
			m.printValue(ins.Imm, strconv.FormatInt(int64(int32(uint32(pop()))), 10))
		case ir.OpPrintI64:
			m.printValue(ins.Imm, strconv.FormatInt(int64(pop()), 10))
		case ir.OpPrintU64:
			m.printValue(ins.Imm, strconv.FormatUint(pop(), 10))
		case ir.OpPrintF32:
			m.printValue(ins.Imm, formatFloat(float64(math.Float32frombits(uint32(pop()))), 32))
		case ir.OpPrintF64:
			m.printValue(ins.Imm, formatFloat(math.Float64frombits(pop()), 64))
		case ir.OpPrintBool:
			m.printValue(ins.Imm, formatBool(pop() != 0))
		case ir.OpPrintString:
			m.printValue(ins.Imm, m.mod.Strings[pop()])

		case ir.OpArgvCount:
			push(uint64(len(m.argv)))
		case ir.OpArgvLen:
			push(uint64(len(m.argv[pop()])))
		case ir.OpArgvByte:
			idx, offset := pop2()
			push(uint64(m.argv[idx][offset]))
		case ir.OpPrintArgv:
			m.printValue(ins.Imm, m.argv[pop()])

		case ir.OpLoadStringByte:
			offset := pop()
			push(uint64(m.mod.Strings[ins.Imm][offset]))

		case ir.OpFileOpenRead:
			push(m.openFileRead(m.mod.Strings[ins.Imm]))
		case ir.OpFileOpenWrite:
			push(m.openFileWrite(m.mod.Strings[ins.Imm]))
		case ir.OpFileOpenAppend:
			push(m.openFileAppend(m.mod.Strings[ins.Imm]))
		case ir.OpFileWriteString:
			strIdx, handle := pop2()
			push(m.writeString(handle, m.mod.Strings[strIdx]))
		case ir.OpFileReadByte:
			push(uint64(m.readByte(pop())))
		case ir.OpFileClose:
			m.closeFile(pop())

		case ir.OpCallFunction:
			callee := &m.mod.Functions[ins.Imm]
			n := callee.ParamCount
			callArgs := append([]uint64(nil), stack[len(stack)-n:]...)
			stack = stack[:len(stack)-n]
			v, has, _, cerr := m.callFunction(int(ins.Imm), callArgs)
			if cerr != nil {
				return 0, false, false, cerr
			}
			if has {
				push(v)
			}

		case ir.OpReturnI32:
			return pop(), true, false, nil
		case ir.OpReturnI64:
			return pop(), true, true, nil
		case ir.OpReturnVoid:
			return 0, false, false, nil
		case ir.OpExit:
			return 0, false, false, exit{code: int(ins.Imm)}

		default:
			return 0, false, false, unknownOpcode{ins.Op}
		}

		pc = next
	}
	return 0, false, false, nil
}

type unknownOpcode struct{ op ir.Opcode }

func (u unknownOpcode) Error() string { return "unknown opcode: " + u.op.String() }

func boolCell(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
