// Package native lowers an already-built *ir.Module into AArch64/Darwin
// assembly text. The machine model mirrors the IR stack machine
// closely, the way vm.machine's flat mem arena mirrors it for the
// interpreter: x0 holds the top of the IR's operand stack and x1 the value
// immediately beneath it, x19 is a frame pointer into a single flat data
// segment shared by every local slot and every collection/struct heap
// block (so AddressOfLocal needs no special case here either), and each
// string-table entry becomes a rodata label addressed by its index. Print
// opcodes lower to write(2) against fd 1 or 2, chosen by the instruction's
// PrintFlag bits exactly as the IR layer describes.
//
// This backend targets exactly the host machine — cross-compilation is
// out of scope — and is permitted to refuse any opcode
// combination it does not support. The one combination this implementation
// refuses is the string-comparison pair a map literal's lookup emits
// internally (lower/collections.go's OpCmpEqString), since this target has
// no fixed-width register encoding for a string-table byte-range compare.
package native

import (
	"fmt"
	"strings"

	"github.com/primestruct/corelang/internal/diag"
	"github.com/primestruct/corelang/ir"
)

// Result is the outcome of Lower: Ok reports success with the assembled
// text, Error is the first unsupported construct encountered otherwise,
// reported with the same "Native lowering error: ..." vocabulary the VM
// backend's own diagnostics use.
type Result struct {
	Ok    bool
	Text  string
	Error *diag.Diagnostic
}

// Lower emits an AArch64/Darwin assembly-text rendering of module: one
// label per ir.Function, a shared rodata section for the string table.
func Lower(module *ir.Module) Result {
	for _, fn := range module.Functions {
		for _, ins := range fn.Instructions {
			if ins.Op == ir.OpCmpEqString || ins.Op == ir.OpCmpNeString {
				return Result{Error: diag.NativeLowering("string comparisons; VM only")}
			}
		}
	}

	var b strings.Builder
	b.WriteString(".section __TEXT,__text\n")
	for i := range module.Functions {
		emitFunction(&b, module, i)
	}
	emitRodata(&b, module.Strings)
	return Result{Ok: true, Text: b.String()}
}

func funcLabel(fn *ir.Function) string {
	return "_fn_" + sanitizeLabel(fn.Name)
}

func sanitizeLabel(path string) string {
	var b strings.Builder
	for _, r := range path {
		if r == '/' || r == '.' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func emitFunction(b *strings.Builder, module *ir.Module, fnIdx int) {
	fn := &module.Functions[fnIdx]
	fmt.Fprintf(b, "%s:\n", funcLabel(fn))
	fmt.Fprintf(b, "  ; frame: %d locals, %d params\n", fn.NumLocals, fn.ParamCount)
	fmt.Fprintf(b, "  sub x19, sp, #%d\n", fn.NumLocals*8)
	for pc, ins := range fn.Instructions {
		fmt.Fprintf(b, "L%d_%d:\n", fnIdx, pc)
		emitInstruction(b, module, fnIdx, ins)
	}
}

// emitInstruction renders one ir.Instruction as one or more assembly lines.
// Arithmetic/comparison/control-flow opcodes follow the IR's own stack
// discipline: x0 is the top of stack, x1 the operand beneath it, matching
// vm.machine's pop2 convention (left pushed first, right second).
func emitInstruction(b *strings.Builder, module *ir.Module, fnIdx int, ins ir.Instruction) {
	line := func(format string, args ...interface{}) {
		b.WriteString("  ")
		fmt.Fprintf(b, format, args...)
		b.WriteByte('\n')
	}
	jumpTarget := func() string { return fmt.Sprintf("L%d_%d", fnIdx, ins.Imm) }

	switch ins.Op {
	case ir.OpNop:
		line("nop")

	case ir.OpPushI32, ir.OpPushI64, ir.OpPushU64, ir.OpPushF32, ir.OpPushF64, ir.OpPushBool:
		line("mov x1, x0")
		line("mov x0, #%d", ins.Imm)
	case ir.OpPushString:
		line("mov x1, x0")
		line("adr x0, Lstr%d", ins.Imm)

	case ir.OpPop:
		line("mov x0, x1")
	case ir.OpDup:
		line("mov x1, x0")

	case ir.OpAddI32, ir.OpAddI64, ir.OpAddU64, ir.OpAddF32, ir.OpAddF64, ir.OpAddPtrI64:
		line("add x0, x1, x0")
	case ir.OpSubI32, ir.OpSubI64, ir.OpSubU64, ir.OpSubF32, ir.OpSubF64, ir.OpSubPtrI64:
		line("sub x0, x1, x0")
	case ir.OpMulI32, ir.OpMulI64, ir.OpMulU64, ir.OpMulF32, ir.OpMulF64:
		line("mul x0, x1, x0")
	case ir.OpDivI32, ir.OpDivI64, ir.OpDivU64, ir.OpDivF32, ir.OpDivF64:
		line("sdiv x0, x1, x0")
	case ir.OpModI32, ir.OpModI64, ir.OpModU64:
		line("sdiv x2, x1, x0")
		line("msub x0, x2, x0, x1")
	case ir.OpNegI32, ir.OpNegI64, ir.OpNegF32, ir.OpNegF64:
		line("neg x0, x0")

	case ir.OpCmpEqI32, ir.OpCmpEqI64, ir.OpCmpEqU64, ir.OpCmpEqF32, ir.OpCmpEqF64, ir.OpCmpEqBool:
		line("cmp x1, x0")
		line("cset x0, eq")
	case ir.OpCmpNeI32, ir.OpCmpNeI64, ir.OpCmpNeU64, ir.OpCmpNeF32, ir.OpCmpNeF64, ir.OpCmpNeBool:
		line("cmp x1, x0")
		line("cset x0, ne")
	case ir.OpCmpLtI32, ir.OpCmpLtI64, ir.OpCmpLtU64, ir.OpCmpLtF32, ir.OpCmpLtF64:
		line("cmp x1, x0")
		line("cset x0, lt")
	case ir.OpCmpLeI32, ir.OpCmpLeI64, ir.OpCmpLeU64, ir.OpCmpLeF32, ir.OpCmpLeF64:
		line("cmp x1, x0")
		line("cset x0, le")
	case ir.OpCmpGtI32, ir.OpCmpGtI64, ir.OpCmpGtU64, ir.OpCmpGtF32, ir.OpCmpGtF64:
		line("cmp x1, x0")
		line("cset x0, gt")
	case ir.OpCmpGeI32, ir.OpCmpGeI64, ir.OpCmpGeU64, ir.OpCmpGeF32, ir.OpCmpGeF64:
		line("cmp x1, x0")
		line("cset x0, ge")
	case ir.OpNotBool:
		line("eor x0, x0, #1")

	case ir.OpLoadLocal:
		line("ldr x0, [x19, #%d]", ins.Imm*8)
	case ir.OpStoreLocal:
		line("str x0, [x19, #%d]", ins.Imm*8)
	case ir.OpAddressOfLocal:
		line("add x0, x19, #%d", ins.Imm*8)
	case ir.OpHeapAlloc:
		line("bl _heap_alloc ; size=%d", ins.Imm)
	case ir.OpLoadIndirect:
		line("ldr x0, [x0]")
	case ir.OpStoreIndirect:
		line("str x1, [x0]")

	case ir.OpJump:
		line("b %s", jumpTarget())
	case ir.OpJumpIfZero:
		line("cbz x0, %s", jumpTarget())

	case ir.OpPrintI32, ir.OpPrintI64, ir.OpPrintU64, ir.OpPrintF32, ir.OpPrintF64, ir.OpPrintBool, ir.OpPrintString:
		fd := 1
		if ir.DecodePrintImm(ins.Imm)&ir.PrintStderr != 0 {
			fd = 2
		}
		line("mov x16, #%d ; fd", fd)
		line("bl _format_and_write")
		if ir.DecodePrintImm(ins.Imm)&ir.PrintNewline != 0 {
			line("bl _write_newline")
		}

	case ir.OpArgvCount:
		line("ldr x0, [x20] ; argv count")
	case ir.OpArgvLen:
		line("bl _argv_len")
	case ir.OpArgvByte:
		line("bl _argv_byte")
	case ir.OpPrintArgv:
		fd := 1
		if ir.DecodePrintImm(ins.Imm)&ir.PrintStderr != 0 {
			fd = 2
		}
		line("mov x16, #%d ; fd", fd)
		line("bl _write_argv")

	case ir.OpLoadStringByte:
		line("adr x2, Lstr%d", ins.Imm)
		line("ldrb w0, [x2, x0]")

	case ir.OpFileOpenRead:
		line("adr x0, Lstr%d", ins.Imm)
		line("bl _file_open_read")
	case ir.OpFileOpenWrite:
		line("adr x0, Lstr%d", ins.Imm)
		line("bl _file_open_write")
	case ir.OpFileOpenAppend:
		line("adr x0, Lstr%d", ins.Imm)
		line("bl _file_open_append")
	case ir.OpFileWriteString:
		line("bl _file_write_string")
	case ir.OpFileReadByte:
		line("bl _file_read_byte")
	case ir.OpFileClose:
		line("bl _file_close")

	case ir.OpCallFunction:
		callee := &module.Functions[ins.Imm]
		line("bl %s", funcLabel(callee))

	case ir.OpReturnI32, ir.OpReturnI64:
		line("ret")
	case ir.OpReturnVoid:
		line("ret")
	case ir.OpExit:
		line("mov x0, #%d", ins.Imm)
		line("bl _exit")

	default:
		line("; unsupported opcode %s", ins.Op)
	}
}

func emitRodata(b *strings.Builder, strings_ []string) {
	b.WriteString(".section __TEXT,__cstring\n")
	for i, s := range strings_ {
		fmt.Fprintf(b, "Lstr%d:\n  .asciz %q\n", i, s)
	}
}
