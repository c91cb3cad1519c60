package vm

import "github.com/primestruct/corelang/ir"

// cmpI32/cmpI64/cmpU64/cmpF32/cmpF64 evaluate one of a numeric kind's six
// comparison opcodes. Each
// takes the already-narrowed operand pair and the specific opcode so a
// single pop in the caller's instruction loop serves the whole family.

func cmpI32(op ir.Opcode, l, r int32) bool {
	switch op {
	case ir.OpCmpEqI32:
		return l == r
	case ir.OpCmpNeI32:
		return l != r
	case ir.OpCmpLtI32:
		return l < r
	case ir.OpCmpLeI32:
		return l <= r
	case ir.OpCmpGtI32:
		return l > r
	case ir.OpCmpGeI32:
		return l >= r
	default:
		return false
	}
}

func cmpI64(op ir.Opcode, l, r int64) bool {
	switch op {
	case ir.OpCmpEqI64:
		return l == r
	case ir.OpCmpNeI64:
		return l != r
	case ir.OpCmpLtI64:
		return l < r
	case ir.OpCmpLeI64:
		return l <= r
	case ir.OpCmpGtI64:
		return l > r
	case ir.OpCmpGeI64:
		return l >= r
	default:
		return false
	}
}

func cmpU64(op ir.Opcode, l, r uint64) bool {
	switch op {
	case ir.OpCmpEqU64:
		return l == r
	case ir.OpCmpNeU64:
		return l != r
	case ir.OpCmpLtU64:
		return l < r
	case ir.OpCmpLeU64:
		return l <= r
	case ir.OpCmpGtU64:
		return l > r
	case ir.OpCmpGeU64:
		return l >= r
	default:
		return false
	}
}

func cmpF32(op ir.Opcode, l, r float32) bool {
	switch op {
	case ir.OpCmpEqF32:
		return l == r
	case ir.OpCmpNeF32:
		return l != r
	case ir.OpCmpLtF32:
		return l < r
	case ir.OpCmpLeF32:
		return l <= r
	case ir.OpCmpGtF32:
		return l > r
	case ir.OpCmpGeF32:
		return l >= r
	default:
		return false
	}
}

func cmpF64(op ir.Opcode, l, r float64) bool {
	switch op {
	case ir.OpCmpEqF64:
		return l == r
	case ir.OpCmpNeF64:
		return l != r
	case ir.OpCmpLtF64:
		return l < r
	case ir.OpCmpLeF64:
		return l <= r
	case ir.OpCmpGtF64:
		return l > r
	case ir.OpCmpGeF64:
		return l >= r
	default:
		return false
	}
}
