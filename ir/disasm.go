package ir

import "fmt"

// Disassemble renders fn as a human-readable instruction listing, one
// instruction per line. It exists for debugging and for tests that want to
// compare two modules' shape without asserting on exact Instruction values.
func Disassemble(fn *Function) string {
	out := ""
	for i, ins := range fn.Instructions {
		out += fmt.Sprintf("%4d  %-16s %d\n", i, ins.Op, ins.Imm)
	}
	return out
}
