package ir

// PrintFlag bits make up a print instruction's whole Imm, selecting newline
// and stderr behavior; every print opcode, OpPrintArgv included, takes its
// operand (value, string-table index or argv index) from the stack.
type PrintFlag uint64

const (
	PrintNewline PrintFlag = 1 << iota
	PrintStderr
)

// EncodePrintImm packs flags into an instruction immediate.
func EncodePrintImm(flags PrintFlag) uint64 { return uint64(flags) }

// DecodePrintImm unpacks the flags packed by EncodePrintImm.
func DecodePrintImm(imm uint64) PrintFlag { return PrintFlag(imm) }
