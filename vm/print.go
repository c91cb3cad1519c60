package vm

import (
	"io"
	"strconv"

	"github.com/primestruct/corelang/ir"
)

// printValue writes s to the stream selected by flags, appending a newline
// when PrintNewline is set.
func (m *machine) printValue(imm uint64, s string) {
	flags := ir.DecodePrintImm(imm)
	w := m.stdout
	if flags&ir.PrintStderr != 0 {
		w = m.stderr
	}
	io.WriteString(w, s)
	if flags&ir.PrintNewline != 0 {
		io.WriteString(w, "\n")
	}
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func formatFloat(v float64, bitSize int) string {
	return strconv.FormatFloat(v, 'g', -1, bitSize)
}
