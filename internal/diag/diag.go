// Package diag centralizes the four error categories the pipeline can
// produce: include/parse, semantic, lowering, and
// runtime. Every stage reports the first violation it hits through a
// Diagnostic so a driver can print the right prefix and choose the right
// process exit code without re-deriving the mapping itself.
package diag

import "fmt"

// Category names one of the pipeline's error origins.
type Category int

const (
	CategoryInclude Category = iota
	CategorySemantic
	CategoryVMLowering
	CategoryNativeLowering
	CategoryRuntime
)

// ExitCode is the process exit code associated with a Diagnostic's origin.
func (c Category) ExitCode() int {
	switch c {
	case CategoryRuntime:
		return 3
	default:
		return 2
	}
}

func (c Category) prefix() string {
	switch c {
	case CategoryInclude:
		return "Include error: "
	case CategorySemantic:
		return "Semantic error: "
	case CategoryVMLowering:
		return "VM lowering error: "
	case CategoryNativeLowering:
		return "Native lowering error: "
	case CategoryRuntime:
		return ""
	default:
		return "error: "
	}
}

// Diagnostic is the single value shape every pipeline stage reports its
// first violation through.
type Diagnostic struct {
	Category Category
	Message  string
}

// Error implements the error interface, rendering the category's prefix
// ahead of the message exactly as the CLI surface (out of scope here) would
// print it to stderr.
func (d *Diagnostic) Error() string {
	return d.Category.prefix() + d.Message
}

// ExitCode reports the process exit code a driver should use for d.
func (d *Diagnostic) ExitCode() int { return d.Category.ExitCode() }

// Semantic builds a CategorySemantic diagnostic.
func Semantic(format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Category: CategorySemantic, Message: fmt.Sprintf(format, args...)}
}

// VMLowering builds a CategoryVMLowering diagnostic.
func VMLowering(format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Category: CategoryVMLowering, Message: fmt.Sprintf(format, args...)}
}

// NativeLowering builds a CategoryNativeLowering diagnostic.
func NativeLowering(format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Category: CategoryNativeLowering, Message: fmt.Sprintf(format, args...)}
}

// Include builds a CategoryInclude diagnostic.
func Include(format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Category: CategoryInclude, Message: fmt.Sprintf(format, args...)}
}

// Runtime builds a CategoryRuntime diagnostic. Runtime diagnostics are
// printed to stderr verbatim by the VM/native backend, with no prefix.
func Runtime(format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Category: CategoryRuntime, Message: fmt.Sprintf(format, args...)}
}
