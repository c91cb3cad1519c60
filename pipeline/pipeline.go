// Package pipeline composes the four independently testable stages —
// config, validate, lower, and a chosen backend — into the single library
// call a driver (a CLI, a test harness, an embedder) actually needs:
// validate a Program, lower it to an *ir.Module, then either run it, emit
// a standalone native assembly rendering, or serialize it to the `.psir`
// wire format. No stage's behavior is duplicated here; this package only
// sequences the existing Result-returning calls and turns the first
// failure into the single diag.Diagnostic a caller reports.
package pipeline

import (
	"io"

	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/internal/config"
	"github.com/primestruct/corelang/internal/diag"
	"github.com/primestruct/corelang/ir"
	"github.com/primestruct/corelang/lower"
	"github.com/primestruct/corelang/native"
	"github.com/primestruct/corelang/validator"
	"github.com/primestruct/corelang/vm"
)

// Options configures the validate+lower stages every Compile/Run call
// shares: the entry definition's path and the default effect/capability
// tokens the entry's own declarations are seeded with.
type Options struct {
	EntryPath          string
	DefaultEffects     []string
	DefaultCapability  []string
}

// FromDefaults builds Options from a loaded config.Defaults, the shape a
// driver assembles once per invocation and reuses across Compile/Run calls.
func FromDefaults(d config.Defaults) Options {
	return Options{
		EntryPath:         d.Entry,
		DefaultEffects:    d.DefaultEffects,
		DefaultCapability: d.DefaultCapability,
	}
}

// CompileResult is the outcome of Compile: Ok reports success with the
// lowered Module, Error is the first validate-or-lower failure otherwise.
type CompileResult struct {
	Ok     bool
	Module *ir.Module
	Error  *diag.Diagnostic
}

// Compile validates program against opts and, on success, lowers it to an
// *ir.Module. This is the shared prefix every backend needs; Run, Native,
// and Serialize below all call it first.
func Compile(program *ast.Program, opts Options) CompileResult {
	vres := validator.Validate(program, opts.EntryPath, opts.DefaultEffects, opts.DefaultCapability)
	if !vres.Ok {
		return CompileResult{Error: vres.Error}
	}
	lres := lower.Lower(program, opts.EntryPath)
	if !lres.Ok {
		return CompileResult{Error: lres.Error}
	}
	return CompileResult{Ok: true, Module: lres.Module}
}

// Run validates and lowers program, then executes the result on the VM
// backend with stdout/stderr/argv wired through vmOpts.
func Run(program *ast.Program, opts Options, vmOpts vm.Options) vm.Result {
	cres := Compile(program, opts)
	if !cres.Ok {
		return vm.Result{Error: cres.Error}
	}
	return vm.Run(cres.Module, vmOpts)
}

// Native validates and lowers program, then renders the result as
// standalone AArch64/Darwin assembly text. The native backend may
// refuse a Module the VM backend accepts (e.g. a map literal's internal
// string-keyed lookup); that refusal surfaces here as native.Result.Error.
func Native(program *ast.Program, opts Options) native.Result {
	cres := Compile(program, opts)
	if !cres.Ok {
		return native.Result{Error: cres.Error}
	}
	return native.Lower(cres.Module)
}

// Serialize validates and lowers program, then writes its `.psir` wire
// encoding to w.
func Serialize(program *ast.Program, opts Options, w io.Writer) (int, *diag.Diagnostic) {
	cres := Compile(program, opts)
	if !cres.Ok {
		return 0, cres.Error
	}
	data, err := ir.Encode(cres.Module)
	if err != nil {
		return 0, diag.VMLowering("encode module: %s", err)
	}
	n, err := w.Write(data)
	if err != nil {
		return n, diag.Runtime("write module: %s", err)
	}
	return n, nil
}
